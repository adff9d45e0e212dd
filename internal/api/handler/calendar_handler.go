package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/service"
	pkgerrors "school-lunch/backend/pkg/errors"
	"school-lunch/backend/pkg/response"
)

// CalendarHandler 周次日历 HTTP 处理器
type CalendarHandler struct {
	calendarSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calendarSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc}
}

// ListWeekCycles 周次列表
// GET /api/v1/week-cycles
func (h *CalendarHandler) ListWeekCycles(c *gin.Context) {
	cycles, err := h.calendarSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": cycles})
}

// CreateWeekCycle 创建周次
// POST /api/v1/week-cycles
func (h *CalendarHandler) CreateWeekCycle(c *gin.Context) {
	var req dto.CreateWeekCycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	cycle, err := h.calendarSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleCalendarError(c, err)
		return
	}

	response.Created(c, cycle)
}

// ResolveWeek 解析日期所属周次
// GET /api/v1/week-cycles/resolve?date=YYYY-MM-DD
func (h *CalendarHandler) ResolveWeek(c *gin.Context) {
	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		response.BadRequest(c, 14001, "日期格式无效，应为 YYYY-MM-DD")
		return
	}

	tag, err := h.calendarSvc.Resolve(c.Request.Context(), date)
	if err != nil {
		response.InternalError(c)
		return
	}

	resp := dto.ResolveWeekResponse{Date: model.FormatDate(date)}
	if tag != nil {
		resp.Found = true
		resp.WeekNumber = &tag.WeekNumber
		resp.CycleNumber = &tag.CycleNumber
	}
	response.OK(c, resp)
}

// ImportWeekCycles 从 ICS 导入周次
// POST /api/v1/week-cycles/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}
func (h *CalendarHandler) ImportWeekCycles(c *gin.Context) {
	// 尝试文件上传方式
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		resp, err := h.calendarSvc.ImportICS(c.Request.Context(), file)
		if err != nil {
			handleCalendarError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}

	// 尝试 URL 方式
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		response.BadRequest(c, 14010, "请上传 ICS 文件或提供 ICS URL")
		return
	}

	body, err := service.FetchICSContent(req.URL)
	if err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, 14011, "ICS URL 获取失败", err.Error())
		return
	}
	defer body.Close()

	resp, err := h.calendarSvc.ImportICS(c.Request.Context(), body)
	if err != nil {
		handleCalendarError(c, err)
		return
	}
	response.Created(c, resp)
}

func handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeekCycleOverlap):
		response.Error(c, http.StatusConflict, 14002, err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, pkgerrors.ErrInvalidDateRange):
		response.BadRequest(c, 14003, err.Error())
	case errors.Is(err, service.ErrICSParse):
		response.ErrorWithDetails(c, http.StatusBadRequest, 14012, "ICS 文件解析失败", err.Error())
	default:
		response.InternalError(c)
	}
}
