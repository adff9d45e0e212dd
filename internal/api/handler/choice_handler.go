package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/service"
	"school-lunch/backend/pkg/response"
)

// ChoiceHandler 午餐选择 HTTP 处理器
type ChoiceHandler struct {
	choiceSvc service.ChoiceService
}

// NewChoiceHandler 创建 ChoiceHandler
func NewChoiceHandler(choiceSvc service.ChoiceService) *ChoiceHandler {
	return &ChoiceHandler{choiceSvc: choiceSvc}
}

// SubmitWeek 提交班级一周的选择，整周替换
// PUT /api/v1/classes/:id/choices/week
func (h *ChoiceHandler) SubmitWeek(c *gin.Context) {
	classID, ok := parseClassID(c)
	if !ok {
		return
	}

	var req dto.SubmitWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "缺少周起始日期或提交格式错误")
		return
	}
	weekStart, err := model.ParseDate(req.WeekStart)
	if err != nil {
		response.BadRequest(c, 12001, "周起始日期格式无效，应为 YYYY-MM-DD")
		return
	}

	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	selections := make([]service.Selection, 0, len(req.Selections))
	for _, in := range req.Selections {
		offset, valid := model.DayOffset(in.Day)
		if !valid {
			// 交由服务层按无效星期拒绝
			offset = -1
		}
		selections = append(selections, service.Selection{
			StudentID: in.StudentID,
			DayOffset: offset,
			ItemID:    in.ItemID,
		})
	}

	result, err := h.choiceSvc.ReconcileWeek(c.Request.Context(), teacherID, classID, weekStart, selections)
	if err != nil {
		h.handleChoiceError(c, err)
		return
	}

	resp := dto.SubmitWeekResponse{
		WeekStart: model.FormatDate(result.WeekStart),
		WeekEnd:   model.FormatDate(result.WeekEnd),
		Saved:     result.Saved,
		Deleted:   result.Deleted,
		Rejected:  make([]dto.RejectedSelection, 0, len(result.Rejected)),
		Errors:    result.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	for _, r := range result.Rejected {
		resp.Rejected = append(resp.Rejected, dto.RejectedSelection{
			StudentID: r.StudentID,
			Day:       model.DayLabel(r.DayOffset),
			ItemID:    r.ItemID,
			Reason:    r.Reason,
		})
	}

	response.OKWithMessage(c, service.SummaryMessage(result.Saved, len(result.Rejected)), resp)
}

// SaveToday 逐条保存当日选择
// POST /api/v1/classes/:id/choices/today
func (h *ChoiceHandler) SaveToday(c *gin.Context) {
	classID, ok := parseClassID(c)
	if !ok {
		return
	}

	var req dto.SaveDailyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	result, err := h.choiceSvc.SaveDaily(c.Request.Context(), teacherID, classID, req.Choices)
	if err != nil {
		h.handleChoiceError(c, err)
		return
	}

	response.OKWithMessage(c, service.SummaryMessage(result.Saved, result.Failed), result)
}

// ClearToday 清空班级当日选择
// DELETE /api/v1/classes/:id/choices/today
func (h *ChoiceHandler) ClearToday(c *gin.Context) {
	classID, ok := parseClassID(c)
	if !ok {
		return
	}

	teacherID, ok := MustGetTeacherID(c)
	if !ok {
		return
	}

	result, err := h.choiceSvc.ClearToday(c.Request.Context(), teacherID, classID)
	if err != nil {
		h.handleChoiceError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ChoiceHandler) handleChoiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		classNotFound(c)
	case errors.Is(err, service.ErrWeekStartRequired):
		response.BadRequest(c, 12001, err.Error())
	default:
		response.InternalError(c)
	}
}
