package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/service"
	"school-lunch/backend/pkg/response"
)

// ClassHandler 班级视图 HTTP 处理器
type ClassHandler struct {
	classSvc service.ClassService
}

// NewClassHandler 创建 ClassHandler
func NewClassHandler(classSvc service.ClassService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc}
}

// ListClasses 班级列表
// GET /api/v1/classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	classes, err := h.classSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": classes})
}

// GetWeek 班级周视图
// GET /api/v1/classes/:id/week?week_start=YYYY-MM-DD
func (h *ClassHandler) GetWeek(c *gin.Context) {
	classID, ok := parseClassID(c)
	if !ok {
		return
	}

	var q dto.ClassWeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	raw := q.WeekStart
	if raw == "" {
		raw = q.Week
	}
	weekStart, ok := parseOptionalDate(c, raw)
	if !ok {
		return
	}

	view, err := h.classSvc.WeekView(c.Request.Context(), classID, weekStart)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, view)
}

// GetToday 班级当日视图
// GET /api/v1/classes/:id/today
func (h *ClassHandler) GetToday(c *gin.Context) {
	classID, ok := parseClassID(c)
	if !ok {
		return
	}

	view, err := h.classSvc.TodayView(c.Request.Context(), classID)
	if err != nil {
		h.handleClassError(c, err)
		return
	}

	response.OK(c, view)
}

func (h *ClassHandler) handleClassError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		classNotFound(c)
	default:
		response.InternalError(c)
	}
}
