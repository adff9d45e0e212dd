package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/service"
	"school-lunch/backend/pkg/response"
)

// MenuHandler 菜品 HTTP 处理器
type MenuHandler struct {
	menuSvc service.MenuService
}

// NewMenuHandler 创建 MenuHandler
func NewMenuHandler(menuSvc service.MenuService) *MenuHandler {
	return &MenuHandler{menuSvc: menuSvc}
}

// ListMenuItems 菜品列表
// GET /api/v1/menu-items?day=monday&date=YYYY-MM-DD
func (h *MenuHandler) ListMenuItems(c *gin.Context) {
	var q dto.MenuQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	date, ok := parseOptionalDate(c, q.Date)
	if !ok {
		return
	}

	items, err := h.menuSvc.List(c.Request.Context(), q.Day, date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWeekday) {
			response.BadRequest(c, 15001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": items})
}
