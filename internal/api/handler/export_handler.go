package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/service"
	"school-lunch/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeek 导出班级周选择
// GET /api/v1/admin/export/week?class_id=xxx&week_start=YYYY-MM-DD
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	var q dto.ExportWeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "class_id 与 week_start 不能为空")
		return
	}
	weekStart, err := model.ParseDate(q.WeekStart)
	if err != nil {
		response.BadRequest(c, 10001, "日期格式无效，应为 YYYY-MM-DD")
		return
	}

	buf, filename, err := h.exportSvc.ExportWeek(c.Request.Context(), q.ClassID, weekStart)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrClassNotFound):
		classNotFound(c)
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 13101, "生成 Excel 文件失败")
	default:
		response.InternalError(c)
	}
}
