package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/service"
	pkgerrors "school-lunch/backend/pkg/errors"
	"school-lunch/backend/pkg/response"
)

// ReportHandler 统计模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// AdminReport 管理员统计，date / from / to / class_id 均可选
// GET /api/v1/admin/report?date=&from=&to=&class_id=
func (h *ReportHandler) AdminReport(c *gin.Context) {
	var q dto.AdminReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	filter := service.ReportFilter{ClassID: q.ClassID}
	var ok bool
	if filter.Date, ok = parseOptionalDate(c, q.Date); !ok {
		return
	}
	if filter.From, ok = parseOptionalDate(c, q.From); !ok {
		return
	}
	if filter.To, ok = parseOptionalDate(c, q.To); !ok {
		return
	}

	report, err := h.reportSvc.AdminReport(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidDateRange) {
			response.BadRequest(c, 13001, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, report)
}

// DailySummary 厨房单日汇总
// GET /api/v1/admin/report/daily?class_id=&date=
func (h *ReportHandler) DailySummary(c *gin.Context) {
	var q dto.DailySummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "class_id 不能为空")
		return
	}
	date, ok := parseOptionalDate(c, q.Date)
	if !ok {
		return
	}

	summary, err := h.reportSvc.DailySummary(c.Request.Context(), q.ClassID, date)
	if err != nil {
		if errors.Is(err, service.ErrClassNotFound) {
			classNotFound(c)
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}
