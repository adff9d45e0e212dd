package handler

import "school-lunch/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth     *AuthHandler
	Class    *ClassHandler
	Choice   *ChoiceHandler
	Report   *ReportHandler
	Export   *ExportHandler
	Calendar *CalendarHandler
	Menu     *MenuHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(svc.Auth),
		Class:    NewClassHandler(svc.Class),
		Choice:   NewChoiceHandler(svc.Choice),
		Report:   NewReportHandler(svc.Report),
		Export:   NewExportHandler(svc.Export),
		Calendar: NewCalendarHandler(svc.Calendar),
		Menu:     NewMenuHandler(svc.Menu),
	}
}
