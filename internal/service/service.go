package service

import (
	"go.uber.org/zap"

	"school-lunch/backend/config"
	"school-lunch/backend/internal/repository"
	"school-lunch/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth     AuthService
	Class    ClassService
	Calendar CalendarService
	Choice   ChoiceService
	Report   ReportService
	Export   ExportService
	Menu     MenuService
}

// NewService 创建 Service 聚合
// cache / blacklist 在 Redis 不可用时传 nil
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	cache ReportCache,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	loc := cfg.Lunch.Location()
	calendar := NewCalendarService(repo, loc, logger)
	menu := NewMenuService(repo, calendar, logger)

	return &Service{
		Auth:     NewAuthService(repo, jwtMgr, blacklist, logger),
		Class:    NewClassService(repo, calendar, menu, loc, logger),
		Calendar: calendar,
		Choice:   NewChoiceService(&cfg.Lunch, repo, calendar, cache, logger),
		Report:   NewReportService(repo, cache, cfg.Lunch.ReportCacheTTL, loc, logger),
		Export:   NewExportService(repo, calendar, logger),
		Menu:     menu,
	}
}
