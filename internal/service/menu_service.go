package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/repository"
)

var ErrInvalidWeekday = errors.New("星期无效，应为 Monday 至 Friday")

// MenuService 菜品查询业务接口
type MenuService interface {
	// List 返回菜品；day 非空时仅返回该星期供应的菜品，
	// date 非空且该日所属周次登记了供应菜品时，再按登记过滤
	List(ctx context.Context, day string, date *time.Time) ([]dto.MenuItemResponse, error)
}

type menuService struct {
	repo     *repository.Repository
	calendar CalendarService
	logger   *zap.Logger
}

// NewMenuService 创建 MenuService 实例
func NewMenuService(repo *repository.Repository, calendar CalendarService, logger *zap.Logger) MenuService {
	return &menuService{repo: repo, calendar: calendar, logger: logger}
}

func (s *menuService) List(ctx context.Context, day string, date *time.Time) ([]dto.MenuItemResponse, error) {
	weekday := time.Weekday(-1)
	if day != "" {
		offset, ok := model.DayOffset(day)
		if !ok {
			return nil, ErrInvalidWeekday
		}
		weekday = time.Weekday(offset + 1)
	}

	items, err := s.repo.MenuItem.List(ctx)
	if err != nil {
		s.logger.Error("查询菜品列表失败", zap.Error(err))
		return nil, err
	}

	var allowed map[uint]bool
	if date != nil {
		allowed, err = s.availableFor(ctx, *date)
		if err != nil {
			return nil, err
		}
	}

	result := make([]dto.MenuItemResponse, 0, len(items))
	for i := range items {
		if weekday >= 0 && !items[i].AvailableOn(weekday) {
			continue
		}
		if allowed != nil && !allowed[items[i].ItemID] {
			continue
		}
		result = append(result, toMenuItemResponse(&items[i]))
	}
	return result, nil
}

// availableFor 返回该日周次登记的菜品集合；无周次或无登记时返回 nil 表示不限制
func (s *menuService) availableFor(ctx context.Context, date time.Time) (map[uint]bool, error) {
	tag, err := s.calendar.Resolve(ctx, date)
	if err != nil || tag == nil {
		return nil, err
	}
	ids, err := s.repo.MenuItem.ListAvailableItemIDs(ctx, tag.WeekNumber, tag.CycleNumber)
	if err != nil {
		s.logger.Error("查询周次菜品登记失败",
			zap.Int("week_number", tag.WeekNumber),
			zap.Int("cycle_number", tag.CycleNumber),
			zap.Error(err),
		)
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	allowed := make(map[uint]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}
	return allowed, nil
}

func toMenuItemResponse(m *model.MenuItem) dto.MenuItemResponse {
	days := make([]string, 0, len(model.Weekdays))
	for i, label := range model.Weekdays {
		if m.AvailableOn(time.Weekday(i + 1)) {
			days = append(days, label)
		}
	}
	return dto.MenuItemResponse{ID: m.ItemID, Name: m.ItemName, Days: days}
}
