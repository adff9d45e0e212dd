package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/repository"
)

// ClassService 班级与班级视图业务接口
type ClassService interface {
	List(ctx context.Context) ([]dto.ClassBrief, error)
	// WeekView 班级周视图；weekStart 为 nil 时取本周周一
	WeekView(ctx context.Context, classID uint, weekStart *time.Time) (*dto.ClassWeekResponse, error)
	TodayView(ctx context.Context, classID uint) (*dto.ClassTodayResponse, error)
}

type classService struct {
	repo     *repository.Repository
	calendar CalendarService
	menu     MenuService
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(
	repo *repository.Repository,
	calendar CalendarService,
	menu MenuService,
	loc *time.Location,
	logger *zap.Logger,
) ClassService {
	return &classService{
		repo:     repo,
		calendar: calendar,
		menu:     menu,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *classService) List(ctx context.Context) ([]dto.ClassBrief, error) {
	classes, err := s.repo.Class.List(ctx)
	if err != nil {
		s.logger.Error("查询班级列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ClassBrief, 0, len(classes))
	for _, c := range classes {
		result = append(result, dto.ClassBrief{ID: c.ClassID, Name: c.ClassName})
	}
	return result, nil
}

func (s *classService) WeekView(ctx context.Context, classID uint, weekStart *time.Time) (*dto.ClassWeekResponse, error) {
	class, students, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	start := s.calendar.CurrentWeek(s.now())
	if weekStart != nil {
		start = model.Date(*weekStart)
	}
	end := start.AddDate(0, 0, len(model.Weekdays)-1)

	tags, err := s.calendar.ResolveRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Choice.FindByScope(ctx, classID, start, end)
	if err != nil {
		s.logger.Error("查询周选择失败",
			zap.Uint("class_id", classID),
			zap.String("week_start", model.FormatDate(start)),
			zap.Error(err),
		)
		return nil, err
	}
	items, err := s.menu.List(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClassWeekResponse{
		Class:     dto.ClassBrief{ID: class.ClassID, Name: class.ClassName},
		WeekStart: model.FormatDate(start),
		WeekEnd:   model.FormatDate(end),
		Days:      make([]dto.WeekDayResponse, 0, len(model.Weekdays)),
		Students:  students,
		MenuItems: items,
		Choices:   make([]dto.ChoiceResponse, 0, len(rows)),
	}
	for i, label := range model.Weekdays {
		day := dto.WeekDayResponse{Label: label, Date: model.FormatDate(start.AddDate(0, 0, i))}
		if tags[i] != nil {
			day.WeekNumber = intPtr(tags[i].WeekNumber)
			day.CycleNumber = intPtr(tags[i].CycleNumber)
		}
		resp.Days = append(resp.Days, day)
	}
	for i := range rows {
		resp.Choices = append(resp.Choices, toChoiceResponse(&rows[i]))
	}
	return resp, nil
}

func (s *classService) TodayView(ctx context.Context, classID uint) (*dto.ClassTodayResponse, error) {
	class, students, err := s.loadClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	today := model.DateIn(s.now(), s.loc)
	rows, err := s.repo.Choice.FindByClassAndDate(ctx, classID, today)
	if err != nil {
		s.logger.Error("查询当日选择失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, err
	}
	// 当日视图列出全部菜品
	items, err := s.menu.List(ctx, "", nil)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClassTodayResponse{
		Class:     dto.ClassBrief{ID: class.ClassID, Name: class.ClassName},
		Date:      model.FormatDate(today),
		DayOfWeek: today.Weekday().String(),
		Students:  students,
		MenuItems: items,
		Choices:   make([]dto.ChoiceResponse, 0, len(rows)),
	}
	for i := range rows {
		resp.Choices = append(resp.Choices, toChoiceResponse(&rows[i]))
	}
	return resp, nil
}

func (s *classService) loadClass(ctx context.Context, classID uint) (*model.Class, []dto.StudentBrief, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, nil, err
	}

	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, nil, err
	}
	briefs := make([]dto.StudentBrief, 0, len(students))
	for i := range students {
		briefs = append(briefs, dto.StudentBrief{
			ID:        students[i].StudentID,
			FirstName: students[i].FirstName,
			LastName:  students[i].LastName,
			FullName:  students[i].FullName(),
		})
	}
	return class, briefs, nil
}
