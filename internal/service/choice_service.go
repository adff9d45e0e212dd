package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-lunch/backend/config"
	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/repository"
	"school-lunch/backend/pkg/metrics"
)

var (
	ErrClassNotFound      = errors.New("班级不存在")
	ErrWeekStartRequired  = errors.New("缺少周起始日期")
	ErrStudentNotInClass  = errors.New("学生不属于该班级")
	ErrMenuItemNotFound   = errors.New("菜品不存在")
	ErrMenuItemNotOffered = errors.New("菜品当天不供应")
	ErrChoiceInvalidDay   = errors.New("星期无效，应为 Monday 至 Friday")
)

// 提交条目被拒绝的原因
const (
	RejectInvalidDay        = "invalid_day"
	RejectStudentNotInClass = "student_not_in_class"
	RejectUnknownItem       = "unknown_item"
	RejectItemNotOffered    = "item_not_offered"
)

var rejectErrors = map[string]error{
	RejectInvalidDay:        ErrChoiceInvalidDay,
	RejectStudentNotInClass: ErrStudentNotInClass,
	RejectUnknownItem:       ErrMenuItemNotFound,
	RejectItemNotOffered:    ErrMenuItemNotOffered,
}

// Selection 周提交中的单条选择，DayOffset 为相对周起始日的偏移 (0..4)
type Selection struct {
	StudentID uint
	DayOffset int
	ItemID    uint
}

// Rejection 被拒绝的选择及原因
type Rejection struct {
	Selection
	Reason string
}

// ReconcileResult 周对账结果
type ReconcileResult struct {
	WeekStart time.Time
	WeekEnd   time.Time
	Saved     int
	Deleted   int64
	Rejected  []Rejection
	Errors    []string
}

// ChoiceService 午餐选择写入业务接口
type ChoiceService interface {
	// ReconcileWeek 以提交内容替换班级该周的全部选择
	ReconcileWeek(ctx context.Context, callerID, classID uint, weekStart time.Time, selections []Selection) (*ReconcileResult, error)
	// SaveChoice 写入学生某日的选择，覆盖已有记录
	SaveChoice(ctx context.Context, studentID, itemID, classID uint, date time.Time) error
	// SaveDaily 逐条保存当日选择，单条失败不影响其他条目
	SaveDaily(ctx context.Context, callerID, classID uint, entries []dto.DailyEntry) (*dto.SaveDailyResponse, error)
	ClearToday(ctx context.Context, callerID, classID uint) (*dto.ClearTodayResponse, error)
}

type choiceService struct {
	repo     *repository.Repository
	calendar CalendarService
	cache    ReportCache
	cfg      *config.LunchConfig
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewChoiceService 创建 ChoiceService 实例；cache 可为 nil
func NewChoiceService(
	cfg *config.LunchConfig,
	repo *repository.Repository,
	calendar CalendarService,
	cache ReportCache,
	logger *zap.Logger,
) ChoiceService {
	return &choiceService{
		repo:     repo,
		calendar: calendar,
		cache:    cache,
		cfg:      cfg,
		loc:      cfg.Location(),
		now:      time.Now,
		logger:   logger,
	}
}

func (s *choiceService) ReconcileWeek(
	ctx context.Context, callerID, classID uint, weekStart time.Time, selections []Selection,
) (*ReconcileResult, error) {
	if weekStart.IsZero() {
		return nil, ErrWeekStartRequired
	}
	started := time.Now()
	weekStart = model.Date(weekStart)
	weekEnd := weekStart.AddDate(0, 0, len(model.Weekdays)-1)

	log := s.logger.With(
		zap.Uint("teacher_id", callerID),
		zap.Uint("class_id", classID),
		zap.String("week_start", model.FormatDate(weekStart)),
	)

	if _, err := s.getClass(ctx, classID); err != nil {
		return nil, err
	}

	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		log.Error("查询班级学生失败", zap.Error(err))
		return nil, err
	}
	inClass := make(map[uint]bool, len(students))
	for _, st := range students {
		inClass[st.StudentID] = true
	}

	items, err := s.loadItems(ctx, selectionItemIDs(selections))
	if err != nil {
		log.Error("查询菜品失败", zap.Error(err))
		return nil, err
	}

	tags, err := s.calendar.ResolveRange(ctx, weekStart, weekEnd)
	if err != nil {
		log.Error("解析周次失败", zap.Error(err))
		return nil, err
	}

	result := &ReconcileResult{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Rejected:  []Rejection{},
		Errors:    []string{},
	}

	// 同一 (学生, 天) 多次出现时以最后一条为准
	type slot struct {
		studentID uint
		offset    int
	}
	index := make(map[slot]int)
	var rows []model.Choice
	now := s.now().UTC()

	for _, sel := range selections {
		// 空单元格表示未选择，直接跳过
		if sel.ItemID == 0 {
			continue
		}
		if reason := s.validate(sel, inClass, items); reason != "" {
			result.Rejected = append(result.Rejected, Rejection{Selection: sel, Reason: reason})
			result.Errors = append(result.Errors, rejectionMessage(sel, reason))
			metrics.ChoicesRejected.WithLabelValues(reason).Inc()
			continue
		}

		date := weekStart.AddDate(0, 0, sel.DayOffset)
		row := model.Choice{
			StudentID:  sel.StudentID,
			ClassID:    classID,
			ChoiceDate: date,
			DayOfWeek:  model.DayLabel(sel.DayOffset),
			ItemID:     sel.ItemID,
			CreatedAt:  now,
		}
		if tag := tags[sel.DayOffset]; tag != nil {
			row.WeekNumber = intPtr(tag.WeekNumber)
			row.CycleNumber = intPtr(tag.CycleNumber)
		}

		key := slot{sel.StudentID, sel.DayOffset}
		if i, ok := index[key]; ok {
			rows[i] = row
			continue
		}
		index[key] = len(rows)
		rows = append(rows, row)
	}

	deleted, err := s.repo.Choice.ReplaceScope(ctx, classID, weekStart, weekEnd, rows)
	if err != nil {
		log.Error("保存周选择失败", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, err
	}

	result.Saved = len(rows)
	result.Deleted = deleted

	metrics.ChoicesSaved.WithLabelValues("week").Add(float64(len(rows)))
	metrics.ReconcileDuration.Observe(time.Since(started).Seconds())
	invalidateReports(ctx, s.cache, s.logger)

	log.Info("周选择已保存",
		zap.Int("saved", result.Saved),
		zap.Int64("deleted", result.Deleted),
		zap.Int("rejected", len(result.Rejected)),
	)
	return result, nil
}

// validate 返回拒绝原因；合法时返回空字符串
func (s *choiceService) validate(sel Selection, inClass map[uint]bool, items map[uint]*model.MenuItem) string {
	if model.DayLabel(sel.DayOffset) == "" {
		return RejectInvalidDay
	}
	if !inClass[sel.StudentID] {
		return RejectStudentNotInClass
	}
	item, ok := items[sel.ItemID]
	if !ok {
		return RejectUnknownItem
	}
	// 按星期标签判断供应，与周起始日是否为周一无关
	if s.cfg.EnforceDayAvailability && !item.AvailableOn(time.Weekday(sel.DayOffset+1)) {
		return RejectItemNotOffered
	}
	return ""
}

func (s *choiceService) SaveChoice(ctx context.Context, studentID, itemID, classID uint, date time.Time) error {
	date = model.Date(date)
	choice := &model.Choice{
		StudentID:  studentID,
		ClassID:    classID,
		ChoiceDate: date,
		DayOfWeek:  date.Weekday().String(),
		ItemID:     itemID,
		CreatedAt:  s.now().UTC(),
	}

	tag, err := s.calendar.Resolve(ctx, date)
	if err != nil {
		// 周次标注失败不影响保存
		s.logger.Warn("解析周次失败，记录不带周次", zap.String("date", model.FormatDate(date)), zap.Error(err))
	} else if tag != nil {
		choice.WeekNumber = intPtr(tag.WeekNumber)
		choice.CycleNumber = intPtr(tag.CycleNumber)
	}

	if err := s.repo.Choice.ReplaceStudentDay(ctx, choice); err != nil {
		s.logger.Error("保存单日选择失败",
			zap.Uint("student_id", studentID),
			zap.Uint("class_id", classID),
			zap.String("date", model.FormatDate(date)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *choiceService) SaveDaily(
	ctx context.Context, callerID, classID uint, entries []dto.DailyEntry,
) (*dto.SaveDailyResponse, error) {
	if _, err := s.getClass(ctx, classID); err != nil {
		return nil, err
	}

	today := model.DateIn(s.now(), s.loc)
	resp := &dto.SaveDailyResponse{Date: model.FormatDate(today), Errors: []string{}}

	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, err
	}
	inClass := make(map[uint]bool, len(students))
	for _, st := range students {
		inClass[st.StudentID] = true
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		if e.ItemID != 0 {
			ids = append(ids, e.ItemID)
		}
	}
	items, err := s.loadItems(ctx, ids)
	if err != nil {
		s.logger.Error("查询菜品失败", zap.Error(err))
		return nil, err
	}

	for _, e := range entries {
		if e.ItemID == 0 {
			continue
		}
		var failure error
		switch {
		case !inClass[e.StudentID]:
			failure = ErrStudentNotInClass
		case items[e.ItemID] == nil:
			failure = ErrMenuItemNotFound
		default:
			failure = s.SaveChoice(ctx, e.StudentID, e.ItemID, classID, today)
		}
		if failure != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("student %d: %v", e.StudentID, failure))
			continue
		}
		resp.Saved++
	}

	metrics.ChoicesSaved.WithLabelValues("daily").Add(float64(resp.Saved))
	if resp.Saved > 0 {
		invalidateReports(ctx, s.cache, s.logger)
	}

	s.logger.Info("当日选择已保存",
		zap.Uint("teacher_id", callerID),
		zap.Uint("class_id", classID),
		zap.Int("saved", resp.Saved),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

func (s *choiceService) ClearToday(ctx context.Context, callerID, classID uint) (*dto.ClearTodayResponse, error) {
	if _, err := s.getClass(ctx, classID); err != nil {
		return nil, err
	}

	today := model.DateIn(s.now(), s.loc)
	deleted, err := s.repo.Choice.DeleteByClassAndDate(ctx, classID, today)
	if err != nil {
		s.logger.Error("清空当日选择失败",
			zap.Uint("class_id", classID),
			zap.String("date", model.FormatDate(today)),
			zap.Error(err),
		)
		return nil, err
	}
	if deleted > 0 {
		invalidateReports(ctx, s.cache, s.logger)
	}

	s.logger.Info("当日选择已清空",
		zap.Uint("teacher_id", callerID),
		zap.Uint("class_id", classID),
		zap.Int64("deleted", deleted),
	)
	return &dto.ClearTodayResponse{Date: model.FormatDate(today), Deleted: deleted}, nil
}

func (s *choiceService) getClass(ctx context.Context, classID uint) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, err
	}
	return class, nil
}

func (s *choiceService) loadItems(ctx context.Context, ids []uint) (map[uint]*model.MenuItem, error) {
	items, err := s.repo.MenuItem.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	m := make(map[uint]*model.MenuItem, len(items))
	for i := range items {
		m[items[i].ItemID] = &items[i]
	}
	return m, nil
}

func selectionItemIDs(selections []Selection) []uint {
	seen := make(map[uint]bool, len(selections))
	ids := make([]uint, 0, len(selections))
	for _, sel := range selections {
		if sel.ItemID != 0 && !seen[sel.ItemID] {
			seen[sel.ItemID] = true
			ids = append(ids, sel.ItemID)
		}
	}
	return ids
}

func rejectionMessage(sel Selection, reason string) string {
	day := model.DayLabel(sel.DayOffset)
	if day == "" {
		day = fmt.Sprintf("day+%d", sel.DayOffset)
	}
	return fmt.Sprintf("student %d %s: %v", sel.StudentID, day, rejectErrors[reason])
}

// SummaryMessage 生成保存结果提示
func SummaryMessage(saved, failed int) string {
	switch {
	case saved > 0 && failed == 0:
		return fmt.Sprintf("Successfully saved %d selections!", saved)
	case saved > 0:
		return fmt.Sprintf("Saved %d, but %d failed.", saved, failed)
	case failed > 0:
		return fmt.Sprintf("Failed to save selections (%d errors).", failed)
	default:
		return "No selections to save."
	}
}

func intPtr(v int) *int { return &v }
