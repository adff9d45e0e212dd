package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/repository"
	pkgerrors "school-lunch/backend/pkg/errors"
)

var (
	ErrWeekCycleOverlap = errors.New("周次区间与已有周次重叠")
	ErrInvalidDate      = errors.New("日期格式无效，应为 YYYY-MM-DD")
)

// WeekTag 日期所属的周次/循环
type WeekTag struct {
	WeekNumber  int
	CycleNumber int
}

// CalendarService 周次日历业务接口
type CalendarService interface {
	// Resolve 返回覆盖 date 的周次；无覆盖时返回 (nil, nil)
	Resolve(ctx context.Context, date time.Time) (*WeekTag, error)
	// ResolveRange 一次查询解析 [from, to] 内每一天，结果下标为相对 from 的天数
	ResolveRange(ctx context.Context, from, to time.Time) ([]*WeekTag, error)
	List(ctx context.Context) ([]dto.WeekCycleResponse, error)
	Create(ctx context.Context, req *dto.CreateWeekCycleRequest) (*dto.WeekCycleResponse, error)
	// CurrentWeek 返回 now 所在自然周的周一
	CurrentWeek(now time.Time) time.Time
	ImportICS(ctx context.Context, r io.Reader) (*dto.ImportWeekCyclesResponse, error)
}

type calendarService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, loc: loc, logger: logger}
}

func (s *calendarService) Resolve(ctx context.Context, date time.Time) (*WeekTag, error) {
	wc, err := s.repo.WeekCycle.FindCovering(ctx, model.Date(date))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("解析周次失败", zap.Time("date", date), zap.Error(err))
		return nil, err
	}
	return &WeekTag{WeekNumber: wc.WeekNumber, CycleNumber: wc.CycleNumber}, nil
}

func (s *calendarService) ResolveRange(ctx context.Context, from, to time.Time) ([]*WeekTag, error) {
	from, to = model.Date(from), model.Date(to)
	if to.Before(from) {
		return nil, pkgerrors.ErrInvalidDateRange
	}

	// 已按 start_date、cycle_id 升序，首个覆盖者即为结果
	cycles, err := s.repo.WeekCycle.ListOverlapping(ctx, from, to)
	if err != nil {
		s.logger.Error("查询周次区间失败",
			zap.String("from", model.FormatDate(from)),
			zap.String("to", model.FormatDate(to)),
			zap.Error(err),
		)
		return nil, err
	}

	days := int(to.Sub(from).Hours()/24) + 1
	tags := make([]*WeekTag, days)
	for i := range tags {
		d := from.AddDate(0, 0, i)
		for j := range cycles {
			if cycles[j].Covers(d) {
				tags[i] = &WeekTag{WeekNumber: cycles[j].WeekNumber, CycleNumber: cycles[j].CycleNumber}
				break
			}
		}
	}
	return tags, nil
}

func (s *calendarService) List(ctx context.Context) ([]dto.WeekCycleResponse, error) {
	cycles, err := s.repo.WeekCycle.List(ctx)
	if err != nil {
		s.logger.Error("查询周次列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.WeekCycleResponse, 0, len(cycles))
	for i := range cycles {
		result = append(result, toWeekCycleResponse(&cycles[i]))
	}
	return result, nil
}

func (s *calendarService) Create(ctx context.Context, req *dto.CreateWeekCycleRequest) (*dto.WeekCycleResponse, error) {
	start, err := model.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := model.ParseDate(req.EndDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) {
		return nil, pkgerrors.ErrInvalidDateRange
	}

	existing, err := s.repo.WeekCycle.ListOverlapping(ctx, start, end)
	if err != nil {
		s.logger.Error("检查周次重叠失败", zap.Error(err))
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrWeekCycleOverlap
	}

	wc := &model.WeekCycle{
		CycleNumber: req.CycleNumber,
		WeekNumber:  req.WeekNumber,
		StartDate:   start,
		EndDate:     end,
	}
	if err := s.repo.WeekCycle.Create(ctx, wc); err != nil {
		s.logger.Error("创建周次失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("周次已创建",
		zap.Uint("cycle_id", wc.CycleID),
		zap.Int("cycle_number", wc.CycleNumber),
		zap.Int("week_number", wc.WeekNumber),
	)
	resp := toWeekCycleResponse(wc)
	return &resp, nil
}

func (s *calendarService) CurrentWeek(now time.Time) time.Time {
	return WeekStartOf(model.DateIn(now, s.loc))
}

// WeekStartOf 返回 date 所在自然周（周一开始）的周一
func WeekStartOf(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7 // Monday=0 … Sunday=6
	return model.Date(date).AddDate(0, 0, -offset)
}

func (s *calendarService) ImportICS(ctx context.Context, r io.Reader) (*dto.ImportWeekCyclesResponse, error) {
	cycles, skipped, err := ParseWeekCycleICS(r, s.loc)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.WeekCycle.List(ctx)
	if err != nil {
		s.logger.Error("查询周次列表失败", zap.Error(err))
		return nil, err
	}

	// 与已有或本次已接受的周次重叠者跳过
	accepted := make([]model.WeekCycle, 0, len(cycles))
	for _, wc := range cycles {
		if overlapsAny(wc, existing) || overlapsAny(wc, accepted) {
			skipped = append(skipped, dto.ImportSkipped{
				Summary: weekCycleLabel(wc),
				Reason:  ErrWeekCycleOverlap.Error(),
			})
			continue
		}
		accepted = append(accepted, wc)
	}

	if err := s.repo.WeekCycle.BatchCreate(ctx, accepted); err != nil {
		s.logger.Error("批量创建周次失败", zap.Int("count", len(accepted)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("ICS 周次导入完成",
		zap.Int("created", len(accepted)),
		zap.Int("skipped", len(skipped)),
	)

	resp := &dto.ImportWeekCyclesResponse{
		Created: make([]dto.WeekCycleResponse, 0, len(accepted)),
		Skipped: skipped,
	}
	for i := range accepted {
		resp.Created = append(resp.Created, toWeekCycleResponse(&accepted[i]))
	}
	return resp, nil
}

func overlapsAny(wc model.WeekCycle, others []model.WeekCycle) bool {
	for _, o := range others {
		if !wc.StartDate.After(o.EndDate) && !wc.EndDate.Before(o.StartDate) {
			return true
		}
	}
	return false
}

func weekCycleLabel(wc model.WeekCycle) string {
	return fmt.Sprintf("Cycle %d Week %d (%s ~ %s)",
		wc.CycleNumber, wc.WeekNumber, model.FormatDate(wc.StartDate), model.FormatDate(wc.EndDate))
}

func toWeekCycleResponse(wc *model.WeekCycle) dto.WeekCycleResponse {
	return dto.WeekCycleResponse{
		ID:          wc.CycleID,
		CycleNumber: wc.CycleNumber,
		WeekNumber:  wc.WeekNumber,
		StartDate:   model.FormatDate(wc.StartDate),
		EndDate:     model.FormatDate(wc.EndDate),
	}
}
