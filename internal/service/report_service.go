package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/repository"
	pkgerrors "school-lunch/backend/pkg/errors"
	"school-lunch/backend/pkg/metrics"
	"school-lunch/backend/pkg/redis"
)

// ReportCache 报表缓存，由 pkg/redis.Client 实现
type ReportCache interface {
	ReportVersion(ctx context.Context) (int64, error)
	BumpReportVersion(ctx context.Context) error
	GetCached(ctx context.Context, key string) ([]byte, bool, error)
	SetCached(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// invalidateReports 写操作后使报表缓存失效，失败只记录日志
func invalidateReports(ctx context.Context, cache ReportCache, logger *zap.Logger) {
	if cache == nil {
		return
	}
	if err := cache.BumpReportVersion(ctx); err != nil {
		logger.Warn("报表缓存失效失败", zap.Error(err))
	}
}

// ReportFilter 管理员统计过滤条件
type ReportFilter struct {
	Date    *time.Time
	From    *time.Time
	To      *time.Time
	ClassID *uint
}

// ReportService 管理员统计业务接口
type ReportService interface {
	AdminReport(ctx context.Context, filter ReportFilter) (*dto.AdminReportResponse, error)
	// DailySummary 单个班级单日各菜品数量，date 为 nil 时取今天
	DailySummary(ctx context.Context, classID uint, date *time.Time) (*dto.DailySummaryResponse, error)
}

type reportService struct {
	repo   *repository.Repository
	cache  ReportCache
	ttl    time.Duration
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例；cache 为 nil 或 ttl<=0 时不缓存
func NewReportService(
	repo *repository.Repository,
	cache ReportCache,
	ttl time.Duration,
	loc *time.Location,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

func (s *reportService) AdminReport(ctx context.Context, filter ReportFilter) (*dto.AdminReportResponse, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, pkgerrors.ErrInvalidDateRange
	}

	var resp dto.AdminReportResponse
	key, cacheable := s.cacheKey(ctx, "admin",
		optDate(filter.Date), optDate(filter.From), optDate(filter.To), optUint(filter.ClassID))
	if cacheable && s.loadCached(ctx, key, &resp) {
		return &resp, nil
	}

	f := repository.ChoiceFilter{
		ClassID: filter.ClassID,
		Date:    truncDate(filter.Date),
		From:    truncDate(filter.From),
		To:      truncDate(filter.To),
	}

	rows, err := s.repo.Choice.List(ctx, f)
	if err != nil {
		s.logger.Error("查询选择明细失败", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.Choice.AggregateByItemAndDate(ctx, f)
	if err != nil {
		s.logger.Error("统计选择数量失败", zap.Error(err))
		return nil, err
	}

	resp = dto.AdminReportResponse{
		Choices: make([]dto.ChoiceResponse, 0, len(rows)),
		Stats:   make([]dto.ItemDateCountResponse, 0, len(counts)),
		Total:   len(rows),
	}
	for i := range rows {
		resp.Choices = append(resp.Choices, toChoiceResponse(&rows[i]))
	}
	for _, c := range counts {
		resp.Stats = append(resp.Stats, dto.ItemDateCountResponse{
			ItemName: c.ItemName,
			Date:     model.FormatDate(c.ChoiceDate),
			Count:    c.Count,
		})
	}

	if cacheable {
		s.storeCached(ctx, key, &resp)
	}
	return &resp, nil
}

func (s *reportService) DailySummary(ctx context.Context, classID uint, date *time.Time) (*dto.DailySummaryResponse, error) {
	day := model.DateIn(s.now(), s.loc)
	if date != nil {
		day = model.Date(*date)
	}

	if _, err := s.repo.Class.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, err
	}

	var resp dto.DailySummaryResponse
	key, cacheable := s.cacheKey(ctx, "daily", model.FormatDate(day), strconv.FormatUint(uint64(classID), 10))
	if cacheable && s.loadCached(ctx, key, &resp) {
		return &resp, nil
	}

	counts, err := s.repo.Choice.CountByItem(ctx, classID, day)
	if err != nil {
		s.logger.Error("统计当日菜品失败",
			zap.Uint("class_id", classID),
			zap.String("date", model.FormatDate(day)),
			zap.Error(err),
		)
		return nil, err
	}

	resp = dto.DailySummaryResponse{
		ClassID: classID,
		Date:    model.FormatDate(day),
		Items:   make([]dto.ItemCountResponse, 0, len(counts)),
	}
	for _, c := range counts {
		resp.Items = append(resp.Items, dto.ItemCountResponse{ItemID: c.ItemID, ItemName: c.ItemName, Count: c.Count})
		resp.Total += c.Count
	}

	if cacheable {
		s.storeCached(ctx, key, &resp)
	}
	return &resp, nil
}

// cacheKey 以当前版本号生成缓存键；未启用缓存或读取版本失败时返回 false
func (s *reportService) cacheKey(ctx context.Context, parts ...string) (string, bool) {
	if s.cache == nil || s.ttl <= 0 {
		return "", false
	}
	version, err := s.cache.ReportVersion(ctx)
	if err != nil {
		metrics.ReportCache.WithLabelValues("error").Inc()
		s.logger.Warn("读取报表缓存版本失败", zap.Error(err))
		return "", false
	}
	return redis.ReportKey(version, parts...), true
}

// loadCached 命中时反序列化到 dst 并返回 true；缓存异常按未命中处理
func (s *reportService) loadCached(ctx context.Context, key string, dst interface{}) bool {
	b, hit, err := s.cache.GetCached(ctx, key)
	if err != nil {
		metrics.ReportCache.WithLabelValues("error").Inc()
		s.logger.Warn("读取报表缓存失败", zap.String("key", key), zap.Error(err))
		return false
	}
	if !hit || json.Unmarshal(b, dst) != nil {
		metrics.ReportCache.WithLabelValues("miss").Inc()
		return false
	}
	metrics.ReportCache.WithLabelValues("hit").Inc()
	return true
}

func (s *reportService) storeCached(ctx context.Context, key string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.SetCached(ctx, key, b, s.ttl); err != nil {
		s.logger.Warn("写入报表缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func optDate(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return model.FormatDate(*t)
}

func truncDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := model.Date(*t)
	return &d
}

func optUint(v *uint) string {
	if v == nil {
		return "all"
	}
	return strconv.FormatUint(uint64(*v), 10)
}

func toChoiceResponse(r *model.ChoiceRow) dto.ChoiceResponse {
	return dto.ChoiceResponse{
		ID:          r.ChoiceID,
		StudentID:   r.StudentID,
		StudentName: r.FirstName + " " + r.LastName,
		ClassID:     r.ClassID,
		ClassName:   r.ClassName,
		Date:        model.FormatDate(r.ChoiceDate),
		DayOfWeek:   r.DayOfWeek,
		ItemID:      r.ItemID,
		ItemName:    r.ItemName,
		WeekNumber:  r.WeekNumber,
		CycleNumber: r.CycleNumber,
	}
}
