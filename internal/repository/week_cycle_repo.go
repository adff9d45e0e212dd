package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"school-lunch/backend/internal/model"
)

// WeekCycleRepository 周次日历数据访问接口
type WeekCycleRepository interface {
	List(ctx context.Context) ([]model.WeekCycle, error)
	// FindCovering 返回覆盖 date 的周次；区间重叠时取 start_date 最早者，再按 cycle_id
	// 未覆盖时返回 gorm.ErrRecordNotFound
	FindCovering(ctx context.Context, date time.Time) (*model.WeekCycle, error)
	// ListOverlapping 返回与 [from, to] 有交集的所有周次，排序规则同 FindCovering
	ListOverlapping(ctx context.Context, from, to time.Time) ([]model.WeekCycle, error)
	Create(ctx context.Context, cycle *model.WeekCycle) error
	BatchCreate(ctx context.Context, cycles []model.WeekCycle) error
}

type weekCycleRepo struct {
	db *gorm.DB
}

// NewWeekCycleRepo 创建 WeekCycleRepository 实例
func NewWeekCycleRepo(db *gorm.DB) WeekCycleRepository {
	return &weekCycleRepo{db: db}
}

func (r *weekCycleRepo) List(ctx context.Context) ([]model.WeekCycle, error) {
	var cycles []model.WeekCycle
	err := r.db.WithContext(ctx).
		Order("start_date ASC, cycle_id ASC").
		Find(&cycles).Error
	return cycles, err
}

func (r *weekCycleRepo) FindCovering(ctx context.Context, date time.Time) (*model.WeekCycle, error) {
	// 未覆盖是常见情况，用 Find 避免 First 在 SQL 日志中打印 record not found
	var cycles []model.WeekCycle
	res := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", date, date).
		Order("start_date ASC, cycle_id ASC").
		Limit(1).
		Find(&cycles)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &cycles[0], nil
}

func (r *weekCycleRepo) ListOverlapping(ctx context.Context, from, to time.Time) ([]model.WeekCycle, error) {
	var cycles []model.WeekCycle
	err := r.db.WithContext(ctx).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Order("start_date ASC, cycle_id ASC").
		Find(&cycles).Error
	return cycles, err
}

func (r *weekCycleRepo) Create(ctx context.Context, cycle *model.WeekCycle) error {
	return r.db.WithContext(ctx).Create(cycle).Error
}

func (r *weekCycleRepo) BatchCreate(ctx context.Context, cycles []model.WeekCycle) error {
	if len(cycles) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&cycles).Error
}
