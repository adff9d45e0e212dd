package repository

import (
	"context"

	"gorm.io/gorm"

	"school-lunch/backend/internal/model"
)

// MenuItemRepository 菜品数据访问接口（对业务层只读）
type MenuItemRepository interface {
	List(ctx context.Context) ([]model.MenuItem, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.MenuItem, error)
	// ListAvailableItemIDs 返回指定周次/循环登记供应的菜品 ID；无登记时返回空切片
	ListAvailableItemIDs(ctx context.Context, weekNumber, cycleNumber int) ([]uint, error)
}

type menuItemRepo struct {
	db *gorm.DB
}

// NewMenuItemRepo 创建 MenuItemRepository 实例
func NewMenuItemRepo(db *gorm.DB) MenuItemRepository {
	return &menuItemRepo{db: db}
}

func (r *menuItemRepo) List(ctx context.Context) ([]model.MenuItem, error) {
	var items []model.MenuItem
	err := r.db.WithContext(ctx).
		Order("item_name ASC").
		Find(&items).Error
	return items, err
}

func (r *menuItemRepo) ListByIDs(ctx context.Context, ids []uint) ([]model.MenuItem, error) {
	if len(ids) == 0 {
		return []model.MenuItem{}, nil
	}
	var items []model.MenuItem
	err := r.db.WithContext(ctx).
		Where("item_id IN ?", ids).
		Find(&items).Error
	return items, err
}

func (r *menuItemRepo) ListAvailableItemIDs(ctx context.Context, weekNumber, cycleNumber int) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&model.MenuAvailability{}).
		Where("week_number = ? AND cycle_number = ?", weekNumber, cycleNumber).
		Distinct().
		Order("item_id ASC").
		Pluck("item_id", &ids).Error
	return ids, err
}
