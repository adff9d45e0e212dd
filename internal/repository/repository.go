package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Class     ClassRepository
	Student   StudentRepository
	Teacher   TeacherRepository
	MenuItem  MenuItemRepository
	WeekCycle WeekCycleRepository
	Choice    ChoiceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:        db,
		Class:     NewClassRepo(db),
		Student:   NewStudentRepo(db),
		Teacher:   NewTeacherRepo(db),
		MenuItem:  NewMenuItemRepo(db),
		WeekCycle: NewWeekCycleRepo(db),
		Choice:    NewChoiceRepo(db),
	}
}

// BeginTx 开启事务，调用方负责 Commit / Rollback
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在作用域事务中执行 fn：fn 返回错误或 panic 时回滚，否则提交
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
