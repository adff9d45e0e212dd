package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-lunch/backend/internal/model"
)

// ChoiceFilter 选择记录查询条件，nil 字段不参与过滤
type ChoiceFilter struct {
	ClassID *uint
	Date    *time.Time
	From    *time.Time
	To      *time.Time
}

// ChoiceRepository 午餐选择数据访问接口
//
// 日期参数均应为 model.Date 截断后的 UTC 零点；区间均为闭区间。
// 服务层写入只走事务化的 ReplaceScope / ReplaceStudentDay；
// Delete* 与 BulkInsert 不带事务，仅供单独清理与批量导入使用。
type ChoiceRepository interface {
	// FindByScope 查询班级在 [from, to] 内的选择，按日期、学生姓名排序
	FindByScope(ctx context.Context, classID uint, from, to time.Time) ([]model.ChoiceRow, error)
	// FindByClassAndDate 查询班级单日选择，按学生姓名排序
	FindByClassAndDate(ctx context.Context, classID uint, date time.Time) ([]model.ChoiceRow, error)
	// CountByItem 统计班级单日各菜品的选择数
	CountByItem(ctx context.Context, classID uint, date time.Time) ([]model.ItemCount, error)

	DeleteByScope(ctx context.Context, classID uint, from, to time.Time) (int64, error)
	DeleteByStudentAndDate(ctx context.Context, studentID uint, date time.Time) (int64, error)
	DeleteByClassAndDate(ctx context.Context, classID uint, date time.Time) (int64, error)
	// BulkInsert 单条语句插入，任一行违反约束则全部失败
	BulkInsert(ctx context.Context, choices []model.Choice) error

	// ReplaceScope 在同一事务中删除作用域内全部记录并插入新记录，返回删除行数
	ReplaceScope(ctx context.Context, classID uint, from, to time.Time, choices []model.Choice) (int64, error)
	// ReplaceStudentDay 以 (student_id, choice_date) 为键写入，已存在则覆盖
	ReplaceStudentDay(ctx context.Context, choice *model.Choice) error

	// AggregateByItemAndDate 按菜品与日期计数，日期倒序、计数倒序
	AggregateByItemAndDate(ctx context.Context, filter ChoiceFilter) ([]model.ItemDateCount, error)
	// List 管理员明细，日期倒序，再按班级名、学生姓名
	List(ctx context.Context, filter ChoiceFilter) ([]model.ChoiceRow, error)
}

type choiceRepo struct {
	db *gorm.DB
}

// NewChoiceRepo 创建 ChoiceRepository 实例
func NewChoiceRepo(db *gorm.DB) ChoiceRepository {
	return &choiceRepo{db: db}
}

// joined 构造带学生、菜品、班级名称的联表查询
func (r *choiceRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("choices").
		Select("choices.*, students.first_name, students.last_name, menu_items.item_name, classes.class_name").
		Joins("JOIN students ON students.student_id = choices.student_id").
		Joins("JOIN menu_items ON menu_items.item_id = choices.item_id").
		Joins("JOIN classes ON classes.class_id = choices.class_id")
}

func applyChoiceFilter(q *gorm.DB, f ChoiceFilter) *gorm.DB {
	if f.ClassID != nil {
		q = q.Where("choices.class_id = ?", *f.ClassID)
	}
	if f.Date != nil {
		q = q.Where("choices.choice_date = ?", *f.Date)
	}
	if f.From != nil {
		q = q.Where("choices.choice_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("choices.choice_date <= ?", *f.To)
	}
	return q
}

func (r *choiceRepo) FindByScope(ctx context.Context, classID uint, from, to time.Time) ([]model.ChoiceRow, error) {
	var rows []model.ChoiceRow
	err := r.joined(ctx).
		Where("choices.class_id = ? AND choices.choice_date >= ? AND choices.choice_date <= ?", classID, from, to).
		Order("choices.choice_date ASC, students.first_name ASC, students.last_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *choiceRepo) FindByClassAndDate(ctx context.Context, classID uint, date time.Time) ([]model.ChoiceRow, error) {
	var rows []model.ChoiceRow
	err := r.joined(ctx).
		Where("choices.class_id = ? AND choices.choice_date = ?", classID, date).
		Order("students.first_name ASC, students.last_name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *choiceRepo) CountByItem(ctx context.Context, classID uint, date time.Time) ([]model.ItemCount, error) {
	var counts []model.ItemCount
	err := r.db.WithContext(ctx).
		Table("choices").
		Select("choices.item_id, menu_items.item_name, COUNT(*) AS count").
		Joins("JOIN menu_items ON menu_items.item_id = choices.item_id").
		Where("choices.class_id = ? AND choices.choice_date = ?", classID, date).
		Group("choices.item_id, menu_items.item_name").
		Order("COUNT(*) DESC, menu_items.item_name ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *choiceRepo) DeleteByScope(ctx context.Context, classID uint, from, to time.Time) (int64, error) {
	return deleteScope(r.db.WithContext(ctx), classID, from, to)
}

func deleteScope(db *gorm.DB, classID uint, from, to time.Time) (int64, error) {
	res := db.Where("class_id = ? AND choice_date >= ? AND choice_date <= ?", classID, from, to).
		Delete(&model.Choice{})
	return res.RowsAffected, res.Error
}

func (r *choiceRepo) DeleteByStudentAndDate(ctx context.Context, studentID uint, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("student_id = ? AND choice_date = ?", studentID, date).
		Delete(&model.Choice{})
	return res.RowsAffected, res.Error
}

func (r *choiceRepo) DeleteByClassAndDate(ctx context.Context, classID uint, date time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("class_id = ? AND choice_date = ?", classID, date).
		Delete(&model.Choice{})
	return res.RowsAffected, res.Error
}

func (r *choiceRepo) BulkInsert(ctx context.Context, choices []model.Choice) error {
	if len(choices) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&choices).Error
}

func (r *choiceRepo) ReplaceScope(ctx context.Context, classID uint, from, to time.Time, choices []model.Choice) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := deleteScope(tx, classID, from, to)
		if err != nil {
			return err
		}
		deleted = n
		if len(choices) == 0 {
			return nil
		}
		return tx.Create(&choices).Error
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *choiceRepo) ReplaceStudentDay(ctx context.Context, choice *model.Choice) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}, {Name: "choice_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"class_id", "day_of_week", "item_id", "week_number", "cycle_number", "created_at",
			}),
		}).
		Create(choice).Error
}

func (r *choiceRepo) AggregateByItemAndDate(ctx context.Context, filter ChoiceFilter) ([]model.ItemDateCount, error) {
	var counts []model.ItemDateCount
	q := r.db.WithContext(ctx).
		Table("choices").
		Select("menu_items.item_name, choices.choice_date, COUNT(*) AS count").
		Joins("JOIN menu_items ON menu_items.item_id = choices.item_id")
	err := applyChoiceFilter(q, filter).
		Group("menu_items.item_name, choices.choice_date").
		Order("choices.choice_date DESC, COUNT(*) DESC, menu_items.item_name ASC").
		Scan(&counts).Error
	return counts, err
}

func (r *choiceRepo) List(ctx context.Context, filter ChoiceFilter) ([]model.ChoiceRow, error) {
	var rows []model.ChoiceRow
	err := applyChoiceFilter(r.joined(ctx), filter).
		Order("choices.choice_date DESC, classes.class_name ASC, students.first_name ASC, students.last_name ASC").
		Scan(&rows).Error
	return rows, err
}
