package repository

import (
	"context"

	"gorm.io/gorm"

	"school-lunch/backend/internal/model"
)

// ClassRepository 班级数据访问接口
type ClassRepository interface {
	List(ctx context.Context) ([]model.Class, error)
	GetByID(ctx context.Context, id uint) (*model.Class, error)
}

type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) List(ctx context.Context) ([]model.Class, error) {
	var classes []model.Class
	err := r.db.WithContext(ctx).
		Order("class_name ASC").
		Find(&classes).Error
	return classes, err
}

func (r *classRepo) GetByID(ctx context.Context, id uint) (*model.Class, error) {
	var class model.Class
	err := r.db.WithContext(ctx).
		Where("class_id = ?", id).
		First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	ListByClass(ctx context.Context, classID uint) ([]model.Student, error)
	ListByIDs(ctx context.Context, ids []uint) ([]model.Student, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) ListByClass(ctx context.Context, classID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("first_name ASC, last_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) ListByIDs(ctx context.Context, ids []uint) ([]model.Student, error) {
	if len(ids) == 0 {
		return []model.Student{}, nil
	}
	var students []model.Student
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", ids).
		Find(&students).Error
	return students, err
}

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	GetByID(ctx context.Context, id uint) (*model.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*model.Teacher, error)
}

type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) GetByID(ctx context.Context, id uint) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepo) GetByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?)", email).
		First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}
