package model

import "time"

// Choice 午餐选择表，对应 choices
// (student_id, choice_date) 唯一；class_id 由学生冗余而来
type Choice struct {
	ChoiceID    uint      `gorm:"primaryKey;autoIncrement"                                  json:"choice_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:uk_choices_student_date,priority:1"   json:"student_id"`
	ClassID     uint      `gorm:"not null;index:idx_choices_class_date,priority:1"          json:"class_id"`
	ChoiceDate  time.Time `gorm:"type:date;not null;uniqueIndex:uk_choices_student_date,priority:2;index:idx_choices_class_date,priority:2" json:"choice_date"`
	DayOfWeek   string    `gorm:"type:varchar(10);not null"                                 json:"day_of_week"`
	ItemID      uint      `gorm:"not null"                                                  json:"item_id"`
	WeekNumber  *int      `                                                                 json:"week_number,omitempty"`
	CycleNumber *int      `                                                                 json:"cycle_number,omitempty"`
	CreatedAt   time.Time `gorm:"not null"                                                  json:"created_at"`
}

// TableName 指定表名
func (Choice) TableName() string { return "choices" }

// ChoiceRow 选择记录与学生、菜品、班级名称的联表结果
type ChoiceRow struct {
	Choice
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ItemName  string `json:"item_name"`
	ClassName string `json:"class_name"`
}

// ItemDateCount 按菜品与日期分组的计数
type ItemDateCount struct {
	ItemName   string    `json:"item_name"`
	ChoiceDate time.Time `json:"choice_date"`
	Count      int64     `json:"count"`
}

// ItemCount 单日按菜品分组的计数
type ItemCount struct {
	ItemID   uint   `json:"item_id"`
	ItemName string `json:"item_name"`
	Count    int64  `json:"count"`
}
