package model

import "time"

// WeekCycle 周次/循环日历表，对应 week_cycles
// [start_date, end_date] 为闭区间；各行区间约定互不重叠（数据库不强制）
type WeekCycle struct {
	CycleID     uint      `gorm:"primaryKey;autoIncrement" json:"cycle_id"`
	CycleNumber int       `gorm:"not null"                 json:"cycle_number"`
	WeekNumber  int       `gorm:"not null"                 json:"week_number"`
	StartDate   time.Time `gorm:"type:date;not null"       json:"start_date"`
	EndDate     time.Time `gorm:"type:date;not null"       json:"end_date"`
}

// TableName 指定表名
func (WeekCycle) TableName() string { return "week_cycles" }

// Covers 判断日期是否落在该周次区间内（含首尾）
func (w *WeekCycle) Covers(date time.Time) bool {
	return !date.Before(w.StartDate) && !date.After(w.EndDate)
}
