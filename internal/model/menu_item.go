package model

import "time"

// MenuItem 菜品表，对应 menu_items
// 五个布尔字段表示周一至周五是否供应
type MenuItem struct {
	ItemID    uint   `gorm:"primaryKey;autoIncrement"          json:"item_id"`
	ItemName  string `gorm:"type:varchar(100);not null;unique" json:"item_name"`
	Monday    bool   `gorm:"not null;default:false"            json:"monday"`
	Tuesday   bool   `gorm:"not null;default:false"            json:"tuesday"`
	Wednesday bool   `gorm:"not null;default:false"            json:"wednesday"`
	Thursday  bool   `gorm:"not null;default:false"            json:"thursday"`
	Friday    bool   `gorm:"not null;default:false"            json:"friday"`
}

// TableName 指定表名
func (MenuItem) TableName() string { return "menu_items" }

// AvailableOn 判断菜品在指定星期是否供应；周末一律不供应
func (m *MenuItem) AvailableOn(wd time.Weekday) bool {
	switch wd {
	case time.Monday:
		return m.Monday
	case time.Tuesday:
		return m.Tuesday
	case time.Wednesday:
		return m.Wednesday
	case time.Thursday:
		return m.Thursday
	case time.Friday:
		return m.Friday
	}
	return false
}

// MenuAvailability 菜品按周次/循环的供应记录，对应 menu_availability
type MenuAvailability struct {
	AvailabilityID uint `gorm:"primaryKey;autoIncrement" json:"availability_id"`
	ItemID         uint `gorm:"not null;index"           json:"item_id"`
	WeekNumber     int  `gorm:"not null"                 json:"week_number"`
	CycleNumber    int  `gorm:"not null"                 json:"cycle_number"`
}

// TableName 指定表名
func (MenuAvailability) TableName() string { return "menu_availability" }
