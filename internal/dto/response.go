package dto

// ── 通用响应片段 ──

// ClassBrief 班级简要信息
type ClassBrief struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StudentBrief 学生简要信息
type StudentBrief struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// MenuItemResponse 菜品信息，Days 为供应的星期标签
type MenuItemResponse struct {
	ID   uint     `json:"id"`
	Name string   `json:"name"`
	Days []string `json:"days"`
}

// ChoiceResponse 选择记录
type ChoiceResponse struct {
	ID          uint   `json:"id"`
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	ClassID     uint   `json:"class_id"`
	ClassName   string `json:"class_name,omitempty"`
	Date        string `json:"date"`
	DayOfWeek   string `json:"day_of_week"`
	ItemID      uint   `json:"item_id"`
	ItemName    string `json:"item_name"`
	WeekNumber  *int   `json:"week_number,omitempty"`
	CycleNumber *int   `json:"cycle_number,omitempty"`
}
