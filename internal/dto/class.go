package dto

// ── 班级视图 DTO ──

// ClassWeekQuery 周视图查询参数，week 为 week_start 的别名
type ClassWeekQuery struct {
	WeekStart string `form:"week_start"`
	Week      string `form:"week"`
}

// WeekDayResponse 周内单日信息
type WeekDayResponse struct {
	Label       string `json:"label"`
	Date        string `json:"date"`
	WeekNumber  *int   `json:"week_number,omitempty"`
	CycleNumber *int   `json:"cycle_number,omitempty"`
}

// ClassWeekResponse 班级周视图
type ClassWeekResponse struct {
	Class     ClassBrief         `json:"class"`
	WeekStart string             `json:"week_start"`
	WeekEnd   string             `json:"week_end"`
	Days      []WeekDayResponse  `json:"days"`
	Students  []StudentBrief     `json:"students"`
	MenuItems []MenuItemResponse `json:"menu_items"`
	Choices   []ChoiceResponse   `json:"choices"`
}

// ClassTodayResponse 班级当日视图
type ClassTodayResponse struct {
	Class     ClassBrief         `json:"class"`
	Date      string             `json:"date"`
	DayOfWeek string             `json:"day_of_week"`
	Students  []StudentBrief     `json:"students"`
	MenuItems []MenuItemResponse `json:"menu_items"`
	Choices   []ChoiceResponse   `json:"choices"`
}
