package dto

// ── 周次日历 DTO ──

// CreateWeekCycleRequest 创建周次请求
type CreateWeekCycleRequest struct {
	CycleNumber int    `json:"cycle_number" binding:"required,min=1"`
	WeekNumber  int    `json:"week_number"  binding:"required,min=1"`
	StartDate   string `json:"start_date"   binding:"required"`
	EndDate     string `json:"end_date"     binding:"required"`
}

// WeekCycleResponse 周次信息
type WeekCycleResponse struct {
	ID          uint   `json:"id"`
	CycleNumber int    `json:"cycle_number"`
	WeekNumber  int    `json:"week_number"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// ResolveWeekResponse 日期解析结果；未覆盖时 Found=false
type ResolveWeekResponse struct {
	Date        string `json:"date"`
	Found       bool   `json:"found"`
	WeekNumber  *int   `json:"week_number,omitempty"`
	CycleNumber *int   `json:"cycle_number,omitempty"`
}

// ImportSkipped ICS 导入时被跳过的事件
type ImportSkipped struct {
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}

// ImportWeekCyclesResponse ICS 导入结果
type ImportWeekCyclesResponse struct {
	Created []WeekCycleResponse `json:"created"`
	Skipped []ImportSkipped     `json:"skipped"`
}
