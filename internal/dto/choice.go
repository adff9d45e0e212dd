package dto

// ── 午餐选择 DTO ──

// SelectionInput 周提交中的单条选择，Day 为 Monday..Friday
type SelectionInput struct {
	StudentID uint   `json:"student_id" binding:"required"`
	Day       string `json:"day"        binding:"required"`
	ItemID    uint   `json:"item_id"`
}

// SubmitWeekRequest 周提交请求；selections 为空表示清空整周
type SubmitWeekRequest struct {
	WeekStart  string           `json:"week_start" binding:"required"`
	Selections []SelectionInput `json:"selections" binding:"dive"`
}

// RejectedSelection 被拒绝的提交条目
type RejectedSelection struct {
	StudentID uint   `json:"student_id"`
	Day       string `json:"day"`
	ItemID    uint   `json:"item_id"`
	Reason    string `json:"reason"`
}

// SubmitWeekResponse 周提交结果
type SubmitWeekResponse struct {
	WeekStart string              `json:"week_start"`
	WeekEnd   string              `json:"week_end"`
	Saved     int                 `json:"saved"`
	Deleted   int64               `json:"deleted"`
	Rejected  []RejectedSelection `json:"rejected"`
	Errors    []string            `json:"errors"`
}

// DailyEntry 单日提交条目；item_id 为 0 的条目视为未选择并跳过
type DailyEntry struct {
	StudentID uint `json:"student_id" binding:"required"`
	ItemID    uint `json:"item_id"`
}

// SaveDailyRequest 单日提交请求
type SaveDailyRequest struct {
	Choices []DailyEntry `json:"choices" binding:"dive"`
}

// SaveDailyResponse 单日提交结果
type SaveDailyResponse struct {
	Date   string   `json:"date"`
	Saved  int      `json:"saved"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"`
}

// ClearTodayResponse 清空当日结果
type ClearTodayResponse struct {
	Date    string `json:"date"`
	Deleted int64  `json:"deleted"`
}
