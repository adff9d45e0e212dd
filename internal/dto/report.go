package dto

// ── 管理员统计 DTO ──

// AdminReportQuery 统计查询参数，均为可选
// from / to 为闭区间，可单独使用
type AdminReportQuery struct {
	Date    string `form:"date"`
	From    string `form:"from"`
	To      string `form:"to"`
	ClassID *uint  `form:"class_id"`
}

// ItemDateCountResponse 按菜品与日期的计数
type ItemDateCountResponse struct {
	ItemName string `json:"item_name"`
	Date     string `json:"date"`
	Count    int64  `json:"count"`
}

// AdminReportResponse 管理员统计
type AdminReportResponse struct {
	Choices []ChoiceResponse        `json:"choices"`
	Stats   []ItemDateCountResponse `json:"stats"`
	Total   int                     `json:"total"`
}

// ItemCountResponse 单日按菜品计数
type ItemCountResponse struct {
	ItemID   uint   `json:"item_id"`
	ItemName string `json:"item_name"`
	Count    int64  `json:"count"`
}

// DailySummaryQuery 厨房汇总查询参数
type DailySummaryQuery struct {
	ClassID uint   `form:"class_id" binding:"required"`
	Date    string `form:"date"`
}

// DailySummaryResponse 厨房汇总
type DailySummaryResponse struct {
	ClassID uint                `json:"class_id"`
	Date    string              `json:"date"`
	Items   []ItemCountResponse `json:"items"`
	Total   int64               `json:"total"`
}

// ExportWeekQuery 周导出参数
type ExportWeekQuery struct {
	ClassID   uint   `form:"class_id"   binding:"required"`
	WeekStart string `form:"week_start" binding:"required"`
}
