package dto

// MenuQuery 菜品查询参数
// day 按星期过滤；date 额外按该日所属周次的供应登记过滤
type MenuQuery struct {
	Day  string `form:"day"`
	Date string `form:"date"`
}
