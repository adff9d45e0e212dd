package model

import (
	"strings"
	"time"
)

// Weekdays 周一至周五的标签，下标即相对周起始日的偏移量
var Weekdays = [5]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DayLabel 返回偏移量对应的星期标签；越界返回空字符串
func DayLabel(offset int) string {
	if offset < 0 || offset >= len(Weekdays) {
		return ""
	}
	return Weekdays[offset]
}

// DayOffset 将星期标签（大小写不敏感）解析为偏移量
func DayOffset(label string) (int, bool) {
	for i, d := range Weekdays {
		if strings.EqualFold(d, strings.TrimSpace(label)) {
			return i, true
		}
	}
	return 0, false
}

// Date 将时间截断为其所在日历日的 UTC 零点
// 所有 choice_date / start_date / end_date 均以此形式存储与比较
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateIn 返回 t 在 loc 时区下的日历日（UTC 零点表示）
func DateIn(t time.Time, loc *time.Location) time.Time {
	return Date(t.In(loc))
}

// DateLayout 接口层使用的日期格式
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return Date(t), nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
