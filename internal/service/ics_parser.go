package service

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将学校日历 (RFC 5545) 中的周次事件解析为 WeekCycle 列表。
//
//   - SUMMARY 形如 "Cycle 2 Week 3" 或 "C2W3"（大小写不敏感）
//   - DTSTART..DTEND 为周次区间；全天事件的 DTEND 不含当天
//   - 其余事件忽略并记入 skipped
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
)

// ErrICSParse ICS 内容无法解析
var ErrICSParse = errors.New("ICS 格式解析失败")

var weekCycleSummary = regexp.MustCompile(`(?i)^\s*(?:cycle\s*(\d+)\W*week\s*(\d+)|c(\d+)\s*w(\d+))\s*$`)

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseWeekCycleSummary 从事件标题解析循环号与周号
func ParseWeekCycleSummary(summary string) (cycle, week int, ok bool) {
	m := weekCycleSummary.FindStringSubmatch(summary)
	if m == nil {
		return 0, 0, false
	}
	c, w := m[1], m[2]
	if c == "" {
		c, w = m[3], m[4]
	}
	cycle, _ = strconv.Atoi(c)
	week, _ = strconv.Atoi(w)
	if cycle <= 0 || week <= 0 {
		return 0, 0, false
	}
	return cycle, week, true
}

// ParseWeekCycleICS 解析 ICS 内容为周次列表，按起始日排序
func ParseWeekCycleICS(reader io.Reader, loc *time.Location) ([]model.WeekCycle, []dto.ImportSkipped, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrICSParse, err)
	}

	var cycles []model.WeekCycle
	skipped := []dto.ImportSkipped{}
	for _, evt := range cal.Events() {
		wc, reason := parseWeekCycleEvent(evt, loc)
		if reason != "" {
			skipped = append(skipped, dto.ImportSkipped{Summary: eventSummary(evt), Reason: reason})
			continue
		}
		cycles = append(cycles, wc)
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].StartDate.Before(cycles[j].StartDate)
	})
	return cycles, skipped, nil
}

func eventSummary(evt *ics.VEvent) string {
	if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// parseWeekCycleEvent 解析单个 VEVENT，失败时返回跳过原因
func parseWeekCycleEvent(evt *ics.VEvent, loc *time.Location) (model.WeekCycle, string) {
	cycle, week, ok := ParseWeekCycleSummary(eventSummary(evt))
	if !ok {
		return model.WeekCycle{}, "标题不是周次格式"
	}

	start, _, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return model.WeekCycle{}, "缺少或无法解析 DTSTART"
	}
	end, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	switch {
	case err != nil:
		// 无 DTEND 视为单日事件
		end = start
	case allDay:
		end = end.AddDate(0, 0, -1)
	}

	wc := model.WeekCycle{
		CycleNumber: cycle,
		WeekNumber:  week,
		StartDate:   model.DateIn(start, loc),
		EndDate:     model.DateIn(end, loc),
	}
	if wc.EndDate.Before(wc.StartDate) {
		wc.EndDate = wc.StartDate
	}
	return wc, ""
}

// parseICSDateTime 解析 DATE 或 DATE-TIME 属性，第二个返回值表示是否为全天日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.ParseInLocation("20060102", val, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}

	// 浮动时间或带 TZID 的本地时间
	tzLoc := loc
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if l, err := time.LoadLocation(v[0]); err == nil {
				tzLoc = l
			}
		}
	}
	if t, err := time.ParseInLocation("20060102T150405", val, tzLoc); err == nil {
		return t.In(loc), false, nil
	}

	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}
