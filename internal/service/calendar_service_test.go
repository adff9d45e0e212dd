package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"school-lunch/backend/internal/dto"
	"school-lunch/backend/internal/model"
	pkgerrors "school-lunch/backend/pkg/errors"
)

func setupTestCalendarService() (CalendarService, *testRepos) {
	r := newTestRepos()
	return NewCalendarService(r.repo, time.UTC, zap.NewNop()), r
}

func TestCalendarService_Resolve(t *testing.T) {
	svc, r := setupTestCalendarService()
	r.cycles.cycles = []model.WeekCycle{
		{CycleID: 1, CycleNumber: 1, WeekNumber: 1, StartDate: ymd(2024, 1, 1), EndDate: ymd(2024, 1, 5)},
	}
	ctx := context.Background()

	tag, err := svc.Resolve(ctx, time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Resolve 应成功: %v", err)
	}
	if tag == nil || tag.WeekNumber != 1 || tag.CycleNumber != 1 {
		t.Errorf("期望 week=1 cycle=1，实际 %+v", tag)
	}

	tag, err = svc.Resolve(ctx, ymd(2024, 1, 6))
	if err != nil || tag != nil {
		t.Errorf("未覆盖的日期应返回 (nil, nil)，实际 %+v, %v", tag, err)
	}

	r.cycles.err = errors.New("db down")
	if _, err := svc.Resolve(ctx, ymd(2024, 1, 2)); err == nil {
		t.Error("仓储错误应向上返回")
	}
}

func TestCalendarService_ResolveRange(t *testing.T) {
	svc, r := setupTestCalendarService()
	r.cycles.cycles = []model.WeekCycle{
		{CycleID: 1, CycleNumber: 1, WeekNumber: 1, StartDate: ymd(2024, 1, 1), EndDate: ymd(2024, 1, 2)},
		{CycleID: 2, CycleNumber: 1, WeekNumber: 2, StartDate: ymd(2024, 1, 4), EndDate: ymd(2024, 1, 10)},
	}

	tags, err := svc.ResolveRange(context.Background(), ymd(2024, 1, 1), ymd(2024, 1, 5))
	if err != nil {
		t.Fatalf("ResolveRange 应成功: %v", err)
	}
	if len(tags) != 5 {
		t.Fatalf("期望 5 天，实际 %d", len(tags))
	}
	wantWeeks := []int{1, 1, 0, 2, 2}
	for i, w := range wantWeeks {
		switch {
		case w == 0 && tags[i] != nil:
			t.Errorf("第 %d 天不应有周次", i)
		case w != 0 && (tags[i] == nil || tags[i].WeekNumber != w):
			t.Errorf("第 %d 天期望 week=%d，实际 %+v", i, w, tags[i])
		}
	}

	if _, err := svc.ResolveRange(context.Background(), ymd(2024, 1, 5), ymd(2024, 1, 1)); !errors.Is(err, pkgerrors.ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}
}

func TestCalendarService_Create(t *testing.T) {
	svc, r := setupTestCalendarService()
	ctx := context.Background()

	resp, err := svc.Create(ctx, &dto.CreateWeekCycleRequest{
		CycleNumber: 1, WeekNumber: 1, StartDate: "2024-01-01", EndDate: "2024-01-05",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.ID == 0 || resp.StartDate != "2024-01-01" || resp.EndDate != "2024-01-05" {
		t.Errorf("返回结果不符: %+v", resp)
	}

	_, err = svc.Create(ctx, &dto.CreateWeekCycleRequest{
		CycleNumber: 1, WeekNumber: 2, StartDate: "2024-01-05", EndDate: "2024-01-09",
	})
	if !errors.Is(err, ErrWeekCycleOverlap) {
		t.Errorf("期望 ErrWeekCycleOverlap，实际: %v", err)
	}

	_, err = svc.Create(ctx, &dto.CreateWeekCycleRequest{
		CycleNumber: 1, WeekNumber: 2, StartDate: "2024-01-12", EndDate: "2024-01-08",
	})
	if !errors.Is(err, pkgerrors.ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际: %v", err)
	}

	_, err = svc.Create(ctx, &dto.CreateWeekCycleRequest{
		CycleNumber: 1, WeekNumber: 2, StartDate: "2024/01/08", EndDate: "2024-01-12",
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}

	if len(r.cycles.cycles) != 1 {
		t.Errorf("仅应创建 1 个周次，实际 %d", len(r.cycles.cycles))
	}
}

func TestCalendarService_CurrentWeek(t *testing.T) {
	svc, _ := setupTestCalendarService()

	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC), ymd(2024, 1, 1)},  // 周三
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ymd(2024, 1, 1)},   // 周一
		{time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC), ymd(2024, 1, 1)}, // 周日
	}
	for _, tc := range cases {
		if got := svc.CurrentWeek(tc.now); !got.Equal(tc.want) {
			t.Errorf("CurrentWeek(%s) 期望 %s，实际 %s", tc.now, model.FormatDate(tc.want), model.FormatDate(got))
		}
	}
}

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//School//Calendar//EN
BEGIN:VEVENT
UID:1@school
DTSTAMP:20231201T000000Z
DTSTART;VALUE=DATE:20240108
DTEND;VALUE=DATE:20240113
SUMMARY:Cycle 1 Week 2
END:VEVENT
BEGIN:VEVENT
UID:2@school
DTSTAMP:20231201T000000Z
DTSTART;VALUE=DATE:20240101
DTEND;VALUE=DATE:20240106
SUMMARY:c1w1
END:VEVENT
BEGIN:VEVENT
UID:3@school
DTSTAMP:20231201T000000Z
DTSTART;VALUE=DATE:20240110
DTEND;VALUE=DATE:20240111
SUMMARY:Sports Day
END:VEVENT
BEGIN:VEVENT
UID:4@school
DTSTAMP:20231201T000000Z
DTSTART;VALUE=DATE:20240111
DTEND;VALUE=DATE:20240120
SUMMARY:Cycle 1 Week 3
END:VEVENT
END:VCALENDAR
`

func TestParseWeekCycleICS(t *testing.T) {
	cycles, skipped, err := ParseWeekCycleICS(strings.NewReader(sampleICS), time.UTC)
	if err != nil {
		t.Fatalf("ParseWeekCycleICS 应成功: %v", err)
	}
	if len(cycles) != 3 {
		t.Fatalf("期望解析 3 个周次，实际 %d", len(cycles))
	}
	first := cycles[0]
	if first.WeekNumber != 1 || !first.StartDate.Equal(ymd(2024, 1, 1)) || !first.EndDate.Equal(ymd(2024, 1, 5)) {
		t.Errorf("第一个周次不符（全天事件 DTEND 不含当天）: %+v", first)
	}
	if len(skipped) != 1 || skipped[0].Summary != "Sports Day" {
		t.Errorf("非周次事件应被跳过: %+v", skipped)
	}
}

func TestParseWeekCycleSummary(t *testing.T) {
	cases := []struct {
		in          string
		cycle, week int
		ok          bool
	}{
		{"Cycle 2 Week 3", 2, 3, true},
		{"cycle 1, week 4", 1, 4, true},
		{"C3W1", 3, 1, true},
		{" c10 w2 ", 10, 2, true},
		{"Week 3", 0, 0, false},
		{"Cycle 0 Week 1", 0, 0, false},
	}
	for _, tc := range cases {
		c, w, ok := ParseWeekCycleSummary(tc.in)
		if ok != tc.ok || c != tc.cycle || w != tc.week {
			t.Errorf("ParseWeekCycleSummary(%q) = (%d, %d, %v)，期望 (%d, %d, %v)", tc.in, c, w, ok, tc.cycle, tc.week, tc.ok)
		}
	}
}

func TestCalendarService_ImportICS(t *testing.T) {
	svc, r := setupTestCalendarService()
	// 已存在的周次与 "Cycle 1 Week 3" 重叠
	r.cycles.cycles = []model.WeekCycle{
		{CycleID: 1, CycleNumber: 9, WeekNumber: 9, StartDate: ymd(2024, 1, 15), EndDate: ymd(2024, 1, 19)},
	}

	resp, err := svc.ImportICS(context.Background(), strings.NewReader(sampleICS))
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	// Week 1 与 Week 2 创建；Week 3 与已有周次重叠，Sports Day 非周次
	if len(resp.Created) != 2 {
		t.Errorf("期望创建 2 个周次，实际 %d", len(resp.Created))
	}
	if len(resp.Skipped) != 2 {
		t.Errorf("期望跳过 2 个事件，实际 %+v", resp.Skipped)
	}
	if len(r.cycles.cycles) != 3 {
		t.Errorf("期望共 3 个周次，实际 %d", len(r.cycles.cycles))
	}
}

func TestCalendarService_ImportICS_Malformed(t *testing.T) {
	svc, _ := setupTestCalendarService()
	if _, err := svc.ImportICS(context.Background(), strings.NewReader("BEGIN:VCALENDAR\nVERSION:2.0\n")); err == nil {
		t.Error("缺少 END:VCALENDAR 的内容应返回错误")
	}
}
