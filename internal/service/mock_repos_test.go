package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/repository"
)

// ── Mock ClassRepository ──

type mockClassRepo struct {
	classes map[uint]*model.Class
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[uint]*model.Class)}
}

func (m *mockClassRepo) List(_ context.Context) ([]model.Class, error) {
	var result []model.Class
	for _, c := range m.classes {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ClassName < result[j].ClassName })
	return result, nil
}

func (m *mockClassRepo) GetByID(_ context.Context, id uint) (*model.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[uint]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[uint]*model.Student)}
}

func (m *mockStudentRepo) ListByClass(_ context.Context, classID uint) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		if s.ClassID == classID {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName() < result[j].FullName() })
	return result, nil
}

func (m *mockStudentRepo) ListByIDs(_ context.Context, ids []uint) ([]model.Student, error) {
	var result []model.Student
	for _, id := range ids {
		if s, ok := m.students[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers map[uint]*model.Teacher
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[uint]*model.Teacher)}
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id uint) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByEmail(_ context.Context, email string) (*model.Teacher, error) {
	for _, t := range m.teachers {
		if strings.EqualFold(t.Email, email) {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock MenuItemRepository ──

type mockMenuItemRepo struct {
	items        map[uint]*model.MenuItem
	availability []model.MenuAvailability
}

func newMockMenuItemRepo() *mockMenuItemRepo {
	return &mockMenuItemRepo{items: make(map[uint]*model.MenuItem)}
}

func (m *mockMenuItemRepo) List(_ context.Context) ([]model.MenuItem, error) {
	var result []model.MenuItem
	for _, it := range m.items {
		result = append(result, *it)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ItemName < result[j].ItemName })
	return result, nil
}

func (m *mockMenuItemRepo) ListByIDs(_ context.Context, ids []uint) ([]model.MenuItem, error) {
	var result []model.MenuItem
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			result = append(result, *it)
		}
	}
	return result, nil
}

func (m *mockMenuItemRepo) ListAvailableItemIDs(_ context.Context, weekNumber, cycleNumber int) ([]uint, error) {
	var ids []uint
	for _, a := range m.availability {
		if a.WeekNumber == weekNumber && a.CycleNumber == cycleNumber {
			ids = append(ids, a.ItemID)
		}
	}
	return ids, nil
}

// ── Mock WeekCycleRepository ──

type mockWeekCycleRepo struct {
	cycles []model.WeekCycle
	err    error
}

func newMockWeekCycleRepo() *mockWeekCycleRepo {
	return &mockWeekCycleRepo{}
}

func (m *mockWeekCycleRepo) sorted() []model.WeekCycle {
	result := append([]model.WeekCycle(nil), m.cycles...)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.Before(result[j].StartDate)
		}
		return result[i].CycleID < result[j].CycleID
	})
	return result
}

func (m *mockWeekCycleRepo) List(_ context.Context) ([]model.WeekCycle, error) {
	return m.sorted(), m.err
}

func (m *mockWeekCycleRepo) FindCovering(_ context.Context, date time.Time) (*model.WeekCycle, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, wc := range m.sorted() {
		if wc.Covers(date) {
			return &wc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeekCycleRepo) ListOverlapping(_ context.Context, from, to time.Time) ([]model.WeekCycle, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.WeekCycle
	for _, wc := range m.sorted() {
		if !wc.StartDate.After(to) && !wc.EndDate.Before(from) {
			result = append(result, wc)
		}
	}
	return result, nil
}

func (m *mockWeekCycleRepo) Create(_ context.Context, cycle *model.WeekCycle) error {
	cycle.CycleID = uint(len(m.cycles) + 1)
	m.cycles = append(m.cycles, *cycle)
	return nil
}

func (m *mockWeekCycleRepo) BatchCreate(ctx context.Context, cycles []model.WeekCycle) error {
	for i := range cycles {
		_ = m.Create(ctx, &cycles[i])
	}
	return nil
}

// ── Mock ChoiceRepository ──
// 以切片模拟 choices 表，写操作失败时不修改数据以模拟事务回滚

type mockChoiceRepo struct {
	choices  []model.Choice
	nextID   uint
	classes  *mockClassRepo
	students *mockStudentRepo
	items    *mockMenuItemRepo

	failWrites error // 非 nil 时所有写操作返回该错误
}

func newMockChoiceRepo(classes *mockClassRepo, students *mockStudentRepo, items *mockMenuItemRepo) *mockChoiceRepo {
	return &mockChoiceRepo{classes: classes, students: students, items: items}
}

func (m *mockChoiceRepo) row(c model.Choice) model.ChoiceRow {
	r := model.ChoiceRow{Choice: c}
	if s, ok := m.students.students[c.StudentID]; ok {
		r.FirstName, r.LastName = s.FirstName, s.LastName
	}
	if it, ok := m.items.items[c.ItemID]; ok {
		r.ItemName = it.ItemName
	}
	if cl, ok := m.classes.classes[c.ClassID]; ok {
		r.ClassName = cl.ClassName
	}
	return r
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

func (m *mockChoiceRepo) FindByScope(_ context.Context, classID uint, from, to time.Time) ([]model.ChoiceRow, error) {
	var rows []model.ChoiceRow
	for _, c := range m.choices {
		if c.ClassID == classID && inRange(c.ChoiceDate, from, to) {
			rows = append(rows, m.row(c))
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].ChoiceDate.Equal(rows[j].ChoiceDate) {
			return rows[i].ChoiceDate.Before(rows[j].ChoiceDate)
		}
		return rows[i].FirstName+rows[i].LastName < rows[j].FirstName+rows[j].LastName
	})
	return rows, nil
}

func (m *mockChoiceRepo) FindByClassAndDate(ctx context.Context, classID uint, date time.Time) ([]model.ChoiceRow, error) {
	return m.FindByScope(ctx, classID, date, date)
}

func (m *mockChoiceRepo) CountByItem(_ context.Context, classID uint, date time.Time) ([]model.ItemCount, error) {
	counts := make(map[uint]int64)
	for _, c := range m.choices {
		if c.ClassID == classID && c.ChoiceDate.Equal(date) {
			counts[c.ItemID]++
		}
	}
	var result []model.ItemCount
	for id, n := range counts {
		result = append(result, model.ItemCount{ItemID: id, ItemName: m.items.items[id].ItemName, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].ItemName < result[j].ItemName
	})
	return result, nil
}

func (m *mockChoiceRepo) deleteWhere(match func(c model.Choice) bool) int64 {
	kept := m.choices[:0]
	var n int64
	for _, c := range m.choices {
		if match(c) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.choices = kept
	return n
}

func (m *mockChoiceRepo) DeleteByScope(_ context.Context, classID uint, from, to time.Time) (int64, error) {
	if m.failWrites != nil {
		return 0, m.failWrites
	}
	return m.deleteWhere(func(c model.Choice) bool {
		return c.ClassID == classID && inRange(c.ChoiceDate, from, to)
	}), nil
}

func (m *mockChoiceRepo) DeleteByStudentAndDate(_ context.Context, studentID uint, date time.Time) (int64, error) {
	if m.failWrites != nil {
		return 0, m.failWrites
	}
	return m.deleteWhere(func(c model.Choice) bool {
		return c.StudentID == studentID && c.ChoiceDate.Equal(date)
	}), nil
}

func (m *mockChoiceRepo) DeleteByClassAndDate(_ context.Context, classID uint, date time.Time) (int64, error) {
	if m.failWrites != nil {
		return 0, m.failWrites
	}
	return m.deleteWhere(func(c model.Choice) bool {
		return c.ClassID == classID && c.ChoiceDate.Equal(date)
	}), nil
}

// checkUnique 模拟 uk_choices_student_date
func checkUnique(existing, incoming []model.Choice) error {
	seen := make(map[string]bool)
	for _, c := range append(append([]model.Choice(nil), existing...), incoming...) {
		key := fmt.Sprintf("%d:%s", c.StudentID, model.FormatDate(c.ChoiceDate))
		if seen[key] {
			return errors.New("UNIQUE constraint failed: choices.student_id, choices.choice_date")
		}
		seen[key] = true
	}
	return nil
}

func (m *mockChoiceRepo) insert(choices []model.Choice) {
	for _, c := range choices {
		m.nextID++
		c.ChoiceID = m.nextID
		m.choices = append(m.choices, c)
	}
}

func (m *mockChoiceRepo) BulkInsert(_ context.Context, choices []model.Choice) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	if err := checkUnique(m.choices, choices); err != nil {
		return err
	}
	m.insert(choices)
	return nil
}

func (m *mockChoiceRepo) ReplaceScope(_ context.Context, classID uint, from, to time.Time, choices []model.Choice) (int64, error) {
	if m.failWrites != nil {
		return 0, m.failWrites
	}
	var remaining []model.Choice
	var deleted int64
	for _, c := range m.choices {
		if c.ClassID == classID && inRange(c.ChoiceDate, from, to) {
			deleted++
			continue
		}
		remaining = append(remaining, c)
	}
	if err := checkUnique(remaining, choices); err != nil {
		return 0, err
	}
	m.choices = remaining
	m.insert(choices)
	return deleted, nil
}

func (m *mockChoiceRepo) ReplaceStudentDay(_ context.Context, choice *model.Choice) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	m.deleteWhere(func(c model.Choice) bool {
		return c.StudentID == choice.StudentID && c.ChoiceDate.Equal(choice.ChoiceDate)
	})
	m.insert([]model.Choice{*choice})
	return nil
}

func (m *mockChoiceRepo) filtered(f repository.ChoiceFilter) []model.Choice {
	var result []model.Choice
	for _, c := range m.choices {
		if f.ClassID != nil && c.ClassID != *f.ClassID {
			continue
		}
		if f.Date != nil && !c.ChoiceDate.Equal(*f.Date) {
			continue
		}
		if f.From != nil && c.ChoiceDate.Before(*f.From) {
			continue
		}
		if f.To != nil && c.ChoiceDate.After(*f.To) {
			continue
		}
		result = append(result, c)
	}
	return result
}

func (m *mockChoiceRepo) AggregateByItemAndDate(_ context.Context, f repository.ChoiceFilter) ([]model.ItemDateCount, error) {
	counts := make(map[string]*model.ItemDateCount)
	for _, c := range m.filtered(f) {
		name := m.items.items[c.ItemID].ItemName
		key := name + "|" + model.FormatDate(c.ChoiceDate)
		if counts[key] == nil {
			counts[key] = &model.ItemDateCount{ItemName: name, ChoiceDate: c.ChoiceDate}
		}
		counts[key].Count++
	}
	var result []model.ItemDateCount
	for _, v := range counts {
		result = append(result, *v)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.ChoiceDate.Equal(b.ChoiceDate) {
			return a.ChoiceDate.After(b.ChoiceDate)
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.ItemName < b.ItemName
	})
	return result, nil
}

func (m *mockChoiceRepo) List(_ context.Context, f repository.ChoiceFilter) ([]model.ChoiceRow, error) {
	var rows []model.ChoiceRow
	for _, c := range m.filtered(f) {
		rows = append(rows, m.row(c))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.ChoiceDate.Equal(b.ChoiceDate) {
			return a.ChoiceDate.After(b.ChoiceDate)
		}
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		return a.FirstName+a.LastName < b.FirstName+b.LastName
	})
	return rows, nil
}

// ── Mock ReportCache / TokenBlacklist ──

type mockCache struct {
	version int64
	data    map[string][]byte
	gets    int
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) ReportVersion(_ context.Context) (int64, error) { return m.version, nil }

func (m *mockCache) BumpReportVersion(_ context.Context) error {
	m.version++
	return nil
}

func (m *mockCache) GetCached(_ context.Context, key string) ([]byte, bool, error) {
	m.gets++
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *mockCache) SetCached(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	m.data[key] = value
	return nil
}

type mockBlacklist struct {
	tokens map[string]time.Duration
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.tokens == nil {
		m.tokens = make(map[string]time.Duration)
	}
	m.tokens[jti] = ttl
	return nil
}

// ── 测试数据 ──

// testRepos 服务测试共用的 mock 仓储集合
type testRepos struct {
	repo     *repository.Repository
	classes  *mockClassRepo
	students *mockStudentRepo
	teachers *mockTeacherRepo
	items    *mockMenuItemRepo
	cycles   *mockWeekCycleRepo
	choices  *mockChoiceRepo
}

// newTestRepos 预置班级 1 (3A)、2 (3B)，学生 10/11 (班级 1)、20 (班级 2)，菜品 5 (Pasta)、7 (Salad)
func newTestRepos() *testRepos {
	r := &testRepos{
		classes:  newMockClassRepo(),
		students: newMockStudentRepo(),
		teachers: newMockTeacherRepo(),
		items:    newMockMenuItemRepo(),
		cycles:   newMockWeekCycleRepo(),
	}
	r.choices = newMockChoiceRepo(r.classes, r.students, r.items)

	r.classes.classes[1] = &model.Class{ClassID: 1, ClassName: "3A"}
	r.classes.classes[2] = &model.Class{ClassID: 2, ClassName: "3B"}
	r.students.students[10] = &model.Student{StudentID: 10, FirstName: "Alice", LastName: "Smith", ClassID: 1}
	r.students.students[11] = &model.Student{StudentID: 11, FirstName: "Bob", LastName: "Jones", ClassID: 1}
	r.students.students[20] = &model.Student{StudentID: 20, FirstName: "Carol", LastName: "White", ClassID: 2}
	r.items.items[5] = &model.MenuItem{ItemID: 5, ItemName: "Pasta", Monday: true, Tuesday: true, Wednesday: true}
	r.items.items[7] = &model.MenuItem{ItemID: 7, ItemName: "Salad", Monday: true, Wednesday: true, Friday: true}

	r.repo = &repository.Repository{
		Class:     r.classes,
		Student:   r.students,
		Teacher:   r.teachers,
		MenuItem:  r.items,
		WeekCycle: r.cycles,
		Choice:    r.choices,
	}
	return r
}

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
