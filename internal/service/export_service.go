package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-lunch/backend/internal/model"
	"school-lunch/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportWeek 导出班级一周的选择为 Excel
	ExportWeek(ctx context.Context, classID uint, weekStart time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo     *repository.Repository
	calendar CalendarService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, calendar CalendarService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, calendar: calendar, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeek 导出班级周选择
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "选择明细"：行为学生（按姓名），列为 Monday ~ Friday，单元格为菜品名
//   - Sheet "汇总"：行为菜品，列为 Monday ~ Friday，单元格为份数
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportWeek(ctx context.Context, classID uint, weekStart time.Time) (*bytes.Buffer, string, error) {
	weekStart = model.Date(weekStart)
	weekEnd := weekStart.AddDate(0, 0, len(model.Weekdays)-1)

	// 1. 查询班级与学生
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, "", err
	}
	students, err := s.repo.Student.ListByClass(ctx, classID)
	if err != nil {
		s.logger.Error("查询班级学生失败", zap.Uint("class_id", classID), zap.Error(err))
		return nil, "", err
	}

	// 2. 查询周选择与周次
	rows, err := s.repo.Choice.FindByScope(ctx, classID, weekStart, weekEnd)
	if err != nil {
		s.logger.Error("查询周选择失败",
			zap.Uint("class_id", classID),
			zap.String("week_start", model.FormatDate(weekStart)),
			zap.Error(err),
		)
		return nil, "", err
	}
	tags, err := s.calendar.ResolveRange(ctx, weekStart, weekEnd)
	if err != nil {
		return nil, "", err
	}

	// 3. 建立索引: (student, offset) → 菜品名；(菜品, offset) → 份数
	type cellKey struct {
		studentID uint
		offset    int
	}
	picks := make(map[cellKey]string, len(rows))
	counts := make(map[string]*[5]int)
	for _, r := range rows {
		offset := int(model.Date(r.ChoiceDate).Sub(weekStart).Hours() / 24)
		if offset < 0 || offset >= len(model.Weekdays) {
			continue
		}
		picks[cellKey{r.StudentID, offset}] = r.ItemName
		if counts[r.ItemName] == nil {
			counts[r.ItemName] = &[5]int{}
		}
		counts[r.ItemName][offset]++
	}
	itemNames := make([]string, 0, len(counts))
	for name := range counts {
		itemNames = append(itemNames, name)
	}
	sort.Strings(itemNames)

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	detail := "选择明细"
	idx, _ := f.NewSheet(detail)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(detail, "A", "A", 24)
	f.SetColWidth(detail, "B", colName(len(model.Weekdays)), 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := fmt.Sprintf("%s %s ~ %s", class.ClassName, model.FormatDate(weekStart), model.FormatDate(weekEnd))
	if tags[0] != nil {
		title += fmt.Sprintf(" (Cycle %d Week %d)", tags[0].CycleNumber, tags[0].WeekNumber)
	}
	f.SetCellValue(detail, "A1", title)
	f.MergeCell(detail, "A1", cell(colName(len(model.Weekdays)), 1))
	f.SetCellStyle(detail, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(detail, cell("A", 2), "学生")
	for i, label := range model.Weekdays {
		f.SetCellValue(detail, cell(colName(i+1), 2),
			fmt.Sprintf("%s %s", label, weekStart.AddDate(0, 0, i).Format("01-02")))
	}
	f.SetCellStyle(detail, "A2", cell(colName(len(model.Weekdays)), 2), headerStyle)

	// 数据行
	row := 3
	for i := range students {
		st := &students[i]
		f.SetCellValue(detail, cell("A", row), st.FullName())
		for off := range model.Weekdays {
			text := "-"
			if name, ok := picks[cellKey{st.StudentID, off}]; ok {
				text = name
			}
			f.SetCellValue(detail, cell(colName(off+1), row), text)
		}
		row++
	}

	// 汇总 Sheet
	summary := "汇总"
	f.NewSheet(summary)
	f.SetColWidth(summary, "A", "A", 24)
	f.SetCellValue(summary, cell("A", 1), "菜品")
	for i, label := range model.Weekdays {
		f.SetCellValue(summary, cell(colName(i+1), 1), label)
	}
	f.SetCellStyle(summary, "A1", cell(colName(len(model.Weekdays)), 1), headerStyle)
	row = 2
	for _, name := range itemNames {
		f.SetCellValue(summary, cell("A", row), name)
		for off, n := range counts[name] {
			f.SetCellValue(summary, cell(colName(off+1), row), n)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("lunch_%s_%s.xlsx", class.ClassName, model.FormatDate(weekStart))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
