package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"class-schedule/backend/internal/model"
	"class-schedule/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEntries    = errors.New("课表中无排课条目")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - Excel 导出整张课表：行 = 时间区间，列 = 周一~周日，单元格聚合当格课次
//   - ICS 导出单个教师的个人课表：每个课次一个 VEVENT，RRULE 按周重复
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportScheduleExcel 导出课表为 Excel
	ExportScheduleExcel(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error)
	// ExportFacultyICS 导出教师个人课表为 iCalendar
	ExportFacultyICS(ctx context.Context, scheduleID, facultyID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger, loc *time.Location) ExportService {
	return &exportService{repo: repo, logger: logger, loc: loc}
}

// ═══════════════════════════════════════════════════════════
// ExportScheduleExcel — 导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "课程表"
//   - 行头：生效时间区间（按开始时间排序）
//   - 列头：周一 ~ 周日
//   - 单元格：学科代码 @ 教室 (教师)，同格多条以换行分隔

func (s *exportService) ExportScheduleExcel(ctx context.Context, scheduleID string) (*bytes.Buffer, string, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrScheduleNotFound
		}
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, "", err
	}
	entries, err := s.repo.Entry.ListBySchedule(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询课表条目失败", zap.Error(err))
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportNoEntries
	}

	// 数据索引: "start-end:day" → 单元格文本；并收集唯一时间区间
	type interval struct {
		start int
		end   int
	}
	cellIndex := make(map[string][]string)
	intervalSeen := make(map[interval]bool)
	var intervals []interval

	for i := range entries {
		e := &entries[i]
		if e.TimeSlot == nil && !e.HasCustomTime() {
			continue
		}
		start, end, err := EffectiveInterval(e, e.TimeSlot)
		if err != nil {
			return nil, "", err
		}

		iv := interval{start: start, end: end}
		if !intervalSeen[iv] {
			intervalSeen[iv] = true
			intervals = append(intervals, iv)
		}

		text := "?"
		if e.SessionBlock != nil && e.SessionBlock.Subject != nil {
			text = e.SessionBlock.Subject.Code
		}
		if e.Room != nil {
			text += " @ " + e.Room.Name
		}
		if e.Faculty != nil {
			text += " (" + e.Faculty.Name + ")"
		}

		key := fmt.Sprintf("%d-%d:%d", start, end, e.Day)
		cellIndex[key] = append(cellIndex[key], text)
	}

	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].start != intervals[j].start {
			return intervals[i].start < intervals[j].start
		}
		return intervals[i].end < intervals[j].end
	})

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课程表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	for i := 0; i < 7; i++ {
		col, _ := excelize.ColumnNumberToName(2 + i)
		f.SetColWidth(sheetName, col, col, 24)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 课程表", schedule.AcademicTerm))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "时间")
	for d := model.Monday; d <= model.Sunday; d++ {
		col, _ := excelize.ColumnNumberToName(1 + int(d))
		f.SetCellValue(sheetName, col+"2", d.String())
	}

	// 数据行
	row := 3
	for _, iv := range intervals {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row),
			fmt.Sprintf("%s-%s", model.FormatMinutes(iv.start), model.FormatMinutes(iv.end)))
		for d := model.Monday; d <= model.Sunday; d++ {
			key := fmt.Sprintf("%d-%d:%d", iv.start, iv.end, d)
			col, _ := excelize.ColumnNumberToName(1 + int(d))
			if texts, ok := cellIndex[key]; ok {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), strings.Join(texts, "\n"))
			} else {
				f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), "-")
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课程表_%s.xlsx", schedule.AcademicTerm)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportFacultyICS — 导出教师个人课表为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条排课条目生成一个 VEVENT：DTSTART 取该星期在当前时区的下一次
// 出现，RRULE=FREQ=WEEKLY 按周重复。订阅端自行决定展示窗口。

var icsByDay = map[model.Weekday]string{
	model.Monday:    "MO",
	model.Tuesday:   "TU",
	model.Wednesday: "WE",
	model.Thursday:  "TH",
	model.Friday:    "FR",
	model.Saturday:  "SA",
	model.Sunday:    "SU",
}

func (s *exportService) ExportFacultyICS(ctx context.Context, scheduleID, facultyID string) (*bytes.Buffer, string, error) {
	if _, err := s.repo.Schedule.GetByID(ctx, scheduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrScheduleNotFound
		}
		return nil, "", err
	}
	entries, err := s.repo.Entry.ListByFaculty(ctx, scheduleID, facultyID)
	if err != nil {
		s.logger.Error("查询教师课表失败", zap.Error(err))
		return nil, "", err
	}
	if len(entries) == 0 {
		return nil, "", ErrExportNoEntries
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//class-schedule//backend//CN")

	now := time.Now().In(s.loc)
	for i := range entries {
		e := &entries[i]
		if e.TimeSlot == nil && !e.HasCustomTime() {
			continue
		}
		start, end, err := EffectiveInterval(e, e.TimeSlot)
		if err != nil {
			return nil, "", err
		}

		first := nextWeekday(now, e.Day)
		dtStart := time.Date(first.Year(), first.Month(), first.Day(), start/60, start%60, 0, 0, s.loc)
		dtEnd := time.Date(first.Year(), first.Month(), first.Day(), end/60, end%60, 0, 0, s.loc)

		event := cal.AddEvent(fmt.Sprintf("%s@class-schedule", e.EntryID))
		event.SetDtStampTime(now)
		event.SetStartAt(dtStart)
		event.SetEndAt(dtEnd)
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", icsByDay[e.Day]))

		summary := "课程"
		if e.SessionBlock != nil && e.SessionBlock.Subject != nil {
			summary = fmt.Sprintf("%s %s", e.SessionBlock.Subject.Code, e.SessionBlock.Subject.Name)
		}
		if e.IsLab {
			summary += "（实验）"
		}
		event.SetSummary(summary)
		if e.Room != nil {
			location := e.Room.Name
			if e.Room.Building != "" {
				location = e.Room.Building + " " + location
			}
			event.SetLocation(location)
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("课表_%s.ics", facultyID)
	return buf, filename, nil
}

// nextWeekday 返回 from 当天或之后最近的指定星期
func nextWeekday(from time.Time, day model.Weekday) time.Time {
	// time.Weekday 周日为 0，转换到周一=1 的编码
	current := int(from.Weekday())
	if current == 0 {
		current = 7
	}
	delta := (int(day) - current + 7) % 7
	return from.AddDate(0, 0, delta)
}
