package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SEGIMED/back-sub000/internal/model"
	"github.com/SEGIMED/back-sub000/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Sheet "每周排班"：周日 ~ 周六 各一行，未排班的星期显示 "-"
//   - Sheet "排班例外"：按日期升序
type ExportService interface {
	ExportWeekSchedule(ctx context.Context, tenantID, userID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

const (
	weekSheet      = "每周排班"
	exceptionSheet = "排班例外"
)

var modalityNames = map[string]string{
	model.ModalityInPerson: "线下",
	model.ModalityRemote:   "远程",
	model.ModalityHybrid:   "线上线下",
}

// ═══════════════════════════════════════════════════════════
// ExportWeekSchedule — 导出医生每周排班为 Excel
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportWeekSchedule(ctx context.Context, tenantID, userID string) (*bytes.Buffer, string, error) {
	physician, err := resolvePhysician(ctx, s.repo, s.logger, tenantID, userID)
	if err != nil {
		return nil, "", err
	}

	entries, err := s.repo.ScheduleEntry.ListByPhysician(ctx, tenantID, physician.PhysicianID)
	if err != nil {
		s.logger.Error("查询排班失败", zap.Error(err))
		return nil, "", err
	}
	exceptions, err := s.repo.ScheduleException.ListByPhysician(ctx, tenantID, physician.PhysicianID)
	if err != nil {
		s.logger.Error("查询排班例外失败", zap.Error(err))
		return nil, "", err
	}

	byDay := make(map[int]*model.ScheduleEntry, len(entries))
	for i := range entries {
		byDay[entries[i].DayOfWeek] = &entries[i]
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(weekSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	headers := []string{"星期", "出诊", "工作时间", "休息时间", "时长(分钟)", "间隔(分钟)", "同时接诊", "就诊方式"}
	f.SetCellValue(weekSheet, "A1", fmt.Sprintf("%s 每周排班", physician.FullName))
	f.MergeCell(weekSheet, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(weekSheet, "A1", "A1", headerStyle)

	f.SetColWidth(weekSheet, "A", "B", 8)
	f.SetColWidth(weekSheet, "C", "D", 14)
	f.SetColWidth(weekSheet, "E", "H", 12)

	for i, h := range headers {
		f.SetCellValue(weekSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(weekSheet, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行：周日 ~ 周六
	for day := 0; day < 7; day++ {
		row := 3 + day
		f.SetCellValue(weekSheet, cell("A", row), DayName(day))

		e, ok := byDay[day]
		if !ok {
			for col := 1; col < len(headers); col++ {
				f.SetCellValue(weekSheet, cell(colName(col), row), "-")
			}
			continue
		}

		working := "否"
		if e.IsWorkingDay {
			working = "是"
		}
		rest := "-"
		if e.HasRest() {
			rest = fmt.Sprintf("%s-%s", *e.RestStart, *e.RestEnd)
		}
		modality := modalityNames[e.Modality]
		if modality == "" {
			modality = e.Modality
		}

		values := []interface{}{
			working,
			fmt.Sprintf("%s-%s", e.StartTime, e.EndTime),
			rest,
			e.AppointmentLength,
			e.BreakBetween,
			e.SimultaneousSlots,
			modality,
		}
		for i, v := range values {
			f.SetCellValue(weekSheet, cell(colName(i+1), row), v)
		}
	}

	// 例外 Sheet
	f.NewSheet(exceptionSheet)
	f.SetColWidth(exceptionSheet, "A", "A", 14)
	f.SetColWidth(exceptionSheet, "C", "C", 30)
	for i, h := range []string{"日期", "出诊", "原因"} {
		f.SetCellValue(exceptionSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(exceptionSheet, "A1", "C1", headerStyle)
	for i, ex := range exceptions {
		row := 2 + i
		available := "停诊"
		if ex.IsAvailable {
			available = "出诊"
		}
		reason := ""
		if ex.Reason != nil {
			reason = *ex.Reason
		}
		f.SetCellValue(exceptionSheet, cell("A", row), ex.ExceptionDate)
		f.SetCellValue(exceptionSheet, cell("B", row), available)
		f.SetCellValue(exceptionSheet, cell("C", row), reason)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("排班_%s.xlsx", physician.FullName)
	return buf, filename, nil
}

// ── 辅助函数 ──

// colName 0 起的列序号转列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
