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

	"shiftflow/backend/internal/model"
	"shiftflow/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoHistory    = errors.New("该区间暂无轮班历史")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某轮班模式在指定区间内已落库的历史日历为 Excel (.xlsx)
//   - 仅导出历史表中的记录，预览结果不可导出
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：行 = 员工，列 = 日期，单元格 = 班别（取消班次显示删除线样式文本）
type ExportService interface {
	// ExportCalendar 导出轮班日历为 Excel
	ExportCalendar(ctx context.Context, tenantID, patternID, startDate, endDate string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// 班别的导出显示文本
var shiftLabels = map[model.ShiftType]string{
	model.ShiftEarly: "早 (F)",
	model.ShiftLate:  "晚 (S)",
	model.ShiftNight: "夜 (N)",
}

func (s *exportService) ExportCalendar(ctx context.Context, tenantID, patternID, startDate, endDate string) (*bytes.Buffer, string, error) {
	// 1. 校验模式与日期区间
	pattern, err := s.repo.RotationPattern.GetByID(ctx, tenantID, patternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPatternNotFound
		}
		s.logger.Error("查询轮班模式失败", zap.Error(err))
		return nil, "", err
	}

	start, err := time.Parse(model.DateLayout, startDate)
	if err != nil {
		return nil, "", ErrInvalidDateRange
	}
	end, err := time.Parse(model.DateLayout, endDate)
	if err != nil || end.Before(start) {
		return nil, "", ErrInvalidDateRange
	}

	// 2. 查询区间内的历史记录
	rows, err := s.repo.RotationHistory.ListByRange(ctx, tenantID, patternID, start, end)
	if err != nil {
		s.logger.Error("查询轮班历史失败", zap.Error(err))
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", ErrExportNoHistory
	}

	// 3. 构建索引: "userID:date" → 单元格文本；并收集员工列表
	type userRow struct {
		userID string
		name   string
	}

	cellIndex := make(map[string]string, len(rows))
	userSeen := make(map[string]bool)
	var users []userRow

	for i := range rows {
		h := &rows[i]

		text := shiftLabels[h.ShiftType]
		if text == "" {
			text = string(h.ShiftType)
		}
		switch h.Status {
		case model.HistoryCancelled:
			text = "已取消"
		case model.HistoryModified:
			text += " *"
		}
		cellIndex[h.UserID+":"+h.ShiftDate.Format(model.DateLayout)] = text

		if !userSeen[h.UserID] {
			userSeen[h.UserID] = true
			name := h.UserID
			if h.User != nil {
				name = h.User.Name
			}
			users = append(users, userRow{userID: h.UserID, name: name})
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].name < users[j].name })

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "轮班日历"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 日期列
	var days []time.Time
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 20)
	for i := range days {
		col, _ := excelize.ColumnNumberToName(2 + i)
		f.SetColWidth(sheetName, col, col, 12)
	}

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	weekendStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 轮班日历 (%s ~ %s)", pattern.Name, startDate, endDate))
	f.MergeCell(sheetName, "A1", cell(colName(len(days)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头: | 员工 | 01-06 周一 | 01-07 周二 | ... |
	weekdayNames := map[time.Weekday]string{
		time.Monday: "周一", time.Tuesday: "周二", time.Wednesday: "周三",
		time.Thursday: "周四", time.Friday: "周五", time.Saturday: "周六", time.Sunday: "周日",
	}
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "员工")
	for i, day := range days {
		f.SetCellValue(sheetName, cell(colName(1+i), row),
			fmt.Sprintf("%s %s", day.Format("01-02"), weekdayNames[day.Weekday()]))
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(days)), row), headerStyle)

	// 数据行
	row = 3
	for _, u := range users {
		f.SetCellValue(sheetName, cell("A", row), u.name)
		for i, day := range days {
			col := colName(1 + i)
			key := u.userID + ":" + day.Format(model.DateLayout)
			if text, ok := cellIndex[key]; ok {
				f.SetCellValue(sheetName, cell(col, row), text)
			} else {
				f.SetCellValue(sheetName, cell(col, row), "-")
			}
			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				f.SetCellStyle(sheetName, cell(col, row), cell(col, row), weekendStyle)
			}
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("轮班日历_%s_%s_%s.xlsx", pattern.Name, startDate, endDate)
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
