package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"shiftflow/backend/internal/model"
	"shiftflow/backend/internal/repository"
)

// ── 个人排班 ICS 订阅源 ─────────────────────────────────────
//
// 职责：将员工在指定区间内的轮班历史输出为标准 iCalendar (RFC 5545)，
// 供日历客户端订阅。
//
// 设计决策：
//   - 仅输出未取消的班次；修改过的班次以修改后的班别为准
//   - 班别对应固定时段：F 06:00-14:00、S 14:00-22:00、N 22:00-次日06:00
//   - UID 使用历史记录 ID，客户端据此对重复拉取去重
//   - 时间按配置的业务时区展开，再以 UTC 写入事件
// ─────────────────────────────────────────────────────────────

// shiftHours 各班别的起始小时与时长
var shiftHours = map[model.ShiftType]struct {
	startHour int
	duration  time.Duration
}{
	model.ShiftEarly: {6, 8 * time.Hour},
	model.ShiftLate:  {14, 8 * time.Hour},
	model.ShiftNight: {22, 8 * time.Hour}, // 跨日到次日 06:00
}

// CalendarFeedService 个人排班日历订阅业务接口
type CalendarFeedService interface {
	// PersonalFeed 生成员工个人排班的 ICS 内容
	PersonalFeed(ctx context.Context, tenantID, userID string, start, end time.Time) (string, error)
}

type calendarFeedService struct {
	repo     *repository.Repository
	timezone string
	logger   *zap.Logger
}

// NewCalendarFeedService 创建 CalendarFeedService 实例
func NewCalendarFeedService(repo *repository.Repository, timezone string, logger *zap.Logger) CalendarFeedService {
	return &calendarFeedService{repo: repo, timezone: timezone, logger: logger}
}

func (s *calendarFeedService) PersonalFeed(ctx context.Context, tenantID, userID string, start, end time.Time) (string, error) {
	rows, err := s.repo.RotationHistory.ListByUserRange(ctx, tenantID, userID, start, end)
	if err != nil {
		s.logger.Error("查询个人轮班历史失败", zap.Error(err))
		return "", err
	}

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//shiftflow//rotation//ZH")
	cal.SetName("我的轮班")

	now := time.Now()
	for i := range rows {
		h := &rows[i]
		if h.Status == model.HistoryCancelled {
			continue
		}
		hours, ok := shiftHours[h.ShiftType]
		if !ok {
			continue
		}

		d := h.ShiftDate
		startAt := time.Date(d.Year(), d.Month(), d.Day(), hours.startHour, 0, 0, 0, loc)

		evt := cal.AddEvent(h.HistoryID)
		evt.SetCreatedTime(now)
		evt.SetDtStampTime(now)
		evt.SetStartAt(startAt.UTC())
		evt.SetEndAt(startAt.Add(hours.duration).UTC())
		evt.SetSummary(shiftSummary(h.ShiftType))
		if h.Status == model.HistoryModified && h.ModifiedReason != "" {
			evt.SetDescription(fmt.Sprintf("班次已调整: %s", h.ModifiedReason))
		}
	}

	return cal.Serialize(), nil
}

func shiftSummary(shift model.ShiftType) string {
	switch shift {
	case model.ShiftEarly:
		return "早班 (06:00-14:00)"
	case model.ShiftLate:
		return "晚班 (14:00-22:00)"
	case model.ShiftNight:
		return "夜班 (22:00-06:00)"
	default:
		return string(shift)
	}
}
