package service

import (
	"time"

	"shiftflow/backend/internal/model"
)

// ── 周期计算器 ──────────────────────────────────────────────
//
// 职责：纯函数地把 (模式, 相位偏移, 日期) 映射为班次标签。
// 无副作用、无时钟依赖：同样输入永远得到同样输出，
// 这是再生成幂等性的根基。
// ─────────────────────────────────────────────────────────────

// truncateToDay 去掉时分秒，保留日期（UTC 归一，避免时区与夏令时误差）
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weeksSinceStart 计算 startsAt 到 date 之间的整周数（向下取整）
func weeksSinceStart(startsAt, date time.Time) int {
	days := int(truncateToDay(date).Sub(truncateToDay(startsAt)).Hours() / 24)
	if days < 0 {
		// 负数向下取整：-1天属于第-1周
		return -((-days + 6) / 7)
	}
	return days / 7
}

// cycleWeekOf 计算周期内周次（1 起）
// rotationOrder 实现相位偏移：不同 rotationOrder 的两人在任一日期
// 落在不同的周期周次上（cycleLengthWeeks ≥ 2 且偏移不同余时）。
func cycleWeekOf(startsAt, date time.Time, rotationOrder, cycleLengthWeeks int) int {
	w := weeksSinceStart(startsAt, date) + rotationOrder
	m := w % cycleLengthWeeks
	if m < 0 {
		m += cycleLengthWeeks
	}
	return m + 1
}

// workdayMask 按星期下标（time.Weekday：0=周日）的出勤表
// 星期集合封闭且编译期已知，用定长数组而非字符串键 map。
type workdayMask [7]bool

// newWorkdayMask 由 skipWeekends 推导出勤表
func newWorkdayMask(skipWeekends bool) workdayMask {
	var m workdayMask
	for d := range m {
		m[d] = true
	}
	if skipWeekends {
		m[time.Saturday] = false
		m[time.Sunday] = false
	}
	return m
}

// resolveShift 解析某日期的基础班次
// 返回 ("", week) 表示该日无班次（周末跳过、周次无条目或夜班被过滤）。
func resolveShift(pattern *model.RotationPattern, cfg *model.PatternConfig, rotationOrder int, date time.Time) (model.ShiftType, int) {
	cycleWeek := cycleWeekOf(pattern.StartsAt, date, rotationOrder, pattern.CycleLengthWeeks)

	flags := cfg.Flags()
	if !newWorkdayMask(flags.SkipWeekends)[date.Weekday()] {
		return "", cycleWeek
	}

	table := cfg.CycleTable(pattern.CycleLengthWeeks)
	shift := table[cycleWeek-1]

	if flags.IgnoreNightShift && shift == model.ShiftNight {
		return "", cycleWeek
	}

	return shift, cycleWeek
}
