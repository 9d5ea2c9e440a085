package service

import (
	"testing"
	"time"

	"shiftflow/backend/internal/model"
)

// ── 测试辅助 ──

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("日期解析失败: %v", err)
	}
	return d
}

func alternateFSPattern(t *testing.T, startsAt string) (*model.RotationPattern, *model.PatternConfig) {
	t.Helper()
	pattern := &model.RotationPattern{
		PatternID:        "pat-fs",
		TenantID:         "tenant-1",
		PatternType:      model.PatternAlternateFS,
		CycleLengthWeeks: 2,
		StartsAt:         mustDate(t, startsAt),
	}
	cfg, err := model.ParsePatternConfig(model.PatternAlternateFS, model.RawConfig(`{"week_type":"F","skip_weekends":true}`))
	if err != nil {
		t.Fatalf("配置解析失败: %v", err)
	}
	return pattern, cfg
}

// ── weeksSinceStart ──

func TestWeeksSinceStart(t *testing.T) {
	start := mustDate(t, "2025-01-06") // 周一

	cases := []struct {
		date string
		want int
	}{
		{"2025-01-06", 0},  // 起始日
		{"2025-01-12", 0},  // 同周周日
		{"2025-01-13", 1},  // 第二周周一
		{"2025-02-03", 4},  // 四周后
		{"2025-01-05", -1}, // 起始前一天
		{"2024-12-30", -1}, // 整一周前
		{"2024-12-29", -2}, // 八天前
	}
	for _, tc := range cases {
		got := weeksSinceStart(start, mustDate(t, tc.date))
		if got != tc.want {
			t.Errorf("weeksSinceStart(%s): 期望%d，实际=%d", tc.date, tc.want, got)
		}
	}
}

// ── cycleWeekOf ──

func TestCycleWeekOf_TwoWeekCycle(t *testing.T) {
	start := mustDate(t, "2025-01-06")

	cases := []struct {
		date          string
		rotationOrder int
		want          int
	}{
		{"2025-01-06", 0, 1}, // 第一周
		{"2025-01-13", 0, 2}, // 第二周
		{"2025-01-20", 0, 1}, // 第三周回到周次1
		{"2025-01-06", 1, 2}, // 偏移1：同日落在周次2
		{"2025-01-13", 1, 1},
		{"2024-12-30", 0, 2}, // 起始前一周：负周数取模
	}
	for _, tc := range cases {
		got := cycleWeekOf(start, mustDate(t, tc.date), tc.rotationOrder, 2)
		if got != tc.want {
			t.Errorf("cycleWeekOf(%s, order=%d): 期望%d，实际=%d", tc.date, tc.rotationOrder, tc.want, got)
		}
	}
}

// 不同相位偏移的两人在任一日期应落在不同周次（周期为2、偏移差1）
func TestCycleWeekOf_PhaseDisjoint(t *testing.T) {
	start := mustDate(t, "2025-01-06")
	for day := 0; day < 28; day++ {
		date := start.AddDate(0, 0, day)
		a := cycleWeekOf(start, date, 0, 2)
		b := cycleWeekOf(start, date, 1, 2)
		if a == b {
			t.Errorf("日期 %s 两个相位落在同一周次 %d", date.Format(model.DateLayout), a)
		}
	}
}

// ── resolveShift ──

func TestResolveShift_AlternateFS(t *testing.T) {
	pattern, cfg := alternateFSPattern(t, "2025-01-06")

	cases := []struct {
		date string
		want model.ShiftType
		week int
	}{
		{"2025-01-06", model.ShiftEarly, 1}, // 第一周周一：早班
		{"2025-01-10", model.ShiftEarly, 1}, // 第一周周五
		{"2025-01-13", model.ShiftLate, 2},  // 第二周周一：晚班
		{"2025-01-20", model.ShiftEarly, 1}, // 第三周：回到早班
	}
	for _, tc := range cases {
		shift, week := resolveShift(pattern, cfg, 0, mustDate(t, tc.date))
		if shift != tc.want || week != tc.week {
			t.Errorf("resolveShift(%s): 期望(%s, %d)，实际=(%s, %d)", tc.date, tc.want, tc.week, shift, week)
		}
	}
}

func TestResolveShift_SkipWeekends(t *testing.T) {
	pattern, cfg := alternateFSPattern(t, "2025-01-06")

	for _, date := range []string{"2025-01-11", "2025-01-12"} { // 周六、周日
		shift, _ := resolveShift(pattern, cfg, 0, mustDate(t, date))
		if shift != "" {
			t.Errorf("周末 %s 不应有班次，实际=%s", date, shift)
		}
	}
}

// 同一输入反复求值必须得到同一结果
func TestResolveShift_Deterministic(t *testing.T) {
	pattern, cfg := alternateFSPattern(t, "2025-01-06")
	date := mustDate(t, "2025-03-17")

	firstShift, firstWeek := resolveShift(pattern, cfg, 0, date)
	for i := 0; i < 10; i++ {
		shift, week := resolveShift(pattern, cfg, 0, date)
		if shift != firstShift || week != firstWeek {
			t.Fatalf("第%d次求值结果漂移: (%s,%d) != (%s,%d)", i, shift, week, firstShift, firstWeek)
		}
	}
}

func TestResolveShift_FixedNight(t *testing.T) {
	pattern := &model.RotationPattern{
		PatternType:      model.PatternFixedN,
		CycleLengthWeeks: 1,
		StartsAt:         mustDate(t, "2025-01-06"),
	}
	cfg, err := model.ParsePatternConfig(model.PatternFixedN, model.RawConfig(`{"shift_type":"N"}`))
	if err != nil {
		t.Fatalf("配置解析失败: %v", err)
	}

	// 任意周、任意日都是夜班（未跳过周末）
	for _, date := range []string{"2025-01-06", "2025-01-11", "2025-02-23"} {
		shift, week := resolveShift(pattern, cfg, 0, mustDate(t, date))
		if shift != model.ShiftNight {
			t.Errorf("%s: 期望夜班，实际=%s", date, shift)
		}
		if week != 1 {
			t.Errorf("%s: 单周周期周次应恒为1，实际=%d", date, week)
		}
	}
}

func TestResolveShift_IgnoreNightShift(t *testing.T) {
	pattern := &model.RotationPattern{
		PatternType:      model.PatternCustom,
		CycleLengthWeeks: 3,
		StartsAt:         mustDate(t, "2025-01-06"),
	}
	cfg, err := model.ParsePatternConfig(model.PatternCustom, model.RawConfig(
		`{"pattern":[{"week":1,"shift":"F"},{"week":2,"shift":"N"},{"week":3,"shift":"S"}],"ignore_night_shift":true}`))
	if err != nil {
		t.Fatalf("配置解析失败: %v", err)
	}

	// 第2周的夜班被过滤为无班次
	shift, week := resolveShift(pattern, cfg, 0, mustDate(t, "2025-01-13"))
	if shift != "" || week != 2 {
		t.Errorf("期望(空, 2)，实际=(%s, %d)", shift, week)
	}
	// 第1、3周不受影响
	if shift, _ := resolveShift(pattern, cfg, 0, mustDate(t, "2025-01-06")); shift != model.ShiftEarly {
		t.Errorf("第1周期望早班，实际=%s", shift)
	}
	if shift, _ := resolveShift(pattern, cfg, 0, mustDate(t, "2025-01-20")); shift != model.ShiftLate {
		t.Errorf("第3周期望晚班，实际=%s", shift)
	}
}

// 自定义模板缺周次条目的周不产生班次
func TestResolveShift_CustomGapWeek(t *testing.T) {
	pattern := &model.RotationPattern{
		PatternType:      model.PatternCustom,
		CycleLengthWeeks: 2,
		StartsAt:         mustDate(t, "2025-01-06"),
	}
	cfg, err := model.ParsePatternConfig(model.PatternCustom, model.RawConfig(`{"pattern":[{"week":1,"shift":"F"}]}`))
	if err != nil {
		t.Fatalf("配置解析失败: %v", err)
	}

	shift, _ := resolveShift(pattern, cfg, 0, mustDate(t, "2025-01-13"))
	if shift != "" {
		t.Errorf("缺条目周次不应有班次，实际=%s", shift)
	}
}
