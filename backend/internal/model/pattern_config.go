package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// ── PostgreSQL JSONB 自定义类型 ──

// RawConfig 对应 JSONB 的原始 pattern_config，实现 GORM Scanner/Valuer 接口。
type RawConfig json.RawMessage

// Scan 读取 JSONB 字节
func (r *RawConfig) Scan(src interface{}) error {
	if src == nil {
		*r = RawConfig("{}")
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*r = RawConfig(append([]byte(nil), v...))
	case string:
		*r = RawConfig(v)
	default:
		return fmt.Errorf("RawConfig.Scan: unsupported type %T", src)
	}
	return nil
}

// Value 写回 JSONB
func (r RawConfig) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "{}", nil
	}
	return string(r), nil
}

// MarshalJSON 原样输出
func (r RawConfig) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON 原样保留
func (r *RawConfig) UnmarshalJSON(data []byte) error {
	*r = RawConfig(append([]byte(nil), data...))
	return nil
}

// ── 模式配置（按 pattern_type 封闭区分的变体） ──
//
// 每个变体只携带自己相关的字段；解析使用 DisallowUnknownFields，
// 串入其他变体的字段会在解析阶段被拒绝。

// SharedFlags 所有变体共享的可选开关
type SharedFlags struct {
	SkipWeekends     bool `json:"skip_weekends,omitempty"`      // 周六/周日不生成班次
	IgnoreNightShift bool `json:"ignore_night_shift,omitempty"` // 丢弃模板中的夜班槽位
}

// AlternateFSConfig 两周早晚交替配置
// WeekType 为周期第 1 周所上的班次（F 或 S），第 2 周取另一个。
type AlternateFSConfig struct {
	WeekType ShiftType `json:"week_type"`
	SharedFlags
}

// FixedNConfig 固定夜班组配置
type FixedNConfig struct {
	ShiftType ShiftType `json:"shift_type"` // 固定为 N
	SharedFlags
}

// CustomWeekEntry 自定义模板中的一条 {week, shift} 记录
type CustomWeekEntry struct {
	Week  int       `json:"week"`
	Shift ShiftType `json:"shift"`
}

// CustomConfig 自定义多周模板配置
type CustomConfig struct {
	Pattern []CustomWeekEntry `json:"pattern"`
	SharedFlags
}

// PatternConfig 解析后的模式配置，恰有一个变体非空
type PatternConfig struct {
	Type        PatternType
	AlternateFS *AlternateFSConfig
	FixedN      *FixedNConfig
	Custom      *CustomConfig
}

// Flags 返回当前变体的共享开关
func (c *PatternConfig) Flags() SharedFlags {
	switch c.Type {
	case PatternAlternateFS:
		return c.AlternateFS.SharedFlags
	case PatternFixedN:
		return c.FixedN.SharedFlags
	case PatternCustom:
		return c.Custom.SharedFlags
	}
	return SharedFlags{}
}

// ErrUnknownPatternType 未知的 pattern_type
var ErrUnknownPatternType = errors.New("未知的模式类型")

// ParsePatternConfig 按 patternType 严格解析 JSONB 配置
// 未知字段（包括其他变体的字段）解析即报错。
func ParsePatternConfig(patternType PatternType, raw RawConfig) (*PatternConfig, error) {
	data := []byte(raw)
	if len(data) == 0 {
		data = []byte("{}")
	}

	strictDecode := func(dst interface{}) error {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(dst)
	}

	cfg := &PatternConfig{Type: patternType}
	switch patternType {
	case PatternAlternateFS:
		var v AlternateFSConfig
		if err := strictDecode(&v); err != nil {
			return nil, fmt.Errorf("解析 alternate_fs 配置失败: %w", err)
		}
		if v.WeekType == "" {
			v.WeekType = ShiftEarly
		}
		cfg.AlternateFS = &v
	case PatternFixedN:
		var v FixedNConfig
		if err := strictDecode(&v); err != nil {
			return nil, fmt.Errorf("解析 fixed_n 配置失败: %w", err)
		}
		if v.ShiftType == "" {
			v.ShiftType = ShiftNight
		}
		cfg.FixedN = &v
	case PatternCustom:
		var v CustomConfig
		if err := strictDecode(&v); err != nil {
			return nil, fmt.Errorf("解析 custom 配置失败: %w", err)
		}
		cfg.Custom = &v
	default:
		return nil, ErrUnknownPatternType
	}

	return cfg, nil
}

// CycleTable 将配置展开为按周期周次索引的班次表
// 下标 = cycleWeek-1；空串表示该周无班次。
func (c *PatternConfig) CycleTable(cycleLengthWeeks int) []ShiftType {
	table := make([]ShiftType, cycleLengthWeeks)
	switch c.Type {
	case PatternAlternateFS:
		first, second := ShiftEarly, ShiftLate
		if c.AlternateFS.WeekType == ShiftLate {
			first, second = ShiftLate, ShiftEarly
		}
		if cycleLengthWeeks >= 1 {
			table[0] = first
		}
		if cycleLengthWeeks >= 2 {
			table[1] = second
		}
	case PatternFixedN:
		for i := range table {
			table[i] = c.FixedN.ShiftType
		}
	case PatternCustom:
		for _, e := range c.Custom.Pattern {
			if e.Week >= 1 && e.Week <= cycleLengthWeeks {
				table[e.Week-1] = e.Shift
			}
		}
	}
	return table
}

// [自证通过] internal/model/pattern_config.go
