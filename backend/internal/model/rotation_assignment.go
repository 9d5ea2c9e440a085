package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OverrideMap 对应 JSONB 的 override_dates：ISO 日期 → 替换班次标签，
// 实现 GORM Scanner/Valuer 接口。
type OverrideMap map[string]ShiftType

// Scan 解析 JSONB 字节为 map
func (m *OverrideMap) Scan(src interface{}) error {
	if src == nil {
		*m = OverrideMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("OverrideMap.Scan: unsupported type %T", src)
	}
	if len(data) == 0 {
		*m = OverrideMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Value 序列化为 JSONB
func (m OverrideMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// RotationAssignment 轮班分配表 — 对应 rotation_assignments
// 把一名员工绑定到一个模式：起始班组、相位偏移与生效区间。
type RotationAssignment struct {
	AssignmentID  string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	TenantID      string      `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	PatternID     string      `gorm:"type:uuid;not null"                             json:"pattern_id"`
	UserID        string      `gorm:"type:uuid;not null"                             json:"user_id"`
	TeamID        *string     `gorm:"type:uuid"                                      json:"team_id,omitempty"`
	ShiftGroup    ShiftType   `gorm:"type:varchar(1);not null"                       json:"shift_group"`    // 起始班组 F | S | N
	RotationOrder int         `gorm:"not null;default:0"                             json:"rotation_order"` // 周期内相位偏移（周）
	CanOverride   bool        `gorm:"not null;default:false"                         json:"can_override"`
	OverrideDates OverrideMap `gorm:"type:jsonb;not null;default:'{}'"               json:"override_dates"`
	IsActive      bool        `gorm:"not null;default:true"                          json:"is_active"`
	StartsAt      time.Time   `gorm:"type:date;not null"                             json:"starts_at"`
	EndsAt        *time.Time  `gorm:"type:date"                                      json:"ends_at,omitempty"` // 排他
	AssignedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"assigned_at"`
	AssignedBy    *string     `gorm:"type:uuid"                                      json:"assigned_by,omitempty"`
	UpdatedAt     time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
	UpdatedBy     *string     `gorm:"type:uuid"                                      json:"updated_by,omitempty"`
	Version       int         `gorm:"not null;default:1"                             json:"version"`

	// 关联
	User    *User            `gorm:"foreignKey:UserID;references:UserID"          json:"user,omitempty"`
	Pattern *RotationPattern `gorm:"foreignKey:PatternID;references:PatternID"    json:"pattern,omitempty"`
}

// TableName 指定表名
func (RotationAssignment) TableName() string { return "rotation_assignments" }

// InEffect 判断某日期是否落在分配生效区间 [StartsAt, EndsAt)
func (a *RotationAssignment) InEffect(date time.Time) bool {
	if date.Before(a.StartsAt) {
		return false
	}
	if a.EndsAt != nil && !date.Before(*a.EndsAt) {
		return false
	}
	return true
}

// Overlaps 判断分配区间与 [startsAt, endsAt) 是否重叠（endsAt 为 nil 表示开放结束）
func (a *RotationAssignment) Overlaps(startsAt time.Time, endsAt *time.Time) bool {
	if a.EndsAt != nil && !startsAt.Before(*a.EndsAt) {
		return false
	}
	if endsAt != nil && !a.StartsAt.Before(*endsAt) {
		return false
	}
	return true
}

// [自证通过] internal/model/rotation_assignment.go
