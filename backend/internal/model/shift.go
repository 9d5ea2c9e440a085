package model

import "time"

// Shift 手工排班表 — 对应 shifts
// 归属独立的手工排班功能；轮班引擎只读，用于生成时的冲突标记，
// 绝不修改或删除此表的行。
type Shift struct {
	ShiftID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	TenantID  string    `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	ShiftDate time.Time `gorm:"type:date;not null"                             json:"shift_date"`
	ShiftType string    `gorm:"type:varchar(10);not null"                      json:"shift_type"`
	CreatedBy *string   `gorm:"type:uuid"                                      json:"created_by,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }
