package dto

import "encoding/json"

// ── 轮班模式 DTO ──

// CreatePatternRequest 创建轮班模式请求
type CreatePatternRequest struct {
	Name             string          `json:"name"               binding:"required,min=2,max=100"`
	Description      string          `json:"description"        binding:"omitempty,max=500"`
	TeamID           *string         `json:"team_id"            binding:"omitempty,uuid"`
	PatternType      string          `json:"pattern_type"       binding:"required,oneof=alternate_fs fixed_n custom"`
	PatternConfig    json.RawMessage `json:"pattern_config"`
	CycleLengthWeeks int             `json:"cycle_length_weeks" binding:"omitempty,min=1,max=52"`
	StartsAt         string          `json:"starts_at"          binding:"required,datetime=2006-01-02"`
	EndsAt           *string         `json:"ends_at"            binding:"omitempty,datetime=2006-01-02"` // 排他
	IsActive         *bool           `json:"is_active"`
}

// UpdatePatternRequest 更新轮班模式请求
type UpdatePatternRequest struct {
	Name             *string         `json:"name"               binding:"omitempty,min=2,max=100"`
	Description      *string         `json:"description"        binding:"omitempty,max=500"`
	PatternConfig    json.RawMessage `json:"pattern_config"`
	CycleLengthWeeks *int            `json:"cycle_length_weeks" binding:"omitempty,min=1,max=52"`
	EndsAt           *string         `json:"ends_at"            binding:"omitempty,datetime=2006-01-02"`
	IsActive         *bool           `json:"is_active"`
}

// ListPatternsRequest 轮班模式列表查询参数
type ListPatternsRequest struct {
	TeamID   string `form:"team_id"   binding:"omitempty,uuid"`
	IsActive *bool  `form:"is_active"`
	PaginationRequest
}

// PatternResponse 轮班模式响应
type PatternResponse struct {
	ID               string          `json:"id"`
	TeamID           *string         `json:"team_id,omitempty"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	PatternType      string          `json:"pattern_type"`
	PatternConfig    json.RawMessage `json:"pattern_config"`
	CycleLengthWeeks int             `json:"cycle_length_weeks"`
	StartsAt         string          `json:"starts_at"`
	EndsAt           *string         `json:"ends_at,omitempty"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}
