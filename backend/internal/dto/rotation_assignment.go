package dto

// ── 轮班分配 DTO ──

// AssignRequest 批量绑定员工到模式的请求
// ShiftGroups 允许不同员工以不同的起始班组入组；
// RotationOrders 可显式指定相位偏移，缺省时按班组推导。
type AssignRequest struct {
	UserIDs        []string          `json:"user_ids"        binding:"omitempty,dive,uuid"`
	TeamID         *string           `json:"team_id"         binding:"omitempty,uuid"` // 指定后按团队花名册展开
	ShiftGroups    map[string]string `json:"shift_groups"    binding:"required"`       // userId → F|S|N
	RotationOrders map[string]int    `json:"rotation_orders"`
	CanOverride    bool              `json:"can_override"`
	StartsAt       string            `json:"starts_at"       binding:"required,datetime=2006-01-02"`
	EndsAt         *string           `json:"ends_at"         binding:"omitempty,datetime=2006-01-02"` // 排他
}

// UpdateAssignmentRequest 更新分配请求（覆盖表、开关）
type UpdateAssignmentRequest struct {
	ShiftGroup    *string           `json:"shift_group"    binding:"omitempty,oneof=F S N"`
	RotationOrder *int              `json:"rotation_order" binding:"omitempty,min=0"`
	CanOverride   *bool             `json:"can_override"`
	OverrideDates map[string]string `json:"override_dates"` // ISO 日期 → F|S|N
}

// DeactivateAssignmentRequest 停用分配请求
type DeactivateAssignmentRequest struct {
	EffectiveDate string `json:"effective_date" binding:"required,datetime=2006-01-02"`
}

// AssignmentResponse 轮班分配响应
type AssignmentResponse struct {
	ID            string            `json:"id"`
	PatternID     string            `json:"pattern_id"`
	UserID        string            `json:"user_id"`
	User          *UserBrief        `json:"user,omitempty"`
	TeamID        *string           `json:"team_id,omitempty"`
	ShiftGroup    string            `json:"shift_group"`
	RotationOrder int               `json:"rotation_order"`
	CanOverride   bool              `json:"can_override"`
	OverrideDates map[string]string `json:"override_dates,omitempty"`
	IsActive      bool              `json:"is_active"`
	StartsAt      string            `json:"starts_at"`
	EndsAt        *string           `json:"ends_at,omitempty"`
	AssignedAt    string            `json:"assigned_at"`
}
