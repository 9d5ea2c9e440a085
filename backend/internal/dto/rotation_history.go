package dto

// ── 轮班历史 DTO ──

// HistoryListRequest 历史查询参数
type HistoryListRequest struct {
	PatternID string `form:"pattern_id" binding:"omitempty,uuid"`
	UserID    string `form:"user_id"    binding:"omitempty,uuid"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	Status    string `form:"status"     binding:"omitempty,oneof=generated confirmed modified cancelled"`
	PaginationRequest
}

// ModifyHistoryRequest 手工修改历史班次请求
type ModifyHistoryRequest struct {
	ShiftType string `json:"shift_type" binding:"required,oneof=F S N"`
	Reason    string `json:"reason"     binding:"required,min=2,max=500"`
}

// CancelHistoryRequest 取消历史班次请求
type CancelHistoryRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=500"`
}

// HistoryResponse 轮班历史响应
type HistoryResponse struct {
	ID             string     `json:"id"`
	PatternID      string     `json:"pattern_id"`
	AssignmentID   string     `json:"assignment_id"`
	UserID         string     `json:"user_id"`
	User           *UserBrief `json:"user,omitempty"`
	TeamID         *string    `json:"team_id,omitempty"`
	ShiftDate      string     `json:"shift_date"`
	ShiftType      string     `json:"shift_type"`
	WeekNumber     int        `json:"week_number"`
	Status         string     `json:"status"`
	ModifiedReason string     `json:"modified_reason,omitempty"`
	GeneratedAt    string     `json:"generated_at"`
	ConfirmedAt    *string    `json:"confirmed_at,omitempty"`
	ConfirmedBy    *string    `json:"confirmed_by,omitempty"`
}
