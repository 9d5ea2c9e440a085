package dto

// ── 轮班生成 DTO ──

// GenerateRequest 生成轮班日历请求
// Preview 为 true 时只计算不落库；Force 为 true 时允许覆盖终态历史行。
type GenerateRequest struct {
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"` // 含当天
	Preview   bool   `json:"preview"`
	Force     bool   `json:"force"`
}

// GeneratedShift 单个生成的班次
// Conflict 表示与外部手工排班同日冲突，留给管理员复核，生成不会覆盖外部数据。
type GeneratedShift struct {
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name,omitempty"`
	Date       string `json:"date"`
	ShiftType  string `json:"shift_type"`
	WeekNumber int    `json:"week_number"`
	Overridden bool   `json:"overridden,omitempty"`
	Conflict   bool   `json:"conflict,omitempty"`
}

// GenerateDay 按日期分组的生成结果（展示用）
type GenerateDay struct {
	Date   string           `json:"date"`
	Shifts []GeneratedShift `json:"shifts"`
}

// GenerateResponse 生成结果
// Preview 模式返回 GeneratedShifts/Days；提交模式额外返回落库的 History。
type GenerateResponse struct {
	Preview         bool              `json:"preview"`
	GeneratedShifts []GeneratedShift  `json:"generated_shifts"`
	Days            []GenerateDay     `json:"days"`
	History         []HistoryResponse `json:"history,omitempty"`
	ConflictCount   int               `json:"conflict_count"`
}
