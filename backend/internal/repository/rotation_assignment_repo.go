package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftflow/backend/internal/model"
	pkgerrors "shiftflow/backend/pkg/errors"
)

// RotationAssignmentRepository 轮班分配数据访问接口
type RotationAssignmentRepository interface {
	BatchCreate(ctx context.Context, assignments []model.RotationAssignment) error
	GetByID(ctx context.Context, tenantID, id string) (*model.RotationAssignment, error)
	ListByPattern(ctx context.Context, tenantID, patternID string, activeOnly bool) ([]model.RotationAssignment, error)
	// ListOverlapping 返回同模式下与 [startsAt, endsAt) 重叠的活跃分配（重复绑定检查用）
	ListOverlapping(ctx context.Context, tenantID, patternID string, userIDs []string, startsAt time.Time, endsAt *time.Time) ([]model.RotationAssignment, error)
	Update(ctx context.Context, assignment *model.RotationAssignment) error
}

type rotationAssignmentRepo struct {
	db *gorm.DB
}

func NewRotationAssignmentRepo(db *gorm.DB) RotationAssignmentRepository {
	return &rotationAssignmentRepo{db: db}
}

func (r *rotationAssignmentRepo) BatchCreate(ctx context.Context, assignments []model.RotationAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&assignments).Error
}

func (r *rotationAssignmentRepo) GetByID(ctx context.Context, tenantID, id string) (*model.RotationAssignment, error) {
	var assignment model.RotationAssignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tenant_id = ? AND assignment_id = ?", tenantID, id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *rotationAssignmentRepo) ListByPattern(ctx context.Context, tenantID, patternID string, activeOnly bool) ([]model.RotationAssignment, error) {
	var assignments []model.RotationAssignment
	db := r.db.WithContext(ctx).
		Preload("User").
		Where("tenant_id = ? AND pattern_id = ?", tenantID, patternID)
	if activeOnly {
		db = db.Where("is_active = TRUE")
	}
	err := db.Order("rotation_order ASC, assigned_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *rotationAssignmentRepo) ListOverlapping(ctx context.Context, tenantID, patternID string, userIDs []string, startsAt time.Time, endsAt *time.Time) ([]model.RotationAssignment, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	db := r.db.WithContext(ctx).
		Where("tenant_id = ? AND pattern_id = ? AND user_id IN ? AND is_active = TRUE", tenantID, patternID, userIDs).
		Where("ends_at IS NULL OR ends_at > ?", startsAt)
	if endsAt != nil {
		db = db.Where("starts_at < ?", *endsAt)
	}

	var assignments []model.RotationAssignment
	err := db.Find(&assignments).Error
	return assignments, err
}

func (r *rotationAssignmentRepo) Update(ctx context.Context, assignment *model.RotationAssignment) error {
	oldVersion := assignment.Version
	result := r.db.WithContext(ctx).
		Model(assignment).
		Where("tenant_id = ? AND assignment_id = ? AND version = ?", assignment.TenantID, assignment.AssignmentID, oldVersion).
		Updates(map[string]interface{}{
			"shift_group":    assignment.ShiftGroup,
			"rotation_order": assignment.RotationOrder,
			"can_override":   assignment.CanOverride,
			"override_dates": assignment.OverrideDates,
			"is_active":      assignment.IsActive,
			"ends_at":        assignment.EndsAt,
			"updated_by":     assignment.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	assignment.Version = oldVersion + 1
	return nil
}
