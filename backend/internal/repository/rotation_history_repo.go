package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shiftflow/backend/internal/model"
	pkgerrors "shiftflow/backend/pkg/errors"
)

// HistoryFilter 历史查询过滤条件
type HistoryFilter struct {
	PatternID string
	UserID    string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time // 含当天
}

// RotationHistoryRepository 轮班历史数据访问接口
type RotationHistoryRepository interface {
	// BatchUpsert 以 (pattern_id, user_id, shift_date) 为键幂等写入。
	// force 为 false 时终态行（confirmed/modified/cancelled）保持不动。
	BatchUpsert(ctx context.Context, rows []model.RotationHistory, force bool) error
	GetByID(ctx context.Context, tenantID, id string) (*model.RotationHistory, error)
	List(ctx context.Context, tenantID string, filter HistoryFilter, offset, limit int) ([]model.RotationHistory, int64, error)
	ListByRange(ctx context.Context, tenantID, patternID string, start, end time.Time) ([]model.RotationHistory, error)
	ListByUserRange(ctx context.Context, tenantID, userID string, start, end time.Time) ([]model.RotationHistory, error)
	// TransitionStatus 带状态前置条件的更新：当前状态已变化时返回 ErrOptimisticLock
	TransitionStatus(ctx context.Context, h *model.RotationHistory, fromStatus string) error
}

type rotationHistoryRepo struct {
	db *gorm.DB
}

func NewRotationHistoryRepo(db *gorm.DB) RotationHistoryRepository {
	return &rotationHistoryRepo{db: db}
}

func (r *rotationHistoryRepo) BatchUpsert(ctx context.Context, rows []model.RotationHistory, force bool) error {
	if len(rows) == 0 {
		return nil
	}

	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "pattern_id"}, {Name: "user_id"}, {Name: "shift_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"assignment_id", "team_id", "shift_type", "week_number",
			"status", "modified_reason", "confirmed_at", "confirmed_by",
			"generated_at", "updated_at",
		}),
	}
	if !force {
		// 只有 generated 行允许被再生成静默覆盖
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "rotation_history.status = ?", Vars: []interface{}{model.HistoryGenerated}},
		}}
	}

	return r.db.WithContext(ctx).Clauses(onConflict).Create(&rows).Error
}

func (r *rotationHistoryRepo) GetByID(ctx context.Context, tenantID, id string) (*model.RotationHistory, error) {
	var h model.RotationHistory
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tenant_id = ? AND history_id = ?", tenantID, id).
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *rotationHistoryRepo) List(ctx context.Context, tenantID string, filter HistoryFilter, offset, limit int) ([]model.RotationHistory, int64, error) {
	var rows []model.RotationHistory
	var total int64

	db := r.db.WithContext(ctx).Model(&model.RotationHistory{}).
		Where("tenant_id = ?", tenantID)
	if filter.PatternID != "" {
		db = db.Where("pattern_id = ?", filter.PatternID)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		db = db.Where("shift_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("shift_date <= ?", *filter.EndDate)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("shift_date ASC, user_id ASC").
		Find(&rows).Error
	return rows, total, err
}

func (r *rotationHistoryRepo) ListByRange(ctx context.Context, tenantID, patternID string, start, end time.Time) ([]model.RotationHistory, error) {
	var rows []model.RotationHistory
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tenant_id = ? AND pattern_id = ? AND shift_date BETWEEN ? AND ?", tenantID, patternID, start, end).
		Order("shift_date ASC, user_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *rotationHistoryRepo) ListByUserRange(ctx context.Context, tenantID, userID string, start, end time.Time) ([]model.RotationHistory, error) {
	var rows []model.RotationHistory
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND shift_date BETWEEN ? AND ?", tenantID, userID, start, end).
		Order("shift_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *rotationHistoryRepo) TransitionStatus(ctx context.Context, h *model.RotationHistory, fromStatus string) error {
	result := r.db.WithContext(ctx).
		Model(h).
		Where("tenant_id = ? AND history_id = ? AND status = ?", h.TenantID, h.HistoryID, fromStatus).
		Updates(map[string]interface{}{
			"status":          h.Status,
			"shift_type":      h.ShiftType,
			"modified_reason": h.ModifiedReason,
			"confirmed_at":    h.ConfirmedAt,
			"confirmed_by":    h.ConfirmedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
