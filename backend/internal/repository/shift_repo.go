package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftflow/backend/internal/model"
)

// ShiftRepository 手工排班数据访问接口
// 只读：该表归属独立的手工排班功能，轮班引擎只用它做冲突标记。
type ShiftRepository interface {
	ListByUsersRange(ctx context.Context, tenantID string, userIDs []string, start, end time.Time) ([]model.Shift, error)
}

type shiftRepo struct {
	db *gorm.DB
}

func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) ListByUsersRange(ctx context.Context, tenantID string, userIDs []string, start, end time.Time) ([]model.Shift, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id IN ? AND shift_date BETWEEN ? AND ?", tenantID, userIDs, start, end).
		Find(&shifts).Error
	return shifts, err
}
