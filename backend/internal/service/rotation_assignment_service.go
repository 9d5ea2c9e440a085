package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftflow/backend/internal/dto"
	"shiftflow/backend/internal/model"
	"shiftflow/backend/internal/repository"
)

// ── 轮班分配模块业务错误 ──

var (
	ErrAssignmentNotFound  = errors.New("轮班分配不存在")
	ErrDuplicateAssignment = errors.New("该员工在此模式下已有重叠的活跃分配")
	ErrOverrideNotAllowed  = errors.New("该分配不允许手工覆盖班次")
	ErrInvalidShiftGroup   = errors.New("班组标签无效")
	ErrInvalidOverride     = errors.New("覆盖表格式无效")
	ErrNoTargetUsers       = errors.New("没有可分配的员工")
	ErrUserNotFound        = errors.New("员工不存在或不属于当前租户")
)

// RotationAssignmentService 轮班分配业务接口
type RotationAssignmentService interface {
	// Assign 批量绑定员工到模式（不同员工可用不同起始班组与相位偏移）
	Assign(ctx context.Context, patternID string, req *dto.AssignRequest, tenantID, callerID string) ([]dto.AssignmentResponse, error)
	ListByPattern(ctx context.Context, tenantID, patternID string) ([]dto.AssignmentResponse, error)
	Update(ctx context.Context, tenantID, assignmentID string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error)
	// Deactivate 设置 ends_at；不回溯修改已生成的历史
	Deactivate(ctx context.Context, tenantID, assignmentID, effectiveDate, callerID string) (*dto.AssignmentResponse, error)
}

type rotationAssignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRotationAssignmentService 创建 RotationAssignmentService 实例
func NewRotationAssignmentService(repo *repository.Repository, logger *zap.Logger) RotationAssignmentService {
	return &rotationAssignmentService{repo: repo, logger: logger}
}

// defaultRotationOrder 按起始班组推导相位偏移
// 早班组与晚班组错开一周，保证平衡设计下两组不同时在同一班次。
func defaultRotationOrder(group model.ShiftType) int {
	if group == model.ShiftLate {
		return 1
	}
	return 0
}

func (s *rotationAssignmentService) Assign(ctx context.Context, patternID string, req *dto.AssignRequest, tenantID, callerID string) ([]dto.AssignmentResponse, error) {
	pattern, err := s.repo.RotationPattern.GetByID(ctx, tenantID, patternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询轮班模式失败", zap.Error(err))
		return nil, err
	}

	startsAt, err := time.Parse(model.DateLayout, req.StartsAt)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	var endsAt *time.Time
	if req.EndsAt != nil {
		t, err := time.Parse(model.DateLayout, *req.EndsAt)
		if err != nil || !startsAt.Before(t) {
			return nil, ErrInvalidDateRange
		}
		endsAt = &t
	}

	// ── 目标员工：显式 user_ids，或按团队花名册展开 ──
	userIDs := req.UserIDs
	teamID := req.TeamID
	if teamID == nil {
		teamID = pattern.TeamID
	}
	if len(userIDs) == 0 && teamID != nil {
		members, err := s.repo.User.ListByTeam(ctx, tenantID, *teamID)
		if err != nil {
			s.logger.Error("查询团队成员失败", zap.Error(err))
			return nil, err
		}
		for _, m := range members {
			userIDs = append(userIDs, m.UserID)
		}
	}
	if len(userIDs) == 0 {
		return nil, ErrNoTargetUsers
	}

	// 请求内去重
	seen := make(map[string]bool, len(userIDs))
	uniqueIDs := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if !seen[id] {
			seen[id] = true
			uniqueIDs = append(uniqueIDs, id)
		}
	}

	// ── 租户归属校验 ──
	users, err := s.repo.User.ListByIDs(ctx, tenantID, uniqueIDs)
	if err != nil {
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if len(users) != len(uniqueIDs) {
		return nil, ErrUserNotFound
	}
	userIndex := make(map[string]*model.User, len(users))
	for i := range users {
		userIndex[users[i].UserID] = &users[i]
	}

	// ── 班组校验 ──
	for _, id := range uniqueIDs {
		group := model.ShiftType(req.ShiftGroups[id])
		if !group.Valid() {
			return nil, ErrInvalidShiftGroup
		}
	}

	// ── 重叠分配检查：同一员工在同一模式下活跃区间不得重叠 ──
	existing, err := s.repo.RotationAssignment.ListOverlapping(ctx, tenantID, patternID, uniqueIDs, startsAt, endsAt)
	if err != nil {
		s.logger.Error("查询已有分配失败", zap.Error(err))
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateAssignment
	}

	// ── 组装并落库 ──
	assignments := make([]model.RotationAssignment, 0, len(uniqueIDs))
	for _, id := range uniqueIDs {
		group := model.ShiftType(req.ShiftGroups[id])
		order, ok := req.RotationOrders[id]
		if !ok {
			order = defaultRotationOrder(group)
		}
		assignments = append(assignments, model.RotationAssignment{
			TenantID:      tenantID,
			PatternID:     patternID,
			UserID:        id,
			TeamID:        teamID,
			ShiftGroup:    group,
			RotationOrder: order,
			CanOverride:   req.CanOverride,
			OverrideDates: model.OverrideMap{},
			IsActive:      true,
			StartsAt:      startsAt,
			EndsAt:        endsAt,
			AssignedBy:    &callerID,
			UpdatedBy:     &callerID,
		})
	}

	if err := s.repo.RotationAssignment.BatchCreate(ctx, assignments); err != nil {
		s.logger.Error("批量创建轮班分配失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		a.User = userIndex[a.UserID]
		result = append(result, *toAssignmentResponse(a))
	}
	return result, nil
}

func (s *rotationAssignmentService) ListByPattern(ctx context.Context, tenantID, patternID string) ([]dto.AssignmentResponse, error) {
	if _, err := s.repo.RotationPattern.GetByID(ctx, tenantID, patternID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询轮班模式失败", zap.Error(err))
		return nil, err
	}

	assignments, err := s.repo.RotationAssignment.ListByPattern(ctx, tenantID, patternID, false)
	if err != nil {
		s.logger.Error("查询轮班分配失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *toAssignmentResponse(&assignments[i]))
	}
	return result, nil
}

func (s *rotationAssignmentService) Update(ctx context.Context, tenantID, assignmentID string, req *dto.UpdateAssignmentRequest, callerID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.RotationAssignment.GetByID(ctx, tenantID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询轮班分配失败", zap.Error(err))
		return nil, err
	}

	if req.ShiftGroup != nil {
		group := model.ShiftType(*req.ShiftGroup)
		if !group.Valid() {
			return nil, ErrInvalidShiftGroup
		}
		assignment.ShiftGroup = group
	}
	if req.RotationOrder != nil {
		assignment.RotationOrder = *req.RotationOrder
	}
	if req.CanOverride != nil {
		assignment.CanOverride = *req.CanOverride
	}

	if req.OverrideDates != nil {
		// 覆盖表只在 can_override 开启时可写（含本次请求一并开启的情况）
		if !assignment.CanOverride {
			return nil, ErrOverrideNotAllowed
		}
		overrides := make(model.OverrideMap, len(req.OverrideDates))
		for date, label := range req.OverrideDates {
			if _, err := time.Parse(model.DateLayout, date); err != nil {
				return nil, ErrInvalidOverride
			}
			shift := model.ShiftType(label)
			if !shift.Valid() {
				return nil, ErrInvalidOverride
			}
			overrides[date] = shift
		}
		assignment.OverrideDates = overrides
	}

	assignment.UpdatedBy = &callerID
	if err := s.repo.RotationAssignment.Update(ctx, assignment); err != nil {
		s.logger.Error("更新轮班分配失败", zap.Error(err))
		return nil, err
	}

	return toAssignmentResponse(assignment), nil
}

func (s *rotationAssignmentService) Deactivate(ctx context.Context, tenantID, assignmentID, effectiveDate, callerID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.repo.RotationAssignment.GetByID(ctx, tenantID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询轮班分配失败", zap.Error(err))
		return nil, err
	}

	effective, err := time.Parse(model.DateLayout, effectiveDate)
	if err != nil || !assignment.StartsAt.Before(effective) {
		return nil, ErrInvalidDateRange
	}

	assignment.EndsAt = &effective
	if !effective.After(truncateToDay(time.Now())) {
		assignment.IsActive = false
	}
	assignment.UpdatedBy = &callerID

	if err := s.repo.RotationAssignment.Update(ctx, assignment); err != nil {
		s.logger.Error("停用轮班分配失败", zap.Error(err))
		return nil, err
	}

	return toAssignmentResponse(assignment), nil
}

// toAssignmentResponse 组装分配响应
func toAssignmentResponse(a *model.RotationAssignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:            a.AssignmentID,
		PatternID:     a.PatternID,
		UserID:        a.UserID,
		TeamID:        a.TeamID,
		ShiftGroup:    string(a.ShiftGroup),
		RotationOrder: a.RotationOrder,
		CanOverride:   a.CanOverride,
		IsActive:      a.IsActive,
		StartsAt:      a.StartsAt.Format(model.DateLayout),
		AssignedAt:    a.AssignedAt.Format(time.RFC3339),
	}
	if a.EndsAt != nil {
		endsAt := a.EndsAt.Format(model.DateLayout)
		resp.EndsAt = &endsAt
	}
	if len(a.OverrideDates) > 0 {
		overrides := make(map[string]string, len(a.OverrideDates))
		for date, shift := range a.OverrideDates {
			overrides[date] = string(shift)
		}
		resp.OverrideDates = overrides
	}
	if a.User != nil {
		resp.User = &dto.UserBrief{ID: a.User.UserID, Name: a.User.Name, Email: a.User.Email}
	}
	return resp
}
