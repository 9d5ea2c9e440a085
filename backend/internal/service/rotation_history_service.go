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

var (
	ErrHistoryNotFound   = errors.New("轮班历史记录不存在")
	ErrInvalidTransition = errors.New("当前状态不允许该操作")
	ErrNotOwnShift       = errors.New("只能确认自己的班次")
)

// RotationHistoryService 轮班历史业务接口
//
// 状态机：generated 为唯一非终态，confirmed/modified/cancelled 均为终态。
// 终态记录不可再变更，也不会被重新生成覆盖（除非 force）。
type RotationHistoryService interface {
	List(ctx context.Context, req *dto.HistoryListRequest, tenantID string) ([]dto.HistoryResponse, int64, error)
	ListMy(ctx context.Context, req *dto.HistoryListRequest, tenantID, userID string) ([]dto.HistoryResponse, int64, error)
	Confirm(ctx context.Context, historyID, tenantID, callerID, callerRole string) (*dto.HistoryResponse, error)
	Modify(ctx context.Context, historyID string, req *dto.ModifyHistoryRequest, tenantID, callerID string) (*dto.HistoryResponse, error)
	Cancel(ctx context.Context, historyID string, req *dto.CancelHistoryRequest, tenantID, callerID string) (*dto.HistoryResponse, error)
}

type rotationHistoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRotationHistoryService 创建 RotationHistoryService 实例
func NewRotationHistoryService(repo *repository.Repository, logger *zap.Logger) RotationHistoryService {
	return &rotationHistoryService{repo: repo, logger: logger}
}

func (s *rotationHistoryService) List(ctx context.Context, req *dto.HistoryListRequest, tenantID string) ([]dto.HistoryResponse, int64, error) {
	filter, err := buildHistoryFilter(req)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.repo.RotationHistory.List(ctx, tenantID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询轮班历史失败", zap.Error(err))
		return nil, 0, err
	}
	return toHistoryResponses(rows), total, nil
}

func (s *rotationHistoryService) ListMy(ctx context.Context, req *dto.HistoryListRequest, tenantID, userID string) ([]dto.HistoryResponse, int64, error) {
	filter, err := buildHistoryFilter(req)
	if err != nil {
		return nil, 0, err
	}
	filter.UserID = userID
	rows, total, err := s.repo.RotationHistory.List(ctx, tenantID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询个人轮班历史失败", zap.Error(err))
		return nil, 0, err
	}
	return toHistoryResponses(rows), total, nil
}

// Confirm 员工确认自己的班次；admin 可代为确认
func (s *rotationHistoryService) Confirm(ctx context.Context, historyID, tenantID, callerID, callerRole string) (*dto.HistoryResponse, error) {
	h, err := s.getHistory(ctx, tenantID, historyID)
	if err != nil {
		return nil, err
	}
	if h.UserID != callerID && callerRole != "admin" {
		return nil, ErrNotOwnShift
	}
	if !model.CanTransitionHistory(h.Status, model.HistoryConfirmed) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	from := h.Status
	h.Status = model.HistoryConfirmed
	h.ConfirmedAt = &now
	h.ConfirmedBy = &callerID
	if err := s.transition(ctx, h, from); err != nil {
		return nil, err
	}
	return toHistoryResponse(h), nil
}

// Modify 管理员修改已生成班次的班别，需给出理由
func (s *rotationHistoryService) Modify(ctx context.Context, historyID string, req *dto.ModifyHistoryRequest, tenantID, callerID string) (*dto.HistoryResponse, error) {
	h, err := s.getHistory(ctx, tenantID, historyID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionHistory(h.Status, model.HistoryModified) {
		return nil, ErrInvalidTransition
	}

	from := h.Status
	h.Status = model.HistoryModified
	h.ShiftType = model.ShiftType(req.ShiftType)
	h.ModifiedReason = req.Reason
	if err := s.transition(ctx, h, from); err != nil {
		return nil, err
	}

	s.logger.Info("班次已修改",
		zap.String("history_id", historyID),
		zap.String("shift_type", req.ShiftType),
		zap.String("operator", callerID))
	return toHistoryResponse(h), nil
}

// Cancel 管理员取消单条班次，需给出理由
func (s *rotationHistoryService) Cancel(ctx context.Context, historyID string, req *dto.CancelHistoryRequest, tenantID, callerID string) (*dto.HistoryResponse, error) {
	h, err := s.getHistory(ctx, tenantID, historyID)
	if err != nil {
		return nil, err
	}
	if !model.CanTransitionHistory(h.Status, model.HistoryCancelled) {
		return nil, ErrInvalidTransition
	}

	from := h.Status
	h.Status = model.HistoryCancelled
	h.ModifiedReason = req.Reason
	if err := s.transition(ctx, h, from); err != nil {
		return nil, err
	}

	s.logger.Info("班次已取消",
		zap.String("history_id", historyID),
		zap.String("operator", callerID))
	return toHistoryResponse(h), nil
}

func (s *rotationHistoryService) getHistory(ctx context.Context, tenantID, historyID string) (*model.RotationHistory, error) {
	h, err := s.repo.RotationHistory.GetByID(ctx, tenantID, historyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryNotFound
		}
		s.logger.Error("查询轮班历史失败", zap.Error(err))
		return nil, err
	}
	return h, nil
}

// transition 以原状态为前置条件落库，并发竞争时返回乐观锁错误
func (s *rotationHistoryService) transition(ctx context.Context, h *model.RotationHistory, from string) error {
	if err := s.repo.RotationHistory.TransitionStatus(ctx, h, from); err != nil {
		s.logger.Error("轮班历史状态流转失败",
			zap.String("history_id", h.HistoryID),
			zap.String("from", from),
			zap.String("to", h.Status),
			zap.Error(err))
		return err
	}
	return nil
}

func buildHistoryFilter(req *dto.HistoryListRequest) (repository.HistoryFilter, error) {
	filter := repository.HistoryFilter{
		PatternID: req.PatternID,
		UserID:    req.UserID,
		Status:    req.Status,
	}
	if req.StartDate != "" {
		t, err := time.Parse(model.DateLayout, req.StartDate)
		if err != nil {
			return filter, ErrInvalidDateRange
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.Parse(model.DateLayout, req.EndDate)
		if err != nil {
			return filter, ErrInvalidDateRange
		}
		filter.EndDate = &t
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return filter, ErrInvalidDateRange
	}
	return filter, nil
}

func toHistoryResponse(h *model.RotationHistory) *dto.HistoryResponse {
	resp := &dto.HistoryResponse{
		ID:             h.HistoryID,
		PatternID:      h.PatternID,
		AssignmentID:   h.AssignmentID,
		UserID:         h.UserID,
		TeamID:         h.TeamID,
		ShiftDate:      h.ShiftDate.Format(model.DateLayout),
		ShiftType:      string(h.ShiftType),
		WeekNumber:     h.WeekNumber,
		Status:         h.Status,
		ModifiedReason: h.ModifiedReason,
		GeneratedAt:    h.GeneratedAt.Format(time.RFC3339),
		ConfirmedBy:    h.ConfirmedBy,
	}
	if h.ConfirmedAt != nil {
		t := h.ConfirmedAt.Format(time.RFC3339)
		resp.ConfirmedAt = &t
	}
	if h.User != nil {
		resp.User = &dto.UserBrief{ID: h.User.UserID, Name: h.User.Name, Email: h.User.Email}
	}
	return resp
}

func toHistoryResponses(rows []model.RotationHistory) []dto.HistoryResponse {
	result := make([]dto.HistoryResponse, 0, len(rows))
	for i := range rows {
		result = append(result, *toHistoryResponse(&rows[i]))
	}
	return result
}
