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

// ── 轮班模式模块业务错误 ──

var (
	ErrPatternNotFound        = errors.New("轮班模式不存在")
	ErrUnsupportedPatternType = errors.New("不支持的模式类型")
	ErrInvalidPatternConfig   = errors.New("模式配置无效")
	ErrInvalidCycleLength     = errors.New("周期长度与配置不符")
	ErrInvalidWeekIndex       = errors.New("周次索引超出周期范围")
	ErrEmptyCustomPattern     = errors.New("自定义模板不能为空")
	ErrInvalidDateRange       = errors.New("日期区间无效")
	ErrTeamNotFound           = errors.New("团队不存在")
)

// RotationPatternService 轮班模式业务接口
type RotationPatternService interface {
	Create(ctx context.Context, req *dto.CreatePatternRequest, tenantID, callerID string) (*dto.PatternResponse, error)
	GetByID(ctx context.Context, tenantID, patternID string) (*dto.PatternResponse, error)
	List(ctx context.Context, tenantID string, req *dto.ListPatternsRequest) ([]dto.PatternResponse, int64, error)
	Update(ctx context.Context, tenantID, patternID string, req *dto.UpdatePatternRequest, callerID string) (*dto.PatternResponse, error)
	Delete(ctx context.Context, tenantID, patternID, callerID string) error
}

type rotationPatternService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRotationPatternService 创建 RotationPatternService 实例
func NewRotationPatternService(repo *repository.Repository, logger *zap.Logger) RotationPatternService {
	return &rotationPatternService{repo: repo, logger: logger}
}

// validatePatternConfig 在模式可用之前校验并归一化其定义
// 返回归一化后的周期长度。所有校验在创建/更新时完成，生成阶段不再报配置错。
func validatePatternConfig(patternType model.PatternType, raw model.RawConfig, cycleLengthWeeks int) (*model.PatternConfig, int, error) {
	if !patternType.Valid() {
		return nil, 0, ErrUnsupportedPatternType
	}

	cfg, err := model.ParsePatternConfig(patternType, raw)
	if err != nil {
		if errors.Is(err, model.ErrUnknownPatternType) {
			return nil, 0, ErrUnsupportedPatternType
		}
		return nil, 0, ErrInvalidPatternConfig
	}

	switch patternType {
	case model.PatternAlternateFS:
		// 固定两周周期
		if cycleLengthWeeks != 0 && cycleLengthWeeks != 2 {
			return nil, 0, ErrInvalidCycleLength
		}
		if cfg.AlternateFS.WeekType != model.ShiftEarly && cfg.AlternateFS.WeekType != model.ShiftLate {
			return nil, 0, ErrInvalidPatternConfig
		}
		return cfg, 2, nil

	case model.PatternFixedN:
		if cfg.FixedN.ShiftType != model.ShiftNight {
			return nil, 0, ErrInvalidPatternConfig
		}
		if cycleLengthWeeks == 0 {
			cycleLengthWeeks = 1
		}
		return cfg, cycleLengthWeeks, nil

	case model.PatternCustom:
		entries := cfg.Custom.Pattern
		if len(entries) == 0 {
			return nil, 0, ErrEmptyCustomPattern
		}
		if cycleLengthWeeks == 0 {
			cycleLengthWeeks = len(entries)
		}
		if len(entries) != cycleLengthWeeks {
			return nil, 0, ErrInvalidCycleLength
		}
		seen := make(map[int]bool, len(entries))
		for _, e := range entries {
			if e.Week < 1 || e.Week > cycleLengthWeeks {
				return nil, 0, ErrInvalidWeekIndex
			}
			if seen[e.Week] {
				return nil, 0, ErrInvalidWeekIndex
			}
			seen[e.Week] = true
			if !e.Shift.Valid() {
				return nil, 0, ErrInvalidPatternConfig
			}
		}
		return cfg, cycleLengthWeeks, nil
	}

	return nil, 0, ErrUnsupportedPatternType
}

func (s *rotationPatternService) Create(ctx context.Context, req *dto.CreatePatternRequest, tenantID, callerID string) (*dto.PatternResponse, error) {
	patternType := model.PatternType(req.PatternType)
	raw := model.RawConfig(req.PatternConfig)

	_, cycleLen, err := validatePatternConfig(patternType, raw, req.CycleLengthWeeks)
	if err != nil {
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

	if req.TeamID != nil {
		if _, err := s.repo.Team.GetByID(ctx, tenantID, *req.TeamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeamNotFound
			}
			s.logger.Error("查询团队失败", zap.Error(err))
			return nil, err
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	pattern := &model.RotationPattern{
		TenantID:         tenantID,
		TeamID:           req.TeamID,
		Name:             req.Name,
		Description:      req.Description,
		PatternType:      patternType,
		PatternConfig:    raw,
		CycleLengthWeeks: cycleLen,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
		IsActive:         isActive,
	}
	pattern.CreatedBy = &callerID
	pattern.UpdatedBy = &callerID

	if err := s.repo.RotationPattern.Create(ctx, pattern); err != nil {
		s.logger.Error("创建轮班模式失败", zap.Error(err))
		return nil, err
	}

	return toPatternResponse(pattern), nil
}

func (s *rotationPatternService) GetByID(ctx context.Context, tenantID, patternID string) (*dto.PatternResponse, error) {
	pattern, err := s.repo.RotationPattern.GetByID(ctx, tenantID, patternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询轮班模式失败", zap.Error(err))
		return nil, err
	}
	return toPatternResponse(pattern), nil
}

func (s *rotationPatternService) List(ctx context.Context, tenantID string, req *dto.ListPatternsRequest) ([]dto.PatternResponse, int64, error) {
	patterns, total, err := s.repo.RotationPattern.List(ctx, tenantID, req.TeamID, req.IsActive, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询轮班模式列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.PatternResponse, 0, len(patterns))
	for i := range patterns {
		result = append(result, *toPatternResponse(&patterns[i]))
	}
	return result, total, nil
}

func (s *rotationPatternService) Update(ctx context.Context, tenantID, patternID string, req *dto.UpdatePatternRequest, callerID string) (*dto.PatternResponse, error) {
	pattern, err := s.repo.RotationPattern.GetByID(ctx, tenantID, patternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询轮班模式失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		pattern.Name = *req.Name
	}
	if req.Description != nil {
		pattern.Description = *req.Description
	}
	if req.IsActive != nil {
		pattern.IsActive = *req.IsActive
	}

	// 配置或周期字段变更时整体重新校验
	if req.PatternConfig != nil || req.CycleLengthWeeks != nil {
		raw := pattern.PatternConfig
		if req.PatternConfig != nil {
			raw = model.RawConfig(req.PatternConfig)
		}
		cycleLen := pattern.CycleLengthWeeks
		if req.CycleLengthWeeks != nil {
			cycleLen = *req.CycleLengthWeeks
		}
		_, normalized, err := validatePatternConfig(pattern.PatternType, raw, cycleLen)
		if err != nil {
			return nil, err
		}
		pattern.PatternConfig = raw
		pattern.CycleLengthWeeks = normalized
	}

	if req.EndsAt != nil {
		t, err := time.Parse(model.DateLayout, *req.EndsAt)
		if err != nil || !pattern.StartsAt.Before(t) {
			return nil, ErrInvalidDateRange
		}
		pattern.EndsAt = &t
	}

	pattern.UpdatedBy = &callerID
	if err := s.repo.RotationPattern.Update(ctx, pattern); err != nil {
		s.logger.Error("更新轮班模式失败", zap.Error(err))
		return nil, err
	}

	return toPatternResponse(pattern), nil
}

func (s *rotationPatternService) Delete(ctx context.Context, tenantID, patternID, callerID string) error {
	if _, err := s.repo.RotationPattern.GetByID(ctx, tenantID, patternID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPatternNotFound
		}
		s.logger.Error("查询轮班模式失败", zap.Error(err))
		return err
	}
	if err := s.repo.RotationPattern.Delete(ctx, tenantID, patternID, callerID); err != nil {
		s.logger.Error("删除轮班模式失败", zap.Error(err))
		return err
	}
	return nil
}

// toPatternResponse 组装模式响应
func toPatternResponse(p *model.RotationPattern) *dto.PatternResponse {
	resp := &dto.PatternResponse{
		ID:               p.PatternID,
		TeamID:           p.TeamID,
		Name:             p.Name,
		Description:      p.Description,
		PatternType:      string(p.PatternType),
		PatternConfig:    []byte(p.PatternConfig),
		CycleLengthWeeks: p.CycleLengthWeeks,
		StartsAt:         p.StartsAt.Format(model.DateLayout),
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
	if p.EndsAt != nil {
		endsAt := p.EndsAt.Format(model.DateLayout)
		resp.EndsAt = &endsAt
	}
	return resp
}
