package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftflow/backend/config"
	"shiftflow/backend/internal/dto"
	"shiftflow/backend/internal/model"
	"shiftflow/backend/internal/repository"
)

// ── 轮班生成模块业务错误 ──

var (
	ErrPatternInactive = errors.New("轮班模式已停用")
	ErrRangeTooLarge   = errors.New("日期区间超出允许的最大跨度")
	ErrNoAssignments   = errors.New("该模式下没有活跃的轮班分配")
)

// RotationGenerateService 轮班生成业务接口
//
// 设计说明：
//   - 生成是按员工/按天的无状态计算；唯一的共享可变资源是历史表
//   - 预览模式只计算不落库，不需要任何锁
//   - 提交模式在单个事务内批量 upsert，整段日历要么全写要么全回滚；
//     (pattern_id, user_id, shift_date) 唯一约束把并发竞争变成确定性 upsert
type RotationGenerateService interface {
	Generate(ctx context.Context, patternID string, req *dto.GenerateRequest, tenantID, callerID string) (*dto.GenerateResponse, error)
}

type rotationGenerateService struct {
	cfg    *config.RotationConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRotationGenerateService 创建 RotationGenerateService 实例
func NewRotationGenerateService(cfg *config.RotationConfig, repo *repository.Repository, logger *zap.Logger) RotationGenerateService {
	return &rotationGenerateService{cfg: cfg, repo: repo, logger: logger}
}

// occurrence 生成过程的中间结果
type occurrence struct {
	assignment *model.RotationAssignment
	date       time.Time
	shift      model.ShiftType
	weekNumber int
	overridden bool
	conflict   bool
}

func (s *rotationGenerateService) Generate(ctx context.Context, patternID string, req *dto.GenerateRequest, tenantID, callerID string) (*dto.GenerateResponse, error) {
	// ── 阶段1: 校验输入 ──

	pattern, err := s.repo.RotationPattern.GetByID(ctx, tenantID, patternID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		s.logger.Error("查询轮班模式失败", zap.Error(err))
		return nil, err
	}
	if !pattern.IsActive {
		return nil, ErrPatternInactive
	}

	startDate, err := time.Parse(model.DateLayout, req.StartDate)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	endDate, err := time.Parse(model.DateLayout, req.EndDate)
	if err != nil || endDate.Before(startDate) {
		return nil, ErrInvalidDateRange
	}
	if int(endDate.Sub(startDate).Hours()/24)+1 > s.cfg.MaxRangeDays {
		return nil, ErrRangeTooLarge
	}

	// 配置在创建/更新时已校验，此处解析失败属于数据损坏
	cfg, err := model.ParsePatternConfig(pattern.PatternType, pattern.PatternConfig)
	if err != nil {
		s.logger.Error("模式配置损坏", zap.String("pattern_id", patternID), zap.Error(err))
		return nil, err
	}

	assignments, err := s.repo.RotationAssignment.ListByPattern(ctx, tenantID, patternID, true)
	if err != nil {
		s.logger.Error("查询轮班分配失败", zap.Error(err))
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, ErrNoAssignments
	}

	// ── 阶段2: 展开 — 按天外层循环，结果天然按日期分组 ──

	var occurrences []occurrence
	userIDs := make([]string, 0, len(assignments))
	for i := range assignments {
		userIDs = append(userIDs, assignments[i].UserID)
	}

	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if !pattern.InEffect(day) {
			continue
		}
		for i := range assignments {
			a := &assignments[i]
			if !a.InEffect(day) {
				continue
			}

			shift, week := resolveShift(pattern, cfg, a.RotationOrder, day)

			// 覆盖表优先于计算结果（仅允许覆盖的分配生效）
			overridden := false
			if a.CanOverride {
				if v, ok := a.OverrideDates[day.Format(model.DateLayout)]; ok {
					shift = v
					overridden = true
				}
			}

			if shift == "" {
				continue // 周末跳过、周次无条目或夜班被过滤
			}

			occurrences = append(occurrences, occurrence{
				assignment: a,
				date:       day,
				shift:      shift,
				weekNumber: week,
				overridden: overridden,
			})
		}
	}

	// ── 阶段3: 冲突标记 — 与外部手工排班同日的班次只标记，不覆盖 ──

	manual, err := s.repo.Shift.ListByUsersRange(ctx, tenantID, userIDs, startDate, endDate)
	if err != nil {
		s.logger.Error("查询手工排班失败", zap.Error(err))
		return nil, err
	}
	occupied := make(map[string]bool, len(manual))
	for i := range manual {
		occupied[manual[i].UserID+":"+manual[i].ShiftDate.Format(model.DateLayout)] = true
	}

	conflictCount := 0
	for i := range occurrences {
		key := occurrences[i].assignment.UserID + ":" + occurrences[i].date.Format(model.DateLayout)
		if occupied[key] {
			occurrences[i].conflict = true
			conflictCount++
		}
	}

	resp := &dto.GenerateResponse{
		Preview:         req.Preview,
		GeneratedShifts: toGeneratedShifts(occurrences),
		Days:            groupByDay(occurrences),
		ConflictCount:   conflictCount,
	}

	// ── 阶段4: 预览直接返回；提交模式单事务 upsert ──

	if req.Preview {
		return resp, nil
	}

	now := time.Now()
	rows := make([]model.RotationHistory, 0, len(occurrences))
	for i := range occurrences {
		o := &occurrences[i]
		rows = append(rows, model.RotationHistory{
			TenantID:     tenantID,
			PatternID:    patternID,
			AssignmentID: o.assignment.AssignmentID,
			UserID:       o.assignment.UserID,
			TeamID:       o.assignment.TeamID,
			ShiftDate:    o.date,
			ShiftType:    o.shift,
			WeekNumber:   o.weekNumber,
			Status:       model.HistoryGenerated,
			GeneratedAt:  now,
		})
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		return txRepo.RotationHistory.BatchUpsert(ctx, rows, req.Force)
	})
	if err != nil {
		s.logger.Error("轮班历史写入失败，事务已回滚",
			zap.String("pattern_id", patternID),
			zap.Int("rows", len(rows)),
			zap.Error(err))
		return nil, err
	}

	// 回读落库结果（含终态保留行），作为提交模式的权威响应
	persisted, err := s.repo.RotationHistory.ListByRange(ctx, tenantID, patternID, startDate, endDate)
	if err != nil {
		s.logger.Error("回读轮班历史失败", zap.Error(err))
		return nil, err
	}
	resp.History = make([]dto.HistoryResponse, 0, len(persisted))
	for i := range persisted {
		resp.History = append(resp.History, *toHistoryResponse(&persisted[i]))
	}

	s.logger.Info("轮班生成完成",
		zap.String("pattern_id", patternID),
		zap.String("range", req.StartDate+".."+req.EndDate),
		zap.Int("occurrences", len(occurrences)),
		zap.Int("conflicts", conflictCount))

	return resp, nil
}

// toGeneratedShifts 组装扁平结果（已按日期、员工有序）
func toGeneratedShifts(occurrences []occurrence) []dto.GeneratedShift {
	result := make([]dto.GeneratedShift, 0, len(occurrences))
	for i := range occurrences {
		o := &occurrences[i]
		gs := dto.GeneratedShift{
			UserID:     o.assignment.UserID,
			Date:       o.date.Format(model.DateLayout),
			ShiftType:  string(o.shift),
			WeekNumber: o.weekNumber,
			Overridden: o.overridden,
			Conflict:   o.conflict,
		}
		if o.assignment.User != nil {
			gs.UserName = o.assignment.User.Name
		}
		result = append(result, gs)
	}
	return result
}

// groupByDay 按日期分组（展示用）
func groupByDay(occurrences []occurrence) []dto.GenerateDay {
	var days []dto.GenerateDay
	shifts := toGeneratedShifts(occurrences)
	for _, gs := range shifts {
		if len(days) == 0 || days[len(days)-1].Date != gs.Date {
			days = append(days, dto.GenerateDay{Date: gs.Date})
		}
		last := &days[len(days)-1]
		last.Shifts = append(last.Shifts, gs)
	}
	return days
}
