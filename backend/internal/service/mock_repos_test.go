package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shiftflow/backend/internal/model"
	"shiftflow/backend/internal/repository"
)

// ── Mock RotationPatternRepository ──

type mockPatternRepo struct {
	patterns map[string]*model.RotationPattern
}

func newMockPatternRepo() *mockPatternRepo {
	return &mockPatternRepo{patterns: make(map[string]*model.RotationPattern)}
}

func (m *mockPatternRepo) Create(_ context.Context, pattern *model.RotationPattern) error {
	if pattern.PatternID == "" {
		pattern.PatternID = "pat-" + pattern.Name
	}
	m.patterns[pattern.PatternID] = pattern
	return nil
}

func (m *mockPatternRepo) GetByID(_ context.Context, tenantID, id string) (*model.RotationPattern, error) {
	if p, ok := m.patterns[id]; ok && p.TenantID == tenantID {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPatternRepo) List(_ context.Context, tenantID, teamID string, isActive *bool, _, _ int) ([]model.RotationPattern, int64, error) {
	var result []model.RotationPattern
	for _, p := range m.patterns {
		if p.TenantID != tenantID {
			continue
		}
		if teamID != "" && (p.TeamID == nil || *p.TeamID != teamID) {
			continue
		}
		if isActive != nil && p.IsActive != *isActive {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (m *mockPatternRepo) Update(_ context.Context, pattern *model.RotationPattern) error {
	pattern.Version++
	m.patterns[pattern.PatternID] = pattern
	return nil
}

func (m *mockPatternRepo) Delete(_ context.Context, tenantID, id, _ string) error {
	if p, ok := m.patterns[id]; ok && p.TenantID == tenantID {
		delete(m.patterns, id)
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Mock RotationAssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.RotationAssignment
	seq         int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.RotationAssignment)}
}

func (m *mockAssignmentRepo) BatchCreate(_ context.Context, assignments []model.RotationAssignment) error {
	for i := range assignments {
		if assignments[i].AssignmentID == "" {
			m.seq++
			assignments[i].AssignmentID = fmt.Sprintf("asg-%d", m.seq)
		}
		a := assignments[i]
		m.assignments[a.AssignmentID] = &a
	}
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, tenantID, id string) (*model.RotationAssignment, error) {
	if a, ok := m.assignments[id]; ok && a.TenantID == tenantID {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByPattern(_ context.Context, tenantID, patternID string, activeOnly bool) ([]model.RotationAssignment, error) {
	var result []model.RotationAssignment
	for _, a := range m.assignments {
		if a.TenantID != tenantID || a.PatternID != patternID {
			continue
		}
		if activeOnly && !a.IsActive {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListOverlapping(_ context.Context, tenantID, patternID string, userIDs []string, startsAt time.Time, endsAt *time.Time) ([]model.RotationAssignment, error) {
	targets := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		targets[id] = true
	}
	var result []model.RotationAssignment
	for _, a := range m.assignments {
		if a.TenantID != tenantID || a.PatternID != patternID || !a.IsActive {
			continue
		}
		if !targets[a.UserID] {
			continue
		}
		if a.Overlaps(startsAt, endsAt) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, assignment *model.RotationAssignment) error {
	assignment.Version++
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

// ── Mock RotationHistoryRepository ──

type mockHistoryRepo struct {
	rows map[string]*model.RotationHistory // key = historyID
	seq  int
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{rows: make(map[string]*model.RotationHistory)}
}

func (m *mockHistoryRepo) occurrenceKey(patternID, userID string, date time.Time) string {
	return patternID + ":" + userID + ":" + date.Format(model.DateLayout)
}

func (m *mockHistoryRepo) findByOccurrence(patternID, userID string, date time.Time) *model.RotationHistory {
	key := m.occurrenceKey(patternID, userID, date)
	for _, h := range m.rows {
		if m.occurrenceKey(h.PatternID, h.UserID, h.ShiftDate) == key {
			return h
		}
	}
	return nil
}

func (m *mockHistoryRepo) BatchUpsert(_ context.Context, rows []model.RotationHistory, force bool) error {
	for i := range rows {
		row := rows[i]
		existing := m.findByOccurrence(row.PatternID, row.UserID, row.ShiftDate)
		if existing == nil {
			m.seq++
			row.HistoryID = fmt.Sprintf("his-%d", m.seq)
			m.rows[row.HistoryID] = &row
			continue
		}
		// 终态行仅在 force 时覆盖
		if existing.Status != model.HistoryGenerated && !force {
			continue
		}
		existing.AssignmentID = row.AssignmentID
		existing.TeamID = row.TeamID
		existing.ShiftType = row.ShiftType
		existing.WeekNumber = row.WeekNumber
		existing.Status = row.Status
		existing.ModifiedReason = row.ModifiedReason
		existing.ConfirmedAt = row.ConfirmedAt
		existing.ConfirmedBy = row.ConfirmedBy
		existing.GeneratedAt = row.GeneratedAt
	}
	return nil
}

func (m *mockHistoryRepo) GetByID(_ context.Context, tenantID, id string) (*model.RotationHistory, error) {
	if h, ok := m.rows[id]; ok && h.TenantID == tenantID {
		// 返回副本，模拟真实查询的独立行；否则调用方原地修改会破坏 TransitionStatus 的前置状态比较
		copied := *h
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHistoryRepo) List(_ context.Context, tenantID string, filter repository.HistoryFilter, _, _ int) ([]model.RotationHistory, int64, error) {
	var result []model.RotationHistory
	for _, h := range m.rows {
		if h.TenantID != tenantID {
			continue
		}
		if filter.PatternID != "" && h.PatternID != filter.PatternID {
			continue
		}
		if filter.UserID != "" && h.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && h.Status != filter.Status {
			continue
		}
		if filter.StartDate != nil && h.ShiftDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && h.ShiftDate.After(*filter.EndDate) {
			continue
		}
		result = append(result, *h)
	}
	return result, int64(len(result)), nil
}

func (m *mockHistoryRepo) ListByRange(_ context.Context, tenantID, patternID string, start, end time.Time) ([]model.RotationHistory, error) {
	var result []model.RotationHistory
	for _, h := range m.rows {
		if h.TenantID != tenantID || h.PatternID != patternID {
			continue
		}
		if h.ShiftDate.Before(start) || h.ShiftDate.After(end) {
			continue
		}
		result = append(result, *h)
	}
	return result, nil
}

func (m *mockHistoryRepo) ListByUserRange(_ context.Context, tenantID, userID string, start, end time.Time) ([]model.RotationHistory, error) {
	var result []model.RotationHistory
	for _, h := range m.rows {
		if h.TenantID != tenantID || h.UserID != userID {
			continue
		}
		if h.ShiftDate.Before(start) || h.ShiftDate.After(end) {
			continue
		}
		result = append(result, *h)
	}
	return result, nil
}

func (m *mockHistoryRepo) TransitionStatus(_ context.Context, h *model.RotationHistory, fromStatus string) error {
	existing, ok := m.rows[h.HistoryID]
	if !ok || existing.Status != fromStatus {
		return gorm.ErrRecordNotFound
	}
	m.rows[h.HistoryID] = h
	return nil
}

// ── Mock UserRepository / TeamRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, tenantID, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok && u.TenantID == tenantID {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, tenantID string, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok && u.TenantID == tenantID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ListByTeam(_ context.Context, tenantID, teamID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.TenantID == tenantID && u.TeamID != nil && *u.TeamID == teamID {
			result = append(result, *u)
		}
	}
	return result, nil
}

type mockTeamRepo struct {
	teams map[string]*model.Team
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[string]*model.Team)}
}

func (m *mockTeamRepo) GetByID(_ context.Context, tenantID, id string) (*model.Team, error) {
	if t, ok := m.teams[id]; ok && t.TenantID == tenantID {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock ShiftRepository ──

type mockShiftRepo struct {
	shifts []model.Shift
}

func newMockShiftRepo() *mockShiftRepo {
	return &mockShiftRepo{}
}

func (m *mockShiftRepo) ListByUsersRange(_ context.Context, tenantID string, userIDs []string, start, end time.Time) ([]model.Shift, error) {
	targets := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		targets[id] = true
	}
	var result []model.Shift
	for _, sh := range m.shifts {
		if sh.TenantID != tenantID || !targets[sh.UserID] {
			continue
		}
		if sh.ShiftDate.Before(start) || sh.ShiftDate.After(end) {
			continue
		}
		result = append(result, sh)
	}
	return result, nil
}

// ── 测试用 Repository 组装 ──

type testRepos struct {
	pattern    *mockPatternRepo
	assignment *mockAssignmentRepo
	history    *mockHistoryRepo
	user       *mockUserRepo
	team       *mockTeamRepo
	shift      *mockShiftRepo
}

func newTestRepos() (*repository.Repository, *testRepos) {
	mocks := &testRepos{
		pattern:    newMockPatternRepo(),
		assignment: newMockAssignmentRepo(),
		history:    newMockHistoryRepo(),
		user:       newMockUserRepo(),
		team:       newMockTeamRepo(),
		shift:      newMockShiftRepo(),
	}
	repo := &repository.Repository{
		User:               mocks.user,
		Team:               mocks.team,
		RotationPattern:    mocks.pattern,
		RotationAssignment: mocks.assignment,
		RotationHistory:    mocks.history,
		Shift:              mocks.shift,
	}
	return repo, mocks
}
