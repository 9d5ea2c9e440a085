//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "shiftflow/backend/pkg/errors"

	"shiftflow/backend/internal/model"
	"shiftflow/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=shiftflow password=shiftflow_password dbname=shiftflow_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Team{},
		&model.User{},
		&model.RotationPattern{},
		&model.RotationAssignment{},
		&model.RotationHistory{},
		&model.Shift{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

const testTenantID = "00000000-0000-0000-0000-00000000a001"

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (team *model.Team, user *model.User, pattern *model.RotationPattern, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	team = &model.Team{
		TenantID: testTenantID,
		Name:     fmt.Sprintf("测试团队-%d", time.Now().UnixNano()),
		IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(team).Error; err != nil {
		t.Fatalf("创建团队失败: %v", err)
	}

	user = &model.User{
		TenantID: testTenantID,
		TeamID:   &team.TeamID,
		Name:     "测试员工",
		Email:    fmt.Sprintf("test%d@example.com", time.Now().UnixNano()),
		Role:     "employee",
		IsActive: true,
	}
	if err := testDB.WithContext(ctx).Create(user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	pattern = &model.RotationPattern{
		TenantID:         testTenantID,
		TeamID:           &team.TeamID,
		Name:             fmt.Sprintf("测试模式-%d", time.Now().UnixNano()),
		PatternType:      model.PatternAlternateFS,
		PatternConfig:    model.RawConfig(`{"shifts":["F","S"],"skip_weekends":true}`),
		CycleLengthWeeks: 2,
		StartsAt:         time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		IsActive:         true,
	}
	if err := testDB.WithContext(ctx).Create(pattern).Error; err != nil {
		t.Fatalf("创建轮班模式失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("pattern_id = ?", pattern.PatternID).Delete(&model.RotationHistory{})
		testDB.Unscoped().Where("pattern_id = ?", pattern.PatternID).Delete(&model.RotationAssignment{})
		testDB.Unscoped().Where("pattern_id = ?", pattern.PatternID).Delete(&model.RotationPattern{})
		testDB.Unscoped().Where("user_id = ?", user.UserID).Delete(&model.User{})
		testDB.Unscoped().Where("team_id = ?", team.TeamID).Delete(&model.Team{})
	}
	return
}

func historyRow(pattern *model.RotationPattern, user *model.User, date time.Time, shift model.ShiftType) model.RotationHistory {
	return model.RotationHistory{
		TenantID:     testTenantID,
		PatternID:    pattern.PatternID,
		AssignmentID: "00000000-0000-0000-0000-00000000b001",
		UserID:       user.UserID,
		TeamID:       pattern.TeamID,
		ShiftDate:    date,
		ShiftType:    shift,
		WeekNumber:   1,
		Status:       model.HistoryGenerated,
		GeneratedAt:  time.Now(),
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	_, user, pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	wantErr := errors.New("boom")
	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		rows := []model.RotationHistory{historyRow(pattern, user, date, model.ShiftEarly)}
		if err := txRepo.RotationHistory.BatchUpsert(ctx, rows, false); err != nil {
			return err
		}
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("期望事务返回 boom，得到: %v", err)
	}

	// 验证数据未持久化
	rows, err := repo.RotationHistory.ListByRange(ctx, testTenantID, pattern.PatternID, date, date)
	if err != nil {
		t.Fatalf("查询历史失败: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("期望回滚后历史为空，实际 %d 行", len(rows))
	}
}

func TestTransaction_Commit(t *testing.T) {
	_, user, pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	err := repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		rows := []model.RotationHistory{historyRow(pattern, user, date, model.ShiftEarly)}
		return txRepo.RotationHistory.BatchUpsert(ctx, rows, false)
	})
	if err != nil {
		t.Fatalf("事务提交失败: %v", err)
	}

	rows, err := repo.RotationHistory.ListByRange(ctx, testTenantID, pattern.PatternID, date, date)
	if err != nil {
		t.Fatalf("查询历史失败: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("期望 1 行历史，实际 %d 行", len(rows))
	}
	if rows[0].ShiftType != model.ShiftEarly {
		t.Errorf("期望班次 F，实际=%s", rows[0].ShiftType)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: BatchUpsert 幂等与终态保护
// ═══════════════════════════════════════════════════════════

func TestBatchUpsert_RegenerateUpdatesGeneratedRows(t *testing.T) {
	_, user, pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	if err := repo.RotationHistory.BatchUpsert(ctx, []model.RotationHistory{historyRow(pattern, user, date, model.ShiftEarly)}, false); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}

	// 再生成同一日期写入不同班次：generated 行应被更新而非新增
	if err := repo.RotationHistory.BatchUpsert(ctx, []model.RotationHistory{historyRow(pattern, user, date, model.ShiftLate)}, false); err != nil {
		t.Fatalf("再生成写入失败: %v", err)
	}

	rows, err := repo.RotationHistory.ListByRange(ctx, testTenantID, pattern.PatternID, date, date)
	if err != nil {
		t.Fatalf("查询历史失败: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("期望唯一键约束下仍为 1 行，实际 %d 行", len(rows))
	}
	if rows[0].ShiftType != model.ShiftLate {
		t.Errorf("期望班次被更新为 S，实际=%s", rows[0].ShiftType)
	}
}

func TestBatchUpsert_TerminalRowProtected(t *testing.T) {
	_, user, pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)

	if err := repo.RotationHistory.BatchUpsert(ctx, []model.RotationHistory{historyRow(pattern, user, date, model.ShiftEarly)}, false); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}

	// 确认该行（进入终态）
	rows, _ := repo.RotationHistory.ListByRange(ctx, testTenantID, pattern.PatternID, date, date)
	if len(rows) != 1 {
		t.Fatalf("期望 1 行历史，实际 %d 行", len(rows))
	}
	h := rows[0]
	h.Status = model.HistoryConfirmed
	if err := repo.RotationHistory.TransitionStatus(ctx, &h, model.HistoryGenerated); err != nil {
		t.Fatalf("确认班次失败: %v", err)
	}

	// 不带 force 再生成：终态行保持不动
	if err := repo.RotationHistory.BatchUpsert(ctx, []model.RotationHistory{historyRow(pattern, user, date, model.ShiftNight)}, false); err != nil {
		t.Fatalf("再生成写入失败: %v", err)
	}
	rows, _ = repo.RotationHistory.ListByRange(ctx, testTenantID, pattern.PatternID, date, date)
	if rows[0].Status != model.HistoryConfirmed || rows[0].ShiftType != model.ShiftEarly {
		t.Errorf("期望终态行不被覆盖，实际 status=%s shift=%s", rows[0].Status, rows[0].ShiftType)
	}

	// force 再生成：终态行被重置
	if err := repo.RotationHistory.BatchUpsert(ctx, []model.RotationHistory{historyRow(pattern, user, date, model.ShiftNight)}, true); err != nil {
		t.Fatalf("强制再生成写入失败: %v", err)
	}
	rows, _ = repo.RotationHistory.ListByRange(ctx, testTenantID, pattern.PatternID, date, date)
	if rows[0].Status != model.HistoryGenerated || rows[0].ShiftType != model.ShiftNight {
		t.Errorf("期望 force 覆盖终态行，实际 status=%s shift=%s", rows[0].Status, rows[0].ShiftType)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Pattern_ConflictDetected(t *testing.T) {
	_, _, pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 模拟并发：获取两份副本
	copy1, _ := repo.RotationPattern.GetByID(ctx, testTenantID, pattern.PatternID)
	copy2, _ := repo.RotationPattern.GetByID(ctx, testTenantID, pattern.PatternID)

	// 第一次更新成功
	copy1.Name = "更新后的模式"
	if err := repo.RotationPattern.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败（version 已过期）
	copy2.Name = "并发更新"
	err := repo.RotationPattern.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestTransitionStatus_StaleStateRejected(t *testing.T) {
	_, user, pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	if err := repo.RotationHistory.BatchUpsert(ctx, []model.RotationHistory{historyRow(pattern, user, date, model.ShiftEarly)}, false); err != nil {
		t.Fatalf("写入历史失败: %v", err)
	}
	rows, _ := repo.RotationHistory.ListByRange(ctx, testTenantID, pattern.PatternID, date, date)
	h := rows[0]

	h.Status = model.HistoryConfirmed
	if err := repo.RotationHistory.TransitionStatus(ctx, &h, model.HistoryGenerated); err != nil {
		t.Fatalf("首次迁移应成功: %v", err)
	}

	// 行已不在 generated 态，再以该前置条件迁移应失败
	h.Status = model.HistoryCancelled
	err := repo.RotationHistory.TransitionStatus(ctx, &h, model.HistoryGenerated)
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 分配重叠查询
// ═══════════════════════════════════════════════════════════

func TestListOverlapping_ExclusiveEndBoundary(t *testing.T) {
	_, user, pattern, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	ends := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	asg := model.RotationAssignment{
		TenantID:   testTenantID,
		PatternID:  pattern.PatternID,
		UserID:     user.UserID,
		ShiftGroup: model.ShiftEarly,
		IsActive:   true,
		StartsAt:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		EndsAt:     &ends,
		AssignedAt: time.Now(),
	}
	if err := repo.RotationAssignment.BatchCreate(ctx, []model.RotationAssignment{asg}); err != nil {
		t.Fatalf("创建分配失败: %v", err)
	}

	// 新区间正好从旧区间的 ends_at 开始：排他边界，不算重叠
	found, err := repo.RotationAssignment.ListOverlapping(ctx, testTenantID, pattern.PatternID, []string{user.UserID}, ends, nil)
	if err != nil {
		t.Fatalf("查询重叠分配失败: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("期望排他边界无重叠，实际 %d 条", len(found))
	}

	// 新区间从旧区间内部开始：重叠
	found, err = repo.RotationAssignment.ListOverlapping(ctx, testTenantID, pattern.PatternID, []string{user.UserID}, ends.AddDate(0, 0, -1), nil)
	if err != nil {
		t.Fatalf("查询重叠分配失败: %v", err)
	}
	if len(found) != 1 {
		t.Errorf("期望检出 1 条重叠分配，实际 %d 条", len(found))
	}
}
