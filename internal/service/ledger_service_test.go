package service

import (
	"testing"
	"time"

	"kursus_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardXPIdempotent(t *testing.T) {
	db := newTestDB(t)
	learner := createTestLearner(t, db, "xp@test.local")
	svc := newTestLedger(t, db)

	total, err := svc.AwardXP(learner.ID, 30, "quiz:pass", "attempt:abc")
	require.NoError(t, err)
	assert.Equal(t, 30, total)

	// 同一幂等键重放：总额不变
	total, err = svc.AwardXP(learner.ID, 30, "quiz:pass", "attempt:abc")
	require.NoError(t, err)
	assert.Equal(t, 30, total)

	// 新键正常入账
	total, err = svc.AwardXP(learner.ID, 50, "quiz:perfect", "attempt:def")
	require.NoError(t, err)
	assert.Equal(t, 80, total)

	var events int64
	require.NoError(t, db.Model(&model.LedgerEvent{}).Where("learner_id = ?", learner.ID).Count(&events).Error)
	assert.EqualValues(t, 2, events)
}

func TestCalculateLevel(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLedger(t, db)

	tests := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{199, 1},
		{200, 2},
		{399, 2},
		{400, 3},
		{2000, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, svc.CalculateLevel(tt.xp), "xp=%d", tt.xp)
	}
}

func TestAwardXPRecomputesLevel(t *testing.T) {
	db := newTestDB(t)
	learner := createTestLearner(t, db, "level@test.local")
	svc := newTestLedger(t, db)

	_, err := svc.AwardXP(learner.ID, 450, "quiz:pass", "k1")
	require.NoError(t, err)

	var reloaded model.Learner
	require.NoError(t, db.First(&reloaded, learner.ID).Error)
	assert.Equal(t, 450, reloaded.XP)
	assert.Equal(t, 3, reloaded.Level)
}

func TestUpdateStreakCalendarRules(t *testing.T) {
	db := newTestDB(t)
	learner := createTestLearner(t, db, "streak@test.local")
	svc := newTestLedger(t, db)

	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)

	// 首次活动：连续1天
	res, err := svc.UpdateStreak(learner.ID, day1)
	require.NoError(t, err)
	assert.True(t, res.StreakUpdated)
	assert.Equal(t, 1, res.CurrentStreak)

	// 同日重复：no-op
	res, err = svc.UpdateStreak(learner.ID, day1.Add(8*time.Hour))
	require.NoError(t, err)
	assert.False(t, res.StreakUpdated)
	assert.Equal(t, 1, res.CurrentStreak)

	// 次日：+1
	res, err = svc.UpdateStreak(learner.ID, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, res.StreakUpdated)
	assert.Equal(t, 2, res.CurrentStreak)

	// 跳过一天后：重置为1，历史最佳保留
	res, err = svc.UpdateStreak(learner.ID, day1.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.True(t, res.StreakUpdated)
	assert.Equal(t, 1, res.CurrentStreak)

	var reloaded model.Learner
	require.NoError(t, db.First(&reloaded, learner.ID).Error)
	assert.Equal(t, 2, reloaded.BestStreak)
}

func TestCheckAndAwardBadgesAtMostOnce(t *testing.T) {
	db := newTestDB(t)
	learner := createTestLearner(t, db, "badge@test.local")
	svc := newTestLedger(t, db)

	// 1000 XP 触发 xp_1000
	_, err := svc.AwardXP(learner.ID, 1000, "quiz:pass", "big")
	require.NoError(t, err)

	awarded, err := svc.CheckAndAwardBadges(learner.ID)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "xp_1000", awarded[0].Code)

	// 重复评估不再返回已获得的徽章
	awarded, err = svc.CheckAndAwardBadges(learner.ID)
	require.NoError(t, err)
	assert.Empty(t, awarded)

	var awards int64
	require.NoError(t, db.Model(&model.BadgeAward{}).Where("learner_id = ?", learner.ID).Count(&awards).Error)
	assert.EqualValues(t, 1, awards)

	// 徽章自带的XP奖励已入账
	var reloaded model.Learner
	require.NoError(t, db.First(&reloaded, learner.ID).Error)
	assert.Equal(t, 1050, reloaded.XP)
}

func TestCheckAndAwardBadgesMasteryCriterion(t *testing.T) {
	db := newTestDB(t)
	learner := createTestLearner(t, db, "badge2@test.local")
	svc := newTestLedger(t, db)

	require.NoError(t, db.Create(&model.MasteryState{
		LearnerID:         learner.ID,
		Subject:           "math",
		GradeLevel:        3,
		CurrentDifficulty: model.DifficultyHard,
		MasteryLevel:      85,
	}).Error)

	awarded, err := svc.CheckAndAwardBadges(learner.ID)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, "mastery_80", awarded[0].Code)
}

func TestGetProfile(t *testing.T) {
	db := newTestDB(t)
	learner := createTestLearner(t, db, "profile@test.local")
	svc := newTestLedger(t, db)

	_, err := svc.AwardXP(learner.ID, 250, "quiz:pass", "p1")
	require.NoError(t, err)

	profile, err := svc.GetProfile(learner.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, profile.XP)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, 400, profile.NextLevelXP)
	assert.Empty(t, profile.Badges)
}

func TestGetProfileUnknownLearner(t *testing.T) {
	db := newTestDB(t)
	svc := newTestLedger(t, db)

	_, err := svc.GetProfile(99999)
	assert.Error(t, err)
}
