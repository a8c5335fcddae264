package service

import (
	"fmt"
	"time"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"
	"kursus_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService 游戏化账本：XP总额、等级、连续打卡与徽章归属。
// 三类操作各自对同一学习者的并发调用原子生效，且对重试安全：
// XP按幂等键入账，打卡按自然日比较，徽章靠唯一索引兜底
type LedgerService struct {
	LearnerRepo *repository.LearnerRepository
	BadgeRepo   *repository.BadgeRepository
	MasteryRepo *repository.MasteryRepository
	QuizRepo    *repository.QuizRepository
	DB          *gorm.DB
	Engine      config.EngineConfig
}

func NewLedgerService(
	learnerRepo *repository.LearnerRepository,
	badgeRepo *repository.BadgeRepository,
	masteryRepo *repository.MasteryRepository,
	quizRepo *repository.QuizRepository,
	db *gorm.DB,
	engine config.EngineConfig,
) *LedgerService {
	return &LedgerService{
		LearnerRepo: learnerRepo,
		BadgeRepo:   badgeRepo,
		MasteryRepo: masteryRepo,
		QuizRepo:    quizRepo,
		DB:          db,
		Engine:      engine,
	}
}

// CalculateLevel 等级是XP的确定性单调函数
func (s *LedgerService) CalculateLevel(xp int) int {
	return xp/s.Engine.XPPerLevel + 1
}

// AwardXP 幂等入账：同一幂等键重复调用不再次加分，返回当前总额
func (s *LedgerService) AwardXP(learnerID uint, amount int, reason, idempotencyKey string) (int, error) {
	var total int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = s.awardXPTx(tx, learnerID, amount, reason, idempotencyKey)
		return err
	})
	return total, err
}

func (s *LedgerService) awardXPTx(tx *gorm.DB, learnerID uint, amount int, reason, idempotencyKey string) (int, error) {
	event := model.LedgerEvent{
		LearnerID:      learnerID,
		Amount:         amount,
		Reason:         reason,
		IdempotencyKey: idempotencyKey,
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idempotency_key"}},
		DoNothing: true,
	}).Create(&event)
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected > 0 {
		err := tx.Model(&model.Learner{}).
			Where("id = ?", learnerID).
			Update("xp", gorm.Expr("xp + ?", amount)).Error
		if err != nil {
			return 0, err
		}
	}

	var learner model.Learner
	if err := tx.First(&learner, learnerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, util.ErrLearnerNotFound
		}
		return 0, err
	}

	// 任一入账后由总额重算等级
	if level := s.CalculateLevel(learner.XP); level != learner.Level {
		if err := tx.Model(&model.Learner{}).Where("id = ?", learnerID).
			Update("level", level).Error; err != nil {
			return 0, err
		}
	}

	return learner.XP, nil
}

// StreakResult updateStreak 的结果，StreakUpdated 为真表示
// 打卡奖励可能适用（由调用方决定是否发放）
type StreakResult struct {
	StreakUpdated bool `json:"streakUpdated"`
	CurrentStreak int  `json:"currentStreak"`
}

// UpdateStreak 按自然日维护连续打卡：同日重复为no-op，
// 次日+1并刷新历史最佳，隔天及以上（或首次活动）重置为1
func (s *LedgerService) UpdateStreak(learnerID uint, activityDate time.Time) (StreakResult, error) {
	var result StreakResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = s.updateStreakTx(tx, learnerID, activityDate)
		return err
	})
	return result, err
}

func (s *LedgerService) updateStreakTx(tx *gorm.DB, learnerID uint, activityDate time.Time) (StreakResult, error) {
	var learner model.Learner
	if err := tx.First(&learner, learnerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return StreakResult{}, util.ErrLearnerNotFound
		}
		return StreakResult{}, err
	}

	day := util.DateOnly(activityDate)

	if learner.LastActivityDate != nil && util.SameDay(*learner.LastActivityDate, day) {
		return StreakResult{StreakUpdated: false, CurrentStreak: learner.CurrentStreak}, nil
	}

	newStreak := 1
	if learner.LastActivityDate != nil && util.IsNextDay(*learner.LastActivityDate, day) {
		newStreak = learner.CurrentStreak + 1
	}

	best := learner.BestStreak
	if newStreak > best {
		best = newStreak
	}

	// 带守卫的更新：并发提交中先到者生效，后到者观察到同日状态
	updates := map[string]interface{}{
		"current_streak":     newStreak,
		"best_streak":        best,
		"last_activity_date": day,
	}
	query := tx.Model(&model.Learner{}).Where("id = ?", learnerID)
	if learner.LastActivityDate == nil {
		query = query.Where("last_activity_date IS NULL")
	} else {
		query = query.Where("last_activity_date = ?", *learner.LastActivityDate)
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return StreakResult{}, res.Error
	}
	if res.RowsAffected == 0 {
		var current model.Learner
		if err := tx.First(&current, learnerID).Error; err != nil {
			return StreakResult{}, err
		}
		return StreakResult{StreakUpdated: false, CurrentStreak: current.CurrentStreak}, nil
	}

	return StreakResult{StreakUpdated: true, CurrentStreak: newStreak}, nil
}

// learnerStats 徽章判定用的聚合快照
type learnerStats struct {
	XP             int
	BestStreak     int
	MaxMastery     int
	QuizAttempts   int64
	PerfectQuizzes int64
}

func (s *LedgerService) collectStats(tx *gorm.DB, learnerID uint) (*learnerStats, error) {
	var learner model.Learner
	if err := tx.First(&learner, learnerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLearnerNotFound
		}
		return nil, err
	}

	var maxMastery *int
	err := tx.Model(&model.MasteryState{}).
		Where("learner_id = ?", learnerID).
		Select("MAX(mastery_level)").
		Scan(&maxMastery).Error
	if err != nil {
		return nil, err
	}

	total, perfect, err := s.QuizRepo.CountAttempts(tx, learnerID)
	if err != nil {
		return nil, err
	}

	stats := &learnerStats{
		XP:             learner.XP,
		BestStreak:     learner.BestStreak,
		QuizAttempts:   total,
		PerfectQuizzes: perfect,
	}
	if maxMastery != nil {
		stats.MaxMastery = *maxMastery
	}
	return stats, nil
}

func (st *learnerStats) satisfies(badge model.Badge) bool {
	switch badge.Criterion {
	case model.CriterionXPTotal:
		return st.XP >= badge.Threshold
	case model.CriterionStreakDays:
		return st.BestStreak >= badge.Threshold
	case model.CriterionMasteryLevel:
		return st.MaxMastery >= badge.Threshold
	case model.CriterionQuizAttempts:
		return st.QuizAttempts >= int64(badge.Threshold)
	case model.CriterionPerfectQuizzes:
		return st.PerfectQuizzes >= int64(badge.Threshold)
	}
	return false
}

// CheckAndAwardBadges 对照当前聚合快照评估全部启用中的徽章，
// 只返回本次新获得的。并发双重评估由唯一索引兜底，不会重复授予
func (s *LedgerService) CheckAndAwardBadges(learnerID uint) ([]model.Badge, error) {
	var awarded []model.Badge
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		awarded, err = s.checkAndAwardBadgesTx(tx, learnerID)
		return err
	})
	return awarded, err
}

func (s *LedgerService) checkAndAwardBadgesTx(tx *gorm.DB, learnerID uint) ([]model.Badge, error) {
	stats, err := s.collectStats(tx, learnerID)
	if err != nil {
		return nil, err
	}

	badges, err := s.BadgeRepo.ListEnabled(tx)
	if err != nil {
		return nil, err
	}
	owned, err := s.BadgeRepo.AwardedBadgeIDs(tx, learnerID)
	if err != nil {
		return nil, err
	}

	var newlyAwarded []model.Badge
	now := time.Now()
	for _, badge := range badges {
		if owned[badge.ID] || !stats.satisfies(badge) {
			continue
		}

		award := model.BadgeAward{
			LearnerID: learnerID,
			BadgeID:   badge.ID,
			AwardedAt: now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).Create(&award)
		if res.Error != nil {
			return nil, res.Error
		}
		// RowsAffected==0 说明并发评估已经授予过
		if res.RowsAffected == 0 {
			continue
		}

		if badge.XPReward > 0 {
			key := fmt.Sprintf("badge:%d:%s", learnerID, badge.Code)
			if _, err := s.awardXPTx(tx, learnerID, badge.XPReward, "badge:"+badge.Code, key); err != nil {
				return nil, err
			}
		}
		newlyAwarded = append(newlyAwarded, badge)
	}

	return newlyAwarded, nil
}

// GamificationProfile 档案聚合视图
type GamificationProfile struct {
	LearnerID     uint          `json:"learnerId"`
	Name          string        `json:"name"`
	XP            int           `json:"xp"`
	Level         int           `json:"level"`
	NextLevelXP   int           `json:"nextLevelXp"`
	CurrentStreak int           `json:"currentStreak"`
	BestStreak    int           `json:"bestStreak"`
	Badges        []model.Badge `json:"badges"`
}

func (s *LedgerService) GetProfile(learnerID uint) (*GamificationProfile, error) {
	learner, err := s.LearnerRepo.FindByID(learnerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLearnerNotFound
		}
		return nil, err
	}

	badges, err := s.BadgeRepo.FindAwardsByLearner(learnerID)
	if err != nil {
		return nil, err
	}

	return &GamificationProfile{
		LearnerID:     learner.ID,
		Name:          learner.Name,
		XP:            learner.XP,
		Level:         learner.Level,
		NextLevelXP:   learner.Level * s.Engine.XPPerLevel,
		CurrentStreak: learner.CurrentStreak,
		BestStreak:    learner.BestStreak,
		Badges:        badges,
	}, nil
}
