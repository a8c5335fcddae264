package model

import "time"

// BadgeCriterion 徽章判定谓词的类型标签，规则数据驱动，便于扩充
type BadgeCriterion string

const (
	CriterionXPTotal        BadgeCriterion = "xp_total"
	CriterionStreakDays     BadgeCriterion = "streak_days"
	CriterionMasteryLevel   BadgeCriterion = "mastery_level"
	CriterionQuizAttempts   BadgeCriterion = "quiz_attempts"
	CriterionPerfectQuizzes BadgeCriterion = "perfect_quizzes"
)

// Badge 徽章定义：一个带阈值的判定谓词
// swagger:model Badge
type Badge struct {
	BaseModel
	Code        string         `gorm:"size:50;unique;not null" json:"code"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"size:255" json:"description"`
	Icon        string         `gorm:"size:255" json:"icon"`
	Criterion   BadgeCriterion `gorm:"size:30;not null" json:"criterion"`
	Threshold   int            `gorm:"not null" json:"threshold"`
	XPReward    int            `gorm:"default:0" json:"xpReward"`
	Enabled     bool           `gorm:"default:true" json:"enabled"`
}

func (Badge) TableName() string {
	return "badges"
}

// BadgeAward (学习者, 徽章) 的获得事实，联合唯一索引保证同一徽章至多持有一次
type BadgeAward struct {
	BaseModel
	LearnerID uint      `gorm:"uniqueIndex:idx_award_learner_badge;not null" json:"learnerId"`
	BadgeID   uint      `gorm:"uniqueIndex:idx_award_learner_badge;not null" json:"badgeId"`
	AwardedAt time.Time `json:"awardedAt"`
}

func (BadgeAward) TableName() string {
	return "badge_awards"
}
