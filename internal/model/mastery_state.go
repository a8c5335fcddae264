package model

// MasteryState 按 (学习者, 学科, 年级) 维度的长期掌握度聚合。
// 仅在会话提交时写入，会话过程中不落库
// swagger:model MasteryState
type MasteryState struct {
	BaseModel
	LearnerID              uint       `gorm:"uniqueIndex:idx_mastery_learner_subject_grade;not null" json:"learnerId"`
	Subject                string     `gorm:"size:50;uniqueIndex:idx_mastery_learner_subject_grade;not null" json:"subject"`
	GradeLevel             int        `gorm:"uniqueIndex:idx_mastery_learner_subject_grade;not null" json:"gradeLevel"`
	CurrentDifficulty      Difficulty `gorm:"size:10;default:'medium'" json:"currentDifficulty"` // 下次会话的种子难度
	MasteryLevel           int        `gorm:"default:50" json:"masteryLevel"`                    // 0-100
	TotalSessions          int        `gorm:"default:0" json:"totalSessions"`
	TotalQuestionsAnswered int        `gorm:"default:0" json:"totalQuestionsAnswered"`
	TotalCorrect           int        `gorm:"default:0" json:"totalCorrect"`
	BestStreak             int        `gorm:"default:0" json:"bestStreak"` // 单次会话内连对的历史高点
}

func (MasteryState) TableName() string {
	return "mastery_states"
}
