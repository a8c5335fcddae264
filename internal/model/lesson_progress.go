package model

import "time"

// LessonProgress 学习者在单个课时上的进度，测验提交时 upsert
type LessonProgress struct {
	BaseModel
	LearnerID   uint       `gorm:"uniqueIndex:idx_progress_learner_lesson;not null" json:"learnerId"`
	LessonID    uint       `gorm:"uniqueIndex:idx_progress_learner_lesson;not null" json:"lessonId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	BestScore   int        `gorm:"default:0" json:"bestScore"` // 历史最高百分比，只升不降
	Attempts    int        `gorm:"default:0" json:"attempts"`
	CompletedAt *time.Time `json:"completedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
