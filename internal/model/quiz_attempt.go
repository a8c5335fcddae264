package model

import "time"

// QuizAttempt 一次判分后的不可变提交记录。
// attempt_key 的唯一索引保证重试提交不会产生第二条记录
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	AttemptKey     string          `gorm:"size:64;uniqueIndex;not null" json:"attemptKey"`
	LearnerID      uint            `gorm:"index;not null" json:"learnerId"`
	QuizID         uint            `gorm:"index;not null" json:"quizId"`
	LessonID       uint            `gorm:"index;not null" json:"lessonId"`
	Score          int             `gorm:"not null" json:"score"` // 实得分
	TotalPoints    int             `gorm:"not null" json:"totalPoints"`
	Percentage     int             `gorm:"not null" json:"percentage"`
	Passed         bool            `gorm:"default:false" json:"passed"`
	IsPerfect      bool            `gorm:"default:false" json:"isPerfect"`
	CorrectCount   int             `gorm:"default:0" json:"correctCount"`
	TotalQuestions int             `gorm:"default:0" json:"totalQuestions"`
	Answers        []AttemptAnswer `gorm:"serializer:json" json:"answers"`
	XPEarned       int             `gorm:"default:0" json:"xpEarned"`
	TimeSpent      int             `gorm:"default:0" json:"timeSpent"` // 秒
	StartedAt      time.Time       `json:"startedAt"`
	CompletedAt    time.Time       `json:"completedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AttemptAnswer 单题作答明细
type AttemptAnswer struct {
	QuestionID     uint   `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
	CorrectOption  string `json:"correctOption"`
	Correct        bool   `json:"correct"`
	Points         int    `json:"points"`
	Topic          string `json:"topic,omitempty"`
}
