package model

import "time"

// WeakArea 按 (学习者, 学科, 知识点) 维度的错误计数，供出题服务做针对性提示
// swagger:model WeakArea
type WeakArea struct {
	BaseModel
	LearnerID          uint      `gorm:"uniqueIndex:idx_weak_learner_subject_topic;not null" json:"learnerId"`
	Subject            string    `gorm:"size:50;uniqueIndex:idx_weak_learner_subject_topic;not null" json:"subject"`
	Topic              string    `gorm:"size:100;uniqueIndex:idx_weak_learner_subject_topic;not null" json:"topic"`
	ErrorCount         int       `gorm:"default:0" json:"errorCount"`
	ConsecutiveCorrect int       `gorm:"default:0" json:"consecutiveCorrect"`
	LastErrorAt        time.Time `json:"lastErrorAt"`
	IsResolved         bool      `gorm:"default:false" json:"isResolved"`
}

func (WeakArea) TableName() string {
	return "weak_areas"
}
