package model

import (
	"time"
)

// Learner 学习者档案。XP/等级/连续打卡只允许由账本服务修改
// swagger:model Learner
type Learner struct {
	BaseModel
	Name             string     `gorm:"size:100;not null" json:"name"`
	Email            string     `gorm:"size:100;unique;not null" json:"email"`
	GradeLevel       int        `gorm:"default:1" json:"gradeLevel"`
	Language         string     `gorm:"size:10;default:'zh'" json:"language"`
	Avatar           string     `gorm:"size:255" json:"avatar"`
	XP               int        `gorm:"default:0" json:"xp"`
	Level            int        `gorm:"default:1" json:"level"` // 由XP确定性推导
	CurrentStreak    int        `gorm:"default:0" json:"currentStreak"`
	BestStreak       int        `gorm:"default:0" json:"bestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate"`
	LastSeen         time.Time  `gorm:"autoUpdateTime" json:"lastSeen"`
}

func (Learner) TableName() string {
	return "learners"
}
