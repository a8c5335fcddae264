package model

// LedgerEvent 一次XP发放事件。idempotency_key 的唯一索引保证
// 同一业务事件（同一次测验提交、同一天的打卡奖励）至多入账一次
type LedgerEvent struct {
	BaseModel
	LearnerID      uint   `gorm:"index;not null" json:"learnerId"`
	Amount         int    `gorm:"not null" json:"amount"`
	Reason         string `gorm:"size:100;not null" json:"reason"`
	IdempotencyKey string `gorm:"size:128;uniqueIndex;not null" json:"idempotencyKey"`
}

func (LedgerEvent) TableName() string {
	return "ledger_events"
}
