package repository

import (
	"kursus_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeakAreaRepository struct {
	DB *gorm.DB
}

func NewWeakAreaRepository(db *gorm.DB) *WeakAreaRepository {
	return &WeakAreaRepository{DB: db}
}

// RecordError 原子 upsert：不存在则建档，存在则错误计数+1。
// 任何一次出错都会清零该知识点的连对计数并撤销已解决标记
func (r *WeakAreaRepository) RecordError(db *gorm.DB, learnerID uint, subject, topic string, at time.Time) error {
	area := model.WeakArea{
		LearnerID:   learnerID,
		Subject:     subject,
		Topic:       topic,
		ErrorCount:  1,
		LastErrorAt: at,
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "learner_id"}, {Name: "subject"}, {Name: "topic"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"error_count":         gorm.Expr("error_count + 1"),
			"last_error_at":       at,
			"consecutive_correct": 0,
			"is_resolved":         false,
			"updated_at":          at,
		}),
	}).Create(&area).Error
}

// RecordCorrect 知识点答对：连对计数+1，达到 resolveRun 后标记已解决。
// 没有弱项档案的知识点答对不建档
func (r *WeakAreaRepository) RecordCorrect(db *gorm.DB, learnerID uint, subject, topic string, resolveRun int) error {
	res := db.Model(&model.WeakArea{}).
		Where("learner_id = ? AND subject = ? AND topic = ? AND is_resolved = ?",
			learnerID, subject, topic, false).
		Update("consecutive_correct", gorm.Expr("consecutive_correct + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return db.Model(&model.WeakArea{}).
		Where("learner_id = ? AND subject = ? AND topic = ? AND consecutive_correct >= ?",
			learnerID, subject, topic, resolveRun).
		Update("is_resolved", true).Error
}

// TopAreas 错误最多的未解决弱项，平手时最近出错的优先
func (r *WeakAreaRepository) TopAreas(learnerID uint, subject string, limit int) ([]model.WeakArea, error) {
	var areas []model.WeakArea
	err := r.DB.Where("learner_id = ? AND subject = ? AND is_resolved = ?", learnerID, subject, false).
		Order("error_count DESC, last_error_at DESC").
		Limit(limit).
		Find(&areas).Error
	return areas, err
}

func (r *WeakAreaRepository) FindByLearner(learnerID uint) ([]model.WeakArea, error) {
	var areas []model.WeakArea
	err := r.DB.Where("learner_id = ?", learnerID).
		Order("error_count DESC, last_error_at DESC").
		Find(&areas).Error
	return areas, err
}
