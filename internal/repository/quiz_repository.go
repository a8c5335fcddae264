package repository

import (
	"kursus_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.`order` ASC, quiz_questions.id ASC")
	}).First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) FindAttemptByKey(attemptKey string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Where("attempt_key = ?", attemptKey).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizRepository) FindAttemptsByLearner(learnerID uint, limit int) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("learner_id = ?", learnerID).
		Order("completed_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// CountAttempts 学习者的提交总数与满分提交数，供徽章判定使用
func (r *QuizRepository) CountAttempts(db *gorm.DB, learnerID uint) (total int64, perfect int64, err error) {
	err = db.Model(&model.QuizAttempt{}).Where("learner_id = ?", learnerID).Count(&total).Error
	if err != nil {
		return 0, 0, err
	}
	err = db.Model(&model.QuizAttempt{}).
		Where("learner_id = ? AND is_perfect = ?", learnerID, true).
		Count(&perfect).Error
	return total, perfect, err
}
