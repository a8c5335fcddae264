package repository

import (
	"kursus_backend/internal/model"

	"gorm.io/gorm"
)

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

// Find 精确读取一条掌握度记录，不存在时返回 gorm.ErrRecordNotFound
func (r *MasteryRepository) Find(learnerID uint, subject string, gradeLevel int) (*model.MasteryState, error) {
	var state model.MasteryState
	err := r.DB.Where("learner_id = ? AND subject = ? AND grade_level = ?",
		learnerID, subject, gradeLevel).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetOrCreate 懒创建：首次访问时以 medium/50 初始化
func (r *MasteryRepository) GetOrCreate(learnerID uint, subject string, gradeLevel int) (*model.MasteryState, error) {
	state := model.MasteryState{
		LearnerID:  learnerID,
		Subject:    subject,
		GradeLevel: gradeLevel,
	}
	err := r.DB.
		Where("learner_id = ? AND subject = ? AND grade_level = ?", learnerID, subject, gradeLevel).
		Attrs(model.MasteryState{
			CurrentDifficulty: model.DifficultyMedium,
			MasteryLevel:      50,
		}).
		FirstOrCreate(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *MasteryRepository) FindByLearner(learnerID uint) ([]model.MasteryState, error) {
	var states []model.MasteryState
	err := r.DB.Where("learner_id = ?", learnerID).
		Order("subject, grade_level").
		Find(&states).Error
	return states, err
}

// MaxMasteryLevel 学习者在所有学科上的最高掌握度，无记录时为0
func (r *MasteryRepository) MaxMasteryLevel(learnerID uint) (int, error) {
	var level *int
	err := r.DB.Model(&model.MasteryState{}).
		Where("learner_id = ?", learnerID).
		Select("MAX(mastery_level)").
		Scan(&level).Error
	if err != nil || level == nil {
		return 0, err
	}
	return *level, nil
}
