package repository

import (
	"kursus_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type LearnerRepository struct {
	DB *gorm.DB
}

func NewLearnerRepository(db *gorm.DB) *LearnerRepository {
	return &LearnerRepository{DB: db}
}

func (r *LearnerRepository) Create(learner *model.Learner) error {
	return r.DB.Create(learner).Error
}

func (r *LearnerRepository) FindByID(id uint) (*model.Learner, error) {
	var learner model.Learner
	err := r.DB.First(&learner, id).Error
	return &learner, err
}

func (r *LearnerRepository) FindByEmail(email string) (*model.Learner, error) {
	var learner model.Learner
	err := r.DB.Where("email = ?", email).First(&learner).Error
	return &learner, err
}

func (r *LearnerRepository) Update(learner *model.Learner) error {
	return r.DB.Save(learner).Error
}

func (r *LearnerRepository) TouchLastSeen(id uint) error {
	return r.DB.Model(&model.Learner{}).
		Where("id = ?", id).
		Update("last_seen", time.Now()).
		Error
}

func (r *LearnerRepository) FindTopByXP(limit int) ([]model.Learner, error) {
	var learners []model.Learner
	err := r.DB.Order("xp DESC").Limit(limit).Find(&learners).Error
	return learners, err
}
