package repository

import (
	"kursus_backend/internal/model"

	"gorm.io/gorm"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) ListEnabled(db *gorm.DB) ([]model.Badge, error) {
	var badges []model.Badge
	err := db.Where("enabled = ?", true).Order("threshold ASC").Find(&badges).Error
	return badges, err
}

// AwardedBadgeIDs 学习者已持有的徽章ID集合
func (r *BadgeRepository) AwardedBadgeIDs(db *gorm.DB, learnerID uint) (map[uint]bool, error) {
	var awards []model.BadgeAward
	if err := db.Where("learner_id = ?", learnerID).Find(&awards).Error; err != nil {
		return nil, err
	}
	owned := make(map[uint]bool, len(awards))
	for _, a := range awards {
		owned[a.BadgeID] = true
	}
	return owned, nil
}

func (r *BadgeRepository) FindAwardsByLearner(learnerID uint) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.Joins("JOIN badge_awards ON badge_awards.badge_id = badges.id").
		Where("badge_awards.learner_id = ?", learnerID).
		Order("badge_awards.awarded_at ASC").
		Find(&badges).Error
	return badges, err
}
