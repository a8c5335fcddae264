package service

import (
	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"

	"gorm.io/gorm"
)

type BadgeService struct {
	BadgeRepo *repository.BadgeRepository
	DB        *gorm.DB
}

func NewBadgeService(badgeRepo *repository.BadgeRepository, db *gorm.DB) *BadgeService {
	return &BadgeService{BadgeRepo: badgeRepo, DB: db}
}

// BadgeStatus 徽章及学习者的获得状态
type BadgeStatus struct {
	model.Badge
	Earned bool `json:"earned"`
}

func (s *BadgeService) ListWithStatus(learnerID uint) ([]BadgeStatus, error) {
	badges, err := s.BadgeRepo.ListEnabled(s.DB)
	if err != nil {
		return nil, err
	}
	awarded, err := s.BadgeRepo.AwardedBadgeIDs(s.DB, learnerID)
	if err != nil {
		return nil, err
	}

	out := make([]BadgeStatus, 0, len(badges))
	for _, badge := range badges {
		out = append(out, BadgeStatus{Badge: badge, Earned: awarded[badge.ID]})
	}
	return out, nil
}
