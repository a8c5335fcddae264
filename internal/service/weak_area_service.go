package service

import (
	"time"

	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"

	"gorm.io/gorm"
)

// WeakAreaService 按 (学习者, 学科, 知识点) 追踪反复出错的薄弱点，
// 结果仅作为出题服务的选题提示
type WeakAreaService struct {
	WeakAreaRepo *repository.WeakAreaRepository
	ResolveRun   int // 连对多少次后视为已解决
}

func NewWeakAreaService(weakAreaRepo *repository.WeakAreaRepository, resolveRun int) *WeakAreaService {
	return &WeakAreaService{
		WeakAreaRepo: weakAreaRepo,
		ResolveRun:   resolveRun,
	}
}

func (s *WeakAreaService) RecordOutcome(learnerID uint, subject, topic string, correct bool) error {
	return s.recordOutcomeTx(s.WeakAreaRepo.DB, learnerID, subject, topic, correct)
}

func (s *WeakAreaService) recordOutcomeTx(tx *gorm.DB, learnerID uint, subject, topic string, correct bool) error {
	if topic == "" {
		return nil
	}
	if correct {
		return s.WeakAreaRepo.RecordCorrect(tx, learnerID, subject, topic, s.ResolveRun)
	}
	return s.WeakAreaRepo.RecordError(tx, learnerID, subject, topic, time.Now())
}

func (s *WeakAreaService) TopAreas(learnerID uint, subject string, limit int) ([]model.WeakArea, error) {
	return s.WeakAreaRepo.TopAreas(learnerID, subject, limit)
}

func (s *WeakAreaService) ListByLearner(learnerID uint) ([]model.WeakArea, error) {
	return s.WeakAreaRepo.FindByLearner(learnerID)
}
