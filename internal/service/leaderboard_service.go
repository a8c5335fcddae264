package service

import (
	"context"
	"encoding/json"
	"time"

	"kursus_backend/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	leaderboardCacheKey = "leaderboard:xp"
	leaderboardCacheTTL = 60 * time.Second
)

// LeaderboardEntry 排行榜条目，只暴露展示所需字段
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	LearnerID     uint   `json:"learnerId"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	XP            int    `json:"xp"`
	Level         int    `json:"level"`
	CurrentStreak int    `json:"currentStreak"`
}

// LeaderboardService XP排行榜，redis短时缓存挡读放大，缓存不可用时直读库
type LeaderboardService struct {
	LearnerRepo *repository.LearnerRepository
	Redis       *redis.Client
	Size        int
}

func NewLeaderboardService(learnerRepo *repository.LearnerRepository, rdb *redis.Client, size int) *LeaderboardService {
	if size <= 0 {
		size = 10
	}
	return &LeaderboardService{LearnerRepo: learnerRepo, Redis: rdb, Size: size}
}

func (s *LeaderboardService) Top(ctx context.Context) ([]LeaderboardEntry, error) {
	if entries, ok := s.fromCache(ctx); ok {
		return entries, nil
	}

	learners, err := s.LearnerRepo.FindTopByXP(s.Size)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(learners))
	for i, learner := range learners {
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			LearnerID:     learner.ID,
			Name:          learner.Name,
			Avatar:        learner.Avatar,
			XP:            learner.XP,
			Level:         learner.Level,
			CurrentStreak: learner.CurrentStreak,
		})
	}

	s.toCache(ctx, entries)
	return entries, nil
}

func (s *LeaderboardService) fromCache(ctx context.Context) ([]LeaderboardEntry, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(ctx, leaderboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *LeaderboardService) toCache(ctx context.Context, entries []LeaderboardEntry) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, leaderboardCacheKey, raw, leaderboardCacheTTL).Err(); err != nil {
		zap.L().Warn("leaderboard cache write failed", zap.Error(err))
	}
}
