package service

import (
	"context"
	"encoding/json"
	"time"

	"kursus_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	alertChannel        = "alerts:learning"
	notificationChannel = "notifications:learner"
)

// Notifier 对外的告警与通知出口：redis 发布，发完即忘。
// 投递失败只记日志，绝不影响主流程响应
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

type alertFact struct {
	LearnerID   uint   `json:"learnerId"`
	Type        string `json:"type"`
	LessonTitle string `json:"lessonTitle"`
	Score       int    `json:"score"`
}

type notificationFact struct {
	LearnerID uint        `json:"learnerId"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
}

func (n *Notifier) publish(channel string, fact interface{}) {
	if n == nil || n.rdb == nil {
		return
	}
	body, err := json.Marshal(fact)
	if err != nil {
		logger.Log.Error("marshal notification failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := n.rdb.Publish(ctx, channel, body).Err(); err != nil {
		logger.Log.Warn("publish failed", zap.String("channel", channel), zap.Error(err))
	}
}

func (n *Notifier) PublishLowScoreAlert(learnerID uint, lessonTitle string, score int) {
	n.publish(alertChannel, alertFact{
		LearnerID:   learnerID,
		Type:        "LOW_QUIZ_SCORE",
		LessonTitle: lessonTitle,
		Score:       score,
	})
}

func (n *Notifier) PublishQuizCompleted(learnerID uint, lessonTitle string, percentage int, passed bool) {
	n.publish(notificationChannel, notificationFact{
		LearnerID: learnerID,
		Type:      "QUIZ_COMPLETED",
		Payload: map[string]interface{}{
			"lessonTitle": lessonTitle,
			"percentage":  percentage,
			"passed":      passed,
		},
	})
}

func (n *Notifier) PublishBadgeAwarded(learnerID uint, badgeCode, badgeName string) {
	n.publish(notificationChannel, notificationFact{
		LearnerID: learnerID,
		Type:      "BADGE_AWARDED",
		Payload: map[string]interface{}{
			"code": badgeCode,
			"name": badgeName,
		},
	})
}
