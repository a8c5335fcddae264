package service

import (
	"fmt"

	"kursus_backend/internal/model"
)

// 难度调节参数。前期只看连对/连错，题量足够后叠加整体正确率，
// 避免任意两连对/两连错导致难度来回震荡
const (
	escalateStreak    = 2
	deescalateStreak  = 2
	rateSignalMinimum = 3 // 答题数达到该值后正确率才参与决策
	escalateRate      = 0.7
	deescalateRate    = 0.4
	hardGuardRate     = 0.5
)

// Adaptation 一次难度决策的结果，reason 面向审计与前端展示
type Adaptation struct {
	PreviousDifficulty model.Difficulty `json:"previousDifficulty"`
	CurrentDifficulty  model.Difficulty `json:"currentDifficulty"`
	DifficultyChanged  bool             `json:"difficultyChanged"`
	Reason             string           `json:"reason"`
}

// NextDifficulty 纯函数：由会话内计数推导下一题难度。
// 只会单步升降并在两端饱和，入参须为已校验的非负整数与合法难度
func NextDifficulty(current model.Difficulty, consecutiveCorrect, consecutiveWrong, totalAnswered, correctCount int) Adaptation {
	next := current
	reason := "保持当前难度"

	if totalAnswered < rateSignalMinimum {
		// 前期：纯连对/连错迟滞
		switch {
		case consecutiveCorrect >= escalateStreak:
			next = current.StepUp()
			reason = levelUpReason(current, next, consecutiveCorrect)
		case consecutiveWrong >= deescalateStreak:
			next = current.StepDown()
			reason = levelDownReason(current, next, consecutiveWrong)
		}
	} else {
		rate := float64(correctCount) / float64(totalAnswered)
		switch {
		case consecutiveCorrect >= escalateStreak && rate >= escalateRate:
			next = current.StepUp()
			reason = levelUpReason(current, next, consecutiveCorrect)
		case consecutiveWrong >= deescalateStreak || rate < deescalateRate:
			next = current.StepDown()
			reason = levelDownReason(current, next, consecutiveWrong)
		case current == model.DifficultyHard && consecutiveWrong >= 1 && rate < hardGuardRate:
			// 防止单次幸运连对把整体表现不佳的学习者困在最高档
			next = current.StepDown()
			reason = levelDownReason(current, next, consecutiveWrong)
		}
	}

	return Adaptation{
		PreviousDifficulty: current,
		CurrentDifficulty:  next,
		DifficultyChanged:  next != current,
		Reason:             reason,
	}
}

func levelUpReason(from, to model.Difficulty, streak int) string {
	if from == to {
		return fmt.Sprintf("连续答对%d题，已是最高难度，保持", streak)
	}
	return fmt.Sprintf("连续答对%d题，难度上调", streak)
}

func levelDownReason(from, to model.Difficulty, streak int) string {
	if from == to {
		return fmt.Sprintf("连续答错%d题，已是最低难度，保持", streak)
	}
	if streak > 0 {
		return fmt.Sprintf("连续答错%d题，难度下调", streak)
	}
	return "整体正确率偏低，难度下调"
}
