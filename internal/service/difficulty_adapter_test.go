package service

import (
	"testing"

	"kursus_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDifficultyEarlyPhase(t *testing.T) {
	tests := []struct {
		name    string
		current model.Difficulty
		correct int
		wrong   int
		total   int
		hits    int
		want    model.Difficulty
		changed bool
	}{
		{"两连对从easy升medium", model.DifficultyEasy, 2, 0, 2, 2, model.DifficultyMedium, true},
		{"两连对从medium升hard", model.DifficultyMedium, 2, 0, 2, 2, model.DifficultyHard, true},
		{"hard两连对保持封顶", model.DifficultyHard, 2, 0, 2, 2, model.DifficultyHard, false},
		{"两连错从hard降medium", model.DifficultyHard, 0, 2, 2, 0, model.DifficultyMedium, true},
		{"两连错从medium降easy", model.DifficultyMedium, 0, 2, 2, 0, model.DifficultyEasy, true},
		{"easy两连错保持触底", model.DifficultyEasy, 0, 2, 2, 0, model.DifficultyEasy, false},
		{"单题答对不动", model.DifficultyMedium, 1, 0, 1, 1, model.DifficultyMedium, false},
		{"单题答错不动", model.DifficultyMedium, 0, 1, 1, 0, model.DifficultyMedium, false},
		{"开局零答题不动", model.DifficultyEasy, 0, 0, 0, 0, model.DifficultyEasy, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDifficulty(tt.current, tt.correct, tt.wrong, tt.total, tt.hits)
			assert.Equal(t, tt.want, got.CurrentDifficulty)
			assert.Equal(t, tt.changed, got.DifficultyChanged)
			assert.Equal(t, tt.current, got.PreviousDifficulty)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestNextDifficultyRateBlend(t *testing.T) {
	tests := []struct {
		name    string
		current model.Difficulty
		correct int
		wrong   int
		total   int
		hits    int
		want    model.Difficulty
	}{
		{"连对且正确率高则升", model.DifficultyMedium, 2, 0, 4, 3, model.DifficultyHard},
		{"连对但正确率不足不升", model.DifficultyMedium, 2, 0, 6, 3, model.DifficultyMedium},
		{"正确率过低即使无连错也降", model.DifficultyMedium, 0, 1, 6, 2, model.DifficultyEasy},
		{"两连错必降", model.DifficultyHard, 0, 2, 5, 3, model.DifficultyMedium},
		{"hard档正确率不过半且刚答错则降", model.DifficultyHard, 0, 1, 7, 3, model.DifficultyMedium},
		{"表现平稳保持", model.DifficultyMedium, 1, 0, 5, 3, model.DifficultyMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDifficulty(tt.current, tt.correct, tt.wrong, tt.total, tt.hits)
			assert.Equal(t, tt.want, got.CurrentDifficulty)
		})
	}
}

// 任意输入下结果合法且至多单步移动
func TestNextDifficultySingleStep(t *testing.T) {
	levels := []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}
	distance := map[model.Difficulty]int{
		model.DifficultyEasy:   0,
		model.DifficultyMedium: 1,
		model.DifficultyHard:   2,
	}

	for _, current := range levels {
		for correct := 0; correct <= 5; correct++ {
			for wrong := 0; wrong <= 5; wrong++ {
				if correct > 0 && wrong > 0 {
					continue // 连对连错互斥
				}
				for total := correct + wrong; total <= 10; total++ {
					for hits := correct; hits <= total; hits++ {
						got := NextDifficulty(current, correct, wrong, total, hits)
						require.True(t, got.CurrentDifficulty.Valid(),
							"invalid difficulty from %s c=%d w=%d", current, correct, wrong)
						delta := distance[got.CurrentDifficulty] - distance[current]
						require.LessOrEqual(t, delta, 1)
						require.GreaterOrEqual(t, delta, -1)
					}
				}
			}
		}
	}
}

func TestReplaySession(t *testing.T) {
	// easy起步两连对升medium，再两连对升hard
	difficulty, bestRun := replaySession(model.DifficultyEasy, []bool{true, true, true, true})
	assert.Equal(t, model.DifficultyHard, difficulty)
	assert.Equal(t, 4, bestRun)

	// 全错时降至easy触底
	difficulty, bestRun = replaySession(model.DifficultyMedium, []bool{false, false, false, false})
	assert.Equal(t, model.DifficultyEasy, difficulty)
	assert.Equal(t, 0, bestRun)

	// 非法种子回退到medium
	difficulty, _ = replaySession(model.Difficulty("?"), nil)
	assert.Equal(t, model.DifficultyMedium, difficulty)
}
