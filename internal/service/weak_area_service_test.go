package service

import (
	"testing"

	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWeakArea(t *testing.T) (*WeakAreaService, *model.Learner) {
	t.Helper()
	db := newTestDB(t)
	learner := createTestLearner(t, db, "weak@test.local")
	svc := NewWeakAreaService(repository.NewWeakAreaRepository(db), 3)
	return svc, learner
}

func TestRecordOutcomeAccumulatesErrors(t *testing.T) {
	svc, learner := newTestWeakArea(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", false))
	}
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "decimals", false))

	areas, err := svc.TopAreas(learner.ID, "math", 5)
	require.NoError(t, err)
	require.Len(t, areas, 2)
	// 错误多的排前面
	assert.Equal(t, "fractions", areas[0].Topic)
	assert.Equal(t, 3, areas[0].ErrorCount)
	assert.Equal(t, "decimals", areas[1].Topic)
	assert.Equal(t, 1, areas[1].ErrorCount)
}

func TestRecordOutcomeCorrectWithoutRecordIsNoop(t *testing.T) {
	svc, learner := newTestWeakArea(t)

	// 没有弱项档案的知识点答对不建档
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "geometry", true))

	areas, err := svc.ListByLearner(learner.ID)
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestRecordOutcomeResolvesAfterRun(t *testing.T) {
	svc, learner := newTestWeakArea(t)

	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", false))

	// 连对2次还不够
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", true))
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", true))
	areas, err := svc.TopAreas(learner.ID, "math", 5)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.False(t, areas[0].IsResolved)

	// 第3次连对后解决，不再出现在选题提示里
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", true))
	areas, err = svc.TopAreas(learner.ID, "math", 5)
	require.NoError(t, err)
	assert.Empty(t, areas)

	// 全量列表仍保留档案
	all, err := svc.ListByLearner(learner.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsResolved)
}

func TestRecordOutcomeErrorResetsRun(t *testing.T) {
	svc, learner := newTestWeakArea(t)

	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", false))
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", true))
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", true))

	// 再次出错清零连对并加重计数
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", false))

	areas, err := svc.TopAreas(learner.ID, "math", 5)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, 2, areas[0].ErrorCount)
	assert.Equal(t, 0, areas[0].ConsecutiveCorrect)

	// 清零后需要重新凑满连对次数
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", true))
	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "fractions", true))
	areas, err = svc.TopAreas(learner.ID, "math", 5)
	require.NoError(t, err)
	require.Len(t, areas, 1)
}

func TestRecordOutcomeEmptyTopicIgnored(t *testing.T) {
	svc, learner := newTestWeakArea(t)

	require.NoError(t, svc.RecordOutcome(learner.ID, "math", "", false))

	areas, err := svc.ListByLearner(learner.ID)
	require.NoError(t, err)
	assert.Empty(t, areas)
}
