package service

import (
	"testing"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type quizFixture struct {
	db      *gorm.DB
	svc     *QuizService
	learner *model.Learner
	lesson  *model.Lesson
	quiz    *model.Quiz
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	db := newTestDB(t)
	engine := config.DefaultEngineConfig()

	masteryRepo := repository.NewMasteryRepository(db)
	weakAreaRepo := repository.NewWeakAreaRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	lessonRepo := repository.NewLessonRepository(db)

	mastery := NewMasteryService(masteryRepo, db, engine)
	weakArea := NewWeakAreaService(weakAreaRepo, engine.WeakAreaResolveRun)
	ledger := newTestLedger(t, db)

	learner := createTestLearner(t, db, "quiz@test.local")
	lesson := createTestLesson(t, db)
	quiz := createTestQuiz(t, db, lesson.ID)

	svc := NewQuizService(quizRepo, lessonRepo, masteryRepo, mastery, weakArea, ledger,
		NewNotifier(nil), db, engine)

	return &quizFixture{db: db, svc: svc, learner: learner, lesson: lesson, quiz: quiz}
}

// answers 前 correct 道题选对，其余选错
func (f *quizFixture) answers(correct int) map[uint]string {
	out := make(map[uint]string, len(f.quiz.Questions))
	for i, q := range f.quiz.Questions {
		if i < correct {
			out[q.ID] = "a"
		} else {
			out[q.ID] = "b"
		}
	}
	return out
}

func TestSubmitFourOfFive(t *testing.T) {
	f := newQuizFixture(t)

	result, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-1",
		Answers:   f.answers(4),
		TimeSpent: 120,
	})
	require.NoError(t, err)

	assert.Equal(t, 80, result.Percentage)
	assert.Equal(t, 40, result.Score)
	assert.Equal(t, 50, result.TotalPoints)
	assert.True(t, result.Passed)
	assert.False(t, result.IsPerfect)
	assert.Equal(t, 4, result.CorrectCount)
	assert.Equal(t, 5, result.TotalQuestions)
	assert.False(t, result.Replayed)

	// 及格档XP入账；首次提交触发 first_quiz 徽章
	assert.Equal(t, 30, result.XPEarned)
	require.Len(t, result.NewBadges, 1)
	assert.Equal(t, "first_quiz", result.NewBadges[0].Code)

	var reloaded model.Learner
	require.NoError(t, f.db.First(&reloaded, f.learner.ID).Error)
	assert.Equal(t, 40, reloaded.XP) // 30及格 + 10徽章奖励
	assert.Equal(t, 1, reloaded.CurrentStreak)
}

func TestSubmitPerfect(t *testing.T) {
	f := newQuizFixture(t)

	result, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-perfect",
		Answers:   f.answers(5),
	})
	require.NoError(t, err)

	assert.Equal(t, 100, result.Percentage)
	assert.True(t, result.Passed)
	assert.True(t, result.IsPerfect)
	assert.Equal(t, 50, result.XPEarned)

	codes := make([]string, 0, len(result.NewBadges))
	for _, b := range result.NewBadges {
		codes = append(codes, b.Code)
	}
	assert.Contains(t, codes, "first_quiz")
	assert.Contains(t, codes, "perfect_1")
}

func TestSubmitFailingScore(t *testing.T) {
	f := newQuizFixture(t)

	result, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-fail",
		Answers:   f.answers(1),
	})
	require.NoError(t, err)

	assert.Equal(t, 20, result.Percentage)
	assert.False(t, result.Passed)
	// 未及格仍有完成档安慰分
	assert.Equal(t, 10, result.XPEarned)
}

func TestSubmitIdempotentReplay(t *testing.T) {
	f := newQuizFixture(t)

	first, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-dup",
		Answers:   f.answers(4),
	})
	require.NoError(t, err)

	// 同一 attemptId 重放：返回已存结果，不产生新副作用
	second, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-dup",
		Answers:   f.answers(5), // 重放时答案不同也不重新判分
	})
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Percentage, second.Percentage)
	assert.Equal(t, first.Score, second.Score)

	var attempts int64
	require.NoError(t, f.db.Model(&model.QuizAttempt{}).Where("learner_id = ?", f.learner.ID).Count(&attempts).Error)
	assert.EqualValues(t, 1, attempts)

	var reloadedFirst, reloadedSecond model.Learner
	require.NoError(t, f.db.First(&reloadedFirst, f.learner.ID).Error)
	_, err = f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-dup",
		Answers:   f.answers(4),
	})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&reloadedSecond, f.learner.ID).Error)
	assert.Equal(t, reloadedFirst.XP, reloadedSecond.XP)
}

func TestSubmitAttemptKeyOwnership(t *testing.T) {
	f := newQuizFixture(t)
	other := createTestLearner(t, f.db, "other@test.local")

	_, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-owned",
		Answers:   f.answers(3),
	})
	require.NoError(t, err)

	_, err = f.svc.Submit(other.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-owned",
		Answers:   f.answers(3),
	})
	assert.Error(t, err)
}

func TestSubmitUpdatesMasteryAndWeakAreas(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-side",
		Answers:   f.answers(3), // 错decimals一道、percentages一道
	})
	require.NoError(t, err)

	state, err := f.svc.Mastery.Get(f.learner.ID, f.lesson.Subject, f.lesson.GradeLevel)
	require.NoError(t, err)
	// 0.7*50 + 0.3*60 = 53
	assert.Equal(t, 53, state.MasteryLevel)
	assert.Equal(t, 1, state.TotalSessions)
	assert.Equal(t, 5, state.TotalQuestionsAnswered)
	assert.Equal(t, 3, state.TotalCorrect)

	areas, err := f.svc.WeakArea.ListByLearner(f.learner.ID)
	require.NoError(t, err)
	topics := make(map[string]int, len(areas))
	for _, a := range areas {
		topics[a.Topic] = a.ErrorCount
	}
	assert.Equal(t, 1, topics["decimals"])
	assert.Equal(t, 1, topics["percentages"])
	assert.NotContains(t, topics, "fractions")
}

func TestSubmitUpdatesLessonProgress(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-p1",
		Answers:   f.answers(2),
	})
	require.NoError(t, err)

	var progress model.LessonProgress
	require.NoError(t, f.db.Where("learner_id = ? AND lesson_id = ?", f.learner.ID, f.lesson.ID).
		First(&progress).Error)
	assert.False(t, progress.Completed)
	assert.Equal(t, 40, progress.BestScore)
	assert.Equal(t, 1, progress.Attempts)

	_, err = f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-p2",
		Answers:   f.answers(4),
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Where("learner_id = ? AND lesson_id = ?", f.learner.ID, f.lesson.ID).
		First(&progress).Error)
	assert.True(t, progress.Completed)
	assert.Equal(t, 80, progress.BestScore)
	assert.Equal(t, 2, progress.Attempts)
	require.NotNil(t, progress.CompletedAt)

	// 最好成绩只升不降
	_, err = f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-p3",
		Answers:   f.answers(3),
	})
	require.NoError(t, err)
	require.NoError(t, f.db.Where("learner_id = ? AND lesson_id = ?", f.learner.ID, f.lesson.ID).
		First(&progress).Error)
	assert.Equal(t, 80, progress.BestScore)
	assert.True(t, progress.Completed)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.svc.Submit(f.learner.ID, 99999, QuizSubmitRequest{Answers: map[uint]string{}})
	assert.Error(t, err)
}

func TestSubmitUnpublishedQuiz(t *testing.T) {
	f := newQuizFixture(t)
	require.NoError(t, f.db.Model(&model.Quiz{}).Where("id = ?", f.quiz.ID).
		Update("published", false).Error)

	_, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{Answers: f.answers(5)})
	assert.Error(t, err)
}

func TestGetQuizForStudentHidesAnswers(t *testing.T) {
	f := newQuizFixture(t)

	view, err := f.svc.GetQuizForStudent(f.quiz.ID)
	require.NoError(t, err)
	require.Len(t, view.Questions, 5)
	for _, q := range view.Questions {
		require.Len(t, q.Options, 3)
		for _, opt := range q.Options {
			assert.NotEmpty(t, opt.ID)
			assert.NotEmpty(t, opt.Text)
		}
	}
}

func TestSubmitMissingAnswersCountAsWrong(t *testing.T) {
	f := newQuizFixture(t)

	// 只作答两道，其余视为答错
	partial := map[uint]string{
		f.quiz.Questions[0].ID: "a",
		f.quiz.Questions[1].ID: "a",
	}
	result, err := f.svc.Submit(f.learner.ID, f.quiz.ID, QuizSubmitRequest{
		AttemptID: "attempt-partial",
		Answers:   partial,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, result.Percentage)
	assert.Equal(t, 2, result.CorrectCount)
	assert.False(t, result.Passed)
}
