package service

import (
	"fmt"
	"testing"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"
	"kursus_backend/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestLedger(t *testing.T, db *gorm.DB) *LedgerService {
	t.Helper()
	return NewLedgerService(
		repository.NewLearnerRepository(db),
		repository.NewBadgeRepository(db),
		repository.NewMasteryRepository(db),
		repository.NewQuizRepository(db),
		db,
		config.DefaultEngineConfig(),
	)
}

func createTestLearner(t *testing.T, db *gorm.DB, email string) *model.Learner {
	t.Helper()
	learner := &model.Learner{
		Name:       "测试学习者",
		Email:      email,
		GradeLevel: 3,
	}
	require.NoError(t, db.Create(learner).Error)
	return learner
}

func createTestLesson(t *testing.T, db *gorm.DB) *model.Lesson {
	t.Helper()
	lesson := &model.Lesson{
		Subject:    "math",
		GradeLevel: 3,
		Title:      "分数入门",
		Content:    "分数表示整体中的一部分。",
		Topics:     []string{"fractions"},
		Published:  true,
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

// createTestQuiz 五道等权题，正确选项都是 "a"
func createTestQuiz(t *testing.T, db *gorm.DB, lessonID uint) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		LessonID:     lessonID,
		Title:        "分数小测",
		PassingScore: 70,
		Published:    true,
	}
	require.NoError(t, db.Create(quiz).Error)

	topics := []string{"fractions", "fractions", "decimals", "decimals", "percentages"}
	for i := 0; i < 5; i++ {
		q := &model.QuizQuestion{
			QuizID:  quiz.ID,
			Content: fmt.Sprintf("第%d题", i+1),
			Options: []model.QuizOption{
				{ID: "a", Text: "正确", Correct: true},
				{ID: "b", Text: "错误"},
				{ID: "c", Text: "错误"},
			},
			Topic:      topics[i],
			Difficulty: model.DifficultyMedium,
			Points:     10,
			Order:      i,
		}
		require.NoError(t, db.Create(q).Error)
	}

	loaded, err := repository.NewQuizRepository(db).FindByID(quiz.ID)
	require.NoError(t, err)
	return loaded
}
