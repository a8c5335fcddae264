package service

import (
	"math"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"
	"kursus_backend/internal/util"

	"gorm.io/gorm"
)

// MasteryService 维护按 (学习者, 学科, 年级) 的长期掌握度聚合。
// 会话过程中不写库，只有提交时一次性合并
type MasteryService struct {
	MasteryRepo *repository.MasteryRepository
	DB          *gorm.DB
	Engine      config.EngineConfig
}

func NewMasteryService(masteryRepo *repository.MasteryRepository, db *gorm.DB, engine config.EngineConfig) *MasteryService {
	return &MasteryService{
		MasteryRepo: masteryRepo,
		DB:          db,
		Engine:      engine,
	}
}

func (s *MasteryService) Get(learnerID uint, subject string, gradeLevel int) (*model.MasteryState, error) {
	state, err := s.MasteryRepo.Find(learnerID, subject, gradeLevel)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrMasteryNotFound
		}
		return nil, err
	}
	return state, nil
}

func (s *MasteryService) GetOrCreate(learnerID uint, subject string, gradeLevel int) (*model.MasteryState, error) {
	return s.MasteryRepo.GetOrCreate(learnerID, subject, gradeLevel)
}

func (s *MasteryService) ListByLearner(learnerID uint) ([]model.MasteryState, error) {
	return s.MasteryRepo.FindByLearner(learnerID)
}

// SessionOutcome 一次已判分会话的汇总，由服务端判分得出
type SessionOutcome struct {
	Answered        int
	Correct         int
	FinalDifficulty model.Difficulty
	BestRun         int // 会话内最长连对
}

// CommitSession 事务性读改写：指数加权合并会话正确率到长期掌握度，
// 并把期末难度存为下次会话的种子
func (s *MasteryService) CommitSession(learnerID uint, subject string, gradeLevel int, outcome SessionOutcome) (*model.MasteryState, error) {
	var state *model.MasteryState
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		state, err = s.commitSessionTx(tx, learnerID, subject, gradeLevel, outcome)
		return err
	})
	return state, err
}

func (s *MasteryService) commitSessionTx(tx *gorm.DB, learnerID uint, subject string, gradeLevel int, outcome SessionOutcome) (*model.MasteryState, error) {
	state := model.MasteryState{
		LearnerID:  learnerID,
		Subject:    subject,
		GradeLevel: gradeLevel,
	}
	err := tx.
		Where("learner_id = ? AND subject = ? AND grade_level = ?", learnerID, subject, gradeLevel).
		Attrs(model.MasteryState{
			CurrentDifficulty: model.DifficultyMedium,
			MasteryLevel:      50,
		}).
		FirstOrCreate(&state).Error
	if err != nil {
		return nil, err
	}

	state.TotalSessions++

	// 空会话只计一次会话，掌握度与难度种子不动
	if outcome.Answered > 0 {
		sessionAccuracy := float64(outcome.Correct) / float64(outcome.Answered)
		merged := s.Engine.MasteryHistoryWeight*float64(state.MasteryLevel) +
			s.Engine.MasterySessionWeight*sessionAccuracy*100
		state.MasteryLevel = clampMastery(int(math.Round(merged)))

		if outcome.FinalDifficulty.Valid() {
			state.CurrentDifficulty = outcome.FinalDifficulty
		}
		state.TotalQuestionsAnswered += outcome.Answered
		state.TotalCorrect += outcome.Correct
		if outcome.BestRun > state.BestStreak {
			state.BestStreak = outcome.BestRun
		}
	}

	if err := tx.Save(&state).Error; err != nil {
		return nil, err
	}
	return &state, nil
}

func clampMastery(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
