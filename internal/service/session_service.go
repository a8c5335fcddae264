package service

import (
	"context"

	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"
	"kursus_backend/internal/util"
	"kursus_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionPerformance 调用方随每次请求回传的会话计数。
// 服务端不保存会话状态：同样的入参推导出同样的下一题难度，
// 这些计数只用于难度引导，XP与掌握度一律以提交时服务端判分为准
type SessionPerformance struct {
	TotalAnswered       int                `json:"totalAnswered" binding:"min=0"`
	CorrectCount        int                `json:"correctCount" binding:"min=0"`
	ConsecutiveCorrect  int                `json:"consecutiveCorrect" binding:"min=0"`
	ConsecutiveWrong    int                `json:"consecutiveWrong" binding:"min=0"`
	AnsweredQuestionIDs []string           `json:"answeredQuestionIds"`
	DifficultyHistory   []model.Difficulty `json:"difficultyHistory"`
}

func (p *SessionPerformance) validate() error {
	if p.TotalAnswered < 0 || p.CorrectCount < 0 || p.ConsecutiveCorrect < 0 || p.ConsecutiveWrong < 0 {
		return util.ErrInvalidPerformance
	}
	if p.CorrectCount > p.TotalAnswered {
		return util.ErrInvalidPerformance
	}
	return nil
}

type NextQuestionRequest struct {
	LessonID           uint               `json:"lessonId" binding:"required"`
	CurrentDifficulty  model.Difficulty   `json:"currentDifficulty"`
	SessionPerformance SessionPerformance `json:"sessionPerformance"`
}

type LessonContext struct {
	Subject        string `json:"subject"`
	LessonTitle    string `json:"lessonTitle"`
	GradeLevel     int    `json:"gradeLevel"`
	QuestionNumber int    `json:"questionNumber"`
}

type NextQuestionResponse struct {
	Question   *GeneratedQuestion `json:"question"`
	Adaptation Adaptation         `json:"adaptation"`
	Context    LessonContext      `json:"context"`
}

// SessionService 自适应练习循环：掌握度种子 → 难度决策 → 外部出题
type SessionService struct {
	LessonRepo   *repository.LessonRepository
	MasteryRepo  *repository.MasteryRepository
	WeakAreaRepo *repository.WeakAreaRepository
	Generator    QuestionGenerator
	HintLimit    int
}

func NewSessionService(
	lessonRepo *repository.LessonRepository,
	masteryRepo *repository.MasteryRepository,
	weakAreaRepo *repository.WeakAreaRepository,
	generator QuestionGenerator,
	hintLimit int,
) *SessionService {
	return &SessionService{
		LessonRepo:   lessonRepo,
		MasteryRepo:  masteryRepo,
		WeakAreaRepo: weakAreaRepo,
		Generator:    generator,
		HintLimit:    hintLimit,
	}
}

func (s *SessionService) NextQuestion(ctx context.Context, learnerID uint, req NextQuestionRequest) (*NextQuestionResponse, error) {
	if err := req.SessionPerformance.validate(); err != nil {
		return nil, err
	}
	if req.CurrentDifficulty != "" && !req.CurrentDifficulty.Valid() {
		return nil, util.ErrInvalidDifficulty
	}

	lesson, err := s.LessonRepo.FindByID(req.LessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.Published {
		return nil, util.ErrLessonNotPublished
	}

	mastery, err := s.MasteryRepo.GetOrCreate(learnerID, lesson.Subject, lesson.GradeLevel)
	if err != nil {
		return nil, err
	}

	// 首题难度以长期掌握度存档为种子，之后沿用调用方回传的当前难度
	current := req.CurrentDifficulty
	if current == "" {
		current = mastery.CurrentDifficulty
	}

	perf := req.SessionPerformance
	adaptation := NextDifficulty(current, perf.ConsecutiveCorrect, perf.ConsecutiveWrong, perf.TotalAnswered, perf.CorrectCount)

	weakTopics, err := s.weakTopicHints(learnerID, lesson.Subject)
	if err != nil {
		// 弱项提示不可用不阻塞出题
		logger.Log.Warn("weak topic hints unavailable", zap.Uint("learnerId", learnerID), zap.Error(err))
		weakTopics = nil
	}

	question, err := s.Generator.Generate(ctx, GenerateRequest{
		Subject:            lesson.Subject,
		GradeLevel:         lesson.GradeLevel,
		LessonTitle:        lesson.Title,
		LessonContent:      lesson.Content,
		TargetDifficulty:   adaptation.CurrentDifficulty,
		WeakTopics:         weakTopics,
		ExcludeQuestionIDs: perf.AnsweredQuestionIDs,
		QuestionNumber:     perf.TotalAnswered + 1,
	})
	if err != nil {
		logger.Log.Error("question generator failed",
			zap.Uint("learnerId", learnerID),
			zap.Uint("lessonId", lesson.ID),
			zap.Error(err))
		return nil, util.ErrGeneratorUnavailable
	}

	return &NextQuestionResponse{
		Question:   question,
		Adaptation: adaptation,
		Context: LessonContext{
			Subject:        lesson.Subject,
			LessonTitle:    lesson.Title,
			GradeLevel:     lesson.GradeLevel,
			QuestionNumber: perf.TotalAnswered + 1,
		},
	}, nil
}

func (s *SessionService) weakTopicHints(learnerID uint, subject string) ([]string, error) {
	areas, err := s.WeakAreaRepo.TopAreas(learnerID, subject, s.HintLimit)
	if err != nil {
		return nil, err
	}
	topics := make([]string, len(areas))
	for i, a := range areas {
		topics[i] = a.Topic
	}
	return topics, nil
}
