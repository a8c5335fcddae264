package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"
	"kursus_backend/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errAttemptReplayed 事务内发现并发重复提交时回滚用的内部信号
var errAttemptReplayed = errors.New("attempt already recorded")

// QuizService 判分引擎：对一次提交计算得分，并在同一事务里
// 落盘提交记录、课时进度、掌握度合并、弱项计数与游戏化账本。
// 提交要么全部生效要么全部无效，不存在只记XP不记成绩的中间态
type QuizService struct {
	QuizRepo    *repository.QuizRepository
	LessonRepo  *repository.LessonRepository
	MasteryRepo *repository.MasteryRepository
	Mastery     *MasteryService
	WeakArea    *WeakAreaService
	Ledger      *LedgerService
	Notifier    *Notifier
	DB          *gorm.DB
	Engine      config.EngineConfig
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	lessonRepo *repository.LessonRepository,
	masteryRepo *repository.MasteryRepository,
	mastery *MasteryService,
	weakArea *WeakAreaService,
	ledger *LedgerService,
	notifier *Notifier,
	db *gorm.DB,
	engine config.EngineConfig,
) *QuizService {
	return &QuizService{
		QuizRepo:    quizRepo,
		LessonRepo:  lessonRepo,
		MasteryRepo: masteryRepo,
		Mastery:     mastery,
		WeakArea:    weakArea,
		Ledger:      ledger,
		Notifier:    notifier,
		DB:          db,
		Engine:      engine,
	}
}

type QuizSubmitRequest struct {
	AttemptID string          `json:"attemptId"`
	Answers   map[uint]string `json:"answers" binding:"required"` // questionID -> optionID
	TimeSpent int             `json:"timeSpent" binding:"min=0"`
	StartedAt time.Time       `json:"startedAt"`
}

type QuizSubmitResult struct {
	AttemptKey     string                `json:"attemptKey"`
	Score          int                   `json:"score"`
	TotalPoints    int                   `json:"totalPoints"`
	Percentage     int                   `json:"percentage"`
	Passed         bool                  `json:"passed"`
	IsPerfect      bool                  `json:"isPerfect"`
	CorrectCount   int                   `json:"correctCount"`
	TotalQuestions int                   `json:"totalQuestions"`
	Answers        []model.AttemptAnswer `json:"answers"`
	XPEarned       int                   `json:"xpEarned"`
	NewBadges      []model.Badge         `json:"newBadges"`
	Replayed       bool                  `json:"replayed"` // 幂等重放，未产生新副作用
}

// Submit 判分并提交。同一 attemptId 的重放返回已存结果，不重复计分
func (s *QuizService) Submit(learnerID uint, quizID uint, req QuizSubmitRequest) (*QuizSubmitResult, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.Published {
		return nil, util.ErrQuizNotPublished
	}
	if len(quiz.Questions) == 0 {
		return nil, util.ErrQuizEmpty
	}

	lesson, err := s.LessonRepo.FindByID(quiz.LessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	attemptKey := req.AttemptID
	if attemptKey == "" {
		attemptKey = model.GenerateUUID()
	}

	// 先查重放：同一提交重试直接回放已存结果
	if existing, err := s.QuizRepo.FindAttemptByKey(attemptKey); err == nil {
		return s.replayResult(existing, learnerID)
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	grade := s.grade(quiz, req.Answers)

	// 以本次会话答题序列回放难度决策，期末难度作为下次会话的种子
	seed := model.DifficultyMedium
	if state, err := s.MasteryRepo.GetOrCreate(learnerID, lesson.Subject, lesson.GradeLevel); err == nil {
		seed = state.CurrentDifficulty
	}
	finalDifficulty, bestRun := replaySession(seed, grade.results)

	xpAmount, xpReason := s.xpTier(grade, quiz.PassingScore)

	completedAt := time.Now()
	startedAt := req.StartedAt
	if startedAt.IsZero() {
		startedAt = completedAt.Add(-time.Duration(req.TimeSpent) * time.Second)
	}

	attempt := model.QuizAttempt{
		AttemptKey:     attemptKey,
		LearnerID:      learnerID,
		QuizID:         quiz.ID,
		LessonID:       lesson.ID,
		Score:          grade.earned,
		TotalPoints:    grade.total,
		Percentage:     grade.percentage,
		Passed:         grade.passed(quiz.PassingScore),
		IsPerfect:      grade.isPerfect(),
		CorrectCount:   grade.correctCount,
		TotalQuestions: len(quiz.Questions),
		Answers:        grade.answers,
		XPEarned:       xpAmount,
		TimeSpent:      req.TimeSpent,
		StartedAt:      startedAt,
		CompletedAt:    completedAt,
	}

	var newBadges []model.Badge
	xpEarned := xpAmount

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// 不可变提交记录；唯一索引拦下并发重放
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "attempt_key"}},
			DoNothing: true,
		}).Create(&attempt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errAttemptReplayed
		}

		if err := s.upsertProgress(tx, learnerID, lesson.ID, attempt.Passed, grade.percentage, completedAt); err != nil {
			return err
		}

		if _, err := s.Mastery.commitSessionTx(tx, learnerID, lesson.Subject, lesson.GradeLevel, SessionOutcome{
			Answered:        len(quiz.Questions),
			Correct:         grade.correctCount,
			FinalDifficulty: finalDifficulty,
			BestRun:         bestRun,
		}); err != nil {
			return err
		}

		for _, answer := range grade.answers {
			if err := s.WeakArea.recordOutcomeTx(tx, learnerID, lesson.Subject, answer.Topic, answer.Correct); err != nil {
				return err
			}
		}

		if _, err := s.Ledger.awardXPTx(tx, learnerID, xpAmount, xpReason, "attempt:"+attemptKey); err != nil {
			return err
		}

		streak, err := s.Ledger.updateStreakTx(tx, learnerID, completedAt)
		if err != nil {
			return err
		}
		if streak.StreakUpdated && streak.CurrentStreak > 1 {
			bonusKey := fmt.Sprintf("streak:%d:%s", learnerID, util.DateOnly(completedAt).Format("2006-01-02"))
			if _, err := s.Ledger.awardXPTx(tx, learnerID, s.Engine.XPStreakBonus, "streak:bonus", bonusKey); err != nil {
				return err
			}
			xpEarned += s.Engine.XPStreakBonus
			if err := tx.Model(&model.QuizAttempt{}).
				Where("id = ?", attempt.ID).
				Update("xp_earned", xpEarned).Error; err != nil {
				return err
			}
		}

		newBadges, err = s.Ledger.checkAndAwardBadgesTx(tx, learnerID)
		return err
	})

	if err == errAttemptReplayed {
		existing, ferr := s.QuizRepo.FindAttemptByKey(attemptKey)
		if ferr != nil {
			return nil, ferr
		}
		return s.replayResult(existing, learnerID)
	}
	if err != nil {
		return nil, err
	}

	// 告警与通知在事务之外发出，发完即忘
	if grade.percentage < s.Engine.LowScoreAlertThreshold {
		go s.Notifier.PublishLowScoreAlert(learnerID, lesson.Title, grade.percentage)
	}
	go s.Notifier.PublishQuizCompleted(learnerID, lesson.Title, grade.percentage, attempt.Passed)
	for _, badge := range newBadges {
		go s.Notifier.PublishBadgeAwarded(learnerID, badge.Code, badge.Name)
	}

	return &QuizSubmitResult{
		AttemptKey:     attemptKey,
		Score:          grade.earned,
		TotalPoints:    grade.total,
		Percentage:     grade.percentage,
		Passed:         attempt.Passed,
		IsPerfect:      attempt.IsPerfect,
		CorrectCount:   grade.correctCount,
		TotalQuestions: len(quiz.Questions),
		Answers:        grade.answers,
		XPEarned:       xpEarned,
		NewBadges:      newBadges,
	}, nil
}

type gradeResult struct {
	earned       int
	total        int
	percentage   int
	correctCount int
	answers      []model.AttemptAnswer
	results      []bool // 按题目顺序的对错序列
}

func (g *gradeResult) passed(passingScore int) bool {
	return g.percentage >= passingScore
}

func (g *gradeResult) isPerfect() bool {
	return g.percentage == 100
}

// grade 与正确选项逐题比对，按题目分值加权汇总
func (s *QuizService) grade(quiz *model.Quiz, answers map[uint]string) *gradeResult {
	grade := &gradeResult{
		answers: make([]model.AttemptAnswer, 0, len(quiz.Questions)),
		results: make([]bool, 0, len(quiz.Questions)),
	}

	for _, question := range quiz.Questions {
		correctOption := question.CorrectOptionID()
		selected := answers[question.ID]
		correct := selected != "" && selected == correctOption

		grade.total += question.Points
		if correct {
			grade.earned += question.Points
			grade.correctCount++
		}
		grade.answers = append(grade.answers, model.AttemptAnswer{
			QuestionID:     question.ID,
			SelectedOption: selected,
			CorrectOption:  correctOption,
			Correct:        correct,
			Points:         question.Points,
			Topic:          question.Topic,
		})
		grade.results = append(grade.results, correct)
	}

	// 零分值测验视为退化情形，不除零
	if grade.total > 0 {
		grade.percentage = int(math.Round(float64(grade.earned) / float64(grade.total) * 100))
	}
	return grade
}

// xpTier XP按档位结算：满分 > 及格 > 完成，档位间互斥不叠加
func (s *QuizService) xpTier(grade *gradeResult, passingScore int) (int, string) {
	switch {
	case grade.isPerfect():
		return s.Engine.XPPerfectQuiz, "quiz:perfect"
	case grade.passed(passingScore):
		return s.Engine.XPPassQuiz, "quiz:pass"
	default:
		return s.Engine.XPCompletionQuiz, "quiz:completion"
	}
}

// replaySession 以会话种子难度回放答题序列，得到期末难度与最长连对
func replaySession(seed model.Difficulty, results []bool) (model.Difficulty, int) {
	difficulty := seed
	if !difficulty.Valid() {
		difficulty = model.DifficultyMedium
	}

	consecutiveCorrect, consecutiveWrong, answered, correct, bestRun := 0, 0, 0, 0, 0
	for _, ok := range results {
		answered++
		if ok {
			correct++
			consecutiveCorrect++
			consecutiveWrong = 0
			if consecutiveCorrect > bestRun {
				bestRun = consecutiveCorrect
			}
		} else {
			consecutiveWrong++
			consecutiveCorrect = 0
		}
		adaptation := NextDifficulty(difficulty, consecutiveCorrect, consecutiveWrong, answered, correct)
		difficulty = adaptation.CurrentDifficulty
	}
	return difficulty, bestRun
}

func (s *QuizService) upsertProgress(tx *gorm.DB, learnerID, lessonID uint, passed bool, percentage int, completedAt time.Time) error {
	progress := model.LessonProgress{
		LearnerID: learnerID,
		LessonID:  lessonID,
	}
	if err := tx.Where("learner_id = ? AND lesson_id = ?", learnerID, lessonID).
		FirstOrCreate(&progress).Error; err != nil {
		return err
	}

	progress.Attempts++
	if percentage > progress.BestScore {
		progress.BestScore = percentage
	}
	if passed && !progress.Completed {
		progress.Completed = true
		progress.CompletedAt = &completedAt
	}
	return tx.Save(&progress).Error
}

// replayResult 把已存的提交记录还原成响应，不触发任何副作用
func (s *QuizService) replayResult(attempt *model.QuizAttempt, learnerID uint) (*QuizSubmitResult, error) {
	if attempt.LearnerID != learnerID {
		return nil, util.ErrAttemptLearnerMismatch
	}
	return &QuizSubmitResult{
		AttemptKey:     attempt.AttemptKey,
		Score:          attempt.Score,
		TotalPoints:    attempt.TotalPoints,
		Percentage:     attempt.Percentage,
		Passed:         attempt.Passed,
		IsPerfect:      attempt.IsPerfect,
		CorrectCount:   attempt.CorrectCount,
		TotalQuestions: attempt.TotalQuestions,
		Answers:        attempt.Answers,
		XPEarned:       attempt.XPEarned,
		NewBadges:      []model.Badge{},
		Replayed:       true,
	}, nil
}

// StudentQuiz 学生视图：不泄露正确选项与解析
type StudentQuiz struct {
	ID           uint                  `json:"id"`
	LessonID     uint                  `json:"lessonId"`
	Title        string                `json:"title"`
	PassingScore int                   `json:"passingScore"`
	TimeLimit    int                   `json:"timeLimit"`
	Questions    []StudentQuizQuestion `json:"questions"`
}

type StudentQuizQuestion struct {
	ID         uint             `json:"id"`
	Content    string           `json:"content"`
	Options    []StudentOption  `json:"options"`
	Points     int              `json:"points"`
	Difficulty model.Difficulty `json:"difficulty"`
	Topic      string           `json:"topic"`
}

type StudentOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (s *QuizService) GetQuizForStudent(quizID uint) (*StudentQuiz, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if !quiz.Published {
		return nil, util.ErrQuizNotPublished
	}

	out := &StudentQuiz{
		ID:           quiz.ID,
		LessonID:     quiz.LessonID,
		Title:        quiz.Title,
		PassingScore: quiz.PassingScore,
		TimeLimit:    quiz.TimeLimit,
		Questions:    make([]StudentQuizQuestion, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		options := make([]StudentOption, 0, len(q.Options))
		for _, opt := range q.Options {
			options = append(options, StudentOption{ID: opt.ID, Text: opt.Text})
		}
		out.Questions = append(out.Questions, StudentQuizQuestion{
			ID:         q.ID,
			Content:    q.Content,
			Options:    options,
			Points:     q.Points,
			Difficulty: q.Difficulty,
			Topic:      q.Topic,
		})
	}
	return out, nil
}

func (s *QuizService) RecentAttempts(learnerID uint, limit int) ([]model.QuizAttempt, error) {
	return s.QuizRepo.FindAttemptsByLearner(learnerID, limit)
}
