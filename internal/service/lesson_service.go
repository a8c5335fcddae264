package service

import (
	"kursus_backend/internal/model"
	"kursus_backend/internal/repository"
	"kursus_backend/internal/util"

	"gorm.io/gorm"
)

// LessonService 课程目录的只读门面
type LessonService struct {
	LessonRepo *repository.LessonRepository
	DB         *gorm.DB
}

func NewLessonService(lessonRepo *repository.LessonRepository, db *gorm.DB) *LessonService {
	return &LessonService{LessonRepo: lessonRepo, DB: db}
}

func (s *LessonService) Get(id uint) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.Published {
		return nil, util.ErrLessonNotPublished
	}
	return lesson, nil
}

func (s *LessonService) List(subject string, gradeLevel int) ([]model.Lesson, error) {
	return s.LessonRepo.List(subject, gradeLevel)
}

// LessonWithProgress 列表项附带学习者自己的进度
type LessonWithProgress struct {
	model.Lesson
	Completed bool `json:"completed"`
	BestScore int  `json:"bestScore"`
	Attempts  int  `json:"attempts"`
}

// ListWithProgress 按学习者合并课时进度，无记录的课时进度为零值
func (s *LessonService) ListWithProgress(learnerID uint, subject string, gradeLevel int) ([]LessonWithProgress, error) {
	lessons, err := s.LessonRepo.List(subject, gradeLevel)
	if err != nil {
		return nil, err
	}

	var records []model.LessonProgress
	if err := s.DB.Where("learner_id = ?", learnerID).Find(&records).Error; err != nil {
		return nil, err
	}
	byLesson := make(map[uint]model.LessonProgress, len(records))
	for _, rec := range records {
		byLesson[rec.LessonID] = rec
	}

	out := make([]LessonWithProgress, 0, len(lessons))
	for _, lesson := range lessons {
		item := LessonWithProgress{Lesson: lesson}
		if rec, ok := byLesson[lesson.ID]; ok {
			item.Completed = rec.Completed
			item.BestScore = rec.BestScore
			item.Attempts = rec.Attempts
		}
		out = append(out, item)
	}
	return out, nil
}
