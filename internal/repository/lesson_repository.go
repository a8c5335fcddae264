package repository

import (
	"kursus_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *LessonRepository) List(subject string, gradeLevel int) ([]model.Lesson, error) {
	query := r.DB.Where("published = ?", true)
	if subject != "" {
		query = query.Where("subject = ?", subject)
	}
	if gradeLevel > 0 {
		query = query.Where("grade_level = ?", gradeLevel)
	}
	var lessons []model.Lesson
	err := query.Order("`order` ASC, id ASC").Find(&lessons).Error
	return lessons, err
}
