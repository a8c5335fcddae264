package model

// Quiz 一次测验的定义
// swagger:model Quiz
type Quiz struct {
	BaseModel
	LessonID     uint           `gorm:"index;not null" json:"lessonId"`
	Title        string         `gorm:"size:200;not null" json:"title"`
	PassingScore int            `gorm:"default:70" json:"passingScore"` // 及格百分比
	TimeLimit    int            `gorm:"default:0" json:"timeLimit"`     // 秒，0为不限时
	Published    bool           `gorm:"default:true" json:"published"`
	Questions    []QuizQuestion `gorm:"constraint:OnDelete:CASCADE" json:"questions"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion 测验题目，选项整体序列化存储
type QuizQuestion struct {
	BaseModel
	QuizID      uint         `gorm:"index;not null" json:"quizId"`
	Content     string       `gorm:"type:text;not null" json:"content"`
	Options     []QuizOption `gorm:"serializer:json" json:"options"`
	Topic       string       `gorm:"size:100" json:"topic"`
	Difficulty  Difficulty   `gorm:"size:10;default:'medium'" json:"difficulty"`
	Points      int          `gorm:"default:10" json:"points"`
	Explanation string       `gorm:"type:text" json:"explanation"`
	Order       int          `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

type QuizOption struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// CorrectOptionID 返回被标记为正确的选项ID，无则返回空串
func (q *QuizQuestion) CorrectOptionID() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	return ""
}
