package model

// Lesson 课程目录条目，自适应引擎只读取其元数据
type Lesson struct {
	BaseModel
	Subject    string   `gorm:"size:50;not null;index" json:"subject"`
	GradeLevel int      `gorm:"not null;index" json:"gradeLevel"`
	Title      string   `gorm:"size:200;not null" json:"title"`
	Content    string   `gorm:"type:text" json:"content"`
	Topics     []string `gorm:"serializer:json" json:"topics"`
	Order      int      `gorm:"default:0" json:"order"`
	Published  bool     `gorm:"default:true" json:"published"`
}

func (Lesson) TableName() string {
	return "lessons"
}
