package model

// swagger:model Exam
type Exam struct {
	UUIDBase

	Title         string     `gorm:"size:255;not null" json:"title"`
	Difficulty    string     `gorm:"size:20;default:'medium'" json:"difficulty"`
	EstimatedTime int        `json:"estimatedTime"` // 预计用时（分钟）
	CreatorID     uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`
	Questions     []Question `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}
