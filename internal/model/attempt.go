package model

import "time"

// Attempt 一次完整的答题记录，提交时一次性写入，之后不再修改
// swagger:model Attempt
type Attempt struct {
	UUIDBase

	UserID      uint      `gorm:"index;type:bigint unsigned" json:"userId"`
	ExamID      string    `gorm:"index;type:varchar(36)" json:"examId"`
	Score       int       `json:"score"`     // 0-100
	TimeSpent   int       `json:"timeSpent"` // 用时（秒）
	CompletedAt time.Time `json:"completedAt"`
	Answers     []Answer  `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
	Exam        *Exam     `gorm:"foreignKey:ExamID" json:"exam,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}
