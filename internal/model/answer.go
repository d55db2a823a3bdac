package model

// Answer 一次答题中单题的作答，Selected 为空表示未作答
// swagger:model Answer
type Answer struct {
	UUIDBase

	AttemptID  string `gorm:"index;type:varchar(36)" json:"attemptId"`
	QuestionID string `gorm:"index;type:varchar(36)" json:"questionId"`
	Selected   *int   `json:"selected"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Answer) TableName() string {
	return "answers"
}
