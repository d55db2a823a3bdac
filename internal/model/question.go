package model

import "encoding/json"

// swagger:model Question
type Question struct {
	UUIDBase

	ExamID        string `gorm:"index;type:varchar(36)" json:"examId"`
	Statement     string `gorm:"type:text;not null" json:"statement"`
	Options       string `gorm:"type:json" json:"options"` // 选项（JSON array）
	CorrectAnswer int    `json:"correctAnswer"`            // 正确选项下标（0-based）
	Order         int    `gorm:"default:0" json:"order"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionList 解析 JSON 存储的选项列表
func (q *Question) OptionList() []string {
	var opts []string
	_ = json.Unmarshal([]byte(q.Options), &opts)
	return opts
}

func (q *Question) SetOptions(opts []string) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	q.Options = string(data)
	return nil
}
