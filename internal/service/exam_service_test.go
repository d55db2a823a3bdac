package service

import (
	"encoding/json"
	"provafacil_backend/internal/model"
	"provafacil_backend/internal/util"
	"strings"
	"testing"
)

func validExamReq() *ExamReq {
	return &ExamReq{
		Title: "Go 基础",
		Questions: []QuestionReq{
			{Statement: "Which keyword declares a variable?", Options: []string{"var", "let", "def"}, CorrectAnswer: 0},
			{Statement: "Zero value of int?", Options: []string{"nil", "0"}, CorrectAnswer: 1},
		},
	}
}

func TestValidateExam(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ExamReq)
		wantErr bool
	}{
		{"valid", func(r *ExamReq) {}, false},
		{"empty title", func(r *ExamReq) { r.Title = "" }, true},
		{"no questions", func(r *ExamReq) { r.Questions = nil }, true},
		{"empty statement", func(r *ExamReq) { r.Questions[0].Statement = "" }, true},
		{"single option", func(r *ExamReq) { r.Questions[1].Options = []string{"only"} }, true},
		{"empty option text", func(r *ExamReq) { r.Questions[0].Options[2] = "" }, true},
		{"correct answer negative", func(r *ExamReq) { r.Questions[0].CorrectAnswer = -1 }, true},
		{"correct answer out of range", func(r *ExamReq) { r.Questions[1].CorrectAnswer = 2 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validExamReq()
			tt.mutate(req)
			err := ValidateExam(req)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr && !util.IsValidationError(err) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateExamReportsQuestionIndex(t *testing.T) {
	req := validExamReq()
	req.Questions[1].CorrectAnswer = 99

	err := ValidateExam(req)
	if err == nil {
		t.Fatal("expected error")
	}
	verr, ok := err.(*util.ValidationError)
	if !ok {
		t.Fatalf("expected *util.ValidationError, got %T", err)
	}
	if verr.QuestionIndex != 1 {
		t.Fatalf("QuestionIndex = %d, want 1", verr.QuestionIndex)
	}
	if verr.Field != "correctAnswer" {
		t.Fatalf("Field = %q, want correctAnswer", verr.Field)
	}
}

func TestCanViewFullExam(t *testing.T) {
	tests := []struct {
		name      string
		userID    uint
		role      model.UserRole
		creatorID uint
		attempts  int64
		want      bool
	}{
		{"creator", 1, model.Teacher, 1, 0, true},
		{"admin", 2, model.Admin, 1, 0, true},
		{"student after an attempt", 3, model.Student, 1, 1, true},
		{"student without attempts", 3, model.Student, 1, 0, false},
		{"other teacher without attempts", 4, model.Teacher, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanViewFullExam(tt.userID, tt.role, tt.creatorID, tt.attempts)
			if got != tt.want {
				t.Fatalf("CanViewFullExam(%d, %s, creator=%d, attempts=%d) = %v, want %v",
					tt.userID, tt.role, tt.creatorID, tt.attempts, got, tt.want)
			}
		})
	}
}

func TestExamDeliveryOmitsCorrectAnswer(t *testing.T) {
	exam := &model.Exam{
		UUIDBase: model.UUIDBase{ID: "exam-1"},
		Title:    "Go 基础",
	}
	q := model.Question{UUIDBase: model.UUIDBase{ID: "q1"}, Statement: "pick", CorrectAnswer: 1}
	if err := q.SetOptions([]string{"a", "b"}); err != nil {
		t.Fatalf("SetOptions: %v", err)
	}
	exam.Questions = []model.Question{q}

	delivery := NewExamDelivery(exam)
	if len(delivery.Questions) != 1 || delivery.Questions[0].ID != "q1" {
		t.Fatalf("unexpected delivery questions: %+v", delivery.Questions)
	}

	data, err := json.Marshal(delivery)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "correctAnswer") {
		t.Fatalf("delivery view must not serialize the answer key: %s", data)
	}
}
