package service

import (
	"provafacil_backend/internal/model"
	"testing"
)

func twoQuestionExam() []model.Question {
	return []model.Question{
		{UUIDBase: model.UUIDBase{ID: "q1"}, CorrectAnswer: 2},
		{UUIDBase: model.UUIDBase{ID: "q2"}, CorrectAnswer: 1},
	}
}

func TestGradeAnswers(t *testing.T) {
	questions := twoQuestionExam()

	answers, correct := GradeAnswers(questions, map[string]int{"q1": 2, "q2": 0})

	if correct != 1 {
		t.Fatalf("correct = %d, want 1", correct)
	}
	if len(answers) != 2 {
		t.Fatalf("len(answers) = %d, want 2", len(answers))
	}
	if !answers[0].IsCorrect {
		t.Error("q1 should be graded correct")
	}
	if answers[1].IsCorrect {
		t.Error("q2 should be graded incorrect")
	}
	if answers[0].Selected == nil || *answers[0].Selected != 2 {
		t.Error("q1 selected option should be recorded as 2")
	}
}

func TestGradeAnswersUnanswered(t *testing.T) {
	questions := twoQuestionExam()

	answers, correct := GradeAnswers(questions, map[string]int{"q1": 2})

	if correct != 1 {
		t.Fatalf("correct = %d, want 1", correct)
	}
	// 未作答按答错处理，但不虚构选项
	if answers[1].Selected != nil {
		t.Error("unanswered question should have nil Selected")
	}
	if answers[1].IsCorrect {
		t.Error("unanswered question should be graded incorrect")
	}
}

func TestGradeAnswersIgnoresUnknownQuestions(t *testing.T) {
	questions := twoQuestionExam()

	answers, _ := GradeAnswers(questions, map[string]int{"q1": 2, "ghost": 0})

	if len(answers) != 2 {
		t.Fatalf("len(answers) = %d, want 2", len(answers))
	}
}

func TestComputeScore(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"all correct", 5, 5, 100},
		{"none correct", 0, 5, 0},
		{"half", 1, 2, 50},
		{"one third rounds down", 1, 3, 33},
		{"two thirds rounds up", 2, 3, 67},
		{"empty exam", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeScore(tt.correct, tt.total); got != tt.want {
				t.Fatalf("ComputeScore(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}
