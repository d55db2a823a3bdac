package service

import (
	"provafacil_backend/internal/model"
	"testing"
)

func attemptWith(score, timeSpent int, results ...bool) model.Attempt {
	answers := make([]model.Answer, 0, len(results))
	for _, correct := range results {
		answers = append(answers, model.Answer{IsCorrect: correct})
	}
	return model.Attempt{Score: score, TimeSpent: timeSpent, Answers: answers}
}

func TestComputeUserStats(t *testing.T) {
	attempts := []model.Attempt{
		attemptWith(50, 90, true, false),
		attemptWith(100, 60, true, true),
	}

	stats := ComputeUserStats(attempts)

	if stats.TotalExams != 2 {
		t.Fatalf("TotalExams = %d, want 2", stats.TotalExams)
	}
	if stats.CorrectAnswers != 3 {
		t.Fatalf("CorrectAnswers = %d, want 3", stats.CorrectAnswers)
	}
	if stats.WrongAnswers != 1 {
		t.Fatalf("WrongAnswers = %d, want 1", stats.WrongAnswers)
	}
	// (90+60)/2 = 75 秒
	if stats.AverageTime != "1m 15s" {
		t.Fatalf("AverageTime = %q, want \"1m 15s\"", stats.AverageTime)
	}
}

func TestComputeUserStatsEmpty(t *testing.T) {
	stats := ComputeUserStats(nil)

	if stats.TotalExams != 0 || stats.CorrectAnswers != 0 || stats.WrongAnswers != 0 {
		t.Fatalf("zero attempts should give zero counters, got %+v", stats)
	}
	if stats.AverageTime != "0m 0s" {
		t.Fatalf("AverageTime = %q, want \"0m 0s\"", stats.AverageTime)
	}
}

func TestBuildExamResultsFollowsQuestionOrder(t *testing.T) {
	q1 := model.Question{UUIDBase: model.UUIDBase{ID: "q1"}, Statement: "first", CorrectAnswer: 0, Order: 0}
	q2 := model.Question{UUIDBase: model.UUIDBase{ID: "q2"}, Statement: "second", CorrectAnswer: 1, Order: 1}
	q3 := model.Question{UUIDBase: model.UUIDBase{ID: "q3"}, Statement: "third", CorrectAnswer: 0, Order: 2}

	sel := 1
	attempt := &model.Attempt{
		UUIDBase: model.UUIDBase{ID: "attempt-1"},
		ExamID:   "exam-1",
		Score:    33,
		Exam: &model.Exam{
			UUIDBase: model.UUIDBase{ID: "exam-1"},
			Title:    "Go 基础",
			// 预加载顺序不保证与题序一致
			Questions: []model.Question{q3, q1, q2},
		},
		Answers: []model.Answer{
			{QuestionID: "q2", Selected: &sel, IsCorrect: true},
			{QuestionID: "q1", IsCorrect: false},
			{QuestionID: "q3", IsCorrect: false},
		},
	}

	results := buildExamResults(attempt)

	if results.TotalQuestions != 3 {
		t.Fatalf("TotalQuestions = %d, want 3", results.TotalQuestions)
	}
	if results.CorrectAnswers != 1 || results.WrongAnswers != 2 {
		t.Fatalf("correct/wrong = %d/%d, want 1/2", results.CorrectAnswers, results.WrongAnswers)
	}
	for i, wantID := range []string{"q1", "q2", "q3"} {
		if results.Questions[i].ID != wantID {
			t.Fatalf("Questions[%d].ID = %q, want %q", i, results.Questions[i].ID, wantID)
		}
	}
	if !results.Questions[1].IsCorrect || results.Questions[1].UserAnswer == nil || *results.Questions[1].UserAnswer != 1 {
		t.Fatalf("q2 result = %+v, want correct with selection 1", results.Questions[1])
	}
	if results.Questions[0].UserAnswer != nil {
		t.Fatalf("q1 was unanswered, got selection %v", results.Questions[0].UserAnswer)
	}
}
