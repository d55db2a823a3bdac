package service

import (
	"errors"
	"sync"
	"testing"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	lastSel map[string]int
	lastTS  int
	err     error
}

func (f *fakeSubmitter) Submit(userID uint, examID string, selections map[string]int, timeSpent int) (*SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSel = selections
	f.lastTS = timeSpent
	if f.err != nil {
		return nil, f.err
	}
	return &SubmitResult{AttemptID: "attempt-1", Score: 50}, nil
}

func deliveryFixture() *ExamDelivery {
	return &ExamDelivery{
		ID:    "exam-1",
		Title: "Go 基础",
		Questions: []QuestionView{
			{ID: "q1", Statement: "first", Options: []string{"a", "b", "c"}},
			{ID: "q2", Statement: "second", Options: []string{"a", "b"}},
		},
	}
}

func startedSession(t *testing.T, submitter AttemptSubmitter, minutes int) *ExamSession {
	t.Helper()
	s := NewExamSession(7, deliveryFixture(), submitter)
	if err := s.Start(minutes); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func TestSessionStartDuration(t *testing.T) {
	tests := []struct {
		name        string
		minutes     int
		wantErr     bool
		wantSeconds int
	}{
		{"default when zero", 0, false, 15 * 60},
		{"minimum", 1, false, 60},
		{"maximum", 180, false, 180 * 60},
		{"below minimum", -1, true, 0},
		{"above maximum", 181, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewExamSession(7, deliveryFixture(), &fakeSubmitter{})
			err := s.Start(tt.minutes)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if got := s.Snapshot().DurationSeconds; got != tt.wantSeconds {
				t.Fatalf("DurationSeconds = %d, want %d", got, tt.wantSeconds)
			}
		})
	}
}

func TestSessionCountdownAutoSubmit(t *testing.T) {
	submitter := &fakeSubmitter{}
	s := startedSession(t, submitter, 1)

	if err := s.SelectAnswer("q1", 2); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	expired := false
	for i := 0; i < 60; i++ {
		if s.Tick() {
			expired = true
			if err := s.Finish("auto"); err != nil {
				t.Fatalf("Finish: %v", err)
			}
		}
	}

	if !expired {
		t.Fatal("countdown never reached zero")
	}
	if submitter.calls != 1 {
		t.Fatalf("submitter called %d times, want 1", submitter.calls)
	}
	if submitter.lastTS != 60 {
		t.Fatalf("timeSpent = %d, want 60", submitter.lastTS)
	}
	if got := submitter.lastSel["q1"]; got != 2 {
		t.Fatalf("submitted selection for q1 = %d, want 2", got)
	}

	snap := s.Snapshot()
	if snap.State != SessionFinished {
		t.Fatalf("state = %s, want %s", snap.State, SessionFinished)
	}
	if snap.TimeLeft != 0 {
		t.Fatalf("timeLeft = %d, want 0", snap.TimeLeft)
	}
}

func TestSessionTickNeverGoesNegative(t *testing.T) {
	s := startedSession(t, &fakeSubmitter{}, 1)

	for i := 0; i < 80; i++ {
		s.Tick()
	}

	if got := s.Snapshot().TimeLeft; got != 0 {
		t.Fatalf("timeLeft = %d, want 0", got)
	}
}

func TestSessionDoubleFinish(t *testing.T) {
	submitter := &fakeSubmitter{}
	s := startedSession(t, submitter, 1)

	if err := s.Finish("manual"); err != nil {
		t.Fatalf("first Finish: %v", err)
	}
	// 倒计时归零和手动交卷竞争时，后到的一方是空操作
	if err := s.Finish("auto"); err != nil {
		t.Fatalf("second Finish: %v", err)
	}

	if submitter.calls != 1 {
		t.Fatalf("submitter called %d times, want 1", submitter.calls)
	}
}

func TestSessionFinishFailureKeepsAnswers(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("db gone")}
	s := startedSession(t, submitter, 1)

	if err := s.SelectAnswer("q1", 1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	s.Tick()

	if err := s.Finish("manual"); err == nil {
		t.Fatal("expected submit error")
	}

	snap := s.Snapshot()
	if snap.State != SessionInProgress {
		t.Fatalf("state = %s, want %s", snap.State, SessionInProgress)
	}
	if snap.Error == "" {
		t.Fatal("snapshot should carry the submit error")
	}
	if got := snap.Answers["q1"]; got != 1 {
		t.Fatalf("answer for q1 = %d, want 1 (answers must survive a failed submit)", got)
	}

	// 暂停后计时不再走动
	left := snap.TimeLeft
	s.Tick()
	if got := s.Snapshot().TimeLeft; got != left {
		t.Fatalf("timeLeft moved from %d to %d while paused", left, got)
	}

	// 故障恢复后可以重试交卷
	submitter.err = nil
	if err := s.Finish("manual"); err != nil {
		t.Fatalf("retry Finish: %v", err)
	}
	if got := s.Snapshot().State; got != SessionFinished {
		t.Fatalf("state after retry = %s, want %s", got, SessionFinished)
	}
	if submitter.calls != 2 {
		t.Fatalf("submitter called %d times, want 2", submitter.calls)
	}
}

func TestSessionSelectAnswer(t *testing.T) {
	s := startedSession(t, &fakeSubmitter{}, 1)

	if err := s.SelectAnswer("nope", 0); err == nil {
		t.Fatal("expected error for question outside the exam")
	}
	if err := s.SelectAnswer("q1", 3); err == nil {
		t.Fatal("expected error for option out of range")
	}
	if err := s.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	// 改选覆盖之前的选择
	if err := s.SelectAnswer("q1", 2); err != nil {
		t.Fatalf("SelectAnswer overwrite: %v", err)
	}
	if got := s.Snapshot().Answers["q1"]; got != 2 {
		t.Fatalf("answer for q1 = %d, want 2", got)
	}
}

func TestSessionNext(t *testing.T) {
	s := startedSession(t, &fakeSubmitter{}, 1)

	if _, err := s.Next(); err == nil {
		t.Fatal("Next should fail while the current question is unanswered")
	}

	if err := s.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	finish, err := s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if finish {
		t.Fatal("Next should not signal finish before the last question")
	}

	if err := s.SelectAnswer("q2", 1); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	finish, err = s.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !finish {
		t.Fatal("Next past the last question should signal finish")
	}
}

func TestSessionFinishedRejectsChanges(t *testing.T) {
	s := startedSession(t, &fakeSubmitter{}, 1)
	if err := s.Finish("manual"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if err := s.SelectAnswer("q1", 0); err == nil {
		t.Fatal("SelectAnswer after finish should fail")
	}
	if _, err := s.Next(); err == nil {
		t.Fatal("Next after finish should fail")
	}
	if s.Tick() {
		t.Fatal("Tick after finish should be a no-op")
	}
}
