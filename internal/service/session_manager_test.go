package service

import (
	"errors"
	"testing"
	"time"
)

func managerWith(sessions ...*ExamSession) *SessionManager {
	m := &SessionManager{sessions: make(map[string]*ExamSession)}
	for _, s := range sessions {
		m.sessions[s.ID] = s
	}
	return m
}

func TestPruneReclaimsFinishedSessions(t *testing.T) {
	s := startedSession(t, &fakeSubmitter{}, 1)
	if err := s.Finish("manual"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	m := managerWith(s)
	m.retention = time.Hour
	m.Prune()
	if _, ok := m.sessions[s.ID]; !ok {
		t.Fatal("finished session inside retention should survive Prune")
	}

	m.retention = 0
	m.Prune()
	if _, ok := m.sessions[s.ID]; ok {
		t.Fatal("finished session past retention should be pruned")
	}
}

func TestPruneReclaimsSessionsWithFailedSubmit(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("db gone")}
	s := startedSession(t, submitter, 1)
	if err := s.Finish("manual"); err == nil {
		t.Fatal("expected submit error")
	}

	m := managerWith(s)
	m.retention = 0
	m.Prune()

	if _, ok := m.sessions[s.ID]; ok {
		t.Fatal("paused session past retention should be pruned")
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("pruning must release the session so its heartbeat goroutine exits")
	}
}

func TestPruneKeepsRunningSessions(t *testing.T) {
	s := startedSession(t, &fakeSubmitter{}, 1)
	s.Tick()

	m := managerWith(s)
	m.retention = 0
	m.Prune()

	if _, ok := m.sessions[s.ID]; !ok {
		t.Fatal("an in-progress session must never be pruned")
	}
	select {
	case <-s.Done():
		t.Fatal("in-progress session must not be released")
	default:
	}
}
