package service

import (
	"errors"
	"provafacil_backend/internal/model"
	"provafacil_backend/internal/util"
	"provafacil_backend/pkg/monitoring"
	"sync"
	"time"
)

// SessionState 答题会话状态机：
// NotStarted → InProgress → Submitting → Finished
type SessionState string

const (
	SessionNotStarted SessionState = "not_started"
	SessionInProgress SessionState = "in_progress"
	SessionSubmitting SessionState = "submitting"
	SessionFinished   SessionState = "finished"
)

// AttemptSubmitter 会话结束时提交答卷
type AttemptSubmitter interface {
	Submit(userID uint, examID string, selections map[string]int, timeSpent int) (*SubmitResult, error)
}

// ExamSession 服务端持有的单次答题会话。倒计时、逐题前进、
// 交卷防重都在这里收敛
type ExamSession struct {
	ID     string
	UserID uint
	Exam   *ExamDelivery

	mu              sync.Mutex
	state           SessionState
	durationSeconds int
	timeLeft        int
	current         int
	answers         map[string]int
	submitting      bool
	paused          bool
	pausedAt        time.Time
	lastErr         error
	result          *SubmitResult
	submitter       AttemptSubmitter
	done            chan struct{}
	finishedAt      time.Time
}

func NewExamSession(userID uint, exam *ExamDelivery, submitter AttemptSubmitter) *ExamSession {
	return &ExamSession{
		ID:        model.GenerateUUID(),
		UserID:    userID,
		Exam:      exam,
		state:     SessionNotStarted,
		answers:   make(map[string]int),
		submitter: submitter,
		done:      make(chan struct{}),
	}
}

// Start 设定时长（分钟，1-180，0 取默认 15）并进入答题状态
func (s *ExamSession) Start(minutes int) error {
	if minutes == 0 {
		minutes = util.DefaultDurationMinutes
	}
	if minutes < util.MinDurationMinutes || minutes > util.MaxDurationMinutes {
		return util.NewValidationError("duration", "must be between 1 and 180 minutes")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionNotStarted {
		return errors.New("session already started")
	}

	s.durationSeconds = minutes * 60
	s.timeLeft = s.durationSeconds
	s.current = 0
	s.state = SessionInProgress
	return nil
}

// Tick 每秒推进一次倒计时，返回是否应触发自动交卷。
// timeLeft 不会为负；提交中或提交失败暂停后不再走表
func (s *ExamSession) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionInProgress || s.paused {
		return false
	}
	if s.timeLeft > 0 {
		s.timeLeft--
	}
	return s.timeLeft == 0
}

// SelectAnswer 记录当前题目的选择，重复选择直接覆盖。
// 此处不校验对错，只在交卷时评分
func (s *ExamSession) SelectAnswer(questionID string, option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionInProgress {
		return util.ErrSessionFinished
	}

	var question *QuestionView
	for i := range s.Exam.Questions {
		if s.Exam.Questions[i].ID == questionID {
			question = &s.Exam.Questions[i]
			break
		}
	}
	if question == nil {
		return util.ErrQuestionNotInExam
	}
	if option < 0 || option >= len(question.Options) {
		return util.NewValidationError("selected", "option index out of range")
	}

	s.answers[questionID] = option
	return nil
}

// Next 当前题已作答时前进到下一题；越过最后一题返回 finish=true，
// 由调用方触发交卷
func (s *ExamSession) Next() (finish bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionInProgress {
		return false, util.ErrSessionFinished
	}

	current := s.Exam.Questions[s.current]
	if _, answered := s.answers[current.ID]; !answered {
		return false, util.NewValidationError("answer", "current question has no recorded answer")
	}

	if s.current < len(s.Exam.Questions)-1 {
		s.current++
		return false, nil
	}
	return true, nil
}

// Finish 交卷。手动点击、答完最后一题、倒计时归零都汇聚到这里；
// 已在提交中或已结束时重复触发是空操作，保证一次会话只产生一条记录
func (s *ExamSession) Finish(trigger string) error {
	s.mu.Lock()
	if s.state != SessionInProgress || s.submitting {
		s.mu.Unlock()
		return nil
	}
	s.submitting = true
	s.state = SessionSubmitting
	timeSpent := s.durationSeconds - s.timeLeft
	selections := make(map[string]int, len(s.answers))
	for id, option := range s.answers {
		selections[id] = option
	}
	s.mu.Unlock()

	result, err := s.submitter.Submit(s.UserID, s.Exam.ID, selections, timeSpent)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		// 提交失败：回到答题状态，已作答内容保留可重试；倒计时不再继续
		s.state = SessionInProgress
		s.paused = true
		s.pausedAt = time.Now()
		s.lastErr = err
		monitoring.AttemptSubmitCounter.WithLabelValues(trigger, "error").Inc()
		return err
	}

	s.state = SessionFinished
	s.paused = false
	s.result = result
	s.lastErr = nil
	s.finishedAt = time.Now()
	monitoring.AttemptSubmitCounter.WithLabelValues(trigger, "ok").Inc()
	close(s.done)
	return nil
}

// Done 会话结束信号
func (s *ExamSession) Done() <-chan struct{} {
	return s.done
}

// SessionSnapshot 会话状态视图，不含正确答案
type SessionSnapshot struct {
	ID              string         `json:"id"`
	ExamID          string         `json:"examId"`
	ExamTitle       string         `json:"examTitle"`
	State           SessionState   `json:"state"`
	DurationSeconds int            `json:"durationSeconds"`
	TimeLeft        int            `json:"timeLeft"`
	CurrentQuestion int            `json:"currentQuestion"`
	TotalQuestions  int            `json:"totalQuestions"`
	Answers         map[string]int `json:"answers"`
	Result          *SubmitResult  `json:"result,omitempty"`
	Error           string         `json:"error,omitempty"`
}

func (s *ExamSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[string]int, len(s.answers))
	for id, option := range s.answers {
		answers[id] = option
	}

	snapshot := SessionSnapshot{
		ID:              s.ID,
		ExamID:          s.Exam.ID,
		ExamTitle:       s.Exam.Title,
		State:           s.state,
		DurationSeconds: s.durationSeconds,
		TimeLeft:        s.timeLeft,
		CurrentQuestion: s.current,
		TotalQuestions:  len(s.Exam.Questions),
		Answers:         answers,
		Result:          s.result,
	}
	if s.lastErr != nil {
		snapshot.Error = s.lastErr.Error()
	}
	return snapshot
}

// expired 已结束会话按结束时间计保留期；提交失败后一直没人重试的
// 暂停会话同样按暂停时间回收，避免失败会话永久滞留
func (s *ExamSession) expired(retention time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionFinished {
		return time.Since(s.finishedAt) > retention
	}
	if s.paused {
		return time.Since(s.pausedAt) > retention
	}
	return false
}

// abort 回收未正常结束的会话，唤醒 run 协程退出
func (s *ExamSession) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionFinished {
		return
	}
	s.state = SessionFinished
	s.finishedAt = time.Now()
	close(s.done)
}
