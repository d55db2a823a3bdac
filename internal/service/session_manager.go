package service

import (
	"provafacil_backend/internal/config"
	"provafacil_backend/internal/util"
	"provafacil_backend/pkg/logger"
	"provafacil_backend/pkg/monitoring"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionManager 持有所有在途答题会话，驱动每个会话的秒级倒计时
type SessionManager struct {
	ExamSvc   *ExamService
	Submitter AttemptSubmitter

	retention time.Duration
	mu        sync.RWMutex
	sessions  map[string]*ExamSession
}

func NewSessionManager(examSvc *ExamService, submitter AttemptSubmitter, cfg *config.Config) *SessionManager {
	return &SessionManager{
		ExamSvc:   examSvc,
		Submitter: submitter,
		retention: time.Duration(cfg.Session.RetentionMinutes) * time.Minute,
		sessions:  make(map[string]*ExamSession),
	}
}

// StartSession 加载脱敏试卷并开始计时。试卷不存在时直接报错，
// 由调用方重定向
func (m *SessionManager) StartSession(userID uint, examID string, minutes int) (*ExamSession, error) {
	exam, err := m.ExamSvc.GetExamForTaking(examID)
	if err != nil {
		return nil, err
	}

	session := NewExamSession(userID, exam, m.Submitter)
	if err := session.Start(minutes); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	monitoring.ActiveSessionsGauge.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	go m.run(session)
	return session, nil
}

// Get 只允许会话归属用户访问
func (m *SessionManager) Get(sessionID string, userID uint) (*ExamSession, error) {
	m.mu.RLock()
	session, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, util.ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

// run 秒级心跳；倒计时归零自动交卷，会话结束即退出
func (m *SessionManager) run(session *ExamSession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if session.Tick() {
				if err := session.Finish("auto"); err != nil {
					logger.Log.Error("auto submit failed",
						zap.String("sessionId", session.ID),
						zap.Uint("userId", session.UserID),
						zap.Error(err))
				}
			}
		case <-session.Done():
			return
		}
	}
}

// SetRetention 配置热更新时调整已结束会话的保留时长
func (m *SessionManager) SetRetention(retention time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retention = retention
}

// Prune 回收超过保留期的已结束会话
func (m *SessionManager) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, session := range m.sessions {
		if session.expired(m.retention) {
			session.abort()
			delete(m.sessions, id)
		}
	}
	monitoring.ActiveSessionsGauge.Set(float64(len(m.sessions)))
}
