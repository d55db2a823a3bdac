package service

import (
	"net/http"
	"provafacil_backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	snapshotPeriod = time.Second
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionHub 将会话倒计时和状态变化推送给答题端，
// 客户端据此渲染权威计时器
type SessionHub struct {
	Manager *SessionManager
}

func NewSessionHub(manager *SessionManager) *SessionHub {
	return &SessionHub{Manager: manager}
}

// ServeSession 升级为 WebSocket，按秒推送会话快照直到会话结束
func (h *SessionHub) ServeSession(c *gin.Context, session *ExamSession) error {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return err
	}

	go readPump(conn)
	go writePump(conn, session)
	return nil
}

// readPump 丢弃上行消息，只用于感知连接关闭和回应 pong
func readPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Debug("session socket closed", zap.Error(err))
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, session *ExamSession) {
	snapshotTicker := time.NewTicker(snapshotPeriod)
	pingTicker := time.NewTicker(pingPeriod)
	defer func() {
		snapshotTicker.Stop()
		pingTicker.Stop()
		conn.Close()
	}()

	writeSnapshot := func() bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(session.Snapshot()) == nil
	}

	if !writeSnapshot() {
		return
	}

	for {
		select {
		case <-snapshotTicker.C:
			if !writeSnapshot() {
				return
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-session.Done():
			// 最后一帧带上提交结果，随后正常关闭
			writeSnapshot()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
