package controller

import (
	"errors"
	"provafacil_backend/internal/service"
	"provafacil_backend/internal/util"
	"provafacil_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionController struct {
	Sessions *service.SessionManager
	Hub      *service.SessionHub
}

func NewSessionController(sessions *service.SessionManager, hub *service.SessionHub) *SessionController {
	return &SessionController{Sessions: sessions, Hub: hub}
}

// swagger:model StartSessionRequest
type StartSessionRequest struct {
	DurationMinutes int `json:"durationMinutes" binding:"omitempty,gte=1,lte=180"`
}

// swagger:model SelectAnswerRequest
type SelectAnswerRequest struct {
	QuestionID string `json:"questionId" binding:"required"`
	Option     int    `json:"option" binding:"gte=0"`
}

// StartSession godoc
// @Summary 开始在线答题
// @Description 服务端计时，时长 1-180 分钟，缺省 15 分钟
// @Tags 答题会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Param   body body StartSessionRequest false "答题时长"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/exams/{id}/sessions [post]
func (c *SessionController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && ctx.Request.ContentLength > 0 {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.Sessions.StartSession(claims.UserID, ctx.Param("id"), req.DurationMinutes)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound):
			util.NotFound(ctx)
		case util.IsValidationError(err):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, session.Snapshot())
}

// GetSession godoc
// @Summary 会话快照（剩余时间、当前题、作答进度）
// @Tags 答题会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	session, ok := c.lookup(ctx)
	if !ok {
		return
	}

	util.Success(ctx, session.Snapshot())
}

// SelectAnswer godoc
// @Summary 作答当前会话中的某题（可反复修改）
// @Tags 答题会话
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   body body SelectAnswerRequest true "题目与选项"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "题目不属于本试卷或选项越界"
// @Router /api/sessions/{id}/answer [post]
func (c *SessionController) SelectAnswer(ctx *gin.Context) {
	session, ok := c.lookup(ctx)
	if !ok {
		return
	}

	var req SelectAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := session.SelectAnswer(req.QuestionID, req.Option); err != nil {
		switch {
		case errors.Is(err, util.ErrSessionFinished):
			util.BadRequest(ctx, "答题已结束")
		case errors.Is(err, util.ErrQuestionNotInExam), util.IsValidationError(err):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, session.Snapshot())
}

// NextQuestion godoc
// @Summary 进入下一题，最后一题之后自动交卷
// @Tags 答题会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "当前题未作答"
// @Router /api/sessions/{id}/next [post]
func (c *SessionController) NextQuestion(ctx *gin.Context) {
	session, ok := c.lookup(ctx)
	if !ok {
		return
	}

	finish, err := session.Next()
	if err != nil {
		if errors.Is(err, util.ErrSessionFinished) || util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	if finish {
		if err := session.Finish("manual"); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	}

	util.Success(ctx, session.Snapshot())
}

// FinishSession godoc
// @Summary 手动交卷
// @Description 交卷失败时会话进入暂停态，可重试，计时不再走动
// @Tags 答题会话
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response
// @Router /api/sessions/{id}/finish [post]
func (c *SessionController) FinishSession(ctx *gin.Context) {
	session, ok := c.lookup(ctx)
	if !ok {
		return
	}

	if err := session.Finish("manual"); err != nil {
		if errors.Is(err, util.ErrSessionFinished) {
			util.BadRequest(ctx, "答题已结束")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, session.Snapshot())
}

// ServeWS godoc
// @Summary 会话 WebSocket，每秒推送倒计时快照
// @Tags 答题会话
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Router /api/sessions/{id}/ws [get]
func (c *SessionController) ServeWS(ctx *gin.Context) {
	session, ok := c.lookup(ctx)
	if !ok {
		return
	}

	if err := c.Hub.ServeSession(ctx, session); err != nil {
		logger.Log.Warn("websocket 升级失败", zap.String("sessionId", session.ID), zap.Error(err))
	}
}

func (c *SessionController) lookup(ctx *gin.Context) (*service.ExamSession, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}

	session, err := c.Sessions.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return nil, false
	}
	return session, true
}
