package controller

import (
	"errors"
	"provafacil_backend/internal/service"
	"provafacil_backend/internal/util"
	"provafacil_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	AttemptService *service.AttemptService
}

func NewAttemptController(attemptService *service.AttemptService) *AttemptController {
	return &AttemptController{AttemptService: attemptService}
}

// swagger:model SubmitAttemptRequest
type SubmitAttemptRequest struct {
	Answers   map[string]int `json:"answers"`
	TimeSpent int            `json:"timeSpent" binding:"gte=0"`
}

// SubmitAttempt godoc
// @Summary 直接交卷（自带计时的客户端）
// @Description 每次调用都会生成一条新的答题记录，重考不去重
// @Tags 答题
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Param   body body SubmitAttemptRequest true "作答与用时"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response "试卷不存在"
// @Router /api/exams/{id}/attempts [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AttemptService.Submit(claims.UserID, ctx.Param("id"), req.Answers, req.TimeSpent)
	if err != nil {
		monitoring.AttemptSubmitCounter.WithLabelValues("direct", "error").Inc()
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	monitoring.AttemptSubmitCounter.WithLabelValues("direct", "ok").Inc()
	util.Created(ctx, result)
}
