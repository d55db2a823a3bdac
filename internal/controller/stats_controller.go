package controller

import (
	"errors"
	"provafacil_backend/internal/service"
	"provafacil_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService *service.StatsService
}

func NewStatsController(statsService *service.StatsService) *StatsController {
	return &StatsController{StatsService: statsService}
}

// GetUserStats godoc
// @Summary 当前用户答题统计
// @Description 没有任何答题记录时返回全零默认值
// @Tags 统计
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserStats}
// @Router /api/user/stats [get]
func (c *StatsController) GetUserStats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, c.StatsService.GetUserStats(claims.UserID))
}

// GetUserExamHistory godoc
// @Summary 当前用户答题历史（按完成时间倒序）
// @Tags 统计
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/user/history [get]
func (c *StatsController) GetUserExamHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	history := c.StatsService.GetUserExamHistory(claims.UserID)
	util.Success(ctx, gin.H{"items": history, "total": len(history)})
}

// GetExamResults godoc
// @Summary 逐题回顾
// @Description 不带 attemptId 时返回最近一次答题
// @Tags 统计
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Param   attemptId query string false "指定某次答题"
// @Success 200 {object} util.Response{data=service.ExamResults}
// @Failure 404 {object} util.Response "没有答题记录"
// @Router /api/exams/{id}/results [get]
func (c *StatsController) GetExamResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.StatsService.GetExamResults(claims.UserID, ctx.Param("id"), ctx.Query("attemptId"))
	if err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, results)
}
