package controller

import (
	"errors"
	"provafacil_backend/internal/service"
	"provafacil_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

// CreateExam godoc
// @Summary 创建试卷
// @Tags 试卷
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ExamReq true "试卷及题目"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "数据校验失败"
// @Router /api/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.CreateExam(claims.UserID, &req)
	if err != nil {
		if util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"examId": exam.ID})
}

// ImportExam godoc
// @Summary 导入试卷（上传的 JSON 数据）
// @Tags 试卷
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ExamReq true "试卷数据"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response "数据校验失败"
// @Router /api/exams/import [post]
func (c *ExamController) ImportExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.ExamService.ImportExam(claims.UserID, &req)
	if err != nil {
		if util.IsValidationError(err) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"examId": exam.ID})
}

// ListExams godoc
// @Summary 可参加的试卷列表（含本人完成状态）
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/exams [get]
func (c *ExamController) ListExams(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	exams, err := c.ExamService.ListAvailableExams(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": exams, "total": len(exams)})
}

// ListMyExams godoc
// @Summary 我创建的试卷
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/exams/mine [get]
func (c *ExamController) ListMyExams(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	exams, err := c.ExamService.ListMyExams(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"items": exams, "total": len(exams)})
}

// GetExam godoc
// @Summary 试卷详情（含正确答案）
// @Description 仅创建者、管理员或已交过卷的用户可见；答题中请用 take 视图
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	exam, err := c.ExamService.GetExamDetail(claims.UserID, claims.Role, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, exam)
}

// GetExamForTaking godoc
// @Summary 答题用试卷视图（不含正确答案）
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/exams/{id}/take [get]
func (c *ExamController) GetExamForTaking(ctx *gin.Context) {
	delivery, err := c.ExamService.GetExamForTaking(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrExamNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, delivery)
}

// DeleteExam godoc
// @Summary 删除试卷（仅创建者或管理员）
// @Tags 试卷
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id := ctx.Param("id")
	if err := c.ExamService.DeleteExam(claims.UserID, claims.Role, id); err != nil {
		switch {
		case errors.Is(err, util.ErrExamNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"deleted": id})
}
