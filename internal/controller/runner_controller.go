package controller

import (
	"errors"
	"safa_quest_backend/internal/service"
	"safa_quest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RunnerController 暴露任务运行会话的步进接口。
type RunnerController struct {
	runner *service.RunnerService
}

func NewRunnerController(runner *service.RunnerService) *RunnerController {
	return &RunnerController{runner: runner}
}

func (c *RunnerController) attemptID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的尝试ID")
		return 0, false
	}
	return uint(id), true
}

func (c *RunnerController) mapRunnerError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.Error(ctx, 404, err.Error())
	case errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrMissingAnswer):
		// 可纠正的用户错误：答题后重试即可，会话和已填答案都保留
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrSessionFinished), errors.Is(err, util.ErrAttemptCompleted):
		util.Conflict(ctx, "attempt already completed")
	case errors.Is(err, util.ErrPartialApplication):
		// 完成已落库但经验未入账，提示调用方走 reconcile
		util.Error(ctx, 500, err.Error())
	case errors.Is(err, util.ErrStorageUnavailable):
		util.Error(ctx, 503, "storage unavailable, please retry")
	default:
		util.LogInternalError(ctx, err)
	}
}

// GetCurrentStep godoc
// @Summary 当前步骤
// @Tags 任务运行
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response{data=service.StepView}
// @Router /api/attempts/{id}/step [get]
func (c *RunnerController) GetCurrentStep(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := c.attemptID(ctx)
	if !ok {
		return
	}

	step, err := c.runner.CurrentStep(user.UserID, attemptID)
	if err != nil {
		c.mapRunnerError(ctx, err)
		return
	}
	util.Success(ctx, step)
}

// AnswerRequest swagger:model AnswerRequest
type AnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// SubmitAnswer godoc
// @Summary 提交当前步骤答案
// @Description 只记录到会话内存，推进时才校验；选择题答案为选项下标
// @Tags 任务运行
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Param body body AnswerRequest true "答案"
// @Success 200 {object} util.Response{data=service.StepView}
// @Router /api/attempts/{id}/answer [post]
func (c *RunnerController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := c.attemptID(ctx)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	step, err := c.runner.SubmitAnswer(user.UserID, attemptID, req.Answer)
	if err != nil {
		c.mapRunnerError(ctx, err)
		return
	}
	util.Success(ctx, step)
}

// RevealHint godoc
// @Summary 揭示当前步骤提示
// @Description 每步每会话只累计一次提示次数，重复请求返回同一提示
// @Tags 任务运行
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/attempts/{id}/hint [post]
func (c *RunnerController) RevealHint(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := c.attemptID(ctx)
	if !ok {
		return
	}

	hint, err := c.runner.RevealHint(user.UserID, attemptID)
	if err != nil {
		c.mapRunnerError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"hint": hint})
}

// Advance godoc
// @Summary 推进任务
// @Description 校验当前作答：答错原地重试，答对落进度，最后一步完成并结算经验
// @Tags 任务运行
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response{data=service.AdvanceResult}
// @Failure 400 {object} util.Response "尚未作答"
// @Router /api/attempts/{id}/advance [post]
func (c *RunnerController) Advance(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := c.attemptID(ctx)
	if !ok {
		return
	}

	result, err := c.runner.Advance(user.UserID, attemptID)
	if err != nil {
		c.mapRunnerError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// Abandon godoc
// @Summary 放弃会话
// @Description 丢弃内存会话，已落库的进度保持不变
// @Tags 任务运行
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/abandon [post]
func (c *RunnerController) Abandon(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	attemptID, ok := c.attemptID(ctx)
	if !ok {
		return
	}

	if err := c.runner.Abandon(user.UserID, attemptID); err != nil {
		c.mapRunnerError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"abandoned": true})
}
