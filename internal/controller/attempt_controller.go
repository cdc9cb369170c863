package controller

import (
	"errors"
	"safa_quest_backend/internal/service"
	"safa_quest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	progression *service.ProgressionService
}

func NewAttemptController(progression *service.ProgressionService) *AttemptController {
	return &AttemptController{progression: progression}
}

// ListMyAttempts godoc
// @Summary 我的尝试记录
// @Tags 尝试
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuestAttempt}
// @Router /api/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.progression.ListAttempts(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// Reconcile godoc
// @Summary 补偿半程失败的完成结算
// @Description 尝试已完成但经验未入账时补记；已入账则为无操作。按尝试ID幂等。
// @Tags 尝试
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "尝试ID"
// @Success 200 {object} util.Response{data=model.QuestAttempt}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/attempts/{id}/reconcile [post]
func (c *AttemptController) Reconcile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的尝试ID")
		return
	}

	attempt, err := c.progression.Reconcile(user.UserID, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrPartialApplication):
			util.Error(ctx, 503, "xp credit still failing, please retry")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, attempt)
}

// GetMyTotals godoc
// @Summary 学生总分与等级
// @Tags 学生
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.Student}
// @Router /api/student/me [get]
func (c *AttemptController) GetMyTotals(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	student, err := c.progression.StudentTotals(user.UserID)
	if err != nil {
		if errors.Is(err, util.ErrStudentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, student)
}
