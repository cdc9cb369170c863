package controller

import (
	"errors"
	"safa_quest_backend/internal/service"
	"safa_quest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestController struct {
	catalog *service.CatalogService
	runner  *service.RunnerService
}

func NewQuestController(catalog *service.CatalogService, runner *service.RunnerService) *QuestController {
	return &QuestController{catalog: catalog, runner: runner}
}

// ListQuests godoc
// @Summary 任务目录
// @Description 按先修链顺序返回全部任务，并按当前学生标注锁定/进度/完成状态
// @Tags 任务
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.QuestView}
// @Router /api/quests [get]
func (c *QuestController) ListQuests(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.catalog.ListForStudent(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, views)
}

// GetQuest godoc
// @Summary 任务详情
// @Tags 任务
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "任务ID"
// @Success 200 {object} util.Response{data=service.QuestView}
// @Failure 404 {object} util.Response
// @Router /api/quests/{id} [get]
func (c *QuestController) GetQuest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的任务ID")
		return
	}

	view, err := c.catalog.GetForStudent(user.UserID, uint(questID))
	if err != nil {
		if errors.Is(err, util.ErrQuestNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

// StartQuest godoc
// @Summary 开始任务
// @Description 创建（或复用）尝试记录并打开运行会话；已完成的任务不可重开
// @Tags 任务
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "任务ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 403 {object} util.Response "任务未解锁"
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "任务已完成"
// @Router /api/quests/{id}/start [post]
func (c *QuestController) StartQuest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的任务ID")
		return
	}

	session, err := c.runner.StartQuest(user.UserID, uint(questID))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrQuestLocked):
			util.Error(ctx, 403, err.Error())
		case errors.Is(err, util.ErrAttemptCompleted):
			util.Conflict(ctx, "quest already completed")
		case errors.Is(err, util.ErrStorageUnavailable):
			util.Error(ctx, 503, "storage unavailable, please retry")
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	step, err := c.runner.CurrentStep(user.UserID, session.AttemptID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"sessionToken": session.Token,
		"attemptId":    session.AttemptID,
		"questId":      session.QuestID,
		"stepCount":    len(session.Steps),
		"step":         step,
	})
}
