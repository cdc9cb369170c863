package controller

import (
	"safa_quest_backend/internal/service"
	"safa_quest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// DashboardController 教师端班级看板
type DashboardController struct {
	DashboardService   *service.DashboardService
	ProgressionService *service.ProgressionService
}

func NewDashboardController(dashboard *service.DashboardService, progression *service.ProgressionService) *DashboardController {
	return &DashboardController{DashboardService: dashboard, ProgressionService: progression}
}

// GetClassStats godoc
// @Summary 班级统计
// @Description 学生总数、今日活跃、平均进度、完成任务数、流失风险人数
// @Tags 教师看板
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.ClassStats}
// @Router /api/teacher/class-stats [get]
func (c *DashboardController) GetClassStats(ctx *gin.Context) {
	stats, err := c.DashboardService.GetClassStats()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// ListStudents godoc
// @Summary 学生列表
// @Tags 教师看板
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "页码" default(1)
// @Param pageSize query int false "每页条数" default(20)
// @Success 200 {object} util.Response
// @Router /api/teacher/students [get]
func (c *DashboardController) ListStudents(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))

	students, total, err := c.DashboardService.ListStudents(page, pageSize)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"items": students,
		"total": total,
		"page":  page,
	})
}

// ListStudentAttempts godoc
// @Summary 某学生的尝试记录
// @Tags 教师看板
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "用户ID"
// @Success 200 {object} util.Response{data=[]model.QuestAttempt}
// @Router /api/teacher/students/{id}/attempts [get]
func (c *DashboardController) ListStudentAttempts(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的用户ID")
		return
	}

	attempts, err := c.ProgressionService.ListAttempts(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}
