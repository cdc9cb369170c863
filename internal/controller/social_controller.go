package controller

import (
	"errors"
	"safa_quest_backend/internal/repository"
	"safa_quest_backend/internal/service"
	"safa_quest_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SocialController 排行榜、公会与徽章的只读展示
type SocialController struct {
	Leaderboard *service.LeaderboardService
	GuildRepo   *repository.GuildRepository
	BadgeRepo   *repository.BadgeRepository
}

func NewSocialController(leaderboard *service.LeaderboardService, guildRepo *repository.GuildRepository, badgeRepo *repository.BadgeRepository) *SocialController {
	return &SocialController{Leaderboard: leaderboard, GuildRepo: guildRepo, BadgeRepo: badgeRepo}
}

// GetLeaderboard godoc
// @Summary 经验排行榜
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "返回条数" default(10)
// @Success 200 {object} util.Response{data=[]repository.LeaderboardRow}
// @Router /api/leaderboard [get]
func (c *SocialController) GetLeaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	rows, err := c.Leaderboard.Top(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// GetGuild godoc
// @Summary 公会详情
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "公会ID"
// @Success 200 {object} util.Response{data=model.Guild}
// @Failure 404 {object} util.Response
// @Router /api/guilds/{id} [get]
func (c *SocialController) GetGuild(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "无效的公会ID")
		return
	}

	guild, err := c.GuildRepo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, guild)
}

// ListGuilds godoc
// @Summary 公会排名列表
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Guild}
// @Router /api/guilds [get]
func (c *SocialController) ListGuilds(ctx *gin.Context) {
	guilds, err := c.GuildRepo.List()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, guilds)
}

// GetMyBadges godoc
// @Summary 我的徽章
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.UserBadge}
// @Router /api/badges/my [get]
func (c *SocialController) GetMyBadges(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	badges, err := c.BadgeRepo.ListByUser(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, badges)
}
