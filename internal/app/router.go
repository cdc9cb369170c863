package app

import (
	"safa_quest_backend/docs"
	"safa_quest_backend/internal/config"
	"safa_quest_backend/internal/middleware"
	"safa_quest_backend/internal/model"
	"safa_quest_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.POST("/user/avatar/upload", c.user.UploadAvatar)
	rg.PUT("/user/language", c.user.UpdateLanguage)

	// 学生档案
	rg.GET("/student/me", c.attempt.GetMyTotals)

	// 任务目录（带锁定/进度标注）
	rg.GET("/quests", c.quest.ListQuests)
	rg.GET("/quests/:id", c.quest.GetQuest)
	rg.POST("/quests/:id/start", c.quest.StartQuest)

	// 尝试记录与运行器
	rg.GET("/attempts", c.attempt.ListMyAttempts)
	rg.GET("/attempts/:id/step", c.runner.GetCurrentStep)
	rg.POST("/attempts/:id/answer", c.runner.SubmitAnswer)
	rg.POST("/attempts/:id/hint", c.runner.RevealHint)
	rg.POST("/attempts/:id/advance", c.runner.Advance)
	rg.POST("/attempts/:id/abandon", c.runner.Abandon)
	rg.POST("/attempts/:id/reconcile", c.attempt.Reconcile)

	// 社区展示
	rg.GET("/leaderboard", c.social.GetLeaderboard)
	rg.GET("/guilds", c.social.ListGuilds)
	rg.GET("/guilds/:id", c.social.GetGuild)
	rg.GET("/badges/my", c.social.GetMyBadges)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.RoleTeacher, model.RoleAdmin))
	{
		teacher.GET("/class-stats", c.dashboard.GetClassStats)
		teacher.GET("/students", c.dashboard.ListStudents)
		teacher.GET("/students/:id/attempts", c.dashboard.ListStudentAttempts)
	}
}
