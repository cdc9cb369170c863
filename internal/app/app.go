package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"safa_quest_backend/internal/config"
	"safa_quest_backend/internal/controller"
	"safa_quest_backend/internal/repository"
	"safa_quest_backend/internal/service"
	"safa_quest_backend/pkg/configwatcher"
	"safa_quest_backend/pkg/database"
	"safa_quest_backend/pkg/logger"
	"safa_quest_backend/pkg/monitoring"
	"safa_quest_backend/pkg/security"
	"safa_quest_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	student *repository.StudentRepository
	quest   *repository.QuestRepository
	attempt *repository.AttemptRepository
	guild   *repository.GuildRepository
	badge   *repository.BadgeRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	user        *service.UserService
	catalog     *service.CatalogService
	progression *service.ProgressionService
	runner      *service.RunnerService
	leaderboard *service.LeaderboardService
	dashboard   *service.DashboardService
	student     *service.StudentService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	quest     *controller.QuestController
	runner    *controller.RunnerController
	attempt   *controller.AttemptController
	social    *controller.SocialController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		student: repository.NewStudentRepository(db),
		quest:   repository.NewQuestRepository(db),
		attempt: repository.NewAttemptRepository(db),
		guild:   repository.NewGuildRepository(db),
		badge:   repository.NewBadgeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.student, cfg)
	s.user = service.NewUserService(repos.user, s.storage)

	s.catalog = service.NewCatalogService(repos.quest, repos.attempt)
	s.progression = service.NewProgressionService(repos.attempt, repos.student, repos.quest)
	s.runner = service.NewRunnerService(s.catalog, s.progression, repos.quest, repos.attempt)

	s.leaderboard = service.NewLeaderboardService(
		repos.student,
		rdb,
		time.Duration(cfg.Quest.LeaderboardCacheSeconds)*time.Second,
	)
	s.dashboard = service.NewDashboardService(repos.user, repos.student, repos.attempt)
	s.student = service.NewStudentService(repos.student)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.user),
		quest:     controller.NewQuestController(s.catalog, s.runner),
		runner:    controller.NewRunnerController(s.runner),
		attempt:   controller.NewAttemptController(s.progression),
		social:    controller.NewSocialController(s.leaderboard, repos.guild, repos.badge),
		dashboard: controller.NewDashboardController(s.dashboard, s.progression),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	// 每日连续学习天数回滚
	go func() {
		interval := time.Duration(cfg.Quest.StreakRolloverHours) * time.Hour
		ticker := time.NewTicker(interval)
		for range ticker.C {
			if err := s.student.RolloverDailyStreaks(); err != nil {
				logger.Log.Error("streak rollover error", zap.Error(err))
			}
		}
	}()

	// 配置热更新
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(newCfg interface{}) {
		cfg, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		a.Config = cfg
		for _, callback := range a.configCallbacks {
			callback(cfg)
		}
		logger.Log.Info("Config reloaded")
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, repos, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer("safa-quest", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
