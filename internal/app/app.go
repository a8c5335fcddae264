package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kursus_backend/internal/config"
	"kursus_backend/internal/controller"
	"kursus_backend/internal/repository"
	"kursus_backend/internal/service"
	"kursus_backend/pkg/configwatcher"
	"kursus_backend/pkg/database"
	"kursus_backend/pkg/logger"
	"kursus_backend/pkg/monitoring"
	"kursus_backend/pkg/security"
	"kursus_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	learner  *repository.LearnerRepository
	lesson   *repository.LessonRepository
	mastery  *repository.MasteryRepository
	weakArea *repository.WeakAreaRepository
	quiz     *repository.QuizRepository
	badge    *repository.BadgeRepository
}

type services struct {
	lesson      *service.LessonService
	session     *service.SessionService
	mastery     *service.MasteryService
	weakArea    *service.WeakAreaService
	ledger      *service.LedgerService
	quiz        *service.QuizService
	badge       *service.BadgeService
	leaderboard *service.LeaderboardService
	notifier    *service.Notifier
}

type controllers struct {
	session      *controller.SessionController
	quiz         *controller.QuizController
	mastery      *controller.MasteryController
	weakArea     *controller.WeakAreaController
	gamification *controller.GamificationController
	lesson       *controller.LessonController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		learner:  repository.NewLearnerRepository(db),
		lesson:   repository.NewLessonRepository(db),
		mastery:  repository.NewMasteryRepository(db),
		weakArea: repository.NewWeakAreaRepository(db),
		quiz:     repository.NewQuizRepository(db),
		badge:    repository.NewBadgeRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	generator := service.NewAIQuestionGenerator(cfg.Generator)

	s.notifier = service.NewNotifier(rdb)
	s.lesson = service.NewLessonService(repos.lesson, db)
	s.mastery = service.NewMasteryService(repos.mastery, db, cfg.Engine)
	s.weakArea = service.NewWeakAreaService(repos.weakArea, cfg.Engine.WeakAreaResolveRun)
	s.session = service.NewSessionService(repos.lesson, repos.mastery, repos.weakArea, generator, cfg.Engine.WeakTopicHintLimit)
	s.ledger = service.NewLedgerService(repos.learner, repos.badge, repos.mastery, repos.quiz, db, cfg.Engine)
	s.quiz = service.NewQuizService(repos.quiz, repos.lesson, repos.mastery, s.mastery, s.weakArea, s.ledger, s.notifier, db, cfg.Engine)
	s.badge = service.NewBadgeService(repos.badge, db)
	s.leaderboard = service.NewLeaderboardService(repos.learner, rdb, cfg.Engine.LeaderboardSize)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		session:      controller.NewSessionController(s.session),
		quiz:         controller.NewQuizController(s.quiz),
		mastery:      controller.NewMasteryController(s.mastery),
		weakArea:     controller.NewWeakAreaController(s.weakArea),
		gamification: controller.NewGamificationController(s.ledger, s.leaderboard, s.badge),
		lesson:       controller.NewLessonController(s.lesson),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchEngineConfig 热加载引擎可调参数，重载只影响后续请求
func (a *App) watchEngineConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", a.Config, func(cfg interface{}) {
		c, ok := cfg.(*config.Config)
		if !ok {
			return
		}
		a.services.mastery.Engine = c.Engine
		a.services.ledger.Engine = c.Engine
		a.services.quiz.Engine = c.Engine
		a.services.weakArea.ResolveRun = c.Engine.WeakAreaResolveRun
		a.services.session.HintLimit = c.Engine.WeakTopicHintLimit
		logger.Log.Info("engine config reloaded",
			zap.Int("xpPerLevel", c.Engine.XPPerLevel),
			zap.Float64("masteryHistoryWeight", c.Engine.MasteryHistoryWeight))
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
		// redis只承载缓存与通知，不可用时降级运行
		logger.Log.Warn("Redis unavailable, caching and notifications disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("kursus-learning-engine", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		_ = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.watchEngineConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
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

	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
