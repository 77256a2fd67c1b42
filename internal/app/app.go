package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uas_practice_backend/internal/config"
	"uas_practice_backend/internal/controller"
	"uas_practice_backend/internal/repository"
	"uas_practice_backend/internal/service"
	"uas_practice_backend/pkg/database"
	"uas_practice_backend/pkg/logger"
	"uas_practice_backend/pkg/monitoring"
	"uas_practice_backend/pkg/security"
	"uas_practice_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services         *services
	cancelBackground context.CancelFunc
	configCallbacks  []func(*config.Config)
}

type repositories struct {
	course   *repository.CourseRepository
	question *repository.QuestionRepository
	notifier *repository.CatalogNotifier
}

type services struct {
	auth    *service.AuthService
	storage *service.StorageService
	catalog *service.CatalogService
	content *service.ContentRepository
	quiz    *service.QuizSessionService
}

type controllers struct {
	auth    *controller.AuthController
	course  *controller.CourseController
	quiz    *controller.QuizController
	catalog *controller.CatalogController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// OnConfigReload runs the registered config callbacks; wired to the fsnotify
// config watcher in main.
func (a *App) OnConfigReload(cfg *config.Config) {
	logger.Log.Info("config reloaded")
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		course:   repository.NewCourseRepository(db),
		question: repository.NewQuestionRepository(db),
		notifier: repository.NewCatalogNotifier(rdb),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(cfg)
	s.storage = service.NewStorageService(cfg)
	s.catalog = service.NewCatalogService(repos.course, repos.question, repos.notifier)
	s.content = service.NewContentRepository(repos.course, repos.question, repos.notifier)
	s.quiz = service.NewQuizSessionService()

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		course:  controller.NewCourseController(s.content),
		quiz:    controller.NewQuizController(s.quiz, s.content),
		catalog: controller.NewCatalogController(s.catalog, s.storage),
		health:  controller.NewHealthController(db, s.content),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the catalog snapshot loop. Sessions take their
// snapshot from this mirror; nothing else in the process reads the catalog
// tables on the request path.
func (a *App) startBackgroundTasks(s *services) {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelBackground = cancel
	go s.content.Run(ctx)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(func() string {
		if cfg.Server.Mode == "release" {
			return gin.ReleaseMode
		}
		return gin.DebugMode
	}())
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("uas-practice", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		// dynamic bits only; server port, db, redis need a restart
		app.services.auth.Config = newCfg
	})

	app.startBackgroundTasks(services)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.cancelBackground != nil {
		a.cancelBackground()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
