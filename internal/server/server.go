package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"focusflow/backend/internal/cache"
	"focusflow/backend/internal/config"
	"focusflow/backend/internal/database"
	"focusflow/backend/internal/handlers"
	"focusflow/backend/internal/middleware"
	"focusflow/backend/internal/monitoring"
	"focusflow/backend/internal/notify"
	"focusflow/backend/internal/reminder"
	"focusflow/backend/internal/services"
	"focusflow/backend/internal/token"
	"focusflow/backend/internal/worker"
)

// Server wires the HTTP API, the reminder scheduler and the notification
// worker into one lifecycle. Run blocks until the context is cancelled and
// then shuts the pieces down in reverse order.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	db        *gorm.DB
	redis     *redis.Client
	engine    *gin.Engine
	httpSrv   *http.Server
	scheduler *reminder.Scheduler
	worker    *worker.Worker
	monitor   *monitoring.Monitor
	limiter   *middleware.RateLimiter
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	redisUp := true
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisUp = false
		logger.Warn("redis unreachable, continuing without cache", slog.String("error", err.Error()))
	}
	cancel()

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		redis:   redisClient,
		monitor: monitoring.NewMonitor(),
	}

	s.monitor.RegisterHealthCheck("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	s.monitor.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	mailer := notify.NewMailer(&cfg.Mail, logger)
	s.buildReminderPipeline(mailer, redisUp)
	s.buildRouter(mailer, redisUp)

	s.httpSrv = &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      s.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s, nil
}

// buildReminderPipeline picks the delivery path for due reminders. The log
// notifier reports directly; the email notifier enqueues a job that the
// redis-backed worker delivers through SMTP.
func (s *Server) buildReminderPipeline(mailer *notify.Mailer, redisUp bool) {
	var notifier notify.Notifier = notify.NewLogNotifier(s.logger)

	if s.cfg.Scheduler.Notifier == "email" {
		if !redisUp {
			s.logger.Warn("email notifier requires redis, falling back to log notifier")
		} else {
			queue := worker.NewJobQueue(s.redis)
			notifier = worker.NewQueueNotifier(queue, s.cfg.Worker.Queues[0])

			s.worker = worker.NewWorker(worker.WorkerConfig{
				RedisClient: s.redis,
				Logger:      s.logger,
				Queues:      s.cfg.Worker.Queues,
			})
			s.worker.RegisterHandler(worker.JobTypeTaskReminder, worker.ReminderHandler(mailer, s.logger))
		}
	}

	s.scheduler = reminder.NewScheduler(
		reminder.NewGormStore(s.db),
		notifier,
		s.logger,
		reminder.Config{
			Interval:     s.cfg.Scheduler.Interval,
			MarkNotified: s.cfg.Scheduler.MarkNotified,
		},
	)
}

func (s *Server) buildRouter(mailer *notify.Mailer, redisUp bool) {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RecoveryWithLog())
	engine.Use(s.monitor.Middleware())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if s.cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(&s.cfg.RateLimit)
		engine.Use(s.limiter.Middleware())
	}

	issuer := token.NewIssuer(s.cfg.Auth.JWTSecret, token.PurposeEmailConfirmation)
	verification := services.NewVerificationService(issuer, s.cfg.Verification.MaxAge)
	registerService := services.NewRegisterService(s.cfg.Auth.BCryptCost)
	authService := services.NewAuthService(&s.cfg.Auth)

	var taskService services.TaskService = services.NewTaskService()
	if redisUp {
		taskService = services.NewCachedTaskService(taskService, cache.NewRedisCacheFromClient(s.redis))
	}
	categoryService := services.NewCategoryService()

	registerHandler := handlers.NewRegisterHandler(s.db, registerService, verification, mailer, s.cfg.Server.BaseURL, s.logger)
	verifyHandler := handlers.NewVerifyHandler(s.db, verification)
	authHandler := handlers.NewAuthHandler(s.db, authService, s.cfg.Auth.AccessTokenTTL)
	refreshHandler := handlers.NewRefreshHandler(s.db, authService)
	logoutHandler := handlers.NewLogoutHandler(s.db, authService)
	taskHandler := handlers.NewTaskHandler(s.db, taskService)
	categoryHandler := handlers.NewCategoryHandler(s.db, categoryService)
	userHandler := handlers.NewUserHandler(s.db)

	engine.GET("/health", s.monitor.HealthHandler())
	engine.GET("/metrics", s.monitor.MetricsHandler())

	v1 := engine.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", registerHandler.Registration)
	auth.GET("/verify", verifyHandler.VerifyEmail)
	auth.POST("/resend", registerHandler.ResendVerification)
	auth.POST("/token", authHandler.Token)
	auth.POST("/refresh", refreshHandler.Refresh)
	auth.POST("/logout", logoutHandler.Logout)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(s.cfg.Auth.JWTSecret))
	protected.GET("/me", userHandler.GetProfile)

	tasks := protected.Group("/tasks")
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("", taskHandler.GetTasks)
	tasks.GET("/:id", taskHandler.GetTaskByID)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	s.engine = engine
}

// Handler exposes the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the background pieces and serves HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.worker != nil {
		s.worker.Start(s.cfg.Worker.Concurrency)
	}
	s.scheduler.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		s.shutdown()
		return err
	}

	s.logger.Info("shutting down")
	s.shutdown()
	return nil
}

func (s *Server) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown", slog.String("error", err.Error()))
	}

	s.scheduler.Stop()
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}

	if err := s.redis.Close(); err != nil {
		s.logger.Error("redis close", slog.String("error", err.Error()))
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error("database close", slog.String("error", err.Error()))
		}
	}
}
