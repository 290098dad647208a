// Package server exposes the sync layer to the app shell over HTTP.
package server

import (
	"context"
	"fmt"
	"time"

	"islandmarket/internal/cache"
	"islandmarket/internal/config"
	"islandmarket/internal/counters"
	"islandmarket/internal/database"
	"islandmarket/internal/featureflags"
	"islandmarket/internal/middleware"
	"islandmarket/internal/notifications"
	"islandmarket/internal/repository"
	"islandmarket/internal/sanitize"
	"islandmarket/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	store          *counters.Store
	notifier       *notifications.Notifier
	syncService    *service.SyncService
	sanitizer      *sanitize.Sanitizer
	featureFlags   *featureflags.Manager
}

// NewServer connects Redis and, when configured, the backend mirror, then
// builds the server.
func NewServer(cfg *config.Config) (*Server, error) {
	var db *gorm.DB
	if cfg.DatabaseEnabled() {
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
	}
	return NewServerWithDeps(cfg, db, cache.Connect(cfg.RedisURL))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// db and redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var repo repository.UnreadRepository
	if db != nil {
		repo = repository.NewUnreadRepository(db)
	}

	store := counters.NewStore()
	notifier := notifications.NewNotifier(redisClient)

	words := append(append([]string{}, sanitize.DefaultBannedWords...), cfg.ExtraProfanityWords()...)
	placeholder := sanitize.DefaultPlaceholder
	if cfg.Placeholder != "" {
		placeholder = cfg.PlaceholderRune()
	}

	classifier := sanitize.NewProfanityClassifier(words)
	sanitizer := sanitize.New(classifier, sanitize.WithPlaceholder(placeholder))
	if err := sanitizer.VerifyPlaceholder(context.Background(), classifier.LongestWord()); err != nil {
		return nil, fmt.Errorf("invalid placeholder: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("islandmarket-sync"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		store:          store,
		notifier:       notifier,
		syncService:    service.NewSyncService(store, repo, redisClient, notifier),
		sanitizer:      sanitizer,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}, nil
}

// Store returns the counter store shared by every handler.
func (s *Server) Store() *counters.Store {
	return s.store
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	app.Use(middleware.ContextMiddleware())
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8081,http://localhost:19006"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	v1 := app.Group("/api/v1")

	ctrs := v1.Group("/counters")
	ctrs.Get("/", s.GetCounters)
	ctrs.Post("/:name/increment", s.IncrementCounter)
	ctrs.Post("/:name/clear", s.ClearCounter)
	ctrs.Put("/:name", s.SetCounter)

	v1.Post("/sanitize", middleware.RateLimit(s.redis, 60, time.Minute, "sanitize"), s.SanitizeText)
	v1.Post("/chat/format", s.FormatChat)
	v1.Get("/chats/:chatId/messages", s.GetChatHistory)
	v1.Post("/posts/map", s.MapPosts)
	v1.Post("/profiles/resolve", s.ResolveProfiles)
	v1.Get("/flags/:id", s.GetFeatureFlags)

	users := v1.Group("/users")
	users.Post("/:id/read-notifications", s.MarkNotificationsRead)
	users.Post("/:id/chats/:chatId/read", s.MarkChatRead)
	users.Post("/:id/rehydrate", s.Rehydrate)
	users.Post("/:id/notifications", s.ReceiveNotification)
	users.Post("/:id/chats/:chatId/messages", s.ReceiveChatMessage)
}

// App builds the fiber app with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "islandmarket-sync",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start begins serving on the configured port and, when a session user is
// configured, rehydrates and follows that user's unread channel.
func (s *Server) Start() error {
	app := s.App()

	if uid := s.config.SessionUserID; uid != "" {
		if _, err := s.syncService.Rehydrate(s.shutdownCtx, uid); err != nil {
			middleware.Logger.Warn("rehydration skipped", "user_id", uid, "err", err)
		}
		if err := s.syncService.Watch(s.shutdownCtx, uid); err != nil {
			return fmt.Errorf("failed to follow unread channel: %w", err)
		}
	}

	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the unread subscriber, drains HTTP and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownFn()

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			return err
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Warn("failed to close redis", "err", err)
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return nil
}

// HealthCheck reports the state of the optional dependencies.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	checks := fiber.Map{"redis": "disabled", "database": "disabled"}
	status := "healthy"

	if s.redis != nil {
		checks["redis"] = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy"
			status = "degraded"
		}
	}
	if s.db != nil {
		checks["database"] = "healthy"
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			checks["database"] = "unhealthy"
			status = "degraded"
		}
	}

	return c.JSON(fiber.Map{
		"status": status,
		"checks": checks,
		"time":   time.Now().UTC(),
	})
}
