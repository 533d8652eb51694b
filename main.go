package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"storefront/internal/apperror"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/storage"
	"storefront/pkg/rabbitmq"
)

// dependencies are the external resources the HTTP app is built on.
type dependencies struct {
	DB       *gorm.DB
	Cache    cache.Cache
	Mailer   services.Mailer
	Store    storage.ObjectStore
	Registry *prometheus.Registry
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	logFormat := cfg.Log.Format
	if logFormat == "" && cfg.IsProduction() {
		logFormat = "json"
	}
	log := logger.New(cfg.Log.Level, logFormat)

	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close(db, log)
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}
	}

	// --- Cache ---
	var c cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		defer client.Close()
		c = cache.NewRedisCache(client, cfg.Redis.TTL)
	} else {
		log.Warn("REDIS_ADDR not set, catalog cache disabled")
	}

	// --- RabbitMQ ---
	var mailer services.Mailer
	if cfg.AMQP.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.AMQP.URL, MailQueue: cfg.AMQP.MailQueue}, log)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		mailer = mqClient
	} else {
		log.Warn("RABBITMQ_URL not set, mail events are only logged")
		mailer = rabbitmq.NewLogPublisher(log)
	}

	// --- Object storage ---
	store, err := storage.New(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if sqlDB, err := db.DB(); err == nil {
		reg.MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.Database.Name))
	}

	app := newApp(cfg, dependencies{DB: db, Cache: c, Mailer: mailer, Store: store, Registry: reg}, log)

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := app.Listen(cfg.Server.Port); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	log.Info("shutting down server")

	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.WithError(err).Error("error during fiber shutdown")
	}
	log.Info("server gracefully stopped")
}

// newApp wires repositories, services and handlers onto a new Fiber app.
func newApp(cfg *config.Config, deps dependencies, log *logrus.Logger) *fiber.App {
	m := metrics.New(deps.Registry)

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	addressRepo := repositories.NewGORMAddressRepository(deps.DB)
	categoryRepo := repositories.NewGORMCategoryRepository(deps.DB)
	brandRepo := repositories.NewGORMBrandRepository(deps.DB)
	productRepo := repositories.NewGORMProductRepository(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, deps.Mailer, cfg.JWT.Secret, cfg.JWT.TokenTTL, log)
	userService := services.NewUserService(userRepo, addressRepo)
	categoryService := services.NewCategoryService(categoryRepo, deps.Cache, m, log)
	brandService := services.NewBrandService(brandRepo, deps.Cache, m, log)
	productService := services.NewProductService(productRepo, categoryRepo, brandRepo, m, log)
	imageService := services.NewImageService(deps.Store, cfg.Storage.MaxFileSize, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    int(cfg.Storage.MaxFileSize) * 11,
		ErrorHandler: errorHandler(log),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(middleware.PrometheusMetrics(m))

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			log.WithError(err).Warn("health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry})))

	if local, ok := deps.Store.(*storage.LocalStore); ok {
		app.Static("/uploads", local.Dir())
	}

	// --- API Routes ---
	generalLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	authLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.AuthPerSecond), cfg.RateLimit.AuthBurst)

	api := app.Group("", generalLimiter.Middleware())
	guards := handlers.Guards{
		Auth:      middleware.AuthRequired(authService, log),
		Staff:     middleware.RolesRequired(models.RoleManager, models.RoleAdmin),
		AuthLimit: authLimiter.Middleware(),
	}
	handlers.NewAuthHandler(authService).RegisterRoutes(api, guards)
	handlers.NewUserHandler(userService).RegisterRoutes(api, guards)
	handlers.NewCategoryHandler(categoryService).RegisterRoutes(api, guards)
	handlers.NewBrandHandler(brandService).RegisterRoutes(api, guards)
	handlers.NewProductHandler(productService).RegisterRoutes(api, guards)
	handlers.NewImageHandler(imageService).RegisterRoutes(api, guards)

	return app
}

// errorHandler renders errors that handlers returned instead of writing.
func errorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}
		status := apperror.HTTPStatus(err)
		if status >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		}
		return c.Status(status).JSON(fiber.Map{"message": apperror.Message(err)})
	}
}
