package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/edustay/internal/app/controllers"
	appMigrations "github.com/yigit/edustay/internal/app/migrations"
	appModels "github.com/yigit/edustay/internal/app/models"
	appRepos "github.com/yigit/edustay/internal/app/repositories"
	appRoutes "github.com/yigit/edustay/internal/app/routes"
	appServices "github.com/yigit/edustay/internal/app/services"
	"github.com/yigit/edustay/internal/config"
	"github.com/yigit/edustay/internal/db"
	"github.com/yigit/edustay/internal/jobs"
	appMiddleware "github.com/yigit/edustay/internal/middleware"
	pkgAuth "github.com/yigit/edustay/internal/pkg/auth"
	"github.com/yigit/edustay/internal/pkg/cache"
	"github.com/yigit/edustay/internal/pkg/filestorage"
	"github.com/yigit/edustay/internal/pkg/helpers"
	"github.com/yigit/edustay/internal/pkg/logger"
	"github.com/yigit/edustay/internal/pkg/metrics"
	"github.com/yigit/edustay/internal/pkg/websocket"
	"github.com/yigit/edustay/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.RateLimiter
	JWTService     *pkgAuth.JWTService
	Cache          cache.Cache
	FileStorage    *filestorage.LocalStorage
	Scheduler      *jobs.Scheduler
	Hub            *websocket.Hub
	Pinger         Pinger
	Logger         zerolog.Logger
}

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(dbPool).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, appRepos.NewUserRepository(dbPool), lgr); err != nil {
			// Seeding is a convenience; the API still works without it
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// SetupCache connects to Redis when enabled and falls back to an in-process cache otherwise.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) cache.Cache {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, using in-memory course cache")
		return cache.NewMemoryCache()
	}

	redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   "edustay:",
	})
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, using in-memory course cache")
		return cache.NewMemoryCache()
	}
	return redisCache
}

// BuildDependencies initializes application repositories, services, controllers and jobs.
func BuildDependencies(cfg *config.Config, conn db.DBTX, pinger Pinger, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Pinger: pinger}

	deps.Repos = appRepos.NewRepositories(conn)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.GetPublicBaseURL()+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Cache = SetupCache(context.Background(), cfg, lgr)
	deps.Hub = websocket.NewHub(logger.Component("ws"))

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, deps.Cache, deps.FileStorage, appServices.Options{
		CourseCacheTTL: helpers.ParseDuration(cfg.Redis.CacheTTL, 5*time.Minute),
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
		Notifier:       deps.Hub,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.RateLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	svc := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth:             appControllers.NewAuthController(svc.AuthService, logger.Component("auth")),
		Course:           appControllers.NewCourseController(svc.CourseService, svc.EnrollmentService),
		CourseEngagement: appControllers.NewEngagementController(appModels.TargetCourse, "courseId", svc.RatingService, svc.FavoriteService),
		House:            appControllers.NewHouseController(svc.HouseService, svc.RentalService),
		HouseEngagement:  appControllers.NewEngagementController(appModels.TargetHouse, "houseId", svc.RatingService, svc.FavoriteService),
		Stats:            appControllers.NewStatsController(svc.StatsService),
		Upload:           appControllers.NewUploadController(svc.UploadService),
		Notifications:    websocket.NewHandler(deps.Hub, cfg.GetAllowedOrigins(), logger.Component("ws")),
	}

	if cfg.Scheduler.Enabled {
		pruners := []jobs.Pruner{deps.RateLimiter}
		if mem, ok := deps.Cache.(*cache.MemoryCache); ok {
			pruners = append(pruners, mem)
		}
		deps.Scheduler, err = jobs.NewScheduler(jobs.Config{
			RentalSweepSpec:  cfg.Scheduler.RentalSweepSpec,
			TokenCleanupSpec: cfg.Scheduler.TokenCleanupSpec,
		}, svc.RentalService, deps.Repos.TokenRepository, pruners, logger.Component("jobs"))
		if err != nil {
			_ = deps.Cache.Close()
			return nil, fmt.Errorf("failed to configure scheduler: %w", err)
		}
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(), metrics.GinMiddleware())
	router.MaxMultipartMemory = 8 << 20

	v1 := appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.RateLimiter)
	v1.GET("/health", healthHandler(deps.Pinger))

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	router.Static("/uploads", cfg.Server.StoragePath)
	lgr.Info().Str("path", cfg.Server.StoragePath).Msg("Static file serving configured for uploads directory")

	return router
}

// healthHandler reports 503 when the database does not answer a ping
func healthHandler(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := pinger.Ping(ctx); err != nil {
				logger.Warn().Err(err).Msg("Health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
