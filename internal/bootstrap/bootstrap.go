package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	appAuth "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/auth"
	appControllers "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/controllers"
	appMigrations "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/migrations"
	appRepos "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	appRoutes "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/routes"
	appServices "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/config"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/db"
	appMiddleware "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
	pkgAuth "github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/cache"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/email"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/filestorage"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/moderation"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/search"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/telemetry"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/websocket"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/seed"
)

const defaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         appServices.AuthService
	UserService         appServices.UserService
	ConnectionService   appServices.ConnectionService
	PostService         appServices.PostService
	ReactionService     appServices.ReactionService
	NotificationService appServices.NotificationService
	ResearchService     appServices.ResearchService
	ChatService         appServices.ChatService
	SearchService       appServices.SearchService
	UniversityService   appServices.UniversityService

	Controllers    appRoutes.Controllers
	WSHandler      *websocket.Handler
	AuthMiddleware *appMiddleware.AuthMiddleware

	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	Hub          *websocket.Hub
	Redis        *cache.RedisClient       // nil when redis is disabled
	SearchClient *search.Client           // nil when search is disabled
	Tracer       *sdktrace.TracerProvider // nil when tracing is disabled
	FileStorage  filestorage.FileStorage
	Database     *db.PostgresDB
	Logger       zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
// CONFIG_PATH overrides the default configs/config.yaml.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", defaultConfigPath)
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
		File: logger.FileConfig{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		},
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Str("config", configPath).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool without touching the schema
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the embedded SQL migrations
func RunMigrations(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.Migrate(ctx, appMigrations.Files()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase establishes the database connection, runs migrations when
// enabled and creates the default admin account.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := RunMigrations(ctx, database, lgr); err != nil {
			database.Close()
			return nil, err
		}
	} else {
		lgr.Info().Msg("Automatic migrations disabled, run the admin migrate command")
	}

	repos := appRepos.NewRepositories(database.Pool)
	if err := seed.CreateDefaultData(ctx, repos, os.Getenv("ADMIN_PASSWORD"), lgr); err != nil {
		// Startup continues without the admin account
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// NewFileStorage builds the configured upload backend
func NewFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	switch strings.ToLower(cfg.Storage.Provider) {
	case "s3":
		return filestorage.NewS3Storage(ctx, cfg.Storage.Region, cfg.Storage.Bucket, cfg.Storage.BaseURL)
	default:
		// Must match the static file serving URL path
		baseURL := strings.TrimRight(cfg.Server.BaseURL, "/") + "/uploads"
		return filestorage.NewLocalStorage(cfg.Server.StoragePath, baseURL)
	}
}

// NewSearchClient connects to Elasticsearch and creates missing indices.
// It returns nil when search is disabled.
func NewSearchClient(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*search.Client, error) {
	if !cfg.Search.Enabled {
		return nil, nil
	}
	client, err := search.NewClient(cfg.Search.URLs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.InitializeIndices(initCtx); err != nil {
		return nil, fmt.Errorf("failed to initialize search indices: %w", err)
	}
	lgr.Info().Strs("urls", cfg.Search.URLs).Msg("Search indices ready")
	return client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.Tracer, err = telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Server.Mode,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Enabled:      cfg.Telemetry.Enabled,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	deps.FileStorage, err = NewFileStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	// Optional infrastructure. Interfaces stay nil, not typed nil pointers,
	// when a backend is switched off.
	var presence appServices.PresenceStore
	hubOpts := []websocket.HubOption{}
	if cfg.Redis.Enabled {
		deps.Redis, err = cache.NewRedisClient(ctx, cache.Config{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		}, lgr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		presence = deps.Redis
		hubOpts = append(hubOpts, websocket.WithPresence(deps.Redis, helpers.ParseDuration(cfg.Redis.PresenceTTL, 70*time.Second)))
	}

	var searchIndex appServices.SearchIndex
	deps.SearchClient, err = NewSearchClient(ctx, cfg, lgr)
	if err != nil {
		// Search falls back to Postgres
		lgr.Warn().Err(err).Msg("Search index unavailable, using database search")
		deps.SearchClient = nil
	}
	if deps.SearchClient != nil {
		searchIndex = deps.SearchClient
	}

	var google appServices.GoogleOAuth
	if provider := pkgAuth.NewGoogleProvider(pkgAuth.GoogleConfig{
		ClientID:     cfg.OAuth.Google.ClientID,
		ClientSecret: cfg.OAuth.Google.ClientSecret,
		RedirectURL:  cfg.OAuth.Google.RedirectURL,
	}); provider != nil {
		google = provider
	}

	mailer, err := email.NewEmailService(ctx, email.Config{
		Provider:  cfg.Email.Provider,
		FromName:  cfg.Email.FromName,
		FromEmail: cfg.Email.FromEmail,
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUser,
			Password: cfg.Email.SMTPPassword,
			UseTLS:   cfg.Email.SMTPUseTLS,
		},
		SESRegion: cfg.Email.SESRegion,
	}, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}

	moderator := moderation.NewChecker(moderation.Config{
		Enabled:   cfg.Moderation.Enabled,
		Endpoint:  cfg.Moderation.Endpoint,
		Token:     cfg.Moderation.Token,
		Label:     cfg.Moderation.Label,
		Threshold: cfg.Moderation.Threshold,
		Timeout:   helpers.ParseDuration(cfg.Moderation.Timeout, 5*time.Second),
	}, lgr)

	deps.Hub = websocket.NewHub(lgr, hubOpts...)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	otp := pkgAuth.NewOTPGenerator(pkgAuth.OTPConfig{
		Issuer: cfg.OTP.Issuer,
		TTL:    helpers.ParseDuration(cfg.OTP.TTL, 10*time.Minute),
		Digits: cfg.OTP.Digits,
	})

	// Initialize services
	repos := deps.Repos
	deps.AuthzService = appAuth.NewAuthorizationService(
		repos.PostRepository,
		repos.CommentRepository,
		repos.ConnectionRepository,
		repos.ResearchRepository,
	)

	deps.AuthService = appServices.NewAuthService(
		repos.UserRepository,
		repos.TokenRepository,
		deps.JWTService,
		otp,
		mailer,
		google,
		searchIndex,
		lgr,
	)
	deps.NotificationService = appServices.NewNotificationService(repos.NotificationRepository, repos.UserRepository, deps.Hub, lgr)
	deps.UserService = appServices.NewUserService(repos.UserRepository, deps.FileStorage, deps.Hub, presence, lgr)
	deps.ConnectionService = appServices.NewConnectionService(repos.ConnectionRepository, repos.UserRepository, deps.AuthzService, deps.NotificationService, lgr)
	deps.PostService = appServices.NewPostService(
		repos.PostRepository,
		repos.ConnectionRepository,
		deps.AuthzService,
		deps.NotificationService,
		deps.FileStorage,
		moderator,
		searchIndex,
		lgr,
	)
	deps.ReactionService = appServices.NewReactionService(
		repos.PostRepository,
		repos.LikeRepository,
		repos.CommentRepository,
		repos.ShareRepository,
		repos.RSVPRepository,
		deps.PostService,
		deps.AuthzService,
		deps.NotificationService,
		cfg.Server.FrontendURL,
		lgr,
	)
	deps.ResearchService = appServices.NewResearchService(repos.ResearchRepository, repos.UserRepository, deps.AuthzService, deps.NotificationService, deps.FileStorage, lgr)
	deps.ChatService = appServices.NewChatService(repos.MessageRepository, repos.UserRepository, deps.FileStorage, deps.Hub, lgr)
	deps.SearchService = appServices.NewSearchService(repos.PostRepository, repos.UserRepository, deps.PostService, searchIndex, lgr)
	deps.UniversityService = appServices.NewUniversityService(repos.UniversityRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, repos.UserRepository)

	jwtService := deps.JWTService
	deps.WSHandler = websocket.NewHandler(deps.Hub, func(token string) (int64, error) {
		claims, err := jwtService.ValidateAndExtractClaims(token)
		if err != nil {
			return 0, err
		}
		return claims.UserID, nil
	}, deps.ChatService, cfg.Chat.RequireToken, lgr)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, cfg.IsProduction(), lgr),
		User:         appControllers.NewUserController(deps.UserService, lgr),
		Connection:   appControllers.NewConnectionController(deps.ConnectionService),
		Post:         appControllers.NewPostController(deps.PostService, lgr),
		Reaction:     appControllers.NewReactionController(deps.ReactionService),
		Notification: appControllers.NewNotificationController(deps.NotificationService),
		Research:     appControllers.NewResearchController(deps.ResearchService, lgr),
		Chat:         appControllers.NewChatController(deps.ChatService),
		Search:       appControllers.NewSearchController(deps.SearchService),
		University:   appControllers.NewUniversityController(deps.UniversityService),
	}

	return deps, nil
}

// Close releases the optional infrastructure. The database pool is owned
// by the caller.
func (d *Dependencies) Close(ctx context.Context) error {
	var errs []error
	if d.Hub != nil {
		d.Hub.Close()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if d.Tracer != nil {
		if err := d.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer: %w", err))
		}
	}
	return errors.Join(errs...)
}

// rateLimiters returns the general and auth limiters. With redis they are
// shared across API nodes, otherwise they are per process and their sweepers
// run until ctx is done.
func rateLimiters(ctx context.Context, cfg *config.Config, deps *Dependencies) (gin.HandlerFunc, gin.HandlerFunc) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}
	general := appMiddleware.RateLimitConfig{Limit: cfg.RateLimit.RequestsPerMinute, Window: time.Minute}
	authCfg := appMiddleware.RateLimitConfig{Limit: cfg.RateLimit.AuthPerMinute, Window: time.Minute}

	if deps.Redis != nil {
		return appMiddleware.SharedRateLimit("api", deps.Redis, general, deps.Logger),
			appMiddleware.SharedRateLimit("auth", deps.Redis, authCfg, deps.Logger)
	}

	apiLimiter := appMiddleware.NewRateLimiter("api", general)
	authLimiter := appMiddleware.NewRateLimiter("auth", authCfg)
	go apiLimiter.Run(ctx)
	go authLimiter.Run(ctx)
	return apiLimiter.Middleware(), authLimiter.Middleware()
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(ctx context.Context, cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		lgr.Error().Err(err).Msg("Failed to register custom validators")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.AllowCredentials = true

	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		cors.New(corsConfig),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/ws", "/metrics"})),
	)
	if cfg.Telemetry.Enabled {
		router.Use(appMiddleware.Tracing(cfg.Telemetry.ServiceName))
	}
	router.Use(appMiddleware.Metrics(), appMiddleware.RequestLogger(lgr))

	apiLimit, authLimit := rateLimiters(ctx, cfg, deps)
	if apiLimit != nil {
		router.Use(apiLimit)
	}

	// Setup Swagger
	appRoutes.SetupSwagger(router, strings.TrimPrefix(strings.TrimPrefix(cfg.Server.BaseURL, "https://"), "http://"))

	// Setup API routes using the dependencies
	appRoutes.SetupRouter(router, deps.Controllers, deps.WSHandler, deps.AuthMiddleware, authLimit)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})
	router.GET("/healthz", healthHandler(deps))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if strings.EqualFold(cfg.Storage.Provider, "local") {
		setupStaticFileServing(router, cfg, lgr)
	}

	return router
}

func healthHandler(deps *Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		status := http.StatusOK
		if err := deps.Database.Ping(ctx); err != nil {
			checks["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		if deps.Redis != nil {
			checks["redis"] = "ok"
			if err := deps.Redis.Ping(ctx); err != nil {
				// Redis only backs presence and rate limits
				checks["redis"] = "degraded"
			}
		}
		checks["websocket_clients"] = deps.Hub.Count()

		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}

// setupStaticFileServing serves locally stored uploads under /uploads
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Server.StoragePath
	if err := os.MkdirAll(uploadPath, 0o755); err != nil {
		lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
		return
	}

	router.Static("/uploads", uploadPath)
	lgr.Info().Str("path", uploadPath).Msg("Static file serving configured for uploads directory")
}
