package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectmgmt/backend/internal/application/assistant"
	appidentity "github.com/projectmgmt/backend/internal/application/identity"
	appproject "github.com/projectmgmt/backend/internal/application/project"
	appsearch "github.com/projectmgmt/backend/internal/application/search"
	apptask "github.com/projectmgmt/backend/internal/application/task"
	"github.com/projectmgmt/backend/internal/infrastructure/auth"
	"github.com/projectmgmt/backend/internal/infrastructure/cache"
	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"github.com/projectmgmt/backend/internal/infrastructure/llm"
	"github.com/projectmgmt/backend/internal/infrastructure/logger"
	"github.com/projectmgmt/backend/internal/infrastructure/persistence"
	"github.com/projectmgmt/backend/internal/infrastructure/storage"
	"github.com/projectmgmt/backend/internal/infrastructure/telemetry"
	"github.com/projectmgmt/backend/internal/interfaces/http/handler"
	"github.com/projectmgmt/backend/internal/interfaces/http/middleware"
	"github.com/projectmgmt/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/projectmgmt/backend/docs"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Project Management API
//	@version		1.0
//	@description	Projects, tasks, teams, search and the chat assistant.

//	@contact.name	API Support

//	@license.name	MIT

//	@host		localhost:8000
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Cognito access token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	}
	// bootstrap logger until the OTLP log bridge exists
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	var extraCores []zapcore.Core
	if loggerProvider.IsEnabled() {
		extraCores = append(extraCores, loggerProvider.ZapCore())
	}
	log, err := logger.New(logCfg, extraCores...)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	_ = bootLog.Sync()
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting project management backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("auth_mode", cfg.Auth.Mode),
	)

	profiler, err := newProfiler(cfg, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithFullSQL(cfg.Telemetry.DBLogFullSQL))
	db, err := persistence.Open(ctx, &cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithConnectRetry(5, time.Second))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite database", zap.Error(err))
		}
		log.Info("SQLite schema migrated", zap.String("path", cfg.Database.SQLitePath))
	}
	log.Info("Database connected successfully")

	meter := meterProvider.Meter("project-management")

	dbInstr, err := telemetry.NewDBInstrumentation(meter, cfg.Telemetry, db.Driver(), log)
	if err != nil {
		log.Fatal("Failed to create database instrumentation", zap.Error(err))
	}
	if err := dbInstr.Register(db.DB); err != nil {
		log.Fatal("Failed to register database instrumentation", zap.Error(err))
	}
	if meterProvider.IsEnabled() {
		dbInstr.StartPoolStatsCollection(ctx, db.SQL(), cfg.Telemetry.MetricsInterval)
	}

	// Repositories
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	teamRepo := persistence.NewGormTeamRepository(db.DB)

	var taskMetrics *telemetry.TaskMetrics
	if meterProvider.IsEnabled() {
		taskMetrics, err = telemetry.NewTaskMetrics(meter, log)
		if err != nil {
			log.Fatal("Failed to create task metrics", zap.Error(err))
		}
		taskMetrics.StartPeriodicCollection(ctx, taskRepo, cfg.Telemetry.MetricsInterval)
	}

	// Object storage for profile pictures
	var pictureSigner appidentity.PictureURLSigner
	if cfg.Storage.Enabled() {
		pictures, err := storage.NewPictureStore(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		pictureSigner = pictures
		log.Info("Object storage configured", zap.String("bucket", pictures.Bucket()))
	} else {
		log.Info("Object storage not configured, profile pictures unavailable")
	}

	// Application services
	projectService := appproject.NewProjectService(projectRepo)
	taskService := apptask.NewTaskService(taskRepo)
	userService := appidentity.NewUserService(userRepo, pictureSigner)
	teamService := appidentity.NewTeamService(teamRepo)
	searchService := appsearch.NewSearchService(taskRepo, projectRepo, userRepo)

	// Assistant relay
	resolverCache, err := cache.NewResolverCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache(ctx)
	if err != nil {
		log.Fatal("Failed to create resolver cache", zap.Error(err))
	}
	defer func() {
		if err := resolverCache.Close(); err != nil {
			log.Warn("Error closing resolver cache", zap.Error(err))
		}
	}()

	llmClient, err := llm.NewClient(llm.Config{
		BaseURL: cfg.Assistant.BaseURL,
		APIKey:  cfg.Assistant.APIKey,
		Timeout: cfg.Assistant.HTTPTimeout,
		Breaker: llm.BreakerConfig{
			FailureThreshold: cfg.Assistant.BreakerFailureThreshold,
			SuccessThreshold: cfg.Assistant.BreakerSuccessThreshold,
			OpenTimeout:      cfg.Assistant.BreakerOpenTimeout,
		},
	}, llm.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create chat model client", zap.Error(err))
	}
	if cfg.Assistant.APIKey == "" {
		log.Warn("Assistant API key not set; every chat answer will be the fallback response")
	}

	assistantMetrics, err := assistant.NewMeterMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create assistant metrics", zap.Error(err))
	}

	resolver := assistant.NewCachedResolver(
		assistant.NewRepositoryResolver(userRepo, teamRepo, projectRepo, taskRepo),
		resolverCache,
		cfg.Assistant.ResolverCacheTTL,
	)
	relay := assistant.NewRelay(
		llmClient,
		assistant.NewRepositoryDataSource(taskRepo, projectRepo, userRepo, nil),
		resolver,
		assistant.Options{
			Model:         cfg.Assistant.Model,
			MaxTokens:     cfg.Assistant.MaxTokens,
			ModelTimeout:  cfg.Assistant.ModelTimeout,
			ParallelTools: cfg.Assistant.ParallelTools,
			Policy: assistant.Policy{
				RedactIdentifiers:  cfg.Assistant.RedactIdentifiers,
				ResolveEntityNames: cfg.Assistant.ResolveEntityNames,
			},
		},
		assistant.WithMetrics(assistantMetrics),
		assistant.WithTracer(tracerProvider.Tracer("assistant")),
	)

	// Authentication
	verifier, err := auth.NewVerifier(cfg.Auth, nil)
	if err != nil {
		log.Fatal("Failed to create token verifier", zap.Error(err))
	}
	if verifier == nil {
		log.Warn("Authentication disabled (auth.mode = none)")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Logger - Request-scoped logger and access log
	// 3. Recovery - Catch panics
	// 4. Tracing - Server spans
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. HTTPMetrics - Request counters and latency
	engine.Use(middleware.RequestID())
	engine.Use(logger.AccessLog(log, logger.WithQuietPaths("/health", "/system/ping")))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, nil))
	engine.Use(middleware.SecureWithConfig(securityConfig(cfg)))
	engine.Use(middleware.CORSWithConfig(corsConfig(cfg)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(meter, log))

	// Health, system info and swagger stay outside authentication
	system := handler.NewSystemHandler(
		handler.BuildInfo{Name: cfg.App.Name, Version: version, Environment: cfg.App.Env},
		handler.Dependency{Name: "database", Pinger: db},
		handler.Dependency{Name: "cache", Pinger: resolverCache},
	).ReportStatus("model_breaker", func() string { return llmClient.BreakerState().String() })
	router.RegisterSystemRoutes(engine, system)
	router.RegisterSwagger(engine, cfg.Swagger.Enabled, cfg.Swagger.AllowedIPs)

	r := router.NewRouter(engine)
	r.Use(middleware.Authenticate(verifier, log), middleware.SpanEnricher())

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		r.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	r.Use(middleware.Profiling(profiler.IsEnabled()))

	r.Register(router.Resources(router.Handlers{
		Projects:  handler.NewProjectHandler(projectService),
		Tasks:     handler.NewTaskHandler(taskService),
		Users:     handler.NewUserHandler(userService, teamService),
		Search:    handler.NewSearchHandler(searchService),
		Assistant: handler.NewAssistantHandler(relay),
	})...)
	routes := r.Setup()
	log.Info("Routes registered", zap.Int("count", len(routes)))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if taskMetrics != nil {
		taskMetrics.Stop()
	}
	dbInstr.Stop()
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	// last, so the lines above still reach the collector
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func newProfiler(cfg *config.Config, log *zap.Logger) (*telemetry.Profiler, error) {
	endpoint := ""
	if cfg.Telemetry.ProfilingEnabled {
		endpoint = cfg.Telemetry.PyroscopeEndpoint
	}
	return telemetry.NewProfiler(endpoint, cfg.Telemetry.ServiceName, log)
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		c.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		c.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return c
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	c := middleware.DefaultSecurityConfig()
	c.HSTSEnabled = cfg.IsProduction()
	return c
}
