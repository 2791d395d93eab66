package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/tasklane-io/tasklane-engine/pkg/auth"
	"github.com/tasklane-io/tasklane-engine/pkg/config"
	"github.com/tasklane-io/tasklane-engine/pkg/crypto"
	"github.com/tasklane-io/tasklane-engine/pkg/database"
	"github.com/tasklane-io/tasklane-engine/pkg/handlers"
	"github.com/tasklane-io/tasklane-engine/pkg/logging"
	"github.com/tasklane-io/tasklane-engine/pkg/middleware"
	"github.com/tasklane-io/tasklane-engine/pkg/repositories"
	"github.com/tasklane-io/tasklane-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("database", cfg.Database.Database),
		zap.String("database_host", cfg.Database.Host),
		zap.String("redis", cfg.Redis.Addr()))

	ctx := context.Background()

	// Connect to PostgreSQL
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		// Connection errors can echo the DSN back, credentials included.
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Run migrations via database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Connect to Redis (server-side sessions)
	rdb, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.String("error", logging.SanitizeError(err)))
	}
	defer func() { _ = rdb.Close() }()

	// Session cookie store
	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	cookieSettings := auth.DeriveCookieSettings(cfg.BaseURL, cfg.CookieDomain)
	auth.InitSessionStore(cfg.Session.Secret, cookieSettings, int(sessionTTL.Seconds()))

	// Repositories
	userRepo := repositories.NewUserRepository()
	projectRepo := repositories.NewProjectRepository()
	membershipRepo := repositories.NewMembershipRepository()
	taskRepo := repositories.NewTaskRepository()

	// Services
	hasher := crypto.NewPasswordHasher()
	sessionStore := auth.NewRedisSessionStore(rdb, sessionTTL)
	authService := auth.NewAuthService(userRepo, sessionStore, hasher, logger)
	userService := services.NewUserService(userRepo, projectRepo, hasher, logger)
	projectService := services.NewProjectService(projectRepo, membershipRepo, taskRepo, logger)
	taskService := services.NewTaskService(taskRepo, projectRepo, membershipRepo, logger)
	membershipService := services.NewMembershipService(membershipRepo, projectRepo, userRepo, logger)

	// Middleware
	authMiddleware := auth.NewMiddleware(authService, logger)
	globalMW := database.WithGlobalContext(db, logger)
	projectMW := database.WithProjectContext(db, logger)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(authService, userService, logger).RegisterRoutes(mux, authMiddleware, globalMW)
	handlers.NewUsersHandler(userService, logger).RegisterRoutes(mux, authMiddleware, globalMW)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux, authMiddleware, globalMW, projectMW)
	handlers.NewTasksHandler(taskService, logger).RegisterRoutes(mux, authMiddleware, projectMW)
	handlers.NewTeamHandler(membershipService, logger).RegisterRoutes(mux, authMiddleware, projectMW)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting tasklane-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))

	if cfg.TLSCertPath != "" {
		err = server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
