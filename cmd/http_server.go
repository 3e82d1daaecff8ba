package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/audit"
	auditpg "github.com/frahmantamala/user-management/internal/audit/postgres"
	"github.com/frahmantamala/user-management/internal/auth"
	"github.com/frahmantamala/user-management/internal/email"
	"github.com/frahmantamala/user-management/internal/formfield"
	formfieldpg "github.com/frahmantamala/user-management/internal/formfield/postgres"
	"github.com/frahmantamala/user-management/internal/rbac"
	rbacpg "github.com/frahmantamala/user-management/internal/rbac/postgres"
	"github.com/frahmantamala/user-management/internal/transport/middleware"
	"github.com/frahmantamala/user-management/internal/transport/rest"
	"github.com/frahmantamala/user-management/internal/user"
	userpg "github.com/frahmantamala/user-management/internal/user/postgres"
	"github.com/frahmantamala/user-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config

	// GORM reuses the sqlx pool so both layers share one set of connections.
	// TranslateError lets repositories detect unique violations portably.
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: deps.DB.DB}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open gorm connection: %w", err)
	}

	middleware.InitMetrics()

	auditRepo := auditpg.NewAuditRepository(gormDB)
	auditRecorder := audit.NewRecorder(auditRepo, deps.Logger)

	userRepo := userpg.NewUserRepository(gormDB)
	rbacRepo := rbacpg.NewRBACRepository(gormDB)
	fieldRepo := formfieldpg.NewFormFieldRepository(gormDB)

	hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost, cfg.Security.HashConcurrency)
	tokenGen := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)

	var mailer email.Mailer
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPMailer(cfg.SMTP, deps.Logger)
	} else {
		mailer = email.NewNoopMailer(deps.Logger)
	}

	authService := auth.NewService(userRepo, rbacRepo, tokenGen, hasher, auditRecorder)
	authHandler := auth.NewHandler(authService)
	authz := auth.NewRBACAuthorization(authService, deps.Logger)

	userService := user.NewService(userRepo, fieldRepo, hasher, mailer, auditRecorder, deps.Logger, cfg.Security.ResetTokenDuration, cfg.Server.BaseURL)
	userHandler := user.NewHandler(userService)

	rbacService := rbac.NewService(rbacRepo, auditRecorder)
	rbacHandler := rbac.NewHandler(rbacService)

	auditHandler := audit.NewHandler(auditRecorder)
	formFieldHandler := formfield.NewHandler(fieldRepo)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, cfg.Server.AllowedOrigins, authHandler, authz, userHandler, rbacHandler, auditHandler, formFieldHandler, deps.Logger)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	router := chi.NewRouter()

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
