// Package main provides the scorecard server entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang/glog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/authz"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/config"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/identity"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard"
	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard/period"
)

func main() {
	var (
		listenAddr   string
		configPath   string
		databaseType string
		databaseDSN  string
	)

	flag.StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	flag.StringVar(&configPath, "config", "", "Path to the window config file (optional)")
	flag.StringVar(&databaseType, "db-type", "postgres", "Database type (postgres, mysql, or sqlite)")
	flag.StringVar(&databaseDSN, "db-dsn", "", "Database connection string")
	flag.Parse()

	_ = flag.Set("logtostderr", "true")

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting scorecard server",
		"listen", listenAddr,
		"dbType", databaseType,
		"config", configPath,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load(configPath)
	if err != nil {
		glog.Fatalf("Failed to load config: %v", err)
	}

	db, err := setupDatabase(databaseType, databaseDSN)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}
	if err := scorecard.AutoMigrate(db); err != nil {
		glog.Fatalf("Failed to migrate database: %v", err)
	}

	// Window lookups always go through the watcher so a config file edit
	// takes effect without a restart.
	watcher := config.NewWatcher(configPath, cfg, logger)
	if configPath != "" {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	authorizer, err := setupAuthorizer(logger)
	if err != nil {
		glog.Fatalf("Failed to set up authorization: %v", err)
	}

	identityMiddleware, err := setupIdentity(logger)
	if err != nil {
		glog.Fatalf("Failed to set up identity: %v", err)
	}

	stores := scorecard.Stores{
		Scorecards: scorecard.NewScorecardStore(db, nil),
		Metrics:    scorecard.NewMetricStore(db, nil),
		Entries:    scorecard.NewEntryStore(db, nil),
		Users:      scorecard.NewUserStore(db),
	}
	loader := scorecard.NewLoader(db, authorizer, func(c period.Cadence) int {
		return watcher.Current().Window(c)
	})

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(envOrDefault("SCORECARD_CORS_ORIGINS", "*"), ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	router.Use(identityMiddleware)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Mount("/api/v1", scorecard.NewRouter(stores, loader, authorizer))

	logger.Info("scorecard server ready", "listen", listenAddr)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("scorecard server stopped")
}

func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = os.Getenv("DATABASE_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("database DSN is required (use -db-dsn flag or DATABASE_DSN environment variable)")
		}
	}

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}
	switch dbType {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), gormCfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), gormCfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unknown database type %q (expected postgres, mysql, or sqlite)", dbType)
	}
}

// setupAuthorizer picks the authorization mode from SCORECARD_AUTHZ_MODE.
func setupAuthorizer(logger *slog.Logger) (authz.Authorizer, error) {
	mode := os.Getenv("SCORECARD_AUTHZ_MODE")
	switch mode {
	case "groups":
		groups := strings.Split(envOrDefault("SCORECARD_MUTATOR_GROUPS", "scorecard-admins"), ",")
		logger.Info("using group-based authorization", "mutatorGroups", groups)
		return authz.NewGroupAuthorizer(groups), nil
	case "none", "":
		if mode == "" {
			logger.Info("authorization disabled (allow all)")
		}
		return &authz.NoopAuthorizer{}, nil
	default:
		return nil, fmt.Errorf("unknown authz mode %q (expected groups, none, or empty)", mode)
	}
}

// setupIdentity picks the identity middleware from SCORECARD_AUTH_MODE.
func setupIdentity(logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	mode := os.Getenv("SCORECARD_AUTH_MODE")
	switch mode {
	case "jwt":
		cfg := identity.JWTConfig{
			PublicKeyPath: os.Getenv("SCORECARD_JWT_PUBLIC_KEY_PATH"),
			Issuer:        os.Getenv("SCORECARD_JWT_ISSUER"),
			Audience:      os.Getenv("SCORECARD_JWT_AUDIENCE"),
			GroupsClaim:   envOrDefault("SCORECARD_JWT_GROUPS_CLAIM", "groups"),
			Logger:        logger,
		}
		logger.Info("using JWT identity",
			"issuer", cfg.Issuer,
			"hasPublicKey", cfg.PublicKeyPath != "")
		return identity.NewJWTMiddleware(cfg)
	case "header", "":
		// Default: trust X-User-* headers (development mode, or behind a
		// trusted proxy that sets them).
		if mode == "" {
			logger.Info("using default header-based identity (X-User-Id)")
		}
		return identity.HeaderMiddleware, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q (expected jwt, header, or empty)", mode)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
