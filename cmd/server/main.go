package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ksaphier/trainerapp/internal/api"
	"ksaphier/trainerapp/internal/config"
	"ksaphier/trainerapp/internal/logging"
	"ksaphier/trainerapp/internal/metrics"
	"ksaphier/trainerapp/internal/repository"
	"ksaphier/trainerapp/internal/repository/memory"
	"ksaphier/trainerapp/internal/repository/mongo"
	"ksaphier/trainerapp/internal/repository/postgres"
	"ksaphier/trainerapp/internal/service"
	"ksaphier/trainerapp/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Trainer API
// @version 1.0
// @description API for managing users, exercises, muscles and workouts.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	logger.Info("starting trainer server",
		zap.String("address", cfg.Server.Address),
		zap.String("database_driver", cfg.Database.Driver))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	store, closeStore, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
	} else {
		logger.Info("object storage not configured, exercise media disabled")
	}

	// --- Initialize Services ---
	services := api.Services{
		Auth:             service.NewAuthService(store.Users, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.Issuer),
		Exercises:        service.NewExerciseService(store, fileStorage, logger),
		Muscles:          service.NewMuscleService(store),
		Workouts:         service.NewWorkoutService(store),
		WorkoutExercises: service.NewWorkoutExerciseService(store),
	}

	loginLimiter := api.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst, logger)
	loginLimiter.StartCleanup(ctx, 5*time.Minute)

	// --- Initialize Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(api.Recovery(logger), api.RequestLogger(logger), metrics.Middleware())
	if corsMiddleware := api.CORS(cfg.CORS); corsMiddleware != nil {
		router.Use(corsMiddleware)
	} else {
		logger.Info("cors disabled, no allowed origins configured")
	}
	api.SetupRoutes(router, logger, services, loginLimiter)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// openStore connects the configured backend and prepares its schema or indexes.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.URI)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return repository.Store{}, nil, fmt.Errorf("ensure schema: %w", err)
		}
		logger.Info("postgres store ready")
		return postgres.NewStore(db), db.Close, nil

	case config.DriverMongo:
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return repository.Store{}, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() {
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect mongo", zap.Error(err))
			}
		}
		appDB := client.Database(cfg.Name)

		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(indexCtx, appDB); err != nil {
			closeFn()
			return repository.Store{}, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("mongo store ready", zap.String("database", cfg.Name))
		return mongo.NewStore(client, appDB), closeFn, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New().Repositories(), func() {}, nil
	}
	return repository.Store{}, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}
