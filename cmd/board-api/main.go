package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cuongbtq/jobboard/internal/api/handler"
	"github.com/cuongbtq/jobboard/internal/api/router"
	"github.com/cuongbtq/jobboard/internal/api/storage"
	"github.com/cuongbtq/jobboard/internal/config"
	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/events"
	"github.com/cuongbtq/jobboard/shared/database"
	"github.com/cuongbtq/jobboard/shared/logger"
	"github.com/cuongbtq/jobboard/shared/rabbitmq"
	sharedredis "github.com/cuongbtq/jobboard/shared/redis"
)

func main() {
	if err := run(); err != nil {
		logger.NewDefault().Error("Board API stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("BOARD_API_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/board-api.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateAPIConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting board API",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	ctx := context.Background()

	dbClient, err := initDatabase(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	store := storage.NewStorage(dbClient)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	if cfg.Auth.AdminEmail != "" {
		created, err := handler.EnsureUser(ctx, store, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, domain.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
		if created {
			appLogger.Info("Admin account created", slog.String("email", cfg.Auth.AdminEmail))
		}
	}

	publicURL := cfg.Uploads.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d/uploads", cfg.Server.Port)
	}
	files, err := storage.NewFiles(cfg.Uploads.Dir, publicURL)
	if err != nil {
		return err
	}

	hub := events.NewHub(appLogger.Component("events").Logger, allowOrigins(cfg.Server.AllowedOrigins))
	defer hub.Close()

	publishers := events.Multi{hub}
	checks := map[string]handler.HealthCheck{
		"database": dbClient.HealthCheck,
	}

	if cfg.RabbitMQ.Enabled {
		rabbitClient, err := initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		publishers = append(publishers, events.NewRabbitMQ(rabbitClient))
		checks["rabbitmq"] = func(context.Context) error {
			if !rabbitClient.IsConnected() {
				return errors.New("rabbitmq is not connected")
			}
			return nil
		}
		appLogger.Info("RabbitMQ connection established")
	}

	if cfg.Redis.Enabled {
		redisClient, err := sharedredis.NewClient(ctx, cfg.Redis.URL, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()

		publishers = append(publishers, events.NewRedis(redisClient, cfg.Redis.Channel, appLogger.Logger))
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	r, err := initRouter(cfg, &handler.Dependencies{
		Logger:       appLogger.WithAttrs(slog.String("service", cfg.App.Name)).Logger,
		Storage:      store,
		Files:        files,
		Publisher:    publishers,
		Hub:          hub,
		SessionTTL:   cfg.Auth.SessionTTL,
		MaxUpload:    cfg.Uploads.MaxBytes,
		HealthChecks: checks,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize router: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("Board API is running",
		slog.String("address", addr),
		slog.Int("publishers", len(publishers)),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	appLogger.Info("Shutting down server...")

	// websocket connections are hijacked, so Shutdown does not wait for them
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initDatabase opens the configured SQL backend
func initDatabase(cfg *config.DatabaseConfig, logger *slog.Logger) (*database.Client, error) {
	return database.NewClient(&database.Config{
		Driver:          cfg.Driver,
		Path:            cfg.Path,
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}, logger)
}

// initRabbitMQ connects the event publisher to RabbitMQ
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(&rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}, logger)
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, deps *handler.Dependencies) (*gin.Engine, error) {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps, router.Options{
		ServiceName:    cfg.App.Name,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
}

// allowOrigins checks the Origin header of websocket upgrades; no list allows all
func allowOrigins(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			// not a browser
			return true
		}
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
