package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexfirm-api/internal/auth"
	"lexfirm-api/internal/config"
	"lexfirm-api/internal/database"
	"lexfirm-api/internal/http/handler"
	"lexfirm-api/internal/observability/logger"
	"lexfirm-api/internal/ratelimit"
	"lexfirm-api/internal/repo"
	"lexfirm-api/internal/service"
	"lexfirm-api/internal/storage"
	"lexfirm-api/internal/telemetry"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the LexFirm API HTTP server with all middlewares and observability`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.New(cfg.OTELServiceName, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info(ctx, "starting lexfirm api",
		zap.String("version", "1.0.0"),
		zap.String("service", cfg.OTELServiceName),
	)

	// Run database migrations
	log.Info(ctx, "running database migrations")
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info(ctx, "migrations completed successfully")

	// Initialize telemetry strictly as opt-in
	var tracerProvider *sdktrace.TracerProvider
	var meterProvider *sdkmetric.MeterProvider
	var metrics *telemetry.Metrics

	if cfg.TelemetryEnabled() {
		log.Info(ctx, "initializing telemetry", zap.String("endpoint", cfg.OTELExporterEndpoint))

		tp, err := telemetry.InitTracer(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint, cfg.OTELSamplingRatio)
		if err != nil {
			log.Warn(ctx, "failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			tracerProvider = tp
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown tracer provider", zap.Error(err))
				}
			}()
		}

		mp, m, err := telemetry.InitMetrics(ctx, cfg.OTELServiceName, cfg.OTELExporterEndpoint)
		if err != nil {
			log.Warn(ctx, "failed to initialize metrics, continuing without metrics", zap.Error(err))
		} else {
			meterProvider = mp
			metrics = m
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := meterProvider.Shutdown(shutdownCtx); err != nil {
					log.Error(shutdownCtx, "failed to shutdown meter provider", zap.Error(err))
				}
			}()
		}

		log.Info(ctx, "telemetry initialized", zap.Bool("tracing", tracerProvider != nil), zap.Bool("metrics", metrics != nil))
	} else {
		log.Info(ctx, "telemetry disabled (opt-in only or missing endpoint)")
	}

	// Connect to database
	log.Info(ctx, "connecting to database")
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Info(ctx, "database connected")

	// Connect to Redis
	log.Info(ctx, "connecting to redis")
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info(ctx, "redis connected")

	// Initialize JWT validation
	secret, err := cfg.JWTSecret()
	if err != nil {
		return fmt.Errorf("failed to decode JWT secret: %w", err)
	}
	if len(secret) < 32 {
		return fmt.Errorf("JWT_HS256_SECRET decoded bytes must be at least 32 bytes (256 bits), got %d bytes", len(secret))
	}
	clockSkew := time.Duration(cfg.JWTClockSkewSeconds) * time.Second
	validator := auth.NewHS256Validator(secret, cfg.JWTIssuer, cfg.JWTAudience, clockSkew)
	log.Info(ctx, "JWT authentication initialized",
		zap.String("issuer", cfg.JWTIssuer),
		zap.Int("clock_skew_seconds", cfg.JWTClockSkewSeconds),
	)

	// Initialize document blob storage
	blobs, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize document storage: %w", err)
	}
	log.Info(ctx, "document storage initialized", zap.String("backend", cfg.DocumentStorage))

	// Initialize repositories
	firmRepo := repo.NewFirmRepository(pool)
	userRepo := repo.NewUserRepository(pool)
	roleRepo := repo.NewRoleRepository(pool)
	membershipRepo := repo.NewMembershipRepository(pool)
	clientRepo := repo.NewClientRepository(pool)
	lawyerRepo := repo.NewLawyerRepository(pool)
	caseRepo := repo.NewCaseRepository(pool)
	documentRepo := repo.NewDocumentRepository(pool)

	// Initialize services
	gate := service.NewAccessGate(userRepo, membershipRepo, roleRepo, lawyerRepo, clientRepo, log)
	roleService := service.NewRoleService(roleRepo, log)
	userService := service.NewUserService(firmRepo, userRepo, membershipRepo, roleRepo, gate, log)
	clientService := service.NewClientService(clientRepo, gate, log)
	lawyerService := service.NewLawyerService(lawyerRepo, gate, log)
	caseService := service.NewCaseService(firmRepo, caseRepo, clientRepo, lawyerRepo, documentRepo, blobs, gate, log)

	// Initialize handlers
	roleHandler := handler.NewRoleHandler(roleService)
	userHandler := handler.NewUserHandler(userService)
	clientHandler := handler.NewClientHandler(clientService)
	lawyerHandler := handler.NewLawyerHandler(lawyerService)
	caseHandler := handler.NewCaseHandler(caseService)

	// Initialize rate limiter
	var rateLimitCounter metric.Int64Counter
	if metrics != nil {
		rateLimitCounter = metrics.RateLimitRejections
	}
	rateLimiter := ratelimit.NewRedisRateLimiter(redisClient, rateLimitCounter)

	// Build router
	r := buildRouter(RouterDeps{
		Cfg:           cfg,
		Log:           log,
		Validator:     validator,
		RateLimiter:   rateLimiter,
		Metrics:       metrics,
		Pool:          pool,
		RoleHandler:   roleHandler,
		UserHandler:   userHandler,
		ClientHandler: clientHandler,
		LawyerHandler: lawyerHandler,
		CaseHandler:   caseHandler,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info(ctx, "starting http server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info(ctx, "shutdown signal received, starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	log.Info(shutdownCtx, "shutdown complete")
	return nil
}
