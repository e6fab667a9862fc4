package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safepack/tracking-service/controllers"
	"github.com/safepack/tracking-service/logger"
	"github.com/safepack/tracking-service/middleware"
	"github.com/safepack/tracking-service/models"
	aws_pkg "github.com/safepack/tracking-service/pkg/aws"
	"github.com/safepack/tracking-service/providers"
	"github.com/safepack/tracking-service/repository"
	"github.com/safepack/tracking-service/routes"
	servicepkg "github.com/safepack/tracking-service/services"
	"go.uber.org/zap"
)

const serviceName = "tracking-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// AWS clients
	var (
		publisher servicepkg.EventPublisher
		metrics   *aws_pkg.MetricsClient
		cwWriter  *aws_pkg.CloudWatchLogsClient
	)
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(context.Background())
	if awsErr == nil {
		if cfg.ShipmentSNSTopic != "" {
			publisher = aws_pkg.NewSNSClient(awsCfg)
		}
		metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace, cfg.CloudWatchEnabled)
		if cfg.CloudWatchEnabled {
			cwWriter, err = aws_pkg.NewCloudWatchLogsClient(context.Background(), awsCfg, cfg.CloudWatchLogGroup, serviceName)
			if err != nil {
				log.Printf("CloudWatch Logs unavailable: %v", err)
				cwWriter = nil
			}
		}
	}

	var appLogger *zap.Logger
	if cwWriter != nil {
		appLogger, err = logger.NewWithWriter(cfg.Env, cwWriter)
	} else {
		appLogger, err = logger.New(cfg.Env)
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	if awsErr != nil {
		appLogger.Warn("AWS config unavailable, SNS and CloudWatch disabled", zap.Error(awsErr))
	}

	// Session storage: Redis when configured, process memory otherwise
	var sessions repository.SessionStore
	if cfg.RedisURL != "" {
		rdb, err := repository.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close() //nolint:errcheck
		sessions = repository.NewRedisSessionStore(rdb)
	} else {
		sessions = repository.NewMemorySessionStore()
	}

	var seed []models.Shipment
	if cfg.SeedDemoData {
		seed = models.DemoShipments()
	}
	store := repository.NewMemoryShipmentStore(seed...)

	// Provider and DI chain
	publicAPI := providers.NewPublicTrackingProvider(cfg.PublicTrackingURL, cfg.RemoteTimeout)
	adminAPI := providers.NewAdminTrackingProvider(cfg.AdminTrackingURL, cfg.RemoteTimeout)
	authAPI := providers.NewAuthProvider(cfg.AdminLoginURL, cfg.RemoteTimeout)

	var recorder servicepkg.MetricsRecorder
	if metrics.IsEnabled() {
		recorder = metrics
	}
	lookupService := servicepkg.NewLookupService(store, publicAPI, recorder, appLogger)
	adminService := servicepkg.NewAdminService(store, adminAPI, publisher, cfg.ShipmentSNSTopic, appLogger)
	authService := servicepkg.NewAuthService(authAPI, sessions, cfg.SessionTTL, appLogger)

	loginLimiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.LoginRatePerMinute), cfg.LoginRatePerMinute, 10*time.Minute)
	defer loginLimiter.Stop()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(appLogger))
	if metrics.IsEnabled() {
		r.Use(middleware.Metrics(metrics, serviceName))
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.Timeout(30 * time.Second))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName, "shipments": store.Len()})
	})

	routes.RegisterTrackingRoutes(r, routes.Controllers{
		Tracking: controllers.NewTrackingController(lookupService, cfg.DisplayTimezone),
		Admin:    controllers.NewAdminController(adminService, lookupService, cfg.DisplayTimezone),
		Auth:     controllers.NewAuthController(authService, cfg.Env == "production"),
	}, routes.Guards{
		Session:   middleware.RequireSession(authService, appLogger),
		LoginRate: middleware.RateLimit(loginLimiter),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	appLogger.Info("Tracking service started",
		zap.String("port", cfg.Port),
		zap.Int("seeded_shipments", len(seed)),
		zap.Bool("redis_sessions", cfg.RedisURL != ""),
	)
	<-quit
	appLogger.Info("Shutting down tracking service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server exited cleanly")
}
