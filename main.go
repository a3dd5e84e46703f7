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
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hotel-booking/config"
	"hotel-booking/controllers"
	"hotel-booking/routes"
	"hotel-booking/services"
	"hotel-booking/utils"
)

func main() {
	// Load .env (optional)
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.IsProduction())
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Info(".env not loaded, using process environment", zap.Error(envErr))
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := config.ConnectDatabase(logger); err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	db := config.DB
	logger.Info("database connection established and migrations applied")

	var projection services.OccupancyProjection = services.NoopProjection{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		client := redis.NewClient(opts)
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, calendar reads fall back to the database", zap.Error(err))
		}
		cancel()
		projection = services.NewRedisProjection(client, db, cfg.ProjectionHorizonDays)
		logger.Info("occupancy projection enabled", zap.Int("horizon_days", cfg.ProjectionHorizonDays))
	}

	mailer := utils.NewMailer(cfg.SMTP, logger)
	if !cfg.SMTP.Configured() {
		logger.Warn("SMTP not configured, booking emails will only be logged")
	}

	availabilityService := services.NewAvailabilityService(db, cfg.AvailabilityTimeout, projection, logger)
	notifier := services.NewEmailNotificationService(db, mailer, cfg.AdminEmail)
	bookingService := services.NewBookingService(db, availabilityService, notifier, projection, logger)
	roomService := services.NewRoomService(db, projection, logger)
	settingsService := services.NewSettingsService(db)
	widgetService := services.NewWidgetService(roomService, cfg.WidgetRoomTypes)

	router := routes.SetupRouter(routes.Controllers{
		Availability: controllers.NewAvailabilityController(availabilityService, widgetService, logger),
		Bookings:     controllers.NewBookingController(bookingService, logger),
		Rooms:        controllers.NewRoomController(roomService, logger),
		Settings:     controllers.NewSettingsController(settingsService, logger),
	}, cfg.CORSOrigins, logger)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown signal received, shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped gracefully")
}
