package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brisamarket/pkg/logger"
	"brisamarket/worker-service/internal/app/worker/config"
	"brisamarket/worker-service/internal/app/worker/entity"
	"brisamarket/worker-service/internal/app/worker/handler"
	"brisamarket/worker-service/internal/app/worker/processor"
	"brisamarket/worker-service/internal/app/worker/repository"
	"brisamarket/worker-service/internal/app/worker/service"
	"brisamarket/worker-service/internal/app/worker/util"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("worker-service", cfg.LogLevel)
	logger.Info().Msg("Starting Worker Service")

	ctx := context.Background()

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	// Единая БД со storefront-service: заказы, корзины, товары и статистика
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Str("database", cfg.Database.DBName).Msg("Connected to PostgreSQL")

	// Таблица статистики принадлежит воркеру, остальные мигрирует storefront-service
	if err := db.AutoMigrate(&entity.OrderStatistic{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	cacheInvalidator, err := util.NewProductCacheInvalidator(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer cacheInvalidator.Close()
	logger.Info().Msg("Connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ И СЕРВИСОВ ===
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	statsSvc := service.NewOrderStatsService(statsRepo)
	cleanupSvc := service.NewCleanupService(
		orderRepo,
		cartRepo,
		cacheInvalidator,
		cfg.Cleanup.CartMaxIdle,
		cfg.Cleanup.PendingOrderTTL,
	)

	// === KAFKA CONSUMER ===
	kafkaConsumer := processor.NewKafkaConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		cfg.Kafka.GroupID,
		cfg.Kafka.MinBytes,
		cfg.Kafka.MaxBytes,
		statsSvc,
	)
	kafkaConsumer.Start(ctx)
	defer kafkaConsumer.Stop()

	// === CRON SCHEDULER ===
	cronScheduler := processor.NewCronScheduler(cleanupSvc)
	if err := cronScheduler.Start(ctx, cfg.CronSchedule.CleanCarts, cfg.CronSchedule.CancelOrders); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	// === HTTP СЕРВЕР ДЛЯ HEALTH И METRICS ===
	healthHandler := handler.NewHealthCheckHandler(db, cacheInvalidator)

	mux := http.NewServeMux()
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: mux,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting health/metrics HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Str("group", cfg.Kafka.GroupID).
		Msg("Worker Service is running")

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Worker Service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("Worker Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL с retry для старта в Docker
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
