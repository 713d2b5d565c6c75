package processor

import (
	"context"

	"brisamarket/pkg/logger"
	"brisamarket/worker-service/internal/app/worker/service"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает периодические задачи очистки по расписанию
type CronScheduler struct {
	cron       *cron.Cron
	cleanupSvc service.CleanupServiceInterface
}

func NewCronScheduler(cleanupSvc service.CleanupServiceInterface) *CronScheduler {
	return &CronScheduler{
		cron:       cron.New(),
		cleanupSvc: cleanupSvc,
	}
}

// Start регистрирует задачи и запускает планировщик
// Обе задачи выполняются сразу при старте, не дожидаясь первого тика
func (s *CronScheduler) Start(ctx context.Context, cartSchedule, orderSchedule string) error {
	logger.Info().
		Str("cart_schedule", cartSchedule).
		Str("order_schedule", orderSchedule).
		Msg("Starting cron scheduler")

	if _, err := s.cron.AddFunc(cartSchedule, func() {
		logger.Info().Msg("Cron job triggered: cleaning stale carts")
		if err := s.cleanupSvc.CleanStaleCarts(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to clean stale carts")
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(orderSchedule, func() {
		logger.Info().Msg("Cron job triggered: cancelling expired orders")
		if err := s.cleanupSvc.CancelExpiredOrders(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to cancel expired orders")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	logger.Info().Msg("Performing initial cleanup run")
	if err := s.cleanupSvc.CleanStaleCarts(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial stale cart cleanup failed")
	}
	if err := s.cleanupSvc.CancelExpiredOrders(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial expired order sweep failed")
	}

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
