package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brisamarket/pkg/logger"
	"brisamarket/pkg/metrics"
	"brisamarket/worker-service/internal/app/worker/repository"
)

const serviceName = "worker-service"

// ProductCache сбрасывает кеш каталога после изменения остатков
type ProductCache interface {
	Invalidate(ctx context.Context) error
}

// CleanupService выполняет периодические задачи очистки:
// сброс брошенных корзин и отмену просроченных неоплаченных заказов
type CleanupService struct {
	orderRepo       repository.OrderRepository
	cartRepo        repository.CartRepository
	cache           ProductCache
	cartMaxIdle     time.Duration
	pendingOrderTTL time.Duration
}

// NewCleanupService создает новый сервис фоновой очистки
func NewCleanupService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	cache ProductCache,
	cartMaxIdle time.Duration,
	pendingOrderTTL time.Duration,
) *CleanupService {
	return &CleanupService{
		orderRepo:       orderRepo,
		cartRepo:        cartRepo,
		cache:           cache,
		cartMaxIdle:     cartMaxIdle,
		pendingOrderTTL: pendingOrderTTL,
	}
}

// CleanStaleCarts очищает позиции корзин без активности дольше cartMaxIdle
// Корзина остается активной, пользователь увидит ее пустой
func (s *CleanupService) CleanStaleCarts(ctx context.Context) error {
	idleSince := time.Now().Add(-s.cartMaxIdle)

	cleaned, err := s.cartRepo.ClearStaleItems(ctx, idleSince)
	if err != nil {
		return fmt.Errorf("failed to clean stale carts: %w", err)
	}

	if cleaned > 0 {
		metrics.CartsCleaned.WithLabelValues(serviceName).Add(float64(cleaned))
		logger.Info().
			Int("carts", cleaned).
			Time("idle_since", idleSince).
			Msg("Stale carts cleaned")
	}

	return nil
}

// CancelExpiredOrders отменяет неоплаченные заказы старше pendingOrderTTL
// и возвращает их остатки на склад. Заказ, который успели оплатить или
// отменить вручную между выборкой и отменой, пропускается
func (s *CleanupService) CancelExpiredOrders(ctx context.Context) error {
	olderThan := time.Now().Add(-s.pendingOrderTTL)

	orders, err := s.orderRepo.GetExpiredPending(ctx, olderThan)
	if err != nil {
		return fmt.Errorf("failed to get expired orders: %w", err)
	}

	if len(orders) == 0 {
		return nil
	}

	cancelled := 0
	for i := range orders {
		order := &orders[i]

		if err := s.orderRepo.CancelAndRestock(ctx, order); err != nil {
			if errors.Is(err, repository.ErrOrderAlreadyHandled) {
				logger.Debug().
					Str("order_id", order.ID.String()).
					Msg("Order already handled, skipping auto-cancel")
				continue
			}
			logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Msg("Failed to cancel expired order")
			continue
		}

		cancelled++
		metrics.OrdersCancelled.WithLabelValues(serviceName, "worker").Inc()
		logger.Info().
			Str("order_id", order.ID.String()).
			Str("user_id", order.UserID.String()).
			Int("items", len(order.Items)).
			Msg("Expired order cancelled, stock restored")
	}

	if cancelled > 0 {
		// Остатки изменились, кешированный список товаров устарел
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to invalidate products cache after restock")
		}
	}

	logger.Info().
		Int("found", len(orders)).
		Int("cancelled", cancelled).
		Msg("Expired order sweep finished")

	return nil
}
