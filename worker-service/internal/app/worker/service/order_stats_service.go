package service

import (
	"context"
	"fmt"

	"brisamarket/pkg/logger"
	"brisamarket/worker-service/internal/app/worker/entity"
	"brisamarket/worker-service/internal/app/worker/repository"

	"github.com/google/uuid"
)

// OrderStatsService превращает события заказов в записи статистики
type OrderStatsService struct {
	statsRepo repository.StatsRepository
}

// NewOrderStatsService создает новый сервис статистики заказов
func NewOrderStatsService(statsRepo repository.StatsRepository) *OrderStatsService {
	return &OrderStatsService{statsRepo: statsRepo}
}

// ProcessOrderEvent обрабатывает событие заказа из Kafka
// Каждое известное событие превращается в строку order_statistics,
// неизвестные типы логируются и пропускаются без ошибки
func (s *OrderStatsService) ProcessOrderEvent(ctx context.Context, event *entity.OrderEvent) error {
	switch event.EventType {
	case entity.EventTypeOrderCreated,
		entity.EventTypeOrderPaid,
		entity.EventTypeOrderDelivered,
		entity.EventTypeOrderCancelled:
	default:
		// В топике встречаются и события отзывов, их воркер не учитывает
		logger.Debug().
			Str("event_type", event.EventType).
			Msg("Skipping event of unknown type")
		return nil
	}

	if err := s.validateEvent(event); err != nil {
		return fmt.Errorf("invalid order event: %w", err)
	}

	return s.recordStatistic(ctx, event)
}

func (s *OrderStatsService) recordStatistic(ctx context.Context, event *entity.OrderEvent) error {
	stat := &entity.OrderStatistic{
		ID:         uuid.New(),
		EventType:  event.EventType,
		OrderID:    event.OrderID,
		UserID:     event.UserID,
		TotalPrice: event.TotalPrice,
		Status:     event.Status,
		ItemsCount: event.ItemsCount,
		EventTime:  event.Timestamp,
	}

	if err := s.statsRepo.Create(ctx, stat); err != nil {
		return fmt.Errorf("failed to record order statistic: %w", err)
	}

	logger.Info().
		Str("event_type", event.EventType).
		Str("order_id", event.OrderID.String()).
		Float64("total_price", event.TotalPrice).
		Msg("Order event recorded")

	return nil
}

func (s *OrderStatsService) validateEvent(event *entity.OrderEvent) error {
	if event.OrderID == uuid.Nil {
		return fmt.Errorf("order ID is empty")
	}
	if event.UserID == uuid.Nil {
		return fmt.Errorf("user ID is empty")
	}
	if event.EventType == "" {
		return fmt.Errorf("event type is empty")
	}
	return nil
}
