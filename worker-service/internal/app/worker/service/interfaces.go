package service

import (
	"context"

	"brisamarket/worker-service/internal/app/worker/entity"
)

// OrderStatsServiceInterface определяет интерфейс для обработки событий заказов
type OrderStatsServiceInterface interface {
	// ProcessOrderEvent обрабатывает событие заказа из Kafka
	ProcessOrderEvent(ctx context.Context, event *entity.OrderEvent) error
}

// CleanupServiceInterface определяет интерфейс фоновых задач очистки
type CleanupServiceInterface interface {
	// CleanStaleCarts очищает корзины без активности
	CleanStaleCarts(ctx context.Context) error
	// CancelExpiredOrders отменяет просроченные неоплаченные заказы
	CancelExpiredOrders(ctx context.Context) error
}
