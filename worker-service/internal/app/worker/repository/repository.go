package repository

import (
	"context"
	"errors"
	"time"

	"brisamarket/worker-service/internal/app/worker/entity"
)

var (
	// ErrOrderAlreadyHandled заказ успел сменить статус между выборкой и отменой
	ErrOrderAlreadyHandled = errors.New("order already handled")
)

// OrderRepository доступ воркера к заказам
// Отмена просроченного заказа и возврат остатков выполняются
// в одной транзакции по принципу всё-или-ничего
type OrderRepository interface {
	GetExpiredPending(ctx context.Context, olderThan time.Time) ([]entity.Order, error)
	CancelAndRestock(ctx context.Context, order *entity.Order) error
}

// CartRepository доступ воркера к корзинам
type CartRepository interface {
	// ClearStaleItems удаляет позиции корзин, не менявшихся с указанного
	// времени. Возвращает количество затронутых корзин
	ClearStaleItems(ctx context.Context, idleSince time.Time) (int, error)
}

// StatsRepository запись статистики по событиям заказов
type StatsRepository interface {
	Create(ctx context.Context, stat *entity.OrderStatistic) error
}
