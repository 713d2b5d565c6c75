package repository

import (
	"context"
	"fmt"
	"time"

	"brisamarket/worker-service/internal/app/worker/entity"

	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов для воркера
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// GetExpiredPending выбирает неоплаченные pending заказы старше указанного времени
func (r *orderRepository) GetExpiredPending(ctx context.Context, olderThan time.Time) ([]entity.Order, error) {
	var orders []entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND is_paid = ? AND created_at < ?", "pending", false, olderThan).
		Find(&orders)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get expired pending orders: %w", result.Error)
	}

	return orders, nil
}

// CancelAndRestock отменяет заказ и возвращает остатки по каждой позиции
// в одной транзакции. Смена статуса условная: если заказ успели оплатить
// или отменить вручную, транзакция откатывается и ничего не трогает
func (r *orderRepository) CancelAndRestock(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Order{}).
			Where("id = ? AND status = ? AND is_paid = ?", order.ID, "pending", false).
			Update("status", "cancelled")

		if result.Error != nil {
			return fmt.Errorf("failed to cancel order: %w", result.Error)
		}

		if result.RowsAffected == 0 {
			return ErrOrderAlreadyHandled
		}

		for _, item := range order.Items {
			if err := tx.Exec(
				"UPDATE products SET stock = stock + ? WHERE id = ?",
				item.Quantity, item.ProductID,
			).Error; err != nil {
				return fmt.Errorf("failed to restock product %s: %w", item.ProductID, err)
			}
		}

		return nil
	})
}
