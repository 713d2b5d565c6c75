package repository

import (
	"context"
	"fmt"
	"time"

	"brisamarket/worker-service/internal/app/worker/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository создает новый репозиторий корзин для воркера
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// ClearStaleItems удаляет позиции корзин, не менявшихся с указанного времени
// Сами корзины остаются активными: пользователь увидит пустую корзину
func (r *cartRepository) ClearStaleItems(ctx context.Context, idleSince time.Time) (int, error) {
	var cartIDs []uuid.UUID
	result := r.db.WithContext(ctx).
		Model(&entity.Cart{}).
		Where("active = ? AND modified_at < ?", true, idleSince).
		Pluck("id", &cartIDs)

	if result.Error != nil {
		return 0, fmt.Errorf("failed to find stale carts: %w", result.Error)
	}

	if len(cartIDs) == 0 {
		return 0, nil
	}

	if err := r.db.WithContext(ctx).
		Exec("DELETE FROM cart_items WHERE cart_id IN ?", cartIDs).Error; err != nil {
		return 0, fmt.Errorf("failed to clear stale cart items: %w", err)
	}

	return len(cartIDs), nil
}
