package repository

import (
	"context"
	"errors"
	"time"

	"brisamarket/storefront-service/internal/app/storefront/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository создает новый репозиторий корзин
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// GetActiveByUser получает активную корзину пользователя с позициями
func (r *cartRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	var cart entity.Cart
	result := r.db.WithContext(ctx).
		Preload("Items").
		First(&cart, "user_id = ? AND active = ?", userID, true)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, result.Error
	}

	return &cart, nil
}

// Create создает новую корзину
func (r *cartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	result := r.db.WithContext(ctx).Create(cart)
	return result.Error
}

// AddItem добавляет новую позицию в корзину
func (r *cartRepository) AddItem(ctx context.Context, item *entity.CartItem) error {
	result := r.db.WithContext(ctx).Create(item)
	return result.Error
}

// UpdateItem перезаписывает количество и вариант позиции
func (r *cartRepository) UpdateItem(ctx context.Context, item *entity.CartItem) error {
	result := r.db.WithContext(ctx).Model(item).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"quantity": item.Quantity,
			"color":    item.Color,
			"size":     item.Size,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// RemoveItem удаляет одну позицию корзины
func (r *cartRepository) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.CartItem{}, "id = ?", itemID)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// ClearItems удаляет все позиции корзины, сама корзина остаётся активной
func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&entity.CartItem{})

	return result.Error
}

// Touch обновляет время последней модификации корзины
func (r *cartRepository) Touch(ctx context.Context, cartID uuid.UUID, modifiedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.Cart{}).
		Where("id = ?", cartID).
		Update("modified_at", modifiedAt)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCartNotFound
	}

	return nil
}
