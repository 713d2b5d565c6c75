package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"brisamarket/storefront-service/internal/app/storefront/entity"
	"brisamarket/storefront-service/internal/app/storefront/repository"

	"github.com/google/uuid"
)

// CartService обрабатывает бизнес-логику корзины
// Корзина никогда не резервирует остатки: количество проверяется
// против текущего остатка в момент каждой мутации
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService создает новый сервис корзины с внедрением зависимостей
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetOrCreateCart возвращает активную корзину пользователя,
// лениво создавая пустую при первом обращении. Идемпотентна
func (s *CartService) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart = &entity.Cart{
		ID:         uuid.New(),
		UserID:     userID,
		Active:     true,
		ModifiedAt: time.Now(),
		Items:      []entity.CartItem{},
	}

	if err := s.cartRepo.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

// AddItem добавляет товар в корзину
// Если товар уже в корзине, количества суммируются и позиция остаётся одна.
// Проверка остатка выполняется для итогового количества: при превышении
// корзина не меняется
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID, quantity int, color, size string) (*entity.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.FindItemByProduct(productID)
	if idx >= 0 {
		// Товар уже в корзине - суммируем количество
		item := cart.Items[idx]
		merged := item.Quantity + quantity

		if merged > product.Stock {
			return nil, ErrOutOfStock
		}

		item.Quantity = merged
		if color != "" {
			item.Color = color
		}
		if size != "" {
			item.Size = size
		}

		if err := s.cartRepo.UpdateItem(ctx, &item); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		if quantity > product.Stock {
			return nil, ErrOutOfStock
		}

		item := &entity.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			Color:     color,
			Size:      size,
		}

		if err := s.cartRepo.AddItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	if err := s.cartRepo.Touch(ctx, cart.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	return s.cartRepo.GetActiveByUser(ctx, userID)
}

// UpdateItemQuantity перезаписывает количество позиции
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID uuid.UUID, itemID uuid.UUID, quantity int) (*entity.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var item *entity.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			item = &cart.Items[i]
			break
		}
	}

	if item == nil {
		return nil, ErrCartItemNotFound
	}

	product, err := s.productRepo.GetByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if quantity > product.Stock {
		return nil, ErrOutOfStock
	}

	item.Quantity = quantity

	if err := s.cartRepo.UpdateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	if err := s.cartRepo.Touch(ctx, cart.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	return s.cartRepo.GetActiveByUser(ctx, userID)
}

// RemoveItem удаляет одну позицию корзины. Остатки не трогаются
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	found := false
	for _, item := range cart.Items {
		if item.ID == itemID {
			found = true
			break
		}
	}

	if !found {
		return nil, ErrCartItemNotFound
	}

	if err := s.cartRepo.RemoveItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	if err := s.cartRepo.Touch(ctx, cart.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	return s.cartRepo.GetActiveByUser(ctx, userID)
}

// ClearCart удаляет все позиции, корзина остаётся активной для повторного использования
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := s.cartRepo.Touch(ctx, cart.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to touch cart: %w", err)
	}

	return s.cartRepo.GetActiveByUser(ctx, userID)
}
