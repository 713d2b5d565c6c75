package repository

import (
	"context"
	"errors"
	"time"

	"brisamarket/storefront-service/internal/app/storefront/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrProductNotFound   = errors.New("product not found")
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrDuplicateReview   = errors.New("duplicate review")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating float64, numReviews int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CartRepository interface {
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entity.Cart, error)
	Create(ctx context.Context, cart *entity.Cart) error
	AddItem(ctx context.Context, item *entity.CartItem) error
	UpdateItem(ctx context.Context, item *entity.CartItem) error
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	Touch(ctx context.Context, cartID uuid.UUID, modifiedAt time.Time) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]entity.Order, error)
	GetAll(ctx context.Context) ([]entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockRepository журнал остатков: атомарные проверка, списание и возврат
// Списание батча выполняется по принципу всё-или-ничего в одной транзакции
type StockRepository interface {
	CheckAvailability(ctx context.Context, lines []entity.StockLine) (bool, error)
	CommitDecrement(ctx context.Context, lines []entity.StockLine) error
	CommitIncrement(ctx context.Context, lines []entity.StockLine) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	GetByProductID(ctx context.Context, productID string) ([]entity.Review, error)
	GetByUserAndProduct(ctx context.Context, userID, productID string) (*entity.Review, error)
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, id string) (*entity.Review, error)
	AddDislike(ctx context.Context, id string) (*entity.Review, error)
	SetVerified(ctx context.Context, id string) (*entity.Review, error)
	AggregateRating(ctx context.Context, productID string) (*entity.RatingStats, error)
}
