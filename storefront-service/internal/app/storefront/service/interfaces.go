package service

import (
	"context"
	"math"
	"time"

	"brisamarket/storefront-service/internal/app/storefront/entity"
)

// ProductCache интерфейс кеша каталога (Redis)
type ProductCache interface {
	GetProducts(ctx context.Context) ([]entity.Product, error)
	SetProducts(ctx context.Context, products []entity.Product, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// roundMoney округляет денежную сумму до двух знаков
// Внутри расчёты идут с полной точностью, округление только при фиксации
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundRating округляет среднюю оценку до одного знака
func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
