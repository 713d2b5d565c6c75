package util

import (
	"context"
	"fmt"
	"time"

	"brisamarket/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const productsCacheKey = "products:all"

// ProductCacheInvalidator сбрасывает кеш каталога storefront-service
// Воркер меняет остатки товаров напрямую в БД, поэтому кеш списка
// товаров после возврата остатков устаревает
type ProductCacheInvalidator struct {
	client *redis.Client
}

func NewProductCacheInvalidator(addr, password string, db int) (*ProductCacheInvalidator, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ProductCacheInvalidator{client: client}, nil
}

// NewProductCacheInvalidatorFromExisting оборачивает готовое соединение (используется в тестах)
func NewProductCacheInvalidatorFromExisting(client *redis.Client) *ProductCacheInvalidator {
	return &ProductCacheInvalidator{client: client}
}

func (c *ProductCacheInvalidator) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, productsCacheKey).Err(); err != nil {
		metrics.RecordRedisError("worker-service", "del")
		return fmt.Errorf("failed to invalidate products cache: %w", err)
	}
	return nil
}

func (c *ProductCacheInvalidator) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ProductCacheInvalidator) Close() error {
	return c.client.Close()
}
