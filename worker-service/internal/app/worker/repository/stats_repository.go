package repository

import (
	"context"
	"fmt"

	"brisamarket/worker-service/internal/app/worker/entity"

	"gorm.io/gorm"
)

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository создает новый репозиторий статистики заказов
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

// Create сохраняет запись статистики по событию заказа
func (r *statsRepository) Create(ctx context.Context, stat *entity.OrderStatistic) error {
	if err := r.db.WithContext(ctx).Create(stat).Error; err != nil {
		return fmt.Errorf("failed to create order statistic: %w", err)
	}
	return nil
}
