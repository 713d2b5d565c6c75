package repository

import (
	"context"
	"fmt"

	"brisamarket/storefront-service/internal/app/storefront/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stockRepository struct {
	db *pgxpool.Pool
}

// NewStockRepository создает журнал остатков поверх pgx
// Вся арифметика остатков выполняется на стороне БД условными UPDATE,
// чтобы конкурентные оформления заказов не могли продать лишнее
func NewStockRepository(db *pgxpool.Pool) StockRepository {
	return &stockRepository{db: db}
}

// CheckAvailability проверяет что по каждой строке количество не превышает
// текущий остаток. Только чтение, ничего не резервирует - окончательное
// решение принимает CommitDecrement
func (r *stockRepository) CheckAvailability(ctx context.Context, lines []entity.StockLine) (bool, error) {
	query := `SELECT stock FROM products WHERE id = $1`

	for _, line := range lines {
		var stock int
		err := r.db.QueryRow(ctx, query, line.ProductID).Scan(&stock)
		if err != nil {
			if err == pgx.ErrNoRows {
				return false, fmt.Errorf("%w: product %s", ErrProductNotFound, line.ProductID)
			}
			return false, fmt.Errorf("failed to check stock: %w", err)
		}

		if stock < line.Quantity {
			return false, nil
		}
	}

	return true, nil
}

// CommitDecrement списывает остатки по всем строкам в одной транзакции.
// Каждое списание условное: UPDATE проходит только если остатка хватает.
// Если хотя бы одна строка не прошла, транзакция откатывается целиком
// и возвращается ErrInsufficientStock с указанием товара
func (r *stockRepository) CommitDecrement(ctx context.Context, lines []entity.StockLine) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin stock transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`

	for _, line := range lines {
		tag, err := tx.Exec(ctx, query, line.Quantity, line.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		if tag.RowsAffected() == 0 {
			// Остаток упал ниже запрошенного либо товар исчез -
			// откатываем весь батч
			return fmt.Errorf("%w: product %s", ErrInsufficientStock, line.ProductID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit stock decrement: %w", err)
	}

	return nil
}

// CommitIncrement возвращает остатки при отмене заказа.
// Чисто аддитивная операция, безопасна при конкурентном выполнении
func (r *stockRepository) CommitIncrement(ctx context.Context, lines []entity.StockLine) error {
	query := `UPDATE products SET stock = stock + $1 WHERE id = $2`

	for _, line := range lines {
		if _, err := r.db.Exec(ctx, query, line.Quantity, line.ProductID); err != nil {
			return fmt.Errorf("failed to increment stock: %w", err)
		}
	}

	return nil
}
