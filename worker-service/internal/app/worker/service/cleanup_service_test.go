package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"brisamarket/worker-service/internal/app/worker/entity"
	"brisamarket/worker-service/internal/app/worker/repository"
	"brisamarket/worker-service/internal/app/worker/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCleanupServiceWithMocks() (*CleanupService, *mocks.MockOrderRepository, *mocks.MockCartRepository, *mocks.MockProductCache) {
	orderRepo := new(mocks.MockOrderRepository)
	cartRepo := new(mocks.MockCartRepository)
	cache := new(mocks.MockProductCache)

	svc := NewCleanupService(orderRepo, cartRepo, cache, 72*time.Hour, 24*time.Hour)
	return svc, orderRepo, cartRepo, cache
}

func expiredOrder(itemQty int) entity.Order {
	return entity.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: "pending",
		IsPaid: false,
		Items: []entity.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Quantity: itemQty},
		},
	}
}

// ===================== CleanStaleCarts Tests =====================

func TestCleanStaleCarts_Success(t *testing.T) {
	// Arrange
	svc, _, cartRepo, _ := newCleanupServiceWithMocks()

	// Порог простоя считается от текущего момента
	cartRepo.On("ClearStaleItems", mock.Anything, mock.MatchedBy(func(idleSince time.Time) bool {
		expected := time.Now().Add(-72 * time.Hour)
		return idleSince.Sub(expected).Abs() < time.Minute
	})).Return(3, nil)

	// Act
	err := svc.CleanStaleCarts(context.Background())

	// Assert
	assert.NoError(t, err)
	cartRepo.AssertExpectations(t)
}

func TestCleanStaleCarts_RepositoryError(t *testing.T) {
	// Arrange
	svc, _, cartRepo, _ := newCleanupServiceWithMocks()

	cartRepo.On("ClearStaleItems", mock.Anything, mock.Anything).Return(0, errors.New("database error"))

	// Act
	err := svc.CleanStaleCarts(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clean stale carts")
}

// ===================== CancelExpiredOrders Tests =====================

func TestCancelExpiredOrders_CancelsAndRestocks(t *testing.T) {
	// Arrange
	svc, orderRepo, _, cache := newCleanupServiceWithMocks()

	first := expiredOrder(2)
	second := expiredOrder(5)
	orders := []entity.Order{first, second}

	orderRepo.On("GetExpiredPending", mock.Anything, mock.MatchedBy(func(olderThan time.Time) bool {
		expected := time.Now().Add(-24 * time.Hour)
		return olderThan.Sub(expected).Abs() < time.Minute
	})).Return(orders, nil)

	orderRepo.On("CancelAndRestock", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.ID == first.ID
	})).Return(nil)
	orderRepo.On("CancelAndRestock", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.ID == second.ID
	})).Return(nil)

	// После возврата остатков кеш каталога сбрасывается один раз
	cache.On("Invalidate", mock.Anything).Return(nil).Once()

	// Act
	err := svc.CancelExpiredOrders(context.Background())

	// Assert
	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCancelExpiredOrders_NoExpiredOrders(t *testing.T) {
	// Arrange
	svc, orderRepo, _, cache := newCleanupServiceWithMocks()

	orderRepo.On("GetExpiredPending", mock.Anything, mock.Anything).Return([]entity.Order{}, nil)

	// Act
	err := svc.CancelExpiredOrders(context.Background())

	// Assert
	assert.NoError(t, err)
	orderRepo.AssertNotCalled(t, "CancelAndRestock")
	cache.AssertNotCalled(t, "Invalidate")
}

func TestCancelExpiredOrders_SkipsAlreadyHandled(t *testing.T) {
	// Заказ успели оплатить между выборкой и отменой: пропускаем без ошибки
	// Arrange
	svc, orderRepo, _, cache := newCleanupServiceWithMocks()

	order := expiredOrder(1)
	orderRepo.On("GetExpiredPending", mock.Anything, mock.Anything).Return([]entity.Order{order}, nil)
	orderRepo.On("CancelAndRestock", mock.Anything, mock.Anything).Return(repository.ErrOrderAlreadyHandled)

	// Act
	err := svc.CancelExpiredOrders(context.Background())

	// Assert
	assert.NoError(t, err)
	cache.AssertNotCalled(t, "Invalidate")
}

func TestCancelExpiredOrders_ContinuesAfterFailure(t *testing.T) {
	// Ошибка на одном заказе не останавливает обход остальных
	// Arrange
	svc, orderRepo, _, cache := newCleanupServiceWithMocks()

	failing := expiredOrder(1)
	healthy := expiredOrder(2)

	orderRepo.On("GetExpiredPending", mock.Anything, mock.Anything).
		Return([]entity.Order{failing, healthy}, nil)

	orderRepo.On("CancelAndRestock", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.ID == failing.ID
	})).Return(errors.New("deadlock detected"))
	orderRepo.On("CancelAndRestock", mock.Anything, mock.MatchedBy(func(o *entity.Order) bool {
		return o.ID == healthy.ID
	})).Return(nil)

	cache.On("Invalidate", mock.Anything).Return(nil).Once()

	// Act
	err := svc.CancelExpiredOrders(context.Background())

	// Assert
	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCancelExpiredOrders_FetchError(t *testing.T) {
	// Arrange
	svc, orderRepo, _, _ := newCleanupServiceWithMocks()

	orderRepo.On("GetExpiredPending", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	// Act
	err := svc.CancelExpiredOrders(context.Background())

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get expired orders")
}

func TestCancelExpiredOrders_CacheErrorNotFatal(t *testing.T) {
	// Arrange
	svc, orderRepo, _, cache := newCleanupServiceWithMocks()

	order := expiredOrder(1)
	orderRepo.On("GetExpiredPending", mock.Anything, mock.Anything).Return([]entity.Order{order}, nil)
	orderRepo.On("CancelAndRestock", mock.Anything, mock.Anything).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(errors.New("redis down"))

	// Act
	err := svc.CancelExpiredOrders(context.Background())

	// Assert
	assert.NoError(t, err)
}
