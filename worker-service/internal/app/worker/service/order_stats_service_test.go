package service

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"brisamarket/pkg/logger"
	"brisamarket/worker-service/internal/app/worker/entity"
	"brisamarket/worker-service/internal/app/worker/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("worker-service-test", "error", io.Discard)
	os.Exit(m.Run())
}

// ===================== ProcessOrderEvent Tests =====================

func TestProcessOrderEvent_RecordsStatistic(t *testing.T) {
	// Arrange
	statsRepo := new(mocks.MockStatsRepository)
	service := NewOrderStatsService(statsRepo)

	ctx := context.Background()
	orderID := uuid.New()
	userID := uuid.New()
	eventTime := time.Now().Add(-time.Minute)

	event := &entity.OrderEvent{
		EventType:  entity.EventTypeOrderCreated,
		OrderID:    orderID,
		UserID:     userID,
		TotalPrice: 108.40,
		Status:     "pending",
		ItemsCount: 2,
		Timestamp:  eventTime,
	}

	statsRepo.On("Create", ctx, mock.MatchedBy(func(stat *entity.OrderStatistic) bool {
		return stat.EventType == entity.EventTypeOrderCreated &&
			stat.OrderID == orderID &&
			stat.UserID == userID &&
			stat.TotalPrice == 108.40 &&
			stat.Status == "pending" &&
			stat.ItemsCount == 2 &&
			stat.EventTime.Equal(eventTime) &&
			stat.ID != uuid.Nil
	})).Return(nil)

	// Act
	err := service.ProcessOrderEvent(ctx, event)

	// Assert
	assert.NoError(t, err)
	statsRepo.AssertExpectations(t)
}

func TestProcessOrderEvent_AllOrderEventTypesRecorded(t *testing.T) {
	eventTypes := []string{
		entity.EventTypeOrderCreated,
		entity.EventTypeOrderPaid,
		entity.EventTypeOrderDelivered,
		entity.EventTypeOrderCancelled,
	}

	for _, eventType := range eventTypes {
		// Arrange
		statsRepo := new(mocks.MockStatsRepository)
		service := NewOrderStatsService(statsRepo)

		event := &entity.OrderEvent{
			EventType:  eventType,
			OrderID:    uuid.New(),
			UserID:     uuid.New(),
			TotalPrice: 50.0,
			Status:     "pending",
			ItemsCount: 1,
			Timestamp:  time.Now(),
		}

		statsRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		// Act
		err := service.ProcessOrderEvent(context.Background(), event)

		// Assert
		assert.NoError(t, err, "event type %s", eventType)
		statsRepo.AssertExpectations(t)
	}
}

func TestProcessOrderEvent_UnknownTypeSkipped(t *testing.T) {
	// События отзывов приходят в тот же топик, воркер их пропускает без ошибки
	// Arrange
	statsRepo := new(mocks.MockStatsRepository)
	service := NewOrderStatsService(statsRepo)

	event := &entity.OrderEvent{
		EventType: "REVIEW_CREATED",
	}

	// Act
	err := service.ProcessOrderEvent(context.Background(), event)

	// Assert
	assert.NoError(t, err)
	statsRepo.AssertNotCalled(t, "Create")
}

func TestProcessOrderEvent_MissingOrderID(t *testing.T) {
	// Arrange
	statsRepo := new(mocks.MockStatsRepository)
	service := NewOrderStatsService(statsRepo)

	event := &entity.OrderEvent{
		EventType: entity.EventTypeOrderCreated,
		OrderID:   uuid.Nil,
		UserID:    uuid.New(),
	}

	// Act
	err := service.ProcessOrderEvent(context.Background(), event)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "order ID is empty")
	statsRepo.AssertNotCalled(t, "Create")
}

func TestProcessOrderEvent_RepositoryError(t *testing.T) {
	// Arrange
	statsRepo := new(mocks.MockStatsRepository)
	service := NewOrderStatsService(statsRepo)

	event := &entity.OrderEvent{
		EventType:  entity.EventTypeOrderPaid,
		OrderID:    uuid.New(),
		UserID:     uuid.New(),
		TotalPrice: 25.0,
		Status:     "processing",
		ItemsCount: 1,
		Timestamp:  time.Now(),
	}

	statsRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("database error"))

	// Act
	err := service.ProcessOrderEvent(context.Background(), event)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record order statistic")
}
