package processor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"brisamarket/pkg/logger"
	"brisamarket/worker-service/internal/app/worker/entity"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("worker-service-test", "error", io.Discard)
	os.Exit(m.Run())
}

// MockOrderStatsService мок для OrderStatsServiceInterface
type MockOrderStatsService struct {
	mock.Mock
}

func (m *MockOrderStatsService) ProcessOrderEvent(ctx context.Context, event *entity.OrderEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// ===================== NewKafkaConsumer Tests =====================

func TestNewKafkaConsumer(t *testing.T) {
	// Arrange
	statsSvc := new(MockOrderStatsService)

	brokers := []string{"localhost:9092"}
	topic := "order_events"
	groupID := "test-group"

	// Act
	consumer := NewKafkaConsumer(brokers, topic, groupID, 1, 10e6, statsSvc)

	// Assert
	assert.NotNil(t, consumer)
	assert.NotNil(t, consumer.reader)
	assert.NotNil(t, consumer.statsSvc)
	assert.NotNil(t, consumer.stopChan)
	assert.NotNil(t, consumer.doneChan)

	// Cleanup
	consumer.reader.Close()
}

// ===================== processMessage Tests =====================

func TestKafkaConsumer_ProcessMessage_Success(t *testing.T) {
	// Arrange
	statsSvc := new(MockOrderStatsService)

	consumer := &KafkaConsumer{
		topic:    "order_events",
		groupID:  "test-group",
		statsSvc: statsSvc,
	}

	orderID := uuid.New()
	userID := uuid.New()

	event := entity.OrderEvent{
		EventType:  entity.EventTypeOrderCreated,
		OrderID:    orderID,
		UserID:     userID,
		TotalPrice: 108.40,
		Status:     "pending",
		ItemsCount: 2,
		Timestamp:  time.Now(),
	}

	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	message := kafka.Message{
		Topic: "order_events",
		Key:   []byte(orderID.String()),
		Value: payload,
	}

	statsSvc.On("ProcessOrderEvent", mock.Anything, mock.MatchedBy(func(e *entity.OrderEvent) bool {
		return e.EventType == entity.EventTypeOrderCreated &&
			e.OrderID == orderID &&
			e.UserID == userID &&
			e.TotalPrice == 108.40
	})).Return(nil)

	// Act
	err = consumer.processMessage(context.Background(), message)

	// Assert
	assert.NoError(t, err)
	statsSvc.AssertExpectations(t)
}

func TestKafkaConsumer_ProcessMessage_InvalidJSON(t *testing.T) {
	// Arrange
	statsSvc := new(MockOrderStatsService)

	consumer := &KafkaConsumer{
		topic:    "order_events",
		groupID:  "test-group",
		statsSvc: statsSvc,
	}

	message := kafka.Message{
		Topic: "order_events",
		Value: []byte("not a json"),
	}

	// Act
	err := consumer.processMessage(context.Background(), message)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal order event")
	statsSvc.AssertNotCalled(t, "ProcessOrderEvent")
}

func TestKafkaConsumer_ProcessMessage_ServiceError(t *testing.T) {
	// Arrange
	statsSvc := new(MockOrderStatsService)

	consumer := &KafkaConsumer{
		topic:    "order_events",
		groupID:  "test-group",
		statsSvc: statsSvc,
	}

	event := entity.OrderEvent{
		EventType: entity.EventTypeOrderPaid,
		OrderID:   uuid.New(),
		UserID:    uuid.New(),
		Status:    "processing",
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	message := kafka.Message{
		Topic: "order_events",
		Value: payload,
	}

	statsSvc.On("ProcessOrderEvent", mock.Anything, mock.Anything).Return(errors.New("database error"))

	// Act
	err = consumer.processMessage(context.Background(), message)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process order event")
}
