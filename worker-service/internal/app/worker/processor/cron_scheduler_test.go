package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCleanupService мок для CleanupServiceInterface
type MockCleanupService struct {
	mock.Mock
}

func (m *MockCleanupService) CleanStaleCarts(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCleanupService) CancelExpiredOrders(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ===================== NewCronScheduler Tests =====================

func TestNewCronScheduler(t *testing.T) {
	// Arrange
	cleanupSvc := new(MockCleanupService)

	// Act
	scheduler := NewCronScheduler(cleanupSvc)

	// Assert
	assert.NotNil(t, scheduler)
	assert.NotNil(t, scheduler.cron)
	assert.Equal(t, cleanupSvc, scheduler.cleanupSvc)
}

// ===================== Start Tests =====================

func TestCronScheduler_Start_Success(t *testing.T) {
	// Arrange
	cleanupSvc := new(MockCleanupService)
	scheduler := NewCronScheduler(cleanupSvc)

	// Обе задачи выполняются сразу при старте
	cleanupSvc.On("CleanStaleCarts", mock.Anything).Return(nil)
	cleanupSvc.On("CancelExpiredOrders", mock.Anything).Return(nil)

	// Act
	err := scheduler.Start(context.Background(), "0 * * * *", "*/15 * * * *")
	defer scheduler.Stop()

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 2)
	cleanupSvc.AssertExpectations(t)
}

func TestCronScheduler_Start_InvalidCartSchedule(t *testing.T) {
	// Arrange
	cleanupSvc := new(MockCleanupService)
	scheduler := NewCronScheduler(cleanupSvc)

	// Act
	err := scheduler.Start(context.Background(), "not a schedule", "*/15 * * * *")

	// Assert
	assert.Error(t, err)
}

func TestCronScheduler_Start_InvalidOrderSchedule(t *testing.T) {
	// Arrange
	cleanupSvc := new(MockCleanupService)
	scheduler := NewCronScheduler(cleanupSvc)

	// Act
	err := scheduler.Start(context.Background(), "0 * * * *", "every sunday")

	// Assert
	assert.Error(t, err)
}

func TestCronScheduler_Start_InitialRunFailureNotFatal(t *testing.T) {
	// Ошибки первого прогона логируются, планировщик продолжает работать
	// Arrange
	cleanupSvc := new(MockCleanupService)
	scheduler := NewCronScheduler(cleanupSvc)

	cleanupSvc.On("CleanStaleCarts", mock.Anything).Return(errors.New("database error"))
	cleanupSvc.On("CancelExpiredOrders", mock.Anything).Return(errors.New("database error"))

	// Act
	err := scheduler.Start(context.Background(), "0 * * * *", "*/15 * * * *")
	defer scheduler.Stop()

	// Assert
	assert.NoError(t, err)
	assert.Len(t, scheduler.GetEntries(), 2)
}
