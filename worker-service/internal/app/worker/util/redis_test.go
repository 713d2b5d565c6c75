package util

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvalidator(t *testing.T) (*ProductCacheInvalidator, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewProductCacheInvalidatorFromExisting(client), mr
}

func TestProductCacheInvalidator_RemovesCachedProducts(t *testing.T) {
	// Arrange
	invalidator, mr := newTestInvalidator(t)
	require.NoError(t, mr.Set("products:all", `[{"id":"abc"}]`))

	// Act
	err := invalidator.Invalidate(context.Background())

	// Assert
	assert.NoError(t, err)
	assert.False(t, mr.Exists("products:all"))
}

func TestProductCacheInvalidator_MissingKeyIsNoop(t *testing.T) {
	// Arrange
	invalidator, _ := newTestInvalidator(t)

	// Act
	err := invalidator.Invalidate(context.Background())

	// Assert
	assert.NoError(t, err)
}

func TestProductCacheInvalidator_Ping(t *testing.T) {
	// Arrange
	invalidator, _ := newTestInvalidator(t)

	// Act
	err := invalidator.Ping(context.Background())

	// Assert
	assert.NoError(t, err)
}
