package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CartRepositoryTestSuite тестовый suite для очистки корзин
type CartRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  CartRepository
	sqlDB *sql.DB
}

func TestCartRepositorySuite(t *testing.T) {
	suite.Run(t, new(CartRepositoryTestSuite))
}

func (s *CartRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewCartRepository(s.db)
}

func (s *CartRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== ClearStaleItems Tests =====================

func (s *CartRepositoryTestSuite) TestClearStaleItems_Success() {
	ctx := context.Background()
	idleSince := time.Now().Add(-72 * time.Hour)
	firstCart := uuid.New()
	secondCart := uuid.New()

	cartRows := sqlmock.NewRows([]string{"id"}).
		AddRow(firstCart).
		AddRow(secondCart)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "carts" WHERE active = $1 AND modified_at < $2`)).
		WithArgs(true, idleSince).
		WillReturnRows(cartRows)

	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_items WHERE cart_id IN ($1,$2)`)).
		WithArgs(firstCart, secondCart).
		WillReturnResult(sqlmock.NewResult(0, 4))

	// Act
	cleaned, err := s.repo.ClearStaleItems(ctx, idleSince)

	// Assert
	s.NoError(err)
	s.Equal(2, cleaned)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CartRepositoryTestSuite) TestClearStaleItems_NoStaleCarts() {
	ctx := context.Background()
	idleSince := time.Now().Add(-72 * time.Hour)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "carts" WHERE active = $1 AND modified_at < $2`)).
		WithArgs(true, idleSince).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	// Act
	cleaned, err := s.repo.ClearStaleItems(ctx, idleSince)

	// Assert
	s.NoError(err)
	s.Zero(cleaned)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CartRepositoryTestSuite) TestClearStaleItems_QueryError() {
	ctx := context.Background()
	idleSince := time.Now().Add(-72 * time.Hour)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT "id" FROM "carts" WHERE active = $1 AND modified_at < $2`)).
		WithArgs(true, idleSince).
		WillReturnError(sql.ErrConnDone)

	// Act
	cleaned, err := s.repo.ClearStaleItems(ctx, idleSince)

	// Assert
	s.Error(err)
	s.Contains(err.Error(), "failed to find stale carts")
	s.Zero(cleaned)
}
