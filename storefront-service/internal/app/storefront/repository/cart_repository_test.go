package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"brisamarket/storefront-service/internal/app/storefront/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CartRepositoryTestSuite тестовый suite для PostgreSQL repository
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

// ===================== GetActiveByUser Tests =====================

func (s *CartRepositoryTestSuite) TestGetActiveByUser_NotFound() {
	ctx := context.Background()
	userID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "carts" WHERE user_id = $1 AND active = $2`)).
		WithArgs(userID, true, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	cart, err := s.repo.GetActiveByUser(ctx, userID)

	// Assert
	s.ErrorIs(err, ErrCartNotFound)
	s.Nil(cart)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CartRepositoryTestSuite) TestGetActiveByUser_PreloadsItems() {
	ctx := context.Background()
	userID := uuid.New()
	cartID := uuid.New()
	productID := uuid.New()

	cartRows := sqlmock.NewRows([]string{"id", "user_id", "active", "modified_at"}).
		AddRow(cartID, userID, true, time.Now())

	itemRows := sqlmock.NewRows([]string{"id", "cart_id", "product_id", "quantity"}).
		AddRow(uuid.New(), cartID, productID, 2)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "carts" WHERE user_id = $1 AND active = $2`)).
		WithArgs(userID, true, 1).
		WillReturnRows(cartRows)
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cart_items" WHERE "cart_items"."cart_id" = $1`)).
		WithArgs(cartID).
		WillReturnRows(itemRows)

	// Act
	cart, err := s.repo.GetActiveByUser(ctx, userID)

	// Assert
	s.NoError(err)
	s.Require().NotNil(cart)
	s.Len(cart.Items, 1)
	s.Equal(productID, cart.Items[0].ProductID)
	s.Equal(2, cart.Items[0].Quantity)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== UpdateItem Tests =====================

func (s *CartRepositoryTestSuite) TestUpdateItem_NotFound() {
	ctx := context.Background()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cart_items" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	item := &entity.CartItem{
		ID:        uuid.New(),
		CartID:    uuid.New(),
		ProductID: uuid.New(),
		Quantity:  3,
	}

	// Act
	err := s.repo.UpdateItem(ctx, item)

	// Assert
	s.ErrorIs(err, ErrCartItemNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== ClearItems Tests =====================

func (s *CartRepositoryTestSuite) TestClearItems_Success() {
	ctx := context.Background()
	cartID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items" WHERE cart_id = $1`)).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.ClearItems(ctx, cartID)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Touch Tests =====================

func (s *CartRepositoryTestSuite) TestTouch_Success() {
	ctx := context.Background()
	cartID := uuid.New()
	now := time.Now()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "carts" SET "modified_at"=$1 WHERE id = $2`)).
		WithArgs(now, cartID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Touch(ctx, cartID, now)

	// Assert
	s.NoError(err)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *CartRepositoryTestSuite) TestTouch_CartMissing() {
	ctx := context.Background()
	cartID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "carts" SET "modified_at"=$1 WHERE id = $2`)).
		WithArgs(sqlmock.AnyArg(), cartID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	// Act
	err := s.repo.Touch(ctx, cartID, time.Now())

	// Assert
	s.ErrorIs(err, ErrCartNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}
