package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"brisamarket/pkg/logger"
	"brisamarket/storefront-service/internal/app/storefront/entity"
	"brisamarket/storefront-service/internal/app/storefront/repository"
	"brisamarket/storefront-service/internal/app/storefront/repository/mocks"
	"brisamarket/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("storefront-service-test", "error", io.Discard)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeAuth подставляет пользователя в контекст вместо проверки JWT
func fakeAuth(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

type handlerMocks struct {
	productRepo *mocks.MockProductRepository
	cartRepo    *mocks.MockCartRepository
	orderRepo   *mocks.MockOrderRepository
	stockRepo   *mocks.MockStockRepository
	reviewRepo  *mocks.MockReviewRepository
	publisher   *mocks.MockMessagePublisher
	cache       *mocks.MockProductCache
}

func setupTestRouter(userID uuid.UUID, role string) (*gin.Engine, *handlerMocks) {
	hm := &handlerMocks{
		productRepo: new(mocks.MockProductRepository),
		cartRepo:    new(mocks.MockCartRepository),
		orderRepo:   new(mocks.MockOrderRepository),
		stockRepo:   new(mocks.MockStockRepository),
		reviewRepo:  new(mocks.MockReviewRepository),
		publisher:   new(mocks.MockMessagePublisher),
		cache:       new(mocks.MockProductCache),
	}

	catalogHandler := NewCatalogHandler(service.NewCatalogService(hm.productRepo, hm.cache))
	cartHandler := NewCartHandler(service.NewCartService(hm.cartRepo, hm.productRepo))
	orderHandler := NewOrderHandler(service.NewOrderService(hm.orderRepo, hm.cartRepo, hm.productRepo, hm.stockRepo, hm.publisher))
	reviewHandler := NewReviewHandler(service.NewReviewService(hm.reviewRepo, hm.productRepo, hm.publisher))

	router := gin.New()
	router.GET("/products", catalogHandler.GetProducts)
	router.GET("/products/:id", catalogHandler.GetProduct)

	auth := router.Group("")
	auth.Use(fakeAuth(userID, role))
	{
		auth.POST("/products/:id/reviews", reviewHandler.CreateReview)
		auth.GET("/cart", cartHandler.GetCart)
		auth.POST("/cart/items", cartHandler.AddItem)
		auth.POST("/orders", orderHandler.CreateOrder)
		auth.GET("/orders/:id", orderHandler.GetOrder)
		auth.POST("/orders/:id/cancel", orderHandler.CancelOrder)
	}

	return router, hm
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetProductsHandler_Public(t *testing.T) {
	router, hm := setupTestRouter(uuid.New(), "customer")

	products := []entity.Product{{ID: uuid.New(), Name: "Lamp", Price: 30}}
	hm.cache.On("GetProducts", mock.Anything).Return(products, nil)

	w := doJSON(t, router, http.MethodGet, "/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Products []entity.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Products, 1)
}

func TestGetProductHandler_NotFound(t *testing.T) {
	router, hm := setupTestRouter(uuid.New(), "customer")

	productID := uuid.New()
	hm.productRepo.On("GetByID", mock.Anything, productID).Return(nil, repository.ErrProductNotFound)

	w := doJSON(t, router, http.MethodGet, "/products/"+productID.String(), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProductHandler_InvalidID(t *testing.T) {
	router, _ := setupTestRouter(uuid.New(), "customer")

	w := doJSON(t, router, http.MethodGet, "/products/not-a-uuid", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddCartItemHandler_OutOfStockConflict(t *testing.T) {
	userID := uuid.New()
	router, hm := setupTestRouter(userID, "customer")

	productID := uuid.New()
	product := &entity.Product{ID: productID, Name: "Limited", Price: 20, Stock: 1}
	cart := &entity.Cart{ID: uuid.New(), UserID: userID, Active: true}

	hm.productRepo.On("GetByID", mock.Anything, productID).Return(product, nil)
	hm.cartRepo.On("GetActiveByUser", mock.Anything, userID).Return(cart, nil)

	w := doJSON(t, router, http.MethodPost, "/cart/items", entity.AddCartItemRequest{
		ProductID: productID,
		Quantity:  5,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddCartItemHandler_DefaultsQuantityToOne(t *testing.T) {
	userID := uuid.New()
	router, hm := setupTestRouter(userID, "customer")

	productID := uuid.New()
	cartID := uuid.New()
	product := &entity.Product{ID: productID, Name: "Lamp", Price: 30, Stock: 5}
	cart := &entity.Cart{ID: cartID, UserID: userID, Active: true}

	hm.productRepo.On("GetByID", mock.Anything, productID).Return(product, nil)
	hm.cartRepo.On("GetActiveByUser", mock.Anything, userID).Return(cart, nil)
	hm.cartRepo.On("AddItem", mock.Anything, mock.MatchedBy(func(item *entity.CartItem) bool {
		return item.Quantity == 1
	})).Return(nil)
	hm.cartRepo.On("Touch", mock.Anything, cartID, mock.Anything).Return(nil)

	w := doJSON(t, router, http.MethodPost, "/cart/items", entity.AddCartItemRequest{
		ProductID: productID,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	hm.cartRepo.AssertExpectations(t)
}

func TestCreateOrderHandler_Success(t *testing.T) {
	userID := uuid.New()
	router, hm := setupTestRouter(userID, "customer")

	productID := uuid.New()
	cartID := uuid.New()
	cart := &entity.Cart{
		ID:     cartID,
		UserID: userID,
		Active: true,
		Items: []entity.CartItem{
			{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: 2},
		},
	}
	product := &entity.Product{ID: productID, Name: "Backpack", Price: 40, Stock: 10}

	hm.cartRepo.On("GetActiveByUser", mock.Anything, userID).Return(cart, nil)
	hm.stockRepo.On("CheckAvailability", mock.Anything, mock.Anything).Return(true, nil)
	hm.productRepo.On("GetByIDs", mock.Anything, mock.Anything).
		Return(map[uuid.UUID]*entity.Product{productID: product}, nil)
	hm.orderRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Order")).Return(nil)
	hm.stockRepo.On("CommitDecrement", mock.Anything, mock.Anything).Return(nil)
	hm.cartRepo.On("ClearItems", mock.Anything, cartID).Return(nil)
	hm.cartRepo.On("Touch", mock.Anything, cartID, mock.Anything).Return(nil)
	hm.publisher.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	w := doJSON(t, router, http.MethodPost, "/orders", entity.CreateOrderRequest{
		ShippingAddress: entity.ShippingAddressRequest{
			Street:     "Rua Augusta 100",
			City:       "Lisboa",
			State:      "Lisboa",
			PostalCode: "1100-053",
			Country:    "Portugal",
		},
		PaymentMethod: "credit_card",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var order entity.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, 80.0, order.ItemsPrice)
	assert.Equal(t, 108.40, order.TotalPrice)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
}

func TestCreateOrderHandler_EmptyCart(t *testing.T) {
	userID := uuid.New()
	router, hm := setupTestRouter(userID, "customer")

	cart := &entity.Cart{ID: uuid.New(), UserID: userID, Items: []entity.CartItem{}}
	hm.cartRepo.On("GetActiveByUser", mock.Anything, userID).Return(cart, nil)

	w := doJSON(t, router, http.MethodPost, "/orders", entity.CreateOrderRequest{
		ShippingAddress: entity.ShippingAddressRequest{
			Street:     "Rua Augusta 100",
			City:       "Lisboa",
			State:      "Lisboa",
			PostalCode: "1100-053",
			Country:    "Portugal",
		},
		PaymentMethod: "credit_card",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderHandler_InvalidPaymentMethod(t *testing.T) {
	router, _ := setupTestRouter(uuid.New(), "customer")

	w := doJSON(t, router, http.MethodPost, "/orders", entity.CreateOrderRequest{
		ShippingAddress: entity.ShippingAddressRequest{
			Street:     "Rua Augusta 100",
			City:       "Lisboa",
			State:      "Lisboa",
			PostalCode: "1100-053",
			Country:    "Portugal",
		},
		PaymentMethod: "cash",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderHandler_ForbiddenForStranger(t *testing.T) {
	router, hm := setupTestRouter(uuid.New(), "customer")

	orderID := uuid.New()
	order := &entity.Order{ID: orderID, UserID: uuid.New(), Status: entity.OrderStatusPending}
	hm.orderRepo.On("GetByID", mock.Anything, orderID).Return(order, nil)

	w := doJSON(t, router, http.MethodGet, "/orders/"+orderID.String(), nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCancelOrderHandler_AlreadyCancelledConflict(t *testing.T) {
	userID := uuid.New()
	router, hm := setupTestRouter(userID, "customer")

	orderID := uuid.New()
	order := &entity.Order{ID: orderID, UserID: userID, Status: entity.OrderStatusCancelled}
	hm.orderRepo.On("GetByID", mock.Anything, orderID).Return(order, nil)

	w := doJSON(t, router, http.MethodPost, "/orders/"+orderID.String()+"/cancel", nil)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReviewHandler_DuplicateConflict(t *testing.T) {
	userID := uuid.New()
	router, hm := setupTestRouter(userID, "customer")

	productID := uuid.New()
	existing := &entity.Review{ProductID: productID.String(), UserID: userID.String(), Rating: 4}

	hm.productRepo.On("GetByID", mock.Anything, productID).Return(&entity.Product{ID: productID}, nil)
	hm.reviewRepo.On("GetByUserAndProduct", mock.Anything, userID.String(), productID.String()).
		Return(existing, nil)

	w := doJSON(t, router, http.MethodPost, "/products/"+productID.String()+"/reviews", entity.CreateReviewRequest{
		Rating:  5,
		Title:   "Again",
		Comment: "Second try",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReviewHandler_RatingOutOfRange(t *testing.T) {
	router, _ := setupTestRouter(uuid.New(), "customer")

	w := doJSON(t, router, http.MethodPost, "/products/"+uuid.New().String()+"/reviews", entity.CreateReviewRequest{
		Rating:  6,
		Title:   "Too good",
		Comment: "Off the scale",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
