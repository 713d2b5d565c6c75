package handler

import (
	"errors"
	"net/http"

	"brisamarket/storefront-service/internal/app/storefront/entity"
	"brisamarket/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// OrderHandler обрабатывает HTTP запросы заказов с использованием Gin
type OrderHandler struct {
	orderService *service.OrderService
	validator    *validator.Validate
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder обрабатывает POST /orders
// Оформляет заказ из активной корзины пользователя
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	var req entity.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": "Insufficient stock for one or more items"})
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusConflict, gin.H{"error": "One or more products are no longer available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetMyOrders обрабатывает GET /orders
// Возвращает заказы текущего пользователя
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, _, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.GetUserOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetAllOrders обрабатывает GET /orders/all (только админ)
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	orders, err := h.orderService.GetAllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder обрабатывает GET /orders/{id}
// Заказ видит владелец или администратор
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// PayOrder обрабатывает POST /orders/{id}/pay
// Фиксирует результат оплаты и переводит заказ в processing
func (h *OrderHandler) PayOrder(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	order, err := h.orderService.MarkPaid(c.Request.Context(), orderID, userID, role, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, service.ErrAlreadyPaid):
			c.JSON(http.StatusConflict, gin.H{"error": "Order is already paid"})
		case errors.Is(err, service.ErrInvalidOrderStatus):
			c.JSON(http.StatusConflict, gin.H{"error": "Order cannot be paid in its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pay order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// ShipOrder обрабатывает POST /orders/{id}/ship (только админ)
func (h *OrderHandler) ShipOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	order, err := h.orderService.MarkShipped(c.Request.Context(), orderID, req.TrackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrInvalidOrderStatus):
			c.JSON(http.StatusConflict, gin.H{"error": "Order cannot be shipped in its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ship order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// DeliverOrder обрабатывает POST /orders/{id}/deliver (только админ)
func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req entity.DeliverOrderRequest
	// Тело опционально: трек-номер можно не передавать
	_ = c.ShouldBindJSON(&req)

	order, err := h.orderService.MarkDelivered(c.Request.Context(), orderID, req.TrackingNumber)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrNotDeliverable):
			c.JSON(http.StatusConflict, gin.H{"error": "Order cannot be marked as delivered in its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deliver order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder обрабатывает POST /orders/{id}/cancel
// Отменяет заказ и возвращает остатки
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	userID, role, ok := currentUser(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		case errors.Is(err, service.ErrNotCancellable):
			c.JSON(http.StatusConflict, gin.H{"error": "Order cannot be cancelled in its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}
