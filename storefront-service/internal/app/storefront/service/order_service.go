package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brisamarket/pkg/logger"
	"brisamarket/pkg/metrics"
	"brisamarket/storefront-service/internal/app/storefront/entity"
	"brisamarket/storefront-service/internal/app/storefront/infrastructure"
	"brisamarket/storefront-service/internal/app/storefront/repository"

	"github.com/google/uuid"
)

const (
	taxRate               = 0.23   // НДС 23%
	freeShippingThreshold = 100.0  // Бесплатная доставка при сумме товаров выше порога
	shippingFee           = 10.0
	roleAdmin             = "admin"
)

// OrderService обрабатывает создание заказа и его жизненный цикл
// Создание заказа превращает изменяемую корзину в неизменяемый снимок,
// списывает остатки и очищает корзину
type OrderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	publisher   infrastructure.MessagePublisher
}

// NewOrderService создает новый сервис заказов с внедрением зависимостей
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	publisher infrastructure.MessagePublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		publisher:   publisher,
	}
}

// CreateOrder оформляет заказ из активной корзины пользователя
// 1. Проверяет что корзина не пуста
// 2. Проверяет доступность остатков по всем позициям
// 3. Снимает снимок позиций с фиксацией цены на момент покупки
// 4. Считает суммы: товары, налог 23%, доставка, итог
// 5. Сохраняет заказ со статусом pending
// 6. Атомарно списывает остатки; при неудаче заказ откатывается
// 7. Очищает корзину (она остаётся активной)
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *entity.CreateOrderRequest) (*entity.Order, error) {
	cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			metrics.CheckoutTotal.WithLabelValues("storefront-service", "empty_cart").Inc()
			return nil, ErrEmptyCart
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if len(cart.Items) == 0 {
		metrics.CheckoutTotal.WithLabelValues("storefront-service", "empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	lines := stockLinesFromCart(cart.Items)

	// Быстрая проверка доступности. Не резервирует ничего -
	// окончательное решение принимает атомарное списание ниже
	available, err := s.stockRepo.CheckAvailability(ctx, lines)
	if err != nil {
		return nil, fmt.Errorf("failed to check stock availability: %w", err)
	}
	if !available {
		metrics.CheckoutTotal.WithLabelValues("storefront-service", "insufficient_stock").Inc()
		return nil, ErrInsufficientStock
	}

	productIDs := make([]uuid.UUID, len(cart.Items))
	for i, item := range cart.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	orderID := uuid.New()
	orderItems := make([]entity.OrderItem, 0, len(cart.Items))
	var itemsPrice float64

	for _, item := range cart.Items {
		product, exists := products[item.ProductID]
		if !exists {
			return nil, ErrProductNotFound
		}

		// Снимок позиции: имя, цена и картинка фиксируются навсегда
		unitPrice := product.UnitPrice()
		orderItems = append(orderItems, entity.OrderItem{
			ID:        uuid.New(),
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Image:     product.OrderImage(),
			UnitPrice: unitPrice,
			Color:     item.Color,
			Size:      item.Size,
		})

		itemsPrice += unitPrice * float64(item.Quantity)
	}

	itemsPrice = roundMoney(itemsPrice)
	taxPrice := roundMoney(itemsPrice * taxRate)
	shippingPrice := shippingFee
	if itemsPrice > freeShippingThreshold {
		shippingPrice = 0
	}
	totalPrice := roundMoney(itemsPrice + taxPrice + shippingPrice)

	order := &entity.Order{
		ID:     orderID,
		UserID: userID,
		ShippingAddress: entity.ShippingAddress{
			Street:     req.ShippingAddress.Street,
			City:       req.ShippingAddress.City,
			State:      req.ShippingAddress.State,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
		PaymentMethod: req.PaymentMethod,
		ItemsPrice:    itemsPrice,
		TaxPrice:      taxPrice,
		ShippingPrice: shippingPrice,
		TotalPrice:    totalPrice,
		Status:        entity.OrderStatusPending,
		CreatedAt:     time.Now(),
		Items:         orderItems,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		metrics.CheckoutTotal.WithLabelValues("storefront-service", "error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Атомарное списание остатков: всё или ничего.
	// Если остаток какого-то товара упал между проверкой и списанием,
	// ни одно списание не применяется и заказ откатывается
	if err := s.stockRepo.CommitDecrement(ctx, lines); err != nil {
		if delErr := s.orderRepo.Delete(ctx, order.ID); delErr != nil {
			logger.Error().
				Err(delErr).
				Str("order_id", order.ID.String()).
				Msg("Failed to roll back order after stock decrement failure")
		}

		if errors.Is(err, repository.ErrInsufficientStock) {
			metrics.StockDecrementConflicts.WithLabelValues("storefront-service").Inc()
			metrics.CheckoutTotal.WithLabelValues("storefront-service", "insufficient_stock").Inc()
			return nil, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		metrics.CheckoutTotal.WithLabelValues("storefront-service", "error").Inc()
		return nil, fmt.Errorf("failed to commit stock decrement: %w", err)
	}

	// Очищаем корзину. Заказ и списание уже зафиксированы,
	// поэтому ошибка здесь не отменяет оформление
	if err := s.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		logger.Warn().
			Err(err).
			Str("cart_id", cart.ID.String()).
			Msg("Failed to clear cart after checkout")
	} else if err := s.cartRepo.Touch(ctx, cart.ID, time.Now()); err != nil {
		logger.Warn().Err(err).Str("cart_id", cart.ID.String()).Msg("Failed to touch cart after checkout")
	}

	metrics.CheckoutTotal.WithLabelValues("storefront-service", "created").Inc()

	s.publishOrderEvent(ctx, entity.OrderEvent{
		EventType:  "ORDER_CREATED",
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		ItemsCount: len(order.Items),
		Timestamp:  time.Now(),
	})

	return order, nil
}

// GetOrder получает заказ по ID с проверкой доступа: владелец или админ
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, userID uuid.UUID, role string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.UserID != userID && role != roleAdmin {
		return nil, ErrForbidden
	}

	return order, nil
}

// GetUserOrders получает все заказы пользователя
func (s *OrderService) GetUserOrders(ctx context.Context, userID uuid.UUID) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user orders: %w", err)
	}

	return orders, nil
}

// GetAllOrders получает все заказы (только админ, гарантируется маршрутом)
func (s *OrderService) GetAllOrders(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	return orders, nil
}

// MarkPaid отмечает заказ оплаченным и переводит в processing
// Допустимо только для неоплаченного заказа в нефинальном статусе
func (s *OrderService) MarkPaid(ctx context.Context, orderID uuid.UUID, userID uuid.UUID, role string, req *entity.PayOrderRequest) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.UserID != userID && role != roleAdmin {
		return nil, ErrForbidden
	}

	if order.IsPaid {
		return nil, ErrAlreadyPaid
	}

	// delivered и cancelled финальные - из них переходов нет
	if order.Status == entity.OrderStatusDelivered || order.Status == entity.OrderStatusCancelled {
		return nil, ErrInvalidOrderStatus
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentResult = entity.PaymentResult{
		PaymentID:     req.PaymentID,
		PaymentStatus: req.PaymentStatus,
		UpdateTime:    req.UpdateTime,
		EmailAddress:  req.EmailAddress,
	}
	order.Status = entity.OrderStatusProcessing

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.publishOrderEvent(ctx, entity.OrderEvent{
		EventType:  "ORDER_PAID",
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		ItemsCount: len(order.Items),
		Timestamp:  time.Now(),
	})

	return order, nil
}

// MarkShipped переводит оплаченный заказ в shipped с трек-номером (админ)
func (s *OrderService) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status != entity.OrderStatusProcessing {
		return nil, ErrInvalidOrderStatus
	}

	order.Status = entity.OrderStatusShipped
	order.TrackingNumber = trackingNumber

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	return order, nil
}

// MarkDelivered отмечает заказ доставленным (админ)
// Допустимо только из processing или shipped: отменённый или ещё не
// оплаченный заказ доставленным стать не может
func (s *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Status != entity.OrderStatusProcessing && order.Status != entity.OrderStatusShipped {
		return nil, ErrNotDeliverable
	}

	now := time.Now()
	order.IsDelivered = true
	order.DeliveredAt = &now
	order.Status = entity.OrderStatusDelivered
	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.publishOrderEvent(ctx, entity.OrderEvent{
		EventType:  "ORDER_DELIVERED",
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		ItemsCount: len(order.Items),
		Timestamp:  time.Now(),
	})

	return order, nil
}

// Cancel отменяет заказ и возвращает остатки по каждой позиции
// Отмена возможна только из pending или processing и финальна:
// повторная отмена отклоняется
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID, userID uuid.UUID, role string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.UserID != userID && role != roleAdmin {
		return nil, ErrForbidden
	}

	if !order.CanBeCancelled() {
		return nil, ErrNotCancellable
	}

	// Сперва фиксируем статус: повторная отмена не пройдёт проверку выше
	// и возврат остатков не задвоится
	order.Status = entity.OrderStatusCancelled

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	lines := stockLinesFromOrder(order.Items)
	if err := s.stockRepo.CommitIncrement(ctx, lines); err != nil {
		// Заказ уже отменён, остатки вернуть не удалось - требует внимания оператора
		logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("Failed to restock cancelled order")
	}

	metrics.OrdersCancelled.WithLabelValues("storefront-service", "user").Inc()

	s.publishOrderEvent(ctx, entity.OrderEvent{
		EventType:  "ORDER_CANCELLED",
		OrderID:    order.ID,
		UserID:     order.UserID,
		TotalPrice: order.TotalPrice,
		Status:     order.Status,
		ItemsCount: len(order.Items),
		Timestamp:  time.Now(),
	})

	return order, nil
}

// publishOrderEvent отправляет событие о заказе в Kafka
// Заказ уже зафиксирован в БД, проблемы с Kafka не прерывают операцию
func (s *OrderService) publishOrderEvent(ctx context.Context, event entity.OrderEvent) {
	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal order event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, event.OrderID.String(), eventData); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Str("order_id", event.OrderID.String()).
			Msg("Failed to publish order event")
	}
}

func stockLinesFromCart(items []entity.CartItem) []entity.StockLine {
	lines := make([]entity.StockLine, len(items))
	for i, item := range items {
		lines[i] = entity.StockLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

func stockLinesFromOrder(items []entity.OrderItem) []entity.StockLine {
	lines := make([]entity.StockLine, len(items))
	for i, item := range items {
		lines[i] = entity.StockLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}
