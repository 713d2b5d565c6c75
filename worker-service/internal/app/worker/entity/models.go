package entity

import (
	"time"

	"github.com/google/uuid"
)

// Типы событий заказа, публикуемых storefront-service
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderPaid      = "ORDER_PAID"
	EventTypeOrderDelivered = "ORDER_DELIVERED"
	EventTypeOrderCancelled = "ORDER_CANCELLED"
)

// OrderEvent представляет событие заказа из Kafka топика order_events
// Формат совпадает с продюсером storefront-service
type OrderEvent struct {
	EventType  string    `json:"event_type"` // ORDER_CREATED, ORDER_PAID, ORDER_CANCELLED, ORDER_DELIVERED
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	ItemsCount int       `json:"items_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// OrderStatistic одна строка статистики по событию заказа
// Пишется воркером при каждом обработанном событии
type OrderStatistic struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EventType  string    `json:"event_type" gorm:"type:varchar(50);not null;index"`
	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	TotalPrice float64   `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Status     string    `json:"status" gorm:"type:varchar(50);not null"`
	ItemsCount int       `json:"items_count" gorm:"not null"`
	EventTime  time.Time `json:"event_time" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (OrderStatistic) TableName() string {
	return "order_statistics"
}

// Order проекция заказа для фоновой очистки
// Таблица общая со storefront-service, воркер читает и меняет
// только поля жизненного цикла
type Order struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID   `json:"user_id" gorm:"type:uuid"`
	Status    string      `json:"status" gorm:"type:varchar(50)"`
	IsPaid    bool        `json:"is_paid"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem позиция заказа, нужна воркеру для возврата остатков
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid"`
	Quantity  int       `json:"quantity"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Cart проекция корзины для очистки брошенных корзин
type Cart struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid"`
	Active     bool      `json:"active"`
	ModifiedAt time.Time `json:"modified_at"`
}

func (Cart) TableName() string {
	return "carts"
}
