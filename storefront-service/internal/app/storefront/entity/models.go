package entity

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product представляет товар в каталоге
// Поля rating и num_reviews пересчитываются агрегатором отзывов,
// поле stock меняется только через журнал остатков и каталог (админ)
type Product struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string     `json:"name" gorm:"type:varchar(100);not null"`
	Description   string     `json:"description" gorm:"type:text;not null"`
	Price         float64    `json:"price" gorm:"type:decimal(10,2);not null;check:price >= 0"`
	DiscountPrice *float64   `json:"discount_price,omitempty" gorm:"type:decimal(10,2)"` // Должна быть меньше обычной цены
	Category      string     `json:"category" gorm:"type:varchar(50);not null"`
	Brand         string     `json:"brand" gorm:"type:varchar(100)"`
	Images        []string   `json:"images" gorm:"type:jsonb;serializer:json"`
	MainImage     string     `json:"main_image" gorm:"type:varchar(255)"`
	Stock         int        `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Rating        float64    `json:"rating" gorm:"type:decimal(2,1);not null;default:0"` // Средняя оценка 0-5, один знак после запятой
	NumReviews    int        `json:"num_reviews" gorm:"not null;default:0"`
	Active        bool       `json:"active" gorm:"not null;default:true"`
	SellerID      uuid.UUID  `json:"seller_id" gorm:"type:uuid;not null"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

// UnitPrice возвращает цену за единицу с учётом скидки
func (p *Product) UnitPrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// OrderImage возвращает картинку для снимка позиции заказа:
// главная картинка, иначе первая из галереи, иначе пустая строка
func (p *Product) OrderImage() string {
	if p.MainImage != "" {
		return p.MainImage
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Cart представляет активную корзину пользователя
// У пользователя ровно одна активная корзина, создаётся лениво при первом обращении
type Cart struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Active     bool       `json:"active" gorm:"not null;default:true"`
	ModifiedAt time.Time  `json:"modified_at" gorm:"not null"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Cart) TableName() string {
	return "carts"
}

// FindItemByProduct возвращает индекс позиции с данным товаром или -1
func (c *Cart) FindItemByProduct(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// CartItem представляет одну позицию корзины (товар, количество, вариант)
// Позиции уникальны по товару: повторное добавление суммирует количество
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID `json:"cart_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	Color     string    `json:"color,omitempty" gorm:"type:varchar(50)"`
	Size      string    `json:"size,omitempty" gorm:"type:varchar(50)"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// OrderStatus представляет статусы заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // Создан, не оплачен
	OrderStatusProcessing OrderStatus = "processing" // Оплачен, готовится к отправке
	OrderStatusShipped    OrderStatus = "shipped"    // Отправлен
	OrderStatusDelivered  OrderStatus = "delivered"  // Доставлен (финальный)
	OrderStatusCancelled  OrderStatus = "cancelled"  // Отменён с возвратом остатков (финальный)
)

// ShippingAddress адрес доставки, встраивается в заказ
type ShippingAddress struct {
	Street     string `json:"street" gorm:"type:varchar(255)"`
	City       string `json:"city" gorm:"type:varchar(100)"`
	State      string `json:"state" gorm:"type:varchar(100)"`
	PostalCode string `json:"postal_code" gorm:"type:varchar(20)"`
	Country    string `json:"country" gorm:"type:varchar(100)"`
}

// PaymentResult данные платёжного провайдера, сохраняются при оплате
type PaymentResult struct {
	PaymentID     string `json:"payment_id" gorm:"type:varchar(255)"`
	PaymentStatus string `json:"payment_status" gorm:"type:varchar(50)"`
	UpdateTime    string `json:"update_time" gorm:"type:varchar(50)"`
	EmailAddress  string `json:"email_address" gorm:"type:varchar(255)"`
}

// Order представляет заказ - неизменяемый снимок корзины
// После создания меняются только поля жизненного цикла (оплата, доставка, статус)
type Order struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(50);not null"`
	PaymentResult   PaymentResult   `json:"payment_result" gorm:"embedded;embeddedPrefix:payment_"`
	ItemsPrice      float64         `json:"items_price" gorm:"type:decimal(10,2);not null"`
	TaxPrice        float64         `json:"tax_price" gorm:"type:decimal(10,2);not null"`
	ShippingPrice   float64         `json:"shipping_price" gorm:"type:decimal(10,2);not null"`
	TotalPrice      float64         `json:"total_price" gorm:"type:decimal(10,2);not null"`
	IsPaid          bool            `json:"is_paid" gorm:"not null;default:false"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	IsDelivered     bool            `json:"is_delivered" gorm:"not null;default:false"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(50);not null;default:'pending'"`
	TrackingNumber  string          `json:"tracking_number,omitempty" gorm:"type:varchar(100)"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	Items           []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Order) TableName() string {
	return "orders"
}

// CanBeCancelled проверяет что заказ ещё можно отменить
func (o *Order) CanBeCancelled() bool {
	return (o.Status == OrderStatusPending || o.Status == OrderStatusProcessing) && !o.IsDelivered
}

// OrderItem представляет позицию заказа - снимок товара на момент покупки
// Имя, цена и картинка фиксируются при создании и больше не пересчитываются
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Quantity  int       `json:"quantity" gorm:"not null;check:quantity > 0"`
	Image     string    `json:"image" gorm:"type:varchar(255)"`
	UnitPrice float64   `json:"unit_price" gorm:"type:decimal(10,2);not null"` // Цена за единицу на момент покупки
	Color     string    `json:"color,omitempty" gorm:"type:varchar(50)"`
	Size      string    `json:"size,omitempty" gorm:"type:varchar(50)"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// StockLine одна строка для операций журнала остатков
type StockLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// Review представляет отзыв на товар, хранится в MongoDB
// Пара (product_id, user_id) уникальна - один отзыв на товар от пользователя
type Review struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProductID string             `json:"product_id" bson:"product_id"` // UUID товара из каталога
	UserID    string             `json:"user_id" bson:"user_id"`
	Rating    int                `json:"rating" bson:"rating"` // Оценка от 1 до 5
	Title     string             `json:"title" bson:"title"`
	Comment   string             `json:"comment" bson:"comment"`
	Verified  bool               `json:"verified" bson:"verified"`
	Likes     int                `json:"likes" bson:"likes"`
	Dislikes  int                `json:"dislikes" bson:"dislikes"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// RatingStats агрегат по всем отзывам одного товара
type RatingStats struct {
	NumReviews int     `bson:"num_reviews"`
	AvgRating  float64 `bson:"avg_rating"`
}

// OrderEvent представляет событие изменения заказа для Kafka
type OrderEvent struct {
	EventType  string      `json:"event_type"` // ORDER_CREATED, ORDER_PAID, ORDER_CANCELLED, ORDER_DELIVERED
	OrderID    uuid.UUID   `json:"order_id"`
	UserID     uuid.UUID   `json:"user_id"`
	TotalPrice float64     `json:"total_price"`
	Status     OrderStatus `json:"status"`
	ItemsCount int         `json:"items_count"`
	Timestamp  time.Time   `json:"timestamp"`
}

// ReviewEvent представляет событие отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED
	ReviewID  string    `json:"review_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
