package entity

import "github.com/google/uuid"

type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Description   string   `json:"description" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	DiscountPrice *float64 `json:"discount_price" validate:"omitempty,gt=0"`
	Category      string   `json:"category" validate:"required,oneof=clothing shoes accessories electronics home books other"`
	Brand         string   `json:"brand"`
	Images        []string `json:"images"`
	MainImage     string   `json:"main_image"`
	Stock         int      `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name" validate:"omitempty,max=100"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *float64 `json:"discount_price" validate:"omitempty,gt=0"`
	Category      *string  `json:"category" validate:"omitempty,oneof=clothing shoes accessories electronics home books other"`
	Brand         *string  `json:"brand"`
	Images        []string `json:"images"`
	MainImage     *string  `json:"main_image"`
	Stock         *int     `json:"stock" validate:"omitempty,gte=0"`
	Active        *bool    `json:"active"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,gte=1"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required"`
}

type CreateOrderRequest struct {
	ShippingAddress ShippingAddressRequest `json:"shipping_address" validate:"required"`
	PaymentMethod   string                 `json:"payment_method" validate:"required,oneof=credit_card paypal bank_transfer multibanco"`
}

type ShippingAddressRequest struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	PostalCode string `json:"postal_code" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

type PayOrderRequest struct {
	PaymentID     string `json:"payment_id" validate:"required"`
	PaymentStatus string `json:"payment_status" validate:"required"`
	UpdateTime    string `json:"update_time"`
	EmailAddress  string `json:"email_address" validate:"omitempty,email"`
}

type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required"`
}

type DeliverOrderRequest struct {
	TrackingNumber string `json:"tracking_number"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Title   string `json:"title" validate:"required,max=100"`
	Comment string `json:"comment" validate:"required"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Title   string `json:"title" validate:"omitempty,max=100"`
	Comment string `json:"comment"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
