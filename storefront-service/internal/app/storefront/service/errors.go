package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound      = errors.New("product not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrReviewNotFound       = errors.New("review not found")
	ErrOutOfStock           = errors.New("requested quantity exceeds available stock")
	ErrInsufficientStock    = errors.New("insufficient stock at checkout")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrNotCancellable       = errors.New("order cannot be cancelled")
	ErrNotDeliverable       = errors.New("order cannot be marked as delivered")
	ErrAlreadyPaid          = errors.New("order is already paid")
	ErrInvalidOrderStatus   = errors.New("invalid order status transition")
	ErrForbidden            = errors.New("access denied")
	ErrDuplicateReview      = errors.New("user already reviewed this product")
	ErrInvalidDiscountPrice = errors.New("discount price must be lower than regular price")
)
