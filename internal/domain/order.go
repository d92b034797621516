package domain

import "time"

// OrderStatus tracks fulfilment of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
)

// Label returns the status text shown on the profile page
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusDelivered:
		return "Yetkazildi"
	case OrderStatusShipped:
		return "Yo'lda"
	case OrderStatusProcessing:
		return "Tayyorlanmoqda"
	default:
		return "Kutilmoqda"
	}
}

// Order is a checked-out cart
type Order struct {
	ID      string      `json:"id"`
	UserID  string      `json:"user_id"`
	Items   []LineItem  `json:"items"`
	Total   int64       `json:"total"`
	Status  OrderStatus `json:"status"`
	Date    time.Time   `json:"date"`
	Address string      `json:"address"`
}

// ItemCount returns the number of units in the order
func (o Order) ItemCount() int {
	return SumQuantities(o.Items)
}
