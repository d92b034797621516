package domain

import "math"

// LineItem is a product held in the cart together with its quantity.
// The product is captured by value when it is first added, so later catalog
// edits do not change the price of items already in the cart.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price times quantity, saturating at math.MaxInt64.
// Quantity has no upper bound, so the product can exceed int64.
func (li LineItem) Subtotal() int64 {
	price, qty := li.Product.Price, int64(li.Quantity)
	if price <= 0 || qty <= 0 {
		return 0
	}
	if price > math.MaxInt64/qty {
		return math.MaxInt64
	}
	return price * qty
}

// SumSubtotals adds the subtotals of items, saturating at math.MaxInt64
func SumSubtotals(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		sub := item.Subtotal()
		if total > math.MaxInt64-sub {
			return math.MaxInt64
		}
		total += sub
	}
	return total
}

// SumQuantities adds the quantities of items, saturating at math.MaxInt
func SumQuantities(items []LineItem) int {
	n := 0
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if n > math.MaxInt-item.Quantity {
			return math.MaxInt
		}
		n += item.Quantity
	}
	return n
}

// CartSnapshot is the observable state of a cart at one point in time
type CartSnapshot struct {
	Items      []LineItem `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice int64      `json:"total_price"`
}

// Empty reports whether the snapshot holds no line items
func (s CartSnapshot) Empty() bool {
	return len(s.Items) == 0
}
