package transport

import (
	"time"

	"bozoruz/internal/domain"
)

// ProductResponse is a catalog entry as the storefront renders it
type ProductResponse struct {
	domain.Product
	PriceFormatted         string   `json:"price_formatted"`
	OriginalPriceFormatted string   `json:"original_price_formatted,omitempty"`
	Gallery                []string `json:"gallery"`
}

// ProductListResponse is one page of a product listing
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// LineItemResponse is a cart row
type LineItemResponse struct {
	Product           ProductResponse `json:"product"`
	Quantity          int             `json:"quantity"`
	Subtotal          int64           `json:"subtotal"`
	SubtotalFormatted string          `json:"subtotal_formatted"`
}

// CartResponse is the cart with its totals
type CartResponse struct {
	Items               []LineItemResponse `json:"items"`
	TotalItems          int                `json:"total_items"`
	TotalPrice          int64              `json:"total_price"`
	TotalPriceFormatted string             `json:"total_price_formatted"`
}

// OrderResponse is an order on the profile page
type OrderResponse struct {
	ID             string             `json:"id"`
	Date           time.Time          `json:"date"`
	Status         domain.OrderStatus `json:"status"`
	StatusLabel    string             `json:"status_label"`
	Items          []LineItemResponse `json:"items"`
	ItemCount      int                `json:"item_count"`
	Total          int64              `json:"total"`
	TotalFormatted string             `json:"total_formatted"`
	Address        string             `json:"address,omitempty"`
}

func toProductResponse(p domain.Product) ProductResponse {
	resp := ProductResponse{
		Product:        p,
		PriceFormatted: domain.FormatPrice(p.Price),
		Gallery:        p.Gallery(),
	}
	if p.OriginalPrice != nil {
		resp.OriginalPriceFormatted = domain.FormatPrice(*p.OriginalPrice)
	}
	return resp
}

func toProductResponses(products []*domain.Product) []ProductResponse {
	result := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(*p))
	}
	return result
}

func toLineItemResponses(items []domain.LineItem) []LineItemResponse {
	result := make([]LineItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, LineItemResponse{
			Product:           toProductResponse(item.Product),
			Quantity:          item.Quantity,
			Subtotal:          item.Subtotal(),
			SubtotalFormatted: domain.FormatPrice(item.Subtotal()),
		})
	}
	return result
}

func toCartResponse(snap domain.CartSnapshot) CartResponse {
	return CartResponse{
		Items:               toLineItemResponses(snap.Items),
		TotalItems:          snap.TotalItems,
		TotalPrice:          snap.TotalPrice,
		TotalPriceFormatted: domain.FormatPrice(snap.TotalPrice),
	}
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:             o.ID,
		Date:           o.Date,
		Status:         o.Status,
		StatusLabel:    o.Status.Label(),
		Items:          toLineItemResponses(o.Items),
		ItemCount:      o.ItemCount(),
		Total:          o.Total,
		TotalFormatted: domain.FormatPrice(o.Total),
		Address:        o.Address,
	}
}
