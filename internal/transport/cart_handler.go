package transport

import (
	"errors"
	"net/http"

	"bozoruz/internal/middleware"
	"bozoruz/internal/repository"
	"bozoruz/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// UpdateQuantityRequest represents the quantity change payload.
// Zero or negative quantities remove the line item.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	Address string `json:"address" validate:"max=255"`
}

// CartHandler handles the cart and checkout routes
type CartHandler struct {
	cart     *service.Cart
	products repository.ProductRepository
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cart *service.Cart, products repository.ProductRepository, checkout service.CheckoutService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cart:     cart,
		products: products,
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.UpdateQuantity)
		r.Delete("/items/{id}", h.RemoveItem)
	})

	r.With(authMiddleware).Post("/api/checkout", h.Checkout)
}

// GetCart returns the cart with its totals
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// AddItem adds one unit of a catalog product. The product is captured with
// its current price.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Add to cart validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.products.FindByID(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to load product for cart", zap.String("product_id", req.ProductID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	snap := h.cart.AddItem(*product)
	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(snap))
}

// UpdateQuantity sets the quantity of a line item
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Quantity validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	snap := h.cart.UpdateQuantity(chi.URLParam(r, "id"), *req.Quantity)
	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(snap))
}

// RemoveItem deletes a line item; unknown ids leave the cart unchanged
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	snap := h.cart.RemoveItem(chi.URLParam(r, "id"))
	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(snap))
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, toCartResponse(h.cart.Clear()))
}

// Checkout places an order for the logged in user
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if r.ContentLength != 0 {
		if err := middleware.DecodeAndValidate(w, r, &req); err != nil && !errors.Is(err, middleware.ErrEmptyBody) {
			middleware.RespondWithDecodeError(w, err)
			return
		}
	}

	order, err := h.checkout.Checkout(r.Context(), req.Address)
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
		return
	case errors.Is(err, service.ErrNotAuthenticated):
		middleware.RespondWithError(w, http.StatusUnauthorized, "login required")
		return
	case err != nil:
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toOrderResponse(*order))
}
