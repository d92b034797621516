package transport

import (
	"errors"
	"net/http"
	"strconv"

	"bozoruz/internal/domain"
	"bozoruz/internal/middleware"
	"bozoruz/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultRelatedLimit = 4

// CatalogHandler serves the read-only catalog routes
type CatalogHandler struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products repository.ProductRepository, reviews repository.ReviewRepository, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/featured", h.Featured)
		r.Get("/{id}", h.GetProduct)
		r.Get("/{id}/reviews", h.ListReviews)
		r.Get("/{id}/related", h.Related)
	})
}

// ListCategories returns the category menu, "all" first
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, domain.Categories())
}

// ListProducts handles listing, filtering and search
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := domain.Category(q.Get("category"))
	if category != "" && category != domain.CategoryAll && !category.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown category")
		return
	}

	sortBy := domain.SortOption(q.Get("sort"))
	if sortBy != "" && !sortBy.Valid() {
		middleware.RespondWithError(w, http.StatusBadRequest, "unknown sort option")
		return
	}

	page, err := intParam(q.Get("page"), repository.DefaultPage)
	if err != nil || page < 1 {
		middleware.RespondWithError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	pageSize, err := intParam(q.Get("page_size"), repository.DefaultPageSize)
	if err != nil || pageSize < 1 || pageSize > repository.MaxPageSize {
		middleware.RespondWithError(w, http.StatusBadRequest, "page_size must be between 1 and 100")
		return
	}

	products, total, err := h.products.List(r.Context(), repository.ProductFilter{
		Query:    q.Get("q"),
		Category: category,
		Sort:     sortBy,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products:   toProductResponses(products),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	})
}

// Featured returns the home page products
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Featured(r.Context())
	if err != nil {
		h.logger.Error("Failed to list featured products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(products))
}

// GetProduct returns one product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.findProduct(w, r)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(*product))
}

// ListReviews returns the reviews of a product, newest first
func (h *CatalogHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	product, ok := h.findProduct(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), product.ID)
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.String("product_id", product.ID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// Related returns other products of the same category
func (h *CatalogHandler) Related(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), defaultRelatedLimit)
	if err != nil || limit < 1 || limit > repository.MaxPageSize {
		middleware.RespondWithError(w, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}

	products, err := h.products.Related(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to list related products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(products))
}

func (h *CatalogHandler) findProduct(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	id := chi.URLParam(r, "id")
	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return nil, false
		}
		h.logger.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return nil, false
	}
	return product, true
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
