package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bozoruz/internal/domain"
	"bozoruz/internal/middleware"
	"bozoruz/internal/repository"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxImportBytes = 10 << 20

// ProductRequest represents the admin product form
type ProductRequest struct {
	Name          string   `json:"name" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=2000"`
	Price         *int64   `json:"price" validate:"required,gte=0"`
	OriginalPrice *int64   `json:"original_price,omitempty" validate:"omitempty,gte=0"`
	Discount      *int     `json:"discount,omitempty" validate:"omitempty,gte=0,lte=100"`
	Category      string   `json:"category" validate:"required,oneof=elektronika kiyim oziq-ovqat uy-jihozlari sport"`
	Image         string   `json:"image" validate:"omitempty,url"`
	Images        []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	Rating        float64  `json:"rating" validate:"gte=0,lte=5"`
	Reviews       int      `json:"reviews" validate:"gte=0"`
	InStock       *bool    `json:"in_stock,omitempty"`
	Featured      bool     `json:"featured"`
}

func (req ProductRequest) toProduct(id string) domain.Product {
	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}
	return domain.Product{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Price:         *req.Price,
		OriginalPrice: req.OriginalPrice,
		Discount:      req.Discount,
		Category:      domain.Category(req.Category),
		Image:         req.Image,
		Images:        req.Images,
		Rating:        req.Rating,
		Reviews:       req.Reviews,
		InStock:       inStock,
		Featured:      req.Featured,
	}
}

// ImportResponse summarises a spreadsheet import
type ImportResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// AdminHandler handles the admin panel catalog routes
type AdminHandler struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(products repository.ProductRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers the admin routes behind auth and the admin check
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin/products", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))

		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/export", h.ExportProducts)
		r.Post("/import", h.ImportProducts)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListProducts returns the whole catalog in catalog order
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.All(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponses(products))
}

// CreateProduct adds a product to the catalog
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product := req.toProduct("")
	if err := h.products.Create(r.Context(), &product); err != nil {
		if errors.Is(err, repository.ErrProductAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "product already exists")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

// UpdateProduct replaces a product record
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(w, r, &req); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product := req.toProduct(chi.URLParam(r, "id"))
	if err := h.products.Update(r.Context(), &product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to update product", zap.String("product_id", product.ID), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusOK, toProductResponse(product))
}

// DeleteProduct removes a product from the catalog
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ExportProducts downloads the catalog as an xlsx workbook
func (h *AdminHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.All(r.Context())
	if err != nil {
		h.logger.Error("Failed to list products for export", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to export products")
		return
	}

	var buf bytes.Buffer
	if err := WriteProductSheet(&buf, products); err != nil {
		h.logger.Error("Failed to build product workbook", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to export products")
		return
	}

	filename := fmt.Sprintf("mahsulotlar-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ImportProducts upserts products from an uploaded xlsx workbook (form field "file")
func (h *AdminHandler) ImportProducts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	upload, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "xlsx file is required")
		return
	}
	defer upload.Close()

	data, err := io.ReadAll(upload)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	products, skipped, err := ReadProductSheet(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		h.logger.Debug("Rejected product workbook", zap.String("filename", header.Filename), zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := ImportResponse{Skipped: skipped}
	for i := range products {
		p := products[i]
		if p.ID != "" {
			err = h.products.Update(r.Context(), &p)
			if err == nil {
				result.Updated++
				continue
			}
			if !errors.Is(err, repository.ErrProductNotFound) {
				h.logger.Error("Failed to import product", zap.String("product_id", p.ID), zap.Error(err))
				result.Skipped++
				continue
			}
		}
		if err := h.products.Create(r.Context(), &p); err != nil {
			h.logger.Error("Failed to import product", zap.String("product_id", p.ID), zap.Error(err))
			result.Skipped++
			continue
		}
		result.Created++
	}

	h.logger.Info("Products imported",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
	)
	middleware.RespondWithJSON(w, http.StatusOK, result)
}
