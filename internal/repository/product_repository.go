package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"bozoruz/internal/domain"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product with this id already exists")
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProductFilter narrows and orders a product listing. A non-blank Query
// keeps only products matching every word.
type ProductFilter struct {
	Query    string
	Category domain.Category
	Sort     domain.SortOption
	Page     int
	PageSize int
}

// ProductRepository defines the interface for catalog access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
	Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error)
	Featured(ctx context.Context) ([]*domain.Product, error)
	Related(ctx context.Context, id string, limit int) ([]*domain.Product, error)
	All(ctx context.Context) ([]*domain.Product, error)
}

// productRepository keeps the catalog in memory. The seed is loaded once;
// admin edits change this copy only and are gone after a restart.
type productRepository struct {
	mu       sync.RWMutex
	products []domain.Product
}

// NewProductRepository creates a catalog holding a copy of seed
func NewProductRepository(seed []domain.Product) ProductRepository {
	products := make([]domain.Product, 0, len(seed))
	for _, p := range seed {
		products = append(products, p.Clone())
	}
	return &productRepository{products: products}
}

// Create appends a product. An empty ID gets a fresh UUID and an empty image
// gets the default placeholder.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Image == "" {
		product.Image = domain.DefaultProductImage
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(product.ID) >= 0 {
		return ErrProductAlreadyExists
	}
	r.products = append(r.products, product.Clone())
	return nil
}

// Update replaces the stored record with the same ID
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	if product.Image == "" {
		product.Image = domain.DefaultProductImage
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products[i] = product.Clone()
	return nil
}

// Delete removes a product from the catalog
func (r *productRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	p := r.products[i].Clone()
	return &p, nil
}

// List retrieves products with optional search, category filtering, sorting
// and pagination
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error) {
	terms := strings.Fields(strings.ToLower(filter.Query))

	r.mu.RLock()
	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && filter.Category != domain.CategoryAll && p.Category != filter.Category {
			continue
		}
		if len(terms) > 0 && !matchesAll(p, terms) {
			continue
		}
		matched = append(matched, p.Clone())
	}
	r.mu.RUnlock()

	sortProducts(matched, filter.Sort)
	page, total := paginate(matched, filter.Page, filter.PageSize)
	return page, total, nil
}

// Search matches every query word against name, description and category,
// most popular first. Words of four runes or more tolerate small typos.
func (r *productRepository) Search(ctx context.Context, query string, page, pageSize int) ([]*domain.Product, int, error) {
	return r.List(ctx, ProductFilter{Query: query, Sort: domain.SortPopular, Page: page, PageSize: pageSize})
}

// Featured returns the products flagged for the home page, in catalog order
func (r *productRepository) Featured(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	featured := []*domain.Product{}
	for _, p := range r.products {
		if p.Featured {
			c := p.Clone()
			featured = append(featured, &c)
		}
	}
	return featured, nil
}

// Related returns up to limit other products from the same category
func (r *productRepository) Related(ctx context.Context, id string, limit int) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	category := r.products[i].Category

	related := []*domain.Product{}
	for _, p := range r.products {
		if limit > 0 && len(related) >= limit {
			break
		}
		if p.ID == id || p.Category != category {
			continue
		}
		c := p.Clone()
		related = append(related, &c)
	}
	return related, nil
}

// All returns the whole catalog in insertion order
func (r *productRepository) All(ctx context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		c := p.Clone()
		all = append(all, &c)
	}
	return all, nil
}

func (r *productRepository) indexOf(id string) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}

// sortProducts orders in place. Ties keep catalog order.
func sortProducts(products []domain.Product, by domain.SortOption) {
	var less func(a, b domain.Product) bool
	switch by {
	case domain.SortPriceLow:
		less = func(a, b domain.Product) bool { return a.Price < b.Price }
	case domain.SortPriceHigh:
		less = func(a, b domain.Product) bool { return a.Price > b.Price }
	case domain.SortRating:
		less = func(a, b domain.Product) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b domain.Product) bool { return a.Reviews > b.Reviews }
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}

func paginate(products []domain.Product, page, pageSize int) ([]*domain.Product, int) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total := len(products)
	result := []*domain.Product{}
	// compare page indexes so a huge page cannot overflow the offset
	if total == 0 || page-1 > (total-1)/pageSize {
		return result, total
	}
	offset := (page - 1) * pageSize
	for i := offset; i < total && i < offset+pageSize; i++ {
		result = append(result, &products[i])
	}
	return result, total
}

func matchesAll(p domain.Product, terms []string) bool {
	words := strings.Fields(strings.ToLower(p.Name + " " + p.Description + " " + string(p.Category)))
	haystack := strings.Join(words, " ")
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			continue
		}
		if !fuzzyContains(words, term) {
			return false
		}
	}
	return true
}

func fuzzyContains(words []string, term string) bool {
	tolerance := typoTolerance(term)
	if tolerance == 0 {
		return false
	}
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?()\"'")
		if levenshtein.ComputeDistance(w, term) <= tolerance {
			return true
		}
	}
	return false
}

func typoTolerance(term string) int {
	n := utf8.RuneCountInString(term)
	switch {
	case n < 4:
		return 0
	case n <= 6:
		return 1
	default:
		return 2
	}
}
