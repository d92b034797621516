package domain

import "time"

// Category is one of the fixed catalog sections
type Category string

const (
	CategoryAll         Category = "all"
	CategoryElectronics Category = "elektronika"
	CategoryClothing    Category = "kiyim"
	CategoryFood        Category = "oziq-ovqat"
	CategoryHome        Category = "uy-jihozlari"
	CategorySport       Category = "sport"
)

// CategoryInfo pairs a category with its display label
type CategoryInfo struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

var categories = []CategoryInfo{
	{Value: CategoryAll, Label: "Hammasi"},
	{Value: CategoryElectronics, Label: "Elektronika"},
	{Value: CategoryClothing, Label: "Kiyim-kechak"},
	{Value: CategoryFood, Label: "Oziq-ovqat"},
	{Value: CategoryHome, Label: "Uy jihozlari"},
	{Value: CategorySport, Label: "Sport"},
}

// Categories returns the filter list shown to shoppers, "all" first
func Categories() []CategoryInfo {
	out := make([]CategoryInfo, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c can be assigned to a product.
// "all" is a filter value only.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryFood, CategoryHome, CategorySport:
		return true
	}
	return false
}

// SortOption selects the ordering of a product listing
type SortOption string

const (
	SortPopular   SortOption = "popular"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortRating    SortOption = "rating"
)

// Valid reports whether s is a known sort option
func (s SortOption) Valid() bool {
	switch s {
	case SortPopular, SortPriceLow, SortPriceHigh, SortRating:
		return true
	}
	return false
}

// DefaultProductImage is used when an admin saves a product without an image
const DefaultProductImage = "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500"

// Product represents a product in the catalog.
// Prices are whole so'm.
type Product struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Price         int64    `json:"price" yaml:"price"`
	OriginalPrice *int64   `json:"original_price,omitempty" yaml:"original_price,omitempty"`
	Discount      *int     `json:"discount,omitempty" yaml:"discount,omitempty"`
	Category      Category `json:"category" yaml:"category"`
	Image         string   `json:"image" yaml:"image"`
	Images        []string `json:"images,omitempty" yaml:"images,omitempty"`
	Rating        float64  `json:"rating" yaml:"rating"`
	Reviews       int      `json:"reviews" yaml:"reviews"`
	InStock       bool     `json:"in_stock" yaml:"in_stock"`
	Featured      bool     `json:"featured,omitempty" yaml:"featured,omitempty"`
}

// Gallery returns the product images, falling back to the main image
func (p Product) Gallery() []string {
	if len(p.Images) > 0 {
		return p.Images
	}
	if p.Image == "" {
		return nil
	}
	return []string{p.Image}
}

// Clone returns a deep copy so callers cannot mutate catalog records
func (p Product) Clone() Product {
	c := p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		c.OriginalPrice = &v
	}
	if p.Discount != nil {
		v := *p.Discount
		c.Discount = &v
	}
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	return c
}

// Review is a shopper review attached to a product
type Review struct {
	ID        string    `json:"id" yaml:"id"`
	ProductID string    `json:"product_id" yaml:"product_id"`
	UserName  string    `json:"user_name" yaml:"user_name"`
	Rating    int       `json:"rating" yaml:"rating"`
	Comment   string    `json:"comment" yaml:"comment"`
	Date      time.Time `json:"date" yaml:"date"`
}
