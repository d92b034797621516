package repository

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"bozoruz/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed seed/catalog.yaml
var defaultCatalog []byte

// CatalogSeed is the static data the catalog starts from
type CatalogSeed struct {
	Products []domain.Product `yaml:"products"`
	Reviews  []domain.Review  `yaml:"reviews"`
}

// DefaultCatalogSeed decodes the catalog compiled into the binary
func DefaultCatalogSeed() (*CatalogSeed, error) {
	return decodeCatalogSeed(defaultCatalog)
}

// LoadCatalogSeed reads the catalog from path, or the embedded one when path is empty
func LoadCatalogSeed(path string) (*CatalogSeed, error) {
	if path == "" {
		return DefaultCatalogSeed()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog seed: %w", err)
	}
	defer f.Close()

	return ReadCatalogSeed(f)
}

// ReadCatalogSeed decodes a YAML catalog from r
func ReadCatalogSeed(r io.Reader) (*CatalogSeed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed: %w", err)
	}
	return decodeCatalogSeed(data)
}

func decodeCatalogSeed(data []byte) (*CatalogSeed, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to decode catalog seed: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

func (s *CatalogSeed) validate() error {
	seen := make(map[string]bool, len(s.Products))
	for i, p := range s.Products {
		if p.ID == "" {
			return fmt.Errorf("catalog seed: product %d has no id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("catalog seed: duplicate product id %q", p.ID)
		}
		seen[p.ID] = true

		if !p.Category.Valid() {
			return fmt.Errorf("catalog seed: product %q has unknown category %q", p.ID, p.Category)
		}
		if p.Price < 0 {
			return fmt.Errorf("catalog seed: product %q has negative price", p.ID)
		}
		if p.Rating < 0 || p.Rating > 5 {
			return fmt.Errorf("catalog seed: product %q rating %.1f out of range", p.ID, p.Rating)
		}
	}
	for _, r := range s.Reviews {
		if !seen[r.ProductID] {
			return fmt.Errorf("catalog seed: review %q points at unknown product %q", r.ID, r.ProductID)
		}
	}
	return nil
}
