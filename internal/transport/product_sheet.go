package transport

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"bozoruz/internal/domain"

	"github.com/tealeg/xlsx"
)

const productSheetName = "Mahsulotlar"

var productSheetHeader = []string{
	"ID", "Name", "Description", "Price", "OriginalPrice", "Discount",
	"Category", "Image", "Rating", "Reviews", "InStock", "Featured",
}

// WriteProductSheet writes the catalog as an xlsx workbook, one row per product
func WriteProductSheet(w io.Writer, products []*domain.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(productSheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productSheetHeader {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetInt64(p.Price)
		if p.OriginalPrice != nil {
			row.AddCell().SetInt64(*p.OriginalPrice)
		} else {
			row.AddCell().SetString("")
		}
		if p.Discount != nil {
			row.AddCell().SetInt(*p.Discount)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(string(p.Category))
		row.AddCell().SetString(p.Image)
		row.AddCell().SetFloat(p.Rating)
		row.AddCell().SetInt(p.Reviews)
		row.AddCell().SetBool(p.InStock)
		row.AddCell().SetBool(p.Featured)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ReadProductSheet parses a workbook laid out like WriteProductSheet.
// Rows without a name, with an unknown category, with an unreadable price or
// with an optional column out of range are skipped and counted.
func ReadProductSheet(r io.ReaderAt, size int64) ([]domain.Product, int, error) {
	file, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse workbook: %w", err)
	}
	if len(file.Sheets) == 0 || len(file.Sheets[0].Rows) < 2 {
		return nil, 0, fmt.Errorf("workbook is empty or missing header row")
	}

	var (
		products []domain.Product
		skipped  int
	)
	for _, row := range file.Sheets[0].Rows[1:] {
		get := func(i int) string {
			if row == nil || i >= len(row.Cells) {
				return ""
			}
			return strings.TrimSpace(row.Cells[i].String())
		}

		p, ok := productFromRow(get)
		if !ok {
			skipped++
			continue
		}
		products = append(products, p)
	}
	return products, skipped, nil
}

func productFromRow(get func(int) string) (domain.Product, bool) {
	name := get(1)
	category := domain.Category(get(6))
	price, err := parseWhole(get(3))
	if name == "" || !category.Valid() || err != nil || price < 0 {
		return domain.Product{}, false
	}

	p := domain.Product{
		ID:          get(0),
		Name:        name,
		Description: get(2),
		Price:       price,
		Category:    category,
		Image:       get(7),
		InStock:     parseBool(get(10), true),
		Featured:    parseBool(get(11), false),
	}
	if raw := get(4); raw != "" {
		v, err := parseWhole(raw)
		if err != nil || v < 0 {
			return domain.Product{}, false
		}
		p.OriginalPrice = &v
	}
	if raw := get(5); raw != "" {
		v, err := parseWhole(raw)
		if err != nil || v < 0 || v > 100 {
			return domain.Product{}, false
		}
		d := int(v)
		p.Discount = &d
	}
	if raw := get(8); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(v >= 0 && v <= 5) {
			return domain.Product{}, false
		}
		p.Rating = v
	}
	if raw := get(9); raw != "" {
		v, err := parseWhole(raw)
		if err != nil || v < 0 || v > math.MaxInt32 {
			return domain.Product{}, false
		}
		p.Reviews = int(v)
	}
	return p, true
}

// parseWhole accepts integers written either plainly or as spreadsheet floats.
// Fractions and values outside int64 are rejected.
func parseWhole(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number in range", s)
	}
	return int64(f), nil
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "1", "true", "ha", "yes":
		return true
	case "0", "false", "yo'q", "no":
		return false
	}
	return fallback
}
