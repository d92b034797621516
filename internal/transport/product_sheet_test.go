package transport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

// sheetOf builds a workbook with the export header and raw string cells
func sheetOf(t *testing.T, rows ...[]string) []byte {
	t.Helper()
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(productSheetName)
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range productSheetHeader {
		header.AddCell().SetString(h)
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

func sheetRow(id, price, originalPrice, discount, rating, reviews string) []string {
	return []string{id, "Mahsulot " + id, "", price, originalPrice, discount, "sport", "", rating, reviews, "ha", "yo'q"}
}

func TestReadProductSheetSkipsOutOfRangeColumns(t *testing.T) {
	data := sheetOf(t,
		sheetRow("ok", "1000", "1200", "15", "4.5", "3"),
		sheetRow("bare", "1000", "", "", "", ""),
		sheetRow("discount-high", "1000", "", "150", "", ""),
		sheetRow("discount-negative", "1000", "", "-1", "", ""),
		sheetRow("original-negative", "1000", "-5", "", "", ""),
		sheetRow("original-text", "1000", "ko'p", "", "", ""),
		sheetRow("price-huge", "1e19", "", "", "", ""),
		sheetRow("price-inf", "1e400", "", "", "", ""),
		sheetRow("price-fraction", "999.5", "", "", "", ""),
		sheetRow("original-huge", "1000", "9.3e18", "", "", ""),
		sheetRow("rating-high", "1000", "", "", "7", ""),
		sheetRow("rating-nan", "1000", "", "", "NaN", ""),
		sheetRow("reviews-negative", "1000", "", "", "", "-3"),
		sheetRow("reviews-huge", "1000", "", "", "", "1e15"),
	)

	products, skipped, err := ReadProductSheet(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	assert.Equal(t, 12, skipped)
	require.Len(t, products, 2)

	ok := products[0]
	assert.Equal(t, "ok", ok.ID)
	require.NotNil(t, ok.OriginalPrice)
	assert.Equal(t, int64(1200), *ok.OriginalPrice)
	require.NotNil(t, ok.Discount)
	assert.Equal(t, 15, *ok.Discount)
	assert.Equal(t, 4.5, ok.Rating)
	assert.Equal(t, 3, ok.Reviews)
	assert.True(t, ok.InStock)
	assert.False(t, ok.Featured)

	bare := products[1]
	assert.Equal(t, "bare", bare.ID)
	assert.Nil(t, bare.OriginalPrice)
	assert.Nil(t, bare.Discount)
	assert.Zero(t, bare.Rating)
}

func TestParseWhole(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"16500000", 16500000, false},
		{"1.65e7", 16500000, false},
		{"-7", -7, false},
		{"9223372036854775807", 9223372036854775807, false},
		{"9.3e18", 0, true},
		{"-1e19", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
		{"2.5", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWhole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
