package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/awardwizard/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBarcodeCSV(t *testing.T) {
	t.Run("parses single column", func(t *testing.T) {
		input := "barcode\n0123456789012\n0001234567890\n"

		barcodes, err := ParseBarcodeCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, []string{"0123456789012", "0001234567890"}, barcodes)
	})

	t.Run("finds barcode column in any position case-insensitively", func(t *testing.T) {
		input := "sku,Barcode,notes\nA1,0123456789012,first\nA2,0001234567890,second\n"

		barcodes, err := ParseBarcodeCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, []string{"0123456789012", "0001234567890"}, barcodes)
	})

	t.Run("trims and strips inner whitespace", func(t *testing.T) {
		input := "barcode\n  0123 4567 89012  \n"

		barcodes, err := ParseBarcodeCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, []string{"0123456789012"}, barcodes)
	})

	t.Run("dedupes preserving first occurrence", func(t *testing.T) {
		input := "barcode\n111\n222\n111\n333\n222\n"

		barcodes, err := ParseBarcodeCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, []string{"111", "222", "333"}, barcodes)
	})

	t.Run("drops empty rows", func(t *testing.T) {
		input := "barcode\n111\n\n   \n222\n"

		barcodes, err := ParseBarcodeCSV(strings.NewReader(input))

		require.NoError(t, err)
		assert.Equal(t, []string{"111", "222"}, barcodes)
	})

	t.Run("rejects missing barcode column", func(t *testing.T) {
		input := "sku,name\nA1,Chips\n"

		barcodes, err := ParseBarcodeCSV(strings.NewReader(input))

		assert.Nil(t, barcodes)
		assert.ErrorIs(t, err, domain.ErrMalformedInput)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		barcodes, err := ParseBarcodeCSV(strings.NewReader(""))

		assert.Nil(t, barcodes)
		assert.ErrorIs(t, err, domain.ErrMalformedInput)
	})

	t.Run("rejects header-only input", func(t *testing.T) {
		barcodes, err := ParseBarcodeCSV(strings.NewReader("barcode\n"))

		assert.Nil(t, barcodes)
		assert.ErrorIs(t, err, domain.ErrMalformedInput)
	})
}

func TestWriteValidationCSV(t *testing.T) {
	results := []domain.ValidationResult{
		{Barcode: "0123456789012", Valid: true},
		{Barcode: "0001234567890", Valid: false, Reasons: []string{"missing brand", "vague description"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteValidationCSV(&buf, results))

	want := "barcode,is_valid,reasons\n" +
		"0123456789012,true,\n" +
		"0001234567890,false,missing brand; vague description\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRecommendationCSV(t *testing.T) {
	recommendations := []domain.Recommendation{
		{SourceBarcode: "0123456789012", RecommendedBarcode: "0000000000002", Reason: `same brand "Acme" and category "Snacks"`},
		{SourceBarcode: "0123456789012", RecommendedBarcode: "0000000000003", Reason: `same brand "Acme" and category "Snacks"`},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationCSV(&buf, recommendations))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "source_barcode,recommended_barcode,reason", lines[0])
	assert.Contains(t, lines[1], "0000000000002")
	assert.Contains(t, lines[2], "0000000000003")
}

func TestWriteValidationCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteValidationCSV(&buf, nil))

	assert.Equal(t, "barcode,is_valid,reasons\n", buf.String())
}
