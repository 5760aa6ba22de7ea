// Package report handles the CSV edges of a validation run: parsing the
// uploaded barcode list and writing the two downloadable result tables.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/awardwizard/backend/internal/domain"
)

// barcodeColumn is the required header name in the uploaded CSV
const barcodeColumn = "barcode"

// ParseBarcodeCSV reads the uploaded CSV and returns the cleaned barcode list.
// The header must contain a "barcode" column (any position, case-insensitive).
// Values are trimmed, inner whitespace is removed, empties are dropped, and
// duplicates are removed preserving first occurrence. A missing column or an
// empty result yields ErrMalformedInput.
func ParseBarcodeCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrMalformedInput
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), barcodeColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, domain.ErrMalformedInput
	}

	var barcodes []string
	seen := make(map[string]bool)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
		}
		if col >= len(record) {
			continue
		}

		barcode := normalizeBarcode(record[col])
		if barcode == "" || seen[barcode] {
			continue
		}
		seen[barcode] = true
		barcodes = append(barcodes, barcode)
	}

	if len(barcodes) == 0 {
		return nil, domain.ErrMalformedInput
	}

	return barcodes, nil
}

// normalizeBarcode strips all whitespace from a barcode value
func normalizeBarcode(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// WriteValidationCSV writes the validation table: one row per input barcode,
// in pipeline order. Reasons are joined with "; ".
func WriteValidationCSV(w io.Writer, results []domain.ValidationResult) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"barcode", "is_valid", "reasons"}); err != nil {
		return fmt.Errorf("failed to write validation header: %w", err)
	}

	for _, result := range results {
		row := []string{
			result.Barcode,
			strconv.FormatBool(result.Valid),
			strings.Join(result.Reasons, "; "),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write validation row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteRecommendationCSV writes the recommendation table, grouped by source
// barcode in pipeline order, ranked within each group.
func WriteRecommendationCSV(w io.Writer, recommendations []domain.Recommendation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"source_barcode", "recommended_barcode", "reason"}); err != nil {
		return fmt.Errorf("failed to write recommendation header: %w", err)
	}

	for _, rec := range recommendations {
		row := []string{rec.SourceBarcode, rec.RecommendedBarcode, rec.Reason}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write recommendation row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
