package pinot

import (
	"encoding/json"
	"fmt"

	"github.com/awardwizard/backend/internal/domain"
)

// brokerResponse mirrors the subset of the Pinot broker response we consume
type brokerResponse struct {
	ResultTable *resultTable `json:"resultTable"`
}

type resultTable struct {
	DataSchema dataSchema          `json:"dataSchema"`
	Rows       [][]json.RawMessage `json:"rows"`
}

type dataSchema struct {
	ColumnNames []string `json:"columnNames"`
}

// ParseResultTable converts a broker response body into catalog products.
// An absent or empty resultTable yields an empty slice. A body that is not
// broker JSON, or result rows without a barcode column, is an error.
func ParseResultTable(body []byte) ([]domain.CatalogProduct, error) {
	var resp brokerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode broker response: %w", err)
	}

	if resp.ResultTable == nil || len(resp.ResultTable.Rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(resp.ResultTable.DataSchema.ColumnNames))
	for i, name := range resp.ResultTable.DataSchema.ColumnNames {
		cols[name] = i
	}
	if _, ok := cols["barcode"]; !ok {
		return nil, fmt.Errorf("result table has no barcode column (columns: %v)", resp.ResultTable.DataSchema.ColumnNames)
	}

	products := make([]domain.CatalogProduct, 0, len(resp.ResultTable.Rows))
	for _, row := range resp.ResultTable.Rows {
		p := domain.CatalogProduct{
			Barcode:     cellString(row, cols, "barcode"),
			Brand:       cellString(row, cols, "brand"),
			Category:    cellString(row, cols, "category"),
			Description: cellString(row, cols, "description"),
			Keywords:    cellString(row, cols, "keywords"),
		}
		if p.Barcode == "" {
			continue
		}
		products = append(products, p)
	}

	return products, nil
}

// cellString extracts the named column of one row as a string.
// Pinot may return numeric barcodes depending on schema, so non-string
// cells fall back to their raw JSON representation.
func cellString(row []json.RawMessage, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}

	var s string
	if err := json.Unmarshal(row[idx], &s); err == nil {
		return s
	}

	raw := string(row[idx])
	if raw == "null" {
		return ""
	}
	return raw
}
