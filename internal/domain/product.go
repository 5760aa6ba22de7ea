package domain

import "time"

// CatalogProduct represents one product row returned by the catalog
type CatalogProduct struct {
	Barcode     string `json:"barcode"`
	Brand       string `json:"brand,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// ValidationResult is the outcome of running the rule set against one barcode.
// Reasons follow rule evaluation order and are empty when the record is valid.
type ValidationResult struct {
	Barcode string   `json:"barcode"`
	Valid   bool     `json:"isValid"`
	Reasons []string `json:"reasons,omitempty"`
}

// Recommendation pairs a validated barcode with a related catalog product.
// Score is the description keyword overlap used for ranking.
type Recommendation struct {
	SourceBarcode      string `json:"sourceBarcode"`
	RecommendedBarcode string `json:"recommendedBarcode"`
	Reason             string `json:"reason"`
	Score              int    `json:"score"`
}

// ValidationReport is the assembled output of a single validation run.
type ValidationReport struct {
	RunID           string             `json:"runId"`
	GeneratedAt     time.Time          `json:"generatedAt"`
	Results         []ValidationResult `json:"results"`
	Recommendations []Recommendation   `json:"recommendations"`
}
