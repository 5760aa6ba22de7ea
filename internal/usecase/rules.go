package usecase

import (
	"strings"

	"github.com/awardwizard/backend/internal/domain"
)

// Validation reasons, in rule evaluation order
const (
	ReasonNotFound         = "not found in catalog"
	ReasonMissingBrand     = "missing brand"
	ReasonInvalidCategory  = "invalid category"
	ReasonVagueDescription = "vague description"
)

// defaultVagueTerms flag descriptions that say nothing about the product
var defaultVagueTerms = []string{
	"assorted", "misc", "variety", "good product", "item", "product", "n/a",
}

// RuleConfig holds configuration for the rule evaluator
type RuleConfig struct {
	MinDescriptionTokens int
	VagueTerms           []string
	AllowedCategories    []string
}

// RuleEvaluator applies the fixed validation rule set to catalog records
type RuleEvaluator struct {
	minDescriptionTokens int
	vagueTerms           []string
	allowedCategories    map[string]bool
}

// NewRuleEvaluator creates a rule evaluator with the given configuration
func NewRuleEvaluator(config RuleConfig) *RuleEvaluator {
	minTokens := config.MinDescriptionTokens
	if minTokens <= 0 {
		minTokens = 3
	}

	vagueTerms := config.VagueTerms
	if vagueTerms == nil {
		vagueTerms = defaultVagueTerms
	}
	lowered := make([]string, len(vagueTerms))
	for i, term := range vagueTerms {
		lowered[i] = strings.ToLower(term)
	}

	allowed := make(map[string]bool, len(config.AllowedCategories))
	for _, c := range config.AllowedCategories {
		allowed[strings.ToLower(c)] = true
	}

	return &RuleEvaluator{
		minDescriptionTokens: minTokens,
		vagueTerms:           lowered,
		allowedCategories:    allowed,
	}
}

// Evaluate runs the rule set against one barcode. found reports whether the
// catalog returned a row for it; a barcode the catalog does not know is
// flagged with only the not-found reason, since nothing else is knowable.
// Reasons accumulate in rule order; the record is valid iff none apply.
func (e *RuleEvaluator) Evaluate(barcode string, product domain.CatalogProduct, found bool) domain.ValidationResult {
	if !found {
		return domain.ValidationResult{
			Barcode: barcode,
			Valid:   false,
			Reasons: []string{ReasonNotFound},
		}
	}

	var reasons []string

	if strings.TrimSpace(product.Brand) == "" {
		reasons = append(reasons, ReasonMissingBrand)
	}

	if !e.categoryAllowed(product.Category) {
		reasons = append(reasons, ReasonInvalidCategory)
	}

	if e.isVague(product.Description) {
		reasons = append(reasons, ReasonVagueDescription)
	}

	return domain.ValidationResult{
		Barcode: barcode,
		Valid:   len(reasons) == 0,
		Reasons: reasons,
	}
}

// categoryAllowed reports whether the category passes the allowed set.
// An empty configured set means any non-empty category is acceptable.
func (e *RuleEvaluator) categoryAllowed(category string) bool {
	if strings.TrimSpace(category) == "" {
		return false
	}
	if len(e.allowedCategories) == 0 {
		return true
	}
	return e.allowedCategories[strings.ToLower(category)]
}

// isVague reports whether a description fails the informativeness check:
// empty, fewer than the minimum word count, or containing a denylisted term.
func (e *RuleEvaluator) isVague(description string) bool {
	lower := strings.ToLower(strings.TrimSpace(description))
	if lower == "" {
		return true
	}

	if len(strings.Fields(lower)) < e.minDescriptionTokens {
		return true
	}

	for _, term := range e.vagueTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}

	return false
}
