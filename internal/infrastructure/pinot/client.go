package pinot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/awardwizard/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the Pinot broker SQL API
type Client struct {
	httpClient  *http.Client
	endpoint    string
	authHeader  string
	table       string
	batchSize   int
	rateLimiter *rate.Limiter
}

// Config holds the knobs for a Pinot client
type Config struct {
	Endpoint   string
	AuthHeader string
	Table      string
	BatchSize  int
}

// queryRequest is the broker request body
type queryRequest struct {
	SQL string `json:"sql"`
}

// NewClient creates a new Pinot broker client
func NewClient(cfg Config) *Client {
	table := cfg.Table
	if table == "" {
		table = "products"
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	// Keep query pressure on the broker modest: 10 req/s with a burst of 10
	limiter := rate.NewLimiter(rate.Limit(10), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		endpoint:    cfg.Endpoint,
		authHeader:  cfg.AuthHeader,
		table:       table,
		batchSize:   batchSize,
		rateLimiter: limiter,
	}
}

// FetchProducts looks up catalog rows for the given barcodes, issuing one
// broker query per batch of batchSize identifiers. Barcodes the catalog does
// not know are absent from the returned map.
func (c *Client) FetchProducts(ctx context.Context, barcodes []string) (map[string]domain.CatalogProduct, error) {
	out := make(map[string]domain.CatalogProduct, len(barcodes))

	for start := 0; start < len(barcodes); start += c.batchSize {
		end := start + c.batchSize
		if end > len(barcodes) {
			end = len(barcodes)
		}
		chunk := barcodes[start:end]

		products, err := c.query(ctx, buildLookupSQL(c.table, chunk))
		if err != nil {
			return nil, err
		}

		for _, p := range products {
			out[p.Barcode] = p
		}
	}

	slog.Debug("catalog lookup complete", "requested", len(barcodes), "found", len(out))
	return out, nil
}

// FindRelated returns catalog rows sharing the given brand and category.
func (c *Client) FindRelated(ctx context.Context, brand, category string) ([]domain.CatalogProduct, error) {
	if brand == "" || category == "" {
		return nil, nil
	}
	return c.query(ctx, buildRelatedSQL(c.table, brand, category))
}

// query POSTs one SQL statement to the broker, retrying transient failures.
func (c *Client) query(ctx context.Context, sql string) ([]domain.CatalogProduct, error) {
	payload, err := json.Marshal(queryRequest{SQL: sql})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, err := c.doRequest(ctx, payload)
		if err != nil {
			slog.Debug("pinot request failed", "attempt", attempt, "error", err)
			lastErr = err
			if attempt < 3 {
				if sleepErr := sleepCtx(ctx, exponentialBackoff(attempt)); sleepErr != nil {
					return nil, sleepErr
				}
			}
			continue
		}

		products, err := ParseResultTable(body)
		if err != nil {
			// A body we cannot parse is a broker problem, not a transient one
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}
		return products, nil
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, lastErr)
}

// doRequest executes a single broker POST and returns the response body
func (c *Client) doRequest(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "AwardWizard/1.0")
	if c.authHeader != "" {
		req.Header.Set("Authorization", c.authHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("broker status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

// buildLookupSQL builds the IN-clause lookup for one batch of barcodes
func buildLookupSQL(table string, barcodes []string) string {
	quoted := make([]string, len(barcodes))
	for i, b := range barcodes {
		quoted[i] = "'" + escapeSQLString(b) + "'"
	}
	return fmt.Sprintf(
		"SELECT barcode, brand, category, description, keywords FROM %s WHERE barcode IN (%s)",
		table, strings.Join(quoted, ","),
	)
}

// buildRelatedSQL builds the sibling query for one brand/category pair.
// Ordered by barcode so truncation at the LIMIT is stable across runs.
func buildRelatedSQL(table, brand, category string) string {
	return fmt.Sprintf(
		"SELECT barcode, brand, category, description, keywords FROM %s WHERE brand = '%s' AND category = '%s' ORDER BY barcode LIMIT 100",
		table, escapeSQLString(brand), escapeSQLString(category),
	)
}

// escapeSQLString doubles single quotes for safe literal interpolation
func escapeSQLString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// exponentialBackoff returns the retry delay for the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(250*(1<<attempt)) * time.Millisecond
}

// sleepCtx sleeps for d unless the context is cancelled first
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
