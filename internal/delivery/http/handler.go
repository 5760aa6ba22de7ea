package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/awardwizard/backend/internal/domain"
	"github.com/awardwizard/backend/internal/report"
	"github.com/awardwizard/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	pipeline *usecase.PipelineService
}

// NewHandler creates a new HTTP handler
func NewHandler(pipeline *usecase.PipelineService) *Handler {
	return &Handler{pipeline: pipeline}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "awardwizard-backend",
		"version": "1.0.0",
	})
}

// ValidateBatch runs the validation pipeline over an uploaded barcode CSV.
// Default response is the JSON report; ?format=csv (or Accept: text/csv)
// returns one of the two tables as a CSV attachment, selected with
// ?table=validation|recommendations.
func (h *Handler) ValidateBatch(c *gin.Context) {
	if h.pipeline == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "validation pipeline not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing CSV upload (multipart field 'file')"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to open upload: %v", err)})
		return
	}
	defer file.Close()

	barcodes, err := report.ParseBarcodeCSV(file)
	if err != nil {
		runsFailedTotal.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMalformedInput.Error()})
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), barcodes)
	if err != nil {
		runsFailedTotal.Inc()
		switch {
		case errors.Is(err, domain.ErrCatalogUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrCatalogUnavailable.Error()})
		case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrMalformedInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "validation run failed"})
		}
		return
	}

	runsTotal.Inc()
	for _, r := range result.Results {
		if !r.Valid {
			invalidRecordsTotal.Inc()
		}
	}
	recommendationsTotal.Add(float64(len(result.Recommendations)))

	if wantsCSV(c) {
		h.writeCSVResponse(c, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// wantsCSV reports whether the client asked for a CSV download
func wantsCSV(c *gin.Context) bool {
	if c.Query("format") == "csv" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "text/csv")
}

// writeCSVResponse streams the selected result table as a CSV attachment
func (h *Handler) writeCSVResponse(c *gin.Context, result *domain.ValidationReport) {
	table := c.DefaultQuery("table", "validation")

	var buf bytes.Buffer
	var filename string
	var err error

	switch table {
	case "validation":
		filename = "validation.csv"
		err = report.WriteValidationCSV(&buf, result.Results)
	case "recommendations":
		filename = "recommendations.csv"
		err = report.WriteRecommendationCSV(&buf, result.Recommendations)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown table %q (want 'validation' or 'recommendations')", table)})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build CSV"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
