// internal/api/handlers/analytics_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/salesight/backend-go/internal/analytics"
	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
	"github.com/salesight/backend-go/internal/ingest"
	"github.com/salesight/backend-go/internal/report"
	"github.com/salesight/backend-go/internal/service"
)

const maxUploadBytes = 64 << 20 // 64 MiB

type AnalyticsHandler struct {
	service  *service.AnalyticsService
	registry *service.DatasetRegistry
}

func NewAnalyticsHandler(svc *service.AnalyticsService, registry *service.DatasetRegistry) *AnalyticsHandler {
	return &AnalyticsHandler{service: svc, registry: registry}
}

// UploadDataset ingests a transaction file (.csv, .xlsx or .json), validates
// the schema and registers the dataset for analysis.
func (h *AnalyticsHandler) UploadDataset(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload limit"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer f.Close()

	table, err := ingest.Load(f, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ds, err := dataset.Build(table)
	var warning string
	if err != nil {
		var dateErr *dataset.DateParseError
		if errors.As(err, &dateErr) && ds != nil {
			// Partial date failures drop the affected rows, not the upload.
			warning = dateErr.Error()
		} else {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
	}

	entry := h.registry.Add(fileHeader.Filename, ds, warning)
	c.JSON(http.StatusCreated, entry)
}

// ListDatasets returns all registered datasets, newest first.
func (h *AnalyticsHandler) ListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": h.registry.List()})
}

// DeleteDataset removes a dataset from the registry.
func (h *AnalyticsHandler) DeleteDataset(c *gin.Context) {
	if !h.registry.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetDashboard runs the full analytics bundle over a dataset.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	entry, params, ok := h.resolve(c)
	if !ok {
		return
	}

	result, err := h.service.Dashboard(c.Request.Context(), entry.ID, entry.Dataset, params)
	if err != nil {
		log.Error().Err(err).Str("dataset_id", entry.ID).Msg("dashboard run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRFM returns the per-customer segmentation table.
func (h *AnalyticsHandler) GetRFM(c *gin.Context) {
	entry, params, ok := h.resolve(c)
	if !ok {
		return
	}

	records, err := h.service.RFM(entry.Dataset, params)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"customers": records})
}

// GetTimeSeries returns the daily revenue series with moving averages,
// growth, decomposition and the hourly heatmap.
func (h *AnalyticsHandler) GetTimeSeries(c *gin.Context) {
	entry, params, ok := h.resolve(c)
	if !ok {
		return
	}

	result, err := h.service.TimeSeries(entry.Dataset, params)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetForecast returns both model forecasts.
func (h *AnalyticsHandler) GetForecast(c *gin.Context) {
	entry, params, ok := h.resolve(c)
	if !ok {
		return
	}

	bundle, err := h.service.Forecast(entry.Dataset, params)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// GetInventory returns the per-product stock heuristics.
func (h *AnalyticsHandler) GetInventory(c *gin.Context) {
	entry, params, ok := h.resolve(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": h.service.Inventory(entry.Dataset, params)})
}

// GetCategories returns the per-category metrics and monthly growth.
func (h *AnalyticsHandler) GetCategories(c *gin.Context) {
	entry, params, ok := h.resolve(c)
	if !ok {
		return
	}

	result, err := h.service.Categories(entry.Dataset, params)
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReport renders the full analytics bundle as a standalone HTML report.
func (h *AnalyticsHandler) GetReport(c *gin.Context) {
	entry, params, ok := h.resolve(c)
	if !ok {
		return
	}

	result, err := h.service.Dashboard(c.Request.Context(), entry.ID, entry.Dataset, params)
	if err != nil {
		log.Error().Err(err).Str("dataset_id", entry.ID).Msg("report run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	// The assembler must see the same slice of data the engines saw, plus the
	// full date history for the period-over-period deltas.
	history := entry.Dataset
	if params.Category != "" {
		history = history.FilterCategory(params.Category)
	}
	filtered := history.FilterDateRange(params.From, params.To)

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := report.Render(c.Writer, report.Assemble(filtered, history, result)); err != nil {
		log.Error().Err(err).Str("dataset_id", entry.ID).Msg("report rendering failed")
	}
}

// resolve looks up the dataset and parses the shared query parameters. On
// failure it has already written the response.
func (h *AnalyticsHandler) resolve(c *gin.Context) (*service.DatasetEntry, domain.AnalysisParams, bool) {
	entry, ok := h.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "dataset not found"})
		return nil, domain.AnalysisParams{}, false
	}

	params, err := parseAnalysisParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, domain.AnalysisParams{}, false
	}

	return entry, params, true
}

// analysisError maps engine preconditions to 422 and everything else to 500.
func (h *AnalyticsHandler) analysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrInsufficientData),
		errors.Is(err, analytics.ErrNoCustomerColumn),
		errors.Is(err, analytics.ErrNoCategoryColumn):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
	}
}

func parseAnalysisParams(c *gin.Context) (domain.AnalysisParams, error) {
	params := domain.AnalysisParams{Category: strings.TrimSpace(c.Query("category"))}

	var err error
	if params.From, err = parseDateParam(c.Query("start")); err != nil {
		return params, errors.New("invalid start date, expected YYYY-MM-DD")
	}
	if params.To, err = parseDateParam(c.Query("end")); err != nil {
		return params, errors.New("invalid end date, expected YYYY-MM-DD")
	}
	if !params.From.IsZero() && !params.To.IsZero() && params.To.Before(params.From) {
		return params, errors.New("end date precedes start date")
	}

	if raw := strings.TrimSpace(c.Query("horizon")); raw != "" {
		horizon, err := strconv.Atoi(raw)
		if err != nil || horizon <= 0 {
			return params, errors.New("horizon must be a positive integer")
		}
		params.HorizonDays = horizon
	}

	return params, nil
}

func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
