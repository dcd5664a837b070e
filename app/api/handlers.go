package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/alert-comb/app/alert"
	"github.com/lysyi3m/alert-comb/app/database"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

func NewHandler(alertRepo AlertRepository, normalizer *alert.Normalizer) *Handler {
	return &Handler{
		alertRepo:  alertRepo,
		normalizer: normalizer,
	}
}

// GetAlerts lists stored alerts, most recently inserted first
func (h *Handler) GetAlerts(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	alerts, err := h.alertRepo.ListAlerts(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_alerts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	response := make([]gin.H, 0, len(alerts))
	for _, a := range alerts {
		response = append(response, alertResponse(&a))
	}

	c.JSON(http.StatusOK, response)
}

// IngestAlert accepts one raw feature and performs the same normalize+upsert
// as the poller. Authentication is handled by the route middleware.
func (h *Handler) IngestAlert(c *gin.Context) {
	var feature alert.Feature
	if err := c.ShouldBindJSON(&feature); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload"})
		return
	}

	record, err := h.normalizer.Run(feature)
	if err != nil {
		if errors.Is(err, alert.ErrMissingID) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to normalize alert", "details": err.Error()})
		return
	}

	stored, err := h.alertRepo.UpsertAlert(record)
	if err != nil {
		slog.Error("Database error", "operation", "upsert_alert", "nws_id", record.NWSID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store alert"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": stored.ID})
}

// GetHealth reports service liveness and a store round-trip
func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.alertRepo.GetAlertCount(); err == nil {
		health["alerts"] = count
	}

	c.JSON(http.StatusOK, health)
}

func alertResponse(a *database.Alert) gin.H {
	return gin.H{
		"id":         a.ID,
		"nws_id":     a.NWSID,
		"event":      a.Event,
		"status":     a.Status,
		"severity":   a.Severity,
		"sent_at":    formatTimestamp(a.SentAt),
		"updated_at": formatTimestamp(a.UpdatedAt),
		"raw":        a.Raw,
	}
}

func formatTimestamp(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
