package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/venuepulse/backend/internal/metrics"
	"github.com/venuepulse/backend/internal/models"
	"github.com/venuepulse/backend/internal/service"
)

// Store is the persistence the handlers need. *db.Store satisfies it.
type Store interface {
	Ping(ctx context.Context) error
	ListVenues(ctx context.Context) ([]models.Venue, error)
	InsertVenues(ctx context.Context, venues []models.Venue) (int64, error)
	InsertFeedbackEvents(ctx context.Context, events []models.FeedbackEvent) (int64, error)
	InsertAssistanceEvents(ctx context.Context, events []models.AssistanceEvent) (int64, error)
	InsertNPSSubmissions(ctx context.Context, subs []models.NPSSubmission) (int64, error)
	CreateImportRun(ctx context.Context, kind string) (string, error)
	FinishImportRun(ctx context.Context, runID string, status string, rows int64, runErr error) error
	GetLatestImportRun(ctx context.Context) (models.ImportRun, error)
}

// Stats computes snapshots. *service.StatsService satisfies it.
type Stats interface {
	VenueStats(ctx context.Context, req service.StatsRequest) (metrics.Snapshot, error)
	InvalidateAll()
}

type Handler struct {
	Store     Store
	Stats     Stats
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary List venues
// @Tags venues
// @Produce json
// @Success 200 {array} models.Venue
// @Router /api/venues [get]
func (h *Handler) VenuesList(c *gin.Context) {
	venues, err := h.Store.ListVenues(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list venues", err.Error())
		return
	}
	if venues == nil {
		venues = []models.Venue{}
	}
	c.JSON(http.StatusOK, venues)
}

// @Summary Drop cached snapshots
// @Tags stats
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/cache/invalidate [post]
func (h *Handler) CacheInvalidate(c *gin.Context) {
	h.Stats.InvalidateAll()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
