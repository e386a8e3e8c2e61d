package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/venuepulse/backend/internal/metrics"
	"github.com/venuepulse/backend/internal/service"
)

type statsQuery struct {
	VenueIDs  []string `form:"venue_id" validate:"dive,required,max=64"`
	Range     string   `form:"range" validate:"omitempty,oneof=today yesterday last7 last14 last30 all custom"`
	From      string   `form:"from"`
	To        string   `form:"to"`
	Normalize bool     `form:"normalize"`
}

// @Summary Dashboard snapshot
// @Description Totals, trends and sparklines for the selected venues. Without venue_id every venue is included.
// @Tags stats
// @Produce json
// @Param venue_id query []string false "venue ids" collectionFormat(multi)
// @Param range query string false "today, yesterday, last7, last14, last30, all or custom" default(last7)
// @Param from query string false "custom range start (YYYY-MM-DD)"
// @Param to query string false "custom range end (YYYY-MM-DD)"
// @Param normalize query bool false "rescale sparklines to 0..100"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/stats [get]
func (h *Handler) StatsGet(c *gin.Context) {
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", err.Error())
		return
	}
	h.writeStats(c, q)
}

// @Summary Single venue snapshot
// @Tags stats
// @Produce json
// @Param id path string true "venue id"
// @Param range query string false "today, yesterday, last7, last14, last30, all or custom" default(last7)
// @Param from query string false "custom range start (YYYY-MM-DD)"
// @Param to query string false "custom range end (YYYY-MM-DD)"
// @Param normalize query bool false "rescale sparklines to 0..100"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/venues/{id}/stats [get]
func (h *Handler) VenueStatsGet(c *gin.Context) {
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", err.Error())
		return
	}
	q.VenueIDs = []string{c.Param("id")}
	h.writeStats(c, q)
}

func (h *Handler) writeStats(c *gin.Context, q statsQuery) {
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	req, err := q.request()
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	snap, err := h.Stats.VenueStats(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, snap)
	case errors.Is(err, metrics.ErrInvalidRange):
		writeError(c, http.StatusBadRequest, "INVALID_RANGE", "Invalid date range", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "TIMEOUT", "Stats computation timed out", nil)
	default:
		h.Logger.Error().Err(err).Strs("venue_ids", req.VenueIDs).Msg("stats failed")
		writeError(c, http.StatusInternalServerError, "STATS_ERROR", "Failed to compute stats", err.Error())
	}
}

func (q statsQuery) request() (service.StatsRequest, error) {
	req := service.StatsRequest{
		VenueIDs:  q.VenueIDs,
		Preset:    metrics.Preset(q.Range),
		Normalize: q.Normalize,
	}
	var err error
	if req.From, err = parseDay(q.From); err != nil {
		return req, fmt.Errorf("from: %w", err)
	}
	if req.To, err = parseDay(q.To); err != nil {
		return req, fmt.Errorf("to: %w", err)
	}
	return req, nil
}

// parseDay accepts YYYY-MM-DD or RFC 3339. Only the calendar date is used
// downstream.
func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
