package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"

	"github.com/venuepulse/backend/internal/db"
	"github.com/venuepulse/backend/internal/models"
)

// importKinds lists the accepted form fields in insert order. Venues go
// first so event rows can reference them.
var importKinds = []string{"venues", "feedback", "assistance", "nps"}

type ImportCounts struct {
	Parsed   int `json:"parsed"`
	Inserted int `json:"inserted"`
}

type ImportSummary struct {
	Venues     ImportCounts `json:"venues"`
	Feedback   ImportCounts `json:"feedback"`
	Assistance ImportCounts `json:"assistance"`
	NPS        ImportCounts `json:"nps"`
	Errors     []string     `json:"errors"`
}

func (s *ImportSummary) counts(kind string) *ImportCounts {
	switch kind {
	case "venues":
		return &s.Venues
	case "feedback":
		return &s.Feedback
	case "assistance":
		return &s.Assistance
	default:
		return &s.NPS
	}
}

type parsedImport struct {
	venues     []models.Venue
	feedback   []models.FeedbackEvent
	assistance []models.AssistanceEvent
	nps        []models.NPSSubmission
}

// @Summary Import CSV data
// @Description Upload any of venues, feedback, assistance and nps CSV files. Cached snapshots are dropped afterwards.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param venues formData file false "venues.csv"
// @Param feedback formData file false "feedback.csv"
// @Param assistance formData file false "assistance.csv"
// @Param nps formData file false "nps.csv"
// @Success 200 {object} ImportSummary
// @Failure 400 {object} map[string]any
// @Router /api/import [post]
func (h *Handler) Import(c *gin.Context) {
	files := map[string]*multipart.FileHeader{}
	for _, kind := range importKinds {
		fh, err := c.FormFile(kind)
		if err != nil {
			continue
		}
		if !validateExt(fh.Filename) {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "all files must be .csv", fh.Filename)
			return
		}
		files[kind] = fh
	}
	if len(files) == 0 {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one of venues, feedback, assistance or nps is required", nil)
		return
	}

	summary := ImportSummary{Errors: []string{}}
	var parsed parsedImport
	for kind, fh := range files {
		var (
			n    int
			errs []string
		)
		switch kind {
		case "venues":
			parsed.venues, errs = parseVenuesCSV(fh, h.Validator)
			n = len(parsed.venues)
		case "feedback":
			parsed.feedback, errs = parseFeedbackCSV(fh, h.Validator)
			n = len(parsed.feedback)
		case "assistance":
			parsed.assistance, errs = parseAssistanceCSV(fh, h.Validator)
			n = len(parsed.assistance)
		case "nps":
			parsed.nps, errs = parseNPSCSV(fh, h.Validator)
			n = len(parsed.nps)
		}
		summary.counts(kind).Parsed = n
		summary.Errors = append(summary.Errors, errs...)
	}
	if len(summary.Errors) > 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", summary.Errors)
		return
	}

	ctx := c.Request.Context()
	for _, kind := range importKinds {
		if _, ok := files[kind]; !ok {
			continue
		}
		inserted, err := h.insert(ctx, kind, parsed)
		if err != nil {
			h.Logger.Error().Err(err).Str("kind", kind).Msg("import failed")
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert "+kind, err.Error())
			return
		}
		summary.counts(kind).Inserted = int(inserted)
	}

	h.Stats.InvalidateAll()
	h.Logger.Info().
		Int("venues", summary.Venues.Inserted).
		Int("feedback", summary.Feedback.Inserted).
		Int("assistance", summary.Assistance.Inserted).
		Int("nps", summary.NPS.Inserted).
		Msg("import finished")
	c.JSON(http.StatusOK, summary)
}

// insert loads one kind of rows and records the attempt as an import run.
func (h *Handler) insert(ctx context.Context, kind string, p parsedImport) (int64, error) {
	runID, err := h.Store.CreateImportRun(ctx, kind)
	if err != nil {
		return 0, fmt.Errorf("creating import run: %w", err)
	}

	var n int64
	switch kind {
	case "venues":
		n, err = h.Store.InsertVenues(ctx, p.venues)
	case "feedback":
		n, err = h.Store.InsertFeedbackEvents(ctx, p.feedback)
	case "assistance":
		n, err = h.Store.InsertAssistanceEvents(ctx, p.assistance)
	case "nps":
		n, err = h.Store.InsertNPSSubmissions(ctx, p.nps)
	}

	status := db.RunSucceeded
	if err != nil {
		status = db.RunFailed
	}
	if ferr := h.Store.FinishImportRun(ctx, runID, status, n, err); ferr != nil {
		h.Logger.Warn().Err(ferr).Str("run_id", runID).Msg("failed to finish import run")
	}
	return n, err
}

// @Summary Latest import run
// @Tags import
// @Produce json
// @Success 200 {object} models.ImportRun
// @Failure 404 {object} map[string]any
// @Router /api/imports/latest [get]
func (h *Handler) ImportsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestImportRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No imports found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load import run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

// csvRow reads named columns of one record.
type csvRow struct {
	rec   []string
	index map[string]int
}

func (r csvRow) get(names ...string) string {
	return getFieldAny(r.rec, r.index, names...)
}

// readCSV calls fn for each data row with its 1-based line number. fn
// returns an error to report that row.
func readCSV(file *multipart.FileHeader, kind string, fn func(line int, row csvRow) error) []string {
	f, err := file.Open()
	if err != nil {
		return []string{err.Error()}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return []string{kind + ": failed to read header"}
	}
	index := headerIndex(headers)

	var errs []string
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s line %d: %v", kind, line, err))
			continue
		}
		if err := fn(line, csvRow{rec: rec, index: index}); err != nil {
			errs = append(errs, fmt.Sprintf("%s line %d: %v", kind, line, err))
		}
	}
	return errs
}

func parseVenuesCSV(file *multipart.FileHeader, v *validator.Validate) ([]models.Venue, []string) {
	var out []models.Venue
	errs := readCSV(file, "venues", func(line int, row csvRow) error {
		venue := models.Venue{
			ID:   row.get("id", "venue_id"),
			Name: row.get("name", "venue_name"),
		}
		createdAt, err := optionalTime(row.get("created_at"))
		if err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
		venue.CreatedAt = time.Now().UTC()
		if createdAt != nil {
			venue.CreatedAt = *createdAt
		}
		if err := v.Struct(venue); err != nil {
			return err
		}
		out = append(out, venue)
		return nil
	})
	return out, errs
}

func parseFeedbackCSV(file *multipart.FileHeader, v *validator.Validate) ([]models.FeedbackEvent, []string) {
	var out []models.FeedbackEvent
	errs := readCSV(file, "feedback", func(line int, row csvRow) error {
		e := models.FeedbackEvent{
			VenueID:   row.get("venue_id", "venue"),
			SessionID: row.get("session_id", "session"),
		}
		var err error
		if e.Rating, err = optionalInt(row.get("rating")); err != nil {
			return fmt.Errorf("rating: %w", err)
		}
		if e.CreatedAt, err = requiredTime(row.get("created_at", "timestamp")); err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
		if e.ResolvedAt, err = optionalTime(row.get("resolved_at")); err != nil {
			return fmt.Errorf("resolved_at: %w", err)
		}
		if e.IsActioned, err = optionalBool(row.get("is_actioned", "actioned")); err != nil {
			return fmt.Errorf("is_actioned: %w", err)
		}
		if err := v.Struct(e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, errs
}

func parseAssistanceCSV(file *multipart.FileHeader, v *validator.Validate) ([]models.AssistanceEvent, []string) {
	var out []models.AssistanceEvent
	errs := readCSV(file, "assistance", func(line int, row csvRow) error {
		e := models.AssistanceEvent{VenueID: row.get("venue_id", "venue")}
		var err error
		if e.CreatedAt, err = requiredTime(row.get("created_at", "timestamp")); err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
		if e.AcknowledgedAt, err = optionalTime(row.get("acknowledged_at")); err != nil {
			return fmt.Errorf("acknowledged_at: %w", err)
		}
		if e.ResolvedAt, err = optionalTime(row.get("resolved_at")); err != nil {
			return fmt.Errorf("resolved_at: %w", err)
		}
		if err := v.Struct(e); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, errs
}

func parseNPSCSV(file *multipart.FileHeader, v *validator.Validate) ([]models.NPSSubmission, []string) {
	var out []models.NPSSubmission
	errs := readCSV(file, "nps", func(line int, row csvRow) error {
		n := models.NPSSubmission{VenueID: row.get("venue_id", "venue")}
		var err error
		if n.Score, err = optionalInt(row.get("score")); err != nil {
			return fmt.Errorf("score: %w", err)
		}
		if n.CreatedAt, err = requiredTime(row.get("created_at", "timestamp")); err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
		if n.SentAt, err = optionalTime(row.get("sent_at")); err != nil {
			return fmt.Errorf("sent_at: %w", err)
		}
		if n.RespondedAt, err = optionalTime(row.get("responded_at")); err != nil {
			return fmt.Errorf("responded_at: %w", err)
		}
		if msg := row.get("send_error"); msg != "" {
			n.SendError = &msg
		}
		if err := v.Struct(n); err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, errs
}

func requiredTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("required")
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 timestamp, got %q", s)
	}
	return t, nil
}

func optionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := requiredTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("expected integer, got %q", s)
	}
	return &n, nil
}

func optionalBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return false, fmt.Errorf("expected boolean, got %q", s)
	}
	return b, nil
}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\ufeff", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func validateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv"
}
