package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepulse/backend/internal/models"
)

//go:embed schema.sql
var schemaSQL string

const (
	RunRunning   = "RUNNING"
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) InsertVenues(ctx context.Context, venues []models.Venue) (int64, error) {
	var n int64
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		for _, v := range venues {
			tag, err := tx.Exec(ctx, `
				INSERT INTO venues (id, name, created_at) VALUES ($1, $2, $3)
				ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
			`, v.ID, v.Name, v.CreatedAt)
			if err != nil {
				return fmt.Errorf("upserting venue %s: %w", v.ID, err)
			}
			n += tag.RowsAffected()
		}
		return nil
	})
	return n, err
}

func (s *Store) InsertFeedbackEvents(ctx context.Context, events []models.FeedbackEvent) (int64, error) {
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{e.VenueID, e.SessionID, e.Rating, e.CreatedAt, e.ResolvedAt, e.IsActioned})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"feedback_events"}, []string{"venue_id", "session_id", "rating", "created_at", "resolved_at", "is_actioned"}, pgx.CopyFromRows(rows))
}

func (s *Store) InsertAssistanceEvents(ctx context.Context, events []models.AssistanceEvent) (int64, error) {
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{e.VenueID, e.CreatedAt, e.AcknowledgedAt, e.ResolvedAt})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"assistance_events"}, []string{"venue_id", "created_at", "acknowledged_at", "resolved_at"}, pgx.CopyFromRows(rows))
}

func (s *Store) InsertNPSSubmissions(ctx context.Context, subs []models.NPSSubmission) (int64, error) {
	rows := make([][]any, 0, len(subs))
	for _, n := range subs {
		rows = append(rows, []any{n.VenueID, n.Score, n.CreatedAt, n.SentAt, n.RespondedAt, n.SendError})
	}
	return s.Pool.CopyFrom(ctx, pgx.Identifier{"nps_submissions"}, []string{"venue_id", "score", "created_at", "sent_at", "responded_at", "send_error"}, pgx.CopyFromRows(rows))
}

func (s *Store) ListVenues(ctx context.Context) ([]models.Venue, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id, name, created_at FROM venues ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Venue
	for rows.Next() {
		var v models.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// eventQuery selects cols from table for rows created in [from, to). An
// empty venueIDs matches every venue.
func eventQuery(table string, cols []string, venueIDs []string, from, to time.Time) (string, []any) {
	query := "SELECT " + strings.Join(cols, ", ") + " FROM " + table
	args := []any{from, to}
	wheres := []string{"created_at >= $1 AND created_at < $2"}
	if len(venueIDs) > 0 {
		args = append(args, venueIDs)
		wheres = append(wheres, fmt.Sprintf("venue_id = ANY($%d)", len(args)))
	}
	query += " WHERE " + strings.Join(wheres, " AND ") + " ORDER BY created_at ASC, id ASC"
	return query, args
}

func (s *Store) ListFeedbackEvents(ctx context.Context, venueIDs []string, from, to time.Time) ([]models.FeedbackEvent, error) {
	query, args := eventQuery("feedback_events",
		[]string{"venue_id", "session_id", "rating", "created_at", "resolved_at", "is_actioned"},
		venueIDs, from, to)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FeedbackEvent
	for rows.Next() {
		var e models.FeedbackEvent
		if err := rows.Scan(&e.VenueID, &e.SessionID, &e.Rating, &e.CreatedAt, &e.ResolvedAt, &e.IsActioned); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListAssistanceEvents(ctx context.Context, venueIDs []string, from, to time.Time) ([]models.AssistanceEvent, error) {
	query, args := eventQuery("assistance_events",
		[]string{"venue_id", "created_at", "acknowledged_at", "resolved_at"},
		venueIDs, from, to)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AssistanceEvent
	for rows.Next() {
		var e models.AssistanceEvent
		if err := rows.Scan(&e.VenueID, &e.CreatedAt, &e.AcknowledgedAt, &e.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ListNPSSubmissions(ctx context.Context, venueIDs []string, from, to time.Time) ([]models.NPSSubmission, error) {
	query, args := eventQuery("nps_submissions",
		[]string{"venue_id", "score", "created_at", "sent_at", "responded_at", "send_error"},
		venueIDs, from, to)
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.NPSSubmission
	for rows.Next() {
		var n models.NPSSubmission
		if err := rows.Scan(&n.VenueID, &n.Score, &n.CreatedAt, &n.SentAt, &n.RespondedAt, &n.SendError); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CreateImportRun(ctx context.Context, kind string) (string, error) {
	id := uuid.NewString()
	_, err := s.Pool.Exec(ctx, `INSERT INTO import_runs (id, kind, status, started_at) VALUES ($1, $2, $3, NOW())`, id, kind, RunRunning)
	return id, err
}

func (s *Store) FinishImportRun(ctx context.Context, runID string, status string, rows int64, runErr error) error {
	var msg *string
	if runErr != nil {
		m := runErr.Error()
		msg = &m
	}
	_, err := s.Pool.Exec(ctx, `UPDATE import_runs SET status = $1, rows = $2, error = $3, finished_at = NOW() WHERE id = $4`, status, rows, msg, runID)
	return err
}

func (s *Store) GetLatestImportRun(ctx context.Context) (models.ImportRun, error) {
	var r models.ImportRun
	err := s.Pool.QueryRow(ctx, `SELECT id, kind, status, rows, error, started_at, finished_at FROM import_runs ORDER BY started_at DESC LIMIT 1`).
		Scan(&r.ID, &r.Kind, &r.Status, &r.Rows, &r.Error, &r.StartedAt, &r.FinishedAt)
	return r, err
}
