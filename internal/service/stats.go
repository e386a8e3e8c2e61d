package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/venuepulse/backend/internal/cache"
	"github.com/venuepulse/backend/internal/metrics"
	"github.com/venuepulse/backend/internal/models"
)

// EventSource loads raw rows for aggregation. The List methods return rows
// created in [from, to). *db.Store satisfies it.
type EventSource interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
	ListFeedbackEvents(ctx context.Context, venueIDs []string, from, to time.Time) ([]models.FeedbackEvent, error)
	ListAssistanceEvents(ctx context.Context, venueIDs []string, from, to time.Time) ([]models.AssistanceEvent, error)
	ListNPSSubmissions(ctx context.Context, venueIDs []string, from, to time.Time) ([]models.NPSSubmission, error)
}

type StatsService struct {
	Source EventSource
	Cache  cache.Cache[metrics.Snapshot]
	Logger zerolog.Logger
	// Location decides where calendar days start. Defaults to UTC.
	Location        *time.Location
	Now             func() time.Time
	Workers         int
	ForecastHorizon int
}

type StatsRequest struct {
	VenueIDs  []string
	Preset    metrics.Preset
	From      time.Time
	To        time.Time
	Normalize bool
}

// VenueStats computes the dashboard snapshot for the requested venues. An
// empty VenueIDs means every known venue.
func (s *StatsService) VenueStats(ctx context.Context, req StatsRequest) (metrics.Snapshot, error) {
	now := s.now()
	if req.Preset == "" {
		req.Preset = metrics.PresetLast7
	}
	window, err := metrics.ResolveRange(req.Preset, now, req.From, req.To)
	if err != nil {
		return metrics.Snapshot{}, err
	}

	venueIDs := req.VenueIDs
	if len(venueIDs) == 0 {
		venues, err := s.Source.ListVenues(ctx)
		if err != nil {
			return metrics.Snapshot{}, fmt.Errorf("listing venues: %w", err)
		}
		for _, v := range venues {
			venueIDs = append(venueIDs, v.ID)
		}
	}

	key := cache.Key(venueIDs, now,
		string(req.Preset),
		window.Start.Format(time.RFC3339),
		window.End.Format(time.RFC3339),
		strconv.FormatBool(req.Normalize),
	)
	if s.Cache != nil {
		if snap, ok := s.Cache.Get(key); ok {
			s.Logger.Debug().Str("key", key).Msg("stats cache hit")
			return snap, nil
		}
	}

	compare := metrics.ComparisonWindow(window)
	events, err := s.load(ctx, venueIDs, compare.Start, window.Bound())
	if err != nil {
		return metrics.Snapshot{}, err
	}

	start := time.Now()
	snap, err := metrics.Build(metrics.Input{
		Now:      now,
		Window:   window,
		VenueIDs: venueIDs,
		Events:   events,
		Options: metrics.Options{
			Normalize:       req.Normalize,
			Workers:         s.Workers,
			ForecastHorizon: s.ForecastHorizon,
		},
	})
	if err != nil {
		return metrics.Snapshot{}, err
	}
	s.Logger.Info().
		Str("range", string(req.Preset)).
		Int("venues", len(venueIDs)).
		Int("feedback", len(events.Feedback)).
		Int("assistance", len(events.Assistance)).
		Int("nps", len(events.NPS)).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("stats computed")

	if s.Cache != nil {
		s.Cache.Set(key, snap)
	}
	return snap, nil
}

// InvalidateAll drops every cached snapshot.
func (s *StatsService) InvalidateAll() {
	if s.Cache == nil {
		return
	}
	s.Cache.Purge()
	s.Logger.Info().Msg("stats cache purged")
}

func (s *StatsService) load(ctx context.Context, venueIDs []string, from, to time.Time) (metrics.Events, error) {
	var events metrics.Events
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.Source.ListFeedbackEvents(ctx, venueIDs, from, to)
		if err != nil {
			return fmt.Errorf("loading feedback: %w", err)
		}
		events.Feedback = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.Source.ListAssistanceEvents(ctx, venueIDs, from, to)
		if err != nil {
			return fmt.Errorf("loading assistance: %w", err)
		}
		events.Assistance = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.Source.ListNPSSubmissions(ctx, venueIDs, from, to)
		if err != nil {
			return fmt.Errorf("loading nps: %w", err)
		}
		events.NPS = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return metrics.Events{}, err
	}
	return events, nil
}

func (s *StatsService) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}
