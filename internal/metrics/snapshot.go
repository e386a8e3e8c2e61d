package metrics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// ISOMillis is the timestamp layout used on the wire.
const ISOMillis = "2006-01-02T15:04:05.000Z07:00"

type Options struct {
	// Normalize rescales every sparkline into the 0..100 display band.
	Normalize bool
	// Workers bounds the per-venue fan-out. Zero means unbounded.
	Workers int
	// ForecastHorizon is the number of buckets projected past the window.
	ForecastHorizon int
}

// Input is everything one snapshot is computed from. Events must cover both
// the window and its comparison period.
type Input struct {
	Now      time.Time
	Window   Window
	VenueIDs []string
	Events   Events
	Options  Options
}

type MetricResult struct {
	Value     *float64
	Trend     *TrendResult
	Sparkline []*float64
}

type VenueStats struct {
	Totals     map[Kind]*float64     `json:"totals"`
	Trends     map[Kind]*TrendResult `json:"trends"`
	Sparklines map[Kind][]*float64   `json:"sparklines"`
}

type Snapshot struct {
	GeneratedAt      time.Time
	Period           Window
	ComparePeriod    Window
	BucketInterval   time.Duration
	Metrics          map[Kind]MetricResult
	SparklineDates   []string
	NPSBreakdown     NPSBreakdown
	SessionsForecast []float64
	PerVenue         map[string]VenueStats
}

// Build computes the dashboard snapshot for in.Window. When more than one
// venue is requested each venue is aggregated separately over the same
// buckets, concurrently, alongside the portfolio totals.
func Build(in Input) (Snapshot, error) {
	if !in.Window.End.After(in.Window.Start) {
		return Snapshot{}, &InvalidRangeError{Start: in.Window.Start, End: in.Window.End, Reason: "end must be after start"}
	}

	compare := ComparisonWindow(in.Window)
	plan := PlanBuckets(in.Window)
	buckets := plan.Buckets()

	snap := Snapshot{
		GeneratedAt:    in.Now,
		Period:         in.Window,
		ComparePeriod:  compare,
		BucketInterval: plan.Interval,
		Metrics:        aggregate(in.Events, in.Window, compare, buckets),
		SparklineDates: make([]string, len(buckets)),
		NPSBreakdown:   ScoreNPS(in.Events.Within(in.Window.Start, in.Window.Bound()).NPS),
	}
	for i, b := range buckets {
		snap.SparklineDates[i] = b.Start.UTC().Format(ISOMillis)
	}
	snap.SessionsForecast = Forecast(snap.Metrics[KindSessions].Sparkline, in.Options.ForecastHorizon)
	if in.Options.Normalize {
		normalizeAll(snap.Metrics)
	}

	venueIDs := distinct(in.VenueIDs)
	if len(venueIDs) < 2 {
		return snap, nil
	}

	results := make([]map[Kind]MetricResult, len(venueIDs))
	var g errgroup.Group
	if in.Options.Workers > 0 {
		g.SetLimit(in.Options.Workers)
	}
	for i, id := range venueIDs {
		i, id := i, id
		g.Go(func() error {
			results[i] = aggregate(in.Events.ForVenue(id), in.Window, compare, buckets)
			if in.Options.Normalize {
				normalizeAll(results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("aggregating venues: %w", err)
	}

	snap.PerVenue = make(map[string]VenueStats, len(venueIDs))
	for i, id := range venueIDs {
		vs := VenueStats{
			Totals:     make(map[Kind]*float64, len(results[i])),
			Trends:     make(map[Kind]*TrendResult, len(results[i])),
			Sparklines: make(map[Kind][]*float64, len(results[i])),
		}
		for kind, r := range results[i] {
			vs.Totals[kind] = r.Value
			vs.Trends[kind] = r.Trend
			vs.Sparklines[kind] = r.Sparkline
		}
		snap.PerVenue[id] = vs
	}
	return snap, nil
}

// aggregate runs every registered metric over the window, its comparison
// period and each bucket.
func aggregate(events Events, w, compare Window, buckets []Bucket) map[Kind]MetricResult {
	current := events.Within(w.Start, w.Bound())
	previous := events.Within(compare.Start, compare.Bound())

	perBucket := make([]Events, len(buckets))
	for i, b := range buckets {
		perBucket[i] = current.Within(b.Start, b.End)
	}

	out := make(map[Kind]MetricResult, len(Registry))
	for _, m := range Registry {
		cur := m.Value(current)
		series := make([]*float64, len(buckets))
		for i := range perBucket {
			series[i] = roundPtr(m.Point(perBucket[i]))
		}
		out[m.Kind] = MetricResult{
			Value:     roundPtr(cur),
			Trend:     Trend(cur, m.Value(previous), m.Polarity),
			Sparkline: series,
		}
	}
	return out
}

func normalizeAll(results map[Kind]MetricResult) {
	for kind, r := range results {
		r.Sparkline = NormalizeSparkline(r.Sparkline)
		results[kind] = r
	}
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(round1(*v))
}

type windowJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (w Window) MarshalJSON() ([]byte, error) {
	return json.Marshal(windowJSON{
		Start: w.Start.UTC().Format(ISOMillis),
		End:   w.End.UTC().Format(ISOMillis),
	})
}

// MarshalJSON flattens metrics into <metric>, <metric>Trend and
// <metric>Sparkline keys.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Metrics)*3+8)
	for kind, r := range s.Metrics {
		k := string(kind)
		out[k] = r.Value
		out[k+"Trend"] = r.Trend
		out[k+"Sparkline"] = r.Sparkline
	}
	out["sparklineDates"] = s.SparklineDates
	out["generatedAt"] = s.GeneratedAt.UTC().Format(ISOMillis)
	out["period"] = s.Period
	out["comparePeriod"] = s.ComparePeriod
	out["bucketIntervalMs"] = s.BucketInterval.Milliseconds()
	out["npsBreakdown"] = s.NPSBreakdown
	out["sessionsForecast"] = s.SessionsForecast
	if s.PerVenue != nil {
		out["perVenue"] = s.PerVenue
	}
	return json.Marshal(out)
}
