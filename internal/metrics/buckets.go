package metrics

import (
	"math"
	"time"
)

const (
	day = 24 * time.Hour

	// MaxPoints bounds the length of every sparkline.
	MaxPoints = 30
)

// Plan is the bucket layout for one window.
type Plan struct {
	Window    Window
	NumPoints int
	Interval  time.Duration
}

// Bucket is the half-open interval [Start, End).
type Bucket struct {
	Start time.Time
	End   time.Time
}

// RangeDays is the window length rounded up to whole days.
func RangeDays(w Window) int {
	d := w.Duration()
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// PlanBuckets picks daily buckets for short windows, 2-day buckets past 30
// days and weekly buckets past 60 days, then widens the interval until no
// more than MaxPoints buckets remain.
func PlanBuckets(w Window) Plan {
	rangeDays := RangeDays(w)

	numPoints := rangeDays
	interval := day
	if rangeDays > 60 {
		numPoints = ceilDiv(rangeDays, 7)
		interval = 7 * day
	} else if rangeDays > 30 {
		numPoints = ceilDiv(rangeDays, 2)
		interval = 2 * day
	}

	if numPoints > MaxPoints {
		factor := ceilDiv(numPoints, MaxPoints)
		numPoints = ceilDiv(numPoints, factor)
		interval *= time.Duration(factor)
	}
	if numPoints < 1 {
		numPoints = 1
	}
	return Plan{Window: w, NumPoints: numPoints, Interval: interval}
}

// Buckets lays the plan out from the window start. The last bucket is
// clipped to the window's exclusive bound.
func (p Plan) Buckets() []Bucket {
	bound := p.Window.Bound()
	out := make([]Bucket, 0, p.NumPoints)
	for i := 0; i < p.NumPoints; i++ {
		start := p.Window.Start.Add(time.Duration(i) * p.Interval)
		if !start.Before(bound) {
			break
		}
		end := start.Add(p.Interval)
		if i == p.NumPoints-1 || end.After(bound) {
			end = bound
		}
		out = append(out, Bucket{Start: start, End: end})
	}
	return out
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
