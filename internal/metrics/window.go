package metrics

import (
	"errors"
	"fmt"
	"time"
)

type Preset string

const (
	PresetToday     Preset = "today"
	PresetYesterday Preset = "yesterday"
	PresetLast7     Preset = "last7"
	PresetLast14    Preset = "last14"
	PresetLast30    Preset = "last30"
	PresetAll       Preset = "all"
	PresetCustom    Preset = "custom"
)

// Presets lists every preset ResolveRange accepts.
var Presets = []Preset{
	PresetToday, PresetYesterday, PresetLast7, PresetLast14,
	PresetLast30, PresetAll, PresetCustom,
}

var ErrInvalidRange = errors.New("invalid date range")

type InvalidRangeError struct {
	Preset Preset
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	msg := "invalid date range"
	if e.Preset != "" {
		msg += fmt.Sprintf(" %q", e.Preset)
	}
	if !e.Start.IsZero() || !e.End.IsZero() {
		msg += fmt.Sprintf(" [%s, %s]", e.Start.Format(time.RFC3339Nano), e.End.Format(time.RFC3339Nano))
	}
	return msg + ": " + e.Reason
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// Window is a reporting period. End is inclusive: resolved windows end at
// 23:59:59.999 of their last calendar day.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration is End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Bound is the exclusive upper bound of the window, one millisecond past End.
func (w Window) Bound() time.Time {
	return w.End.Add(time.Millisecond)
}

// ResolveRange maps a preset to an absolute window. Calendar days are taken
// in now's location. from and to are only read for PresetCustom, and only
// their calendar dates matter.
func ResolveRange(preset Preset, now, from, to time.Time) (Window, error) {
	loc := now.Location()
	today := startOfDay(now)

	var w Window
	switch preset {
	case PresetToday:
		w = Window{Start: today, End: endOfDay(today)}
	case PresetYesterday:
		day := today.AddDate(0, 0, -1)
		w = Window{Start: day, End: endOfDay(day)}
	case PresetLast7:
		w = trailingDays(today, 7)
	case PresetLast14:
		w = trailingDays(today, 14)
	case PresetLast30:
		w = trailingDays(today, 30)
	case PresetAll:
		w = Window{Start: today.AddDate(-1, 0, 0), End: endOfDay(today)}
	case PresetCustom:
		if from.IsZero() || to.IsZero() {
			return Window{}, &InvalidRangeError{Preset: preset, Reason: "custom range requires from and to"}
		}
		start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
		end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)
		w = Window{Start: start, End: endOfDay(end)}
	default:
		return Window{}, &InvalidRangeError{Preset: preset, Reason: "unknown preset"}
	}

	if !w.End.After(w.Start) {
		return Window{}, &InvalidRangeError{Preset: preset, Start: w.Start, End: w.End, Reason: "end must be after start"}
	}
	return w, nil
}

// ComparisonWindow returns the equal-length window ending 1ms before w
// starts, snapped to whole calendar days.
func ComparisonWindow(w Window) Window {
	end := w.Start.Add(-time.Millisecond)
	start := end.Add(-w.Duration())
	return Window{Start: startOfDay(start), End: endOfDay(end)}
}

func trailingDays(today time.Time, n int) Window {
	return Window{Start: today.AddDate(0, 0, -(n - 1)), End: endOfDay(today)}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
