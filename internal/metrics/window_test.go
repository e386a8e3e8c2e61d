package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lastMilli(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

func TestResolveRangePresets(t *testing.T) {
	tests := []struct {
		preset Preset
		start  time.Time
		end    time.Time
	}{
		{PresetToday, date(2024, 3, 15), lastMilli(2024, 3, 15)},
		{PresetYesterday, date(2024, 3, 14), lastMilli(2024, 3, 14)},
		{PresetLast7, date(2024, 3, 9), lastMilli(2024, 3, 15)},
		{PresetLast14, date(2024, 3, 2), lastMilli(2024, 3, 15)},
		{PresetLast30, date(2024, 2, 15), lastMilli(2024, 3, 15)},
		{PresetAll, date(2023, 3, 15), lastMilli(2024, 3, 15)},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			w, err := ResolveRange(tt.preset, testNow, time.Time{}, time.Time{})
			require.NoError(t, err)
			assert.True(t, tt.start.Equal(w.Start), "start: got %s", w.Start)
			assert.True(t, tt.end.Equal(w.End), "end: got %s", w.End)
		})
	}
}

func TestResolveRangeCustomIgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2024, 1, 5, 13, 45, 10, 0, time.UTC)
	to := time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC)

	w, err := ResolveRange(PresetCustom, testNow, from, to)
	require.NoError(t, err)
	assert.True(t, date(2024, 1, 5).Equal(w.Start))
	assert.True(t, lastMilli(2024, 1, 7).Equal(w.End))
}

func TestResolveRangeUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, 3, 15, 1, 0, 0, 0, loc)

	w, err := ResolveRange(PresetToday, now, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, loc), w.Start)
}

func TestResolveRangeInvalid(t *testing.T) {
	_, err := ResolveRange(PresetCustom, testNow, date(2024, 2, 10), date(2024, 2, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRange))

	var rangeErr *InvalidRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, PresetCustom, rangeErr.Preset)

	_, err = ResolveRange("last90", testNow, time.Time{}, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = ResolveRange(PresetCustom, testNow, time.Time{}, date(2024, 2, 1))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestComparisonWindowLast7(t *testing.T) {
	w, err := ResolveRange(PresetLast7, testNow, time.Time{}, time.Time{})
	require.NoError(t, err)

	c := ComparisonWindow(w)
	assert.True(t, date(2024, 3, 2).Equal(c.Start), "start: got %s", c.Start)
	assert.True(t, lastMilli(2024, 3, 8).Equal(c.End), "end: got %s", c.End)
	assert.Equal(t, time.Millisecond, w.Start.Sub(c.End))
}

func TestComparisonWindowNeverOverlaps(t *testing.T) {
	for n := 1; n <= 400; n++ {
		from := date(2024, 3, 15).AddDate(0, 0, -(n - 1))
		w, err := ResolveRange(PresetCustom, testNow, from, testNow)
		require.NoError(t, err)

		c := ComparisonWindow(w)
		require.True(t, c.End.Before(w.Start), "n=%d overlaps", n)
		diff := c.Duration() - w.Duration()
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, time.Millisecond, "n=%d duration mismatch", n)
	}
}

func TestComparisonWindowAcrossDSTKeepsWholeDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// clocks skip 02:00 to 03:00 on 2024-03-10
	now := time.Date(2024, 3, 15, 12, 30, 0, 0, ny)
	w, err := ResolveRange(PresetLast7, now, time.Time{}, time.Time{})
	require.NoError(t, err)

	c := ComparisonWindow(w)
	assert.True(t, time.Date(2024, 3, 2, 0, 0, 0, 0, ny).Equal(c.Start), "start: got %s", c.Start)
	assert.True(t, time.Date(2024, 3, 8, 23, 59, 59, int(999*time.Millisecond), ny).Equal(c.End), "end: got %s", c.End)
	// both cover seven calendar days, so the previous week is one wall hour longer
	assert.Equal(t, time.Hour, c.Duration()-w.Duration())
}

func TestInvalidRangeErrorMessage(t *testing.T) {
	err := &InvalidRangeError{Reason: "end must be after start"}
	assert.Equal(t, "invalid date range: end must be after start", err.Error())

	err = &InvalidRangeError{Preset: PresetCustom, Reason: "custom range requires from and to"}
	assert.Equal(t, `invalid date range "custom": custom range requires from and to`, err.Error())

	_, buildErr := Build(Input{Now: testNow, Window: Window{Start: testNow, End: testNow}})
	require.Error(t, buildErr)
	assert.NotContains(t, buildErr.Error(), `""`)
}
