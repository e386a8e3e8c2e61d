package metrics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionNeutral Direction = "neutral"
)

type TrendResult struct {
	Value     string    `json:"value"`
	Direction Direction `json:"direction"`
}

var neutralTrend = TrendResult{Value: "~0%", Direction: DirectionNeutral}

// Trend compares current against previous. It returns nil when either side
// is missing. A zero baseline reports the raw delta since no percentage
// exists; changes under 1% are neutral. For LowerIsBetter metrics a decrease
// points up.
func Trend(current, previous *float64, p Polarity) *TrendResult {
	if current == nil || previous == nil || math.IsNaN(*current) || math.IsNaN(*previous) {
		return nil
	}
	cur, prev := *current, *previous

	if prev == 0 {
		if cur == 0 {
			t := neutralTrend
			return &t
		}
		return &TrendResult{
			Value:     signed(round1(cur)),
			Direction: direction(cur, p),
		}
	}

	pct := 100 * (cur - prev) / math.Abs(prev)
	if math.Abs(pct) < 1 {
		t := neutralTrend
		return &t
	}
	return &TrendResult{
		Value:     fmt.Sprintf("%+d%%", int64(math.Round(pct))),
		Direction: direction(pct, p),
	}
}

func direction(delta float64, p Polarity) Direction {
	up := delta > 0
	if p == LowerIsBetter {
		up = !up
	}
	if up {
		return DirectionUp
	}
	return DirectionDown
}

func signed(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v > 0 {
		return "+" + s
	}
	return s
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}
