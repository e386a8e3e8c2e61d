package metrics

import "math"

const (
	flatLevel = 50
	maxSwing  = 40
)

// NormalizeSparkline rescales a series into the 0..100 display band. A
// series with no variation sits flat at 50. Otherwise the swing grows with
// the coefficient of variation, capped at 40 points and centred on 50, so a
// 98-100% completion rate still draws a visible line while staying smaller
// than a genuinely volatile one. Nil points stay nil.
func NormalizeSparkline(series []*float64) []*float64 {
	out := make([]*float64, len(series))

	var (
		lo, hi, sum float64
		n           int
	)
	for _, v := range series {
		if v == nil {
			continue
		}
		if n == 0 || *v < lo {
			lo = *v
		}
		if n == 0 || *v > hi {
			hi = *v
		}
		sum += *v
		n++
	}
	if n == 0 {
		return out
	}

	if hi-lo < 0.001 {
		for i, v := range series {
			if v != nil {
				out[i] = ptr(flatLevel)
			}
		}
		return out
	}

	avg := sum / float64(n)
	var cv float64
	if avg != 0 {
		cv = (hi - lo) / math.Abs(avg)
	}
	swing := math.Min(maxSwing, cv*200)
	baseline := flatLevel - swing/2

	for i, v := range series {
		if v == nil {
			continue
		}
		out[i] = ptr(baseline + (*v-lo)/(hi-lo)*swing)
	}
	return out
}
