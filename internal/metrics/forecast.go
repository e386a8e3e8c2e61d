package metrics

import "math"

// Forecast fits a least-squares line through the non-nil points, indexed by
// bucket position, and extends it horizon buckets past the end of the
// series. Projections are clamped at zero. Fewer than two points give no
// forecast.
func Forecast(series []*float64, horizon int) []float64 {
	if horizon <= 0 {
		return nil
	}
	var sumX, sumY, sumXY, sumX2, n float64
	for i, v := range series {
		if v == nil {
			continue
		}
		x := float64(i)
		sumX += x
		sumY += *v
		sumXY += x * *v
		sumX2 += x * x
		n++
	}
	if n < 2 {
		return nil
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return nil
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	out := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		x := float64(len(series) + h)
		out[h] = round1(math.Max(0, intercept+slope*x))
	}
	return out
}
