package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForecastExtendsLine(t *testing.T) {
	assert.Equal(t, []float64{4, 5}, Forecast(series(1, 2, 3), 2))
}

func TestForecastSkipsNilPoints(t *testing.T) {
	in := []*float64{nil, f(2), nil, f(4)}
	assert.Equal(t, []float64{5, 6}, Forecast(in, 2))
}

func TestForecastClampsAtZero(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, Forecast(series(3, 2, 1), 3))
}

func TestForecastNeedsTwoPoints(t *testing.T) {
	assert.Nil(t, Forecast(series(5), 3))
	assert.Nil(t, Forecast([]*float64{nil, f(1), nil}, 3))
	assert.Nil(t, Forecast(series(1, 2), 0))
}
