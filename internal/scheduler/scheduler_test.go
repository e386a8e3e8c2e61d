package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPurger struct{ n int }

func (p *countingPurger) InvalidateAll() { p.n++ }

func TestStartSchedulesAtMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	s := New("0 0 * * *", loc, &countingPurger{}, zerolog.Nop())
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	next := s.Next().In(loc)
	assert.False(t, next.IsZero())
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 0, next.Minute())
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New("every day", time.UTC, &countingPurger{}, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestEmptyScheduleDisables(t *testing.T) {
	s := New("", nil, &countingPurger{}, zerolog.Nop())
	require.NoError(t, s.Start())
	assert.True(t, s.Next().IsZero())
	s.Stop(context.Background())
}

func TestPurgeInvalidates(t *testing.T) {
	p := &countingPurger{}
	s := New("0 0 * * *", time.UTC, p, zerolog.Nop())
	s.purge()
	assert.Equal(t, 1, p.n)
}
