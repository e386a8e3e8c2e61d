package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepulse/backend/internal/models"
)

func TestEventQuery(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	q, args := eventQuery("feedback_events", []string{"venue_id", "created_at"}, nil, from, to)
	assert.Equal(t, "SELECT venue_id, created_at FROM feedback_events WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at ASC, id ASC", q)
	assert.Equal(t, []any{from, to}, args)

	q, args = eventQuery("nps_submissions", []string{"venue_id"}, []string{"a", "b"}, from, to)
	assert.Equal(t, "SELECT venue_id FROM nps_submissions WHERE created_at >= $1 AND created_at < $2 AND venue_id = ANY($3) ORDER BY created_at ASC, id ASC", q)
	assert.Equal(t, []any{from, to, []string{"a", "b"}}, args)
}

func TestStoreRoundTrip(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := New(ctx, dbURL)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Migrate(ctx))

	venueID := "test-" + uuid.NewString()
	_, err = store.InsertVenues(ctx, []models.Venue{{ID: venueID, Name: "Harbour Bar", CreatedAt: time.Now()}})
	require.NoError(t, err)

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rating := 4
	resolved := day.Add(2 * time.Hour)
	n, err := store.InsertFeedbackEvents(ctx, []models.FeedbackEvent{
		{VenueID: venueID, SessionID: "s1", Rating: &rating, CreatedAt: day.Add(time.Hour), ResolvedAt: &resolved, IsActioned: true},
		{VenueID: venueID, SessionID: "s2", CreatedAt: day.AddDate(0, 0, 3)},
		// sub-millisecond tail of the day still belongs to it
		{VenueID: venueID, SessionID: "s3", CreatedAt: day.Add(24*time.Hour - time.Microsecond)},
		{VenueID: venueID, SessionID: "s4", CreatedAt: day.AddDate(0, 0, 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	_, err = store.InsertAssistanceEvents(ctx, []models.AssistanceEvent{{VenueID: venueID, CreatedAt: day.Add(3 * time.Hour)}})
	require.NoError(t, err)
	score := 9
	_, err = store.InsertNPSSubmissions(ctx, []models.NPSSubmission{{VenueID: venueID, Score: &score, CreatedAt: day}})
	require.NoError(t, err)

	end := day.AddDate(0, 0, 1)
	fb, err := store.ListFeedbackEvents(ctx, []string{venueID}, day, end)
	require.NoError(t, err)
	require.Len(t, fb, 2)
	assert.Equal(t, "s1", fb[0].SessionID)
	assert.Equal(t, "s3", fb[1].SessionID)
	require.NotNil(t, fb[0].Rating)
	assert.Equal(t, 4, *fb[0].Rating)
	require.NotNil(t, fb[0].ResolvedAt)
	assert.True(t, resolved.Equal(*fb[0].ResolvedAt))

	ae, err := store.ListAssistanceEvents(ctx, []string{venueID}, day, end)
	require.NoError(t, err)
	require.Len(t, ae, 1)
	assert.Nil(t, ae[0].ResolvedAt)

	nps, err := store.ListNPSSubmissions(ctx, []string{venueID}, day, end)
	require.NoError(t, err)
	require.Len(t, nps, 1)
	assert.Nil(t, nps[0].SentAt)

	runID, err := store.CreateImportRun(ctx, "feedback")
	require.NoError(t, err)
	require.NoError(t, store.FinishImportRun(ctx, runID, RunSucceeded, 4, nil))
	run, err := store.GetLatestImportRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, RunSucceeded, run.Status)
}
