package metrics

import (
	"time"

	"github.com/venuepulse/backend/internal/models"
)

// Events holds the raw rows one aggregation runs over.
type Events struct {
	Feedback   []models.FeedbackEvent
	Assistance []models.AssistanceEvent
	NPS        []models.NPSSubmission
}

// Within keeps the events whose CreatedAt falls in [start, end).
func (e Events) Within(start, end time.Time) Events {
	var out Events
	for _, f := range e.Feedback {
		if inBucket(f.CreatedAt, start, end) {
			out.Feedback = append(out.Feedback, f)
		}
	}
	for _, a := range e.Assistance {
		if inBucket(a.CreatedAt, start, end) {
			out.Assistance = append(out.Assistance, a)
		}
	}
	for _, n := range e.NPS {
		if inBucket(n.CreatedAt, start, end) {
			out.NPS = append(out.NPS, n)
		}
	}
	return out
}

// ForVenue keeps the events of a single venue.
func (e Events) ForVenue(venueID string) Events {
	var out Events
	for _, f := range e.Feedback {
		if f.VenueID == venueID {
			out.Feedback = append(out.Feedback, f)
		}
	}
	for _, a := range e.Assistance {
		if a.VenueID == venueID {
			out.Assistance = append(out.Assistance, a)
		}
	}
	for _, n := range e.NPS {
		if n.VenueID == venueID {
			out.NPS = append(out.NPS, n)
		}
	}
	return out
}

func inBucket(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// feedbackSession folds the events sharing one session id.
type feedbackSession struct {
	createdAt  time.Time
	resolvedAt *time.Time
	resolved   bool
}

type sessionKey struct {
	venueID   string
	sessionID string
}

// sessions groups feedback by (venue, session). A session takes its
// earliest CreatedAt and latest ResolvedAt, and counts as resolved once any
// of its events is both resolved and actioned. Output order follows the
// first appearance of each session.
func sessions(feedback []models.FeedbackEvent) []feedbackSession {
	index := make(map[sessionKey]int, len(feedback))
	var out []feedbackSession
	for _, f := range feedback {
		key := sessionKey{venueID: f.VenueID, sessionID: f.SessionID}
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, feedbackSession{createdAt: f.CreatedAt})
			i = len(out) - 1
		}
		s := &out[i]
		if f.CreatedAt.Before(s.createdAt) {
			s.createdAt = f.CreatedAt
		}
		if f.ResolvedAt != nil {
			if s.resolvedAt == nil || f.ResolvedAt.After(*s.resolvedAt) {
				r := *f.ResolvedAt
				s.resolvedAt = &r
			}
			if f.IsActioned {
				s.resolved = true
			}
		}
	}
	return out
}
