package models

import "time"

type Venue struct {
	ID        string    `json:"id" validate:"required,max=64"`
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackEvent is one answer within a guest feedback session. Several
// events share a SessionID.
type FeedbackEvent struct {
	VenueID    string     `json:"venue_id" validate:"required"`
	SessionID  string     `json:"session_id" validate:"required"`
	Rating     *int       `json:"rating" validate:"omitnil,min=1,max=5"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at"`
	IsActioned bool       `json:"is_actioned"`
}

// AssistanceEvent is a single assistance request; one row is one session.
type AssistanceEvent struct {
	VenueID        string     `json:"venue_id" validate:"required"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
}

type NPSSubmission struct {
	VenueID     string     `json:"venue_id" validate:"required"`
	Score       *int       `json:"score" validate:"omitnil,min=0,max=10"`
	CreatedAt   time.Time  `json:"created_at"`
	SentAt      *time.Time `json:"sent_at"`
	RespondedAt *time.Time `json:"responded_at"`
	SendError   *string    `json:"send_error"`
}

// ImportRun records one CSV import.
type ImportRun struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Rows       int64      `json:"rows"`
	Error      *string    `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
