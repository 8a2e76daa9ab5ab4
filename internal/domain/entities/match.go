package entities

import "time"

// MatchStatus represents the state of a suggested match
type MatchStatus string

const (
	MatchStatusSuggested MatchStatus = "suggested"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusDeclined  MatchStatus = "declined"
)

// Match represents a suggested pairing between two of a user's connections.
// Matches are produced by a stored procedure over the connection graph; the
// API lists them and records responses.
type Match struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	FirstID     string      `json:"first_id"`
	SecondID    string      `json:"second_id"`
	Score       float64     `json:"score"`
	Status      MatchStatus `json:"status"`
	RespondedAt *time.Time  `json:"responded_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
