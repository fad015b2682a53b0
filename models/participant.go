package models

import "time"

// ParticipantStatus represents participant lifecycle states, matching the ENUM in the DB.
type ParticipantStatus string

const (
	ParticipantActive       ParticipantStatus = "active"
	ParticipantWithdrawn    ParticipantStatus = "withdrawn"
	ParticipantDisqualified ParticipantStatus = "disqualified"
)

// Participant is a tournament entry. SeedRating is captured once at
// registration and never updated afterwards; withdrawn and disqualified
// participants are skipped by the pairing engine but stay in historical
// standings so opponents' tie-breaks remain correct.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	UserID       int               `json:"user_id" db:"user_id"`
	SeedRating   int               `json:"seed_rating" db:"seed_rating"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`

	// Optional linked data, populated by services when needed.
	User *User `json:"user,omitempty" db:"-"`
}

// IsActive reports whether the participant can still be paired.
func (p *Participant) IsActive() bool {
	return p.Status == ParticipantActive
}

type User struct {
	ID          int    `json:"id" db:"id"`
	DisplayName string `json:"display_name" db:"display_name"`
	Rating      *int   `json:"rating,omitempty" db:"rating"`
}
