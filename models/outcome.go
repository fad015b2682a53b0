package models

import "time"

// Seat identifies which side of a game a participant occupied.
type Seat string

const (
	SeatWhite Seat = "white"
	SeatBlack Seat = "black"
)

// Opposite returns the other seat.
func (s Seat) Opposite() Seat {
	if s == SeatWhite {
		return SeatBlack
	}
	return SeatWhite
}

// GameResult represents game outcomes, matching the ENUM in the DB.
// The set is closed: the score model handles every variant exhaustively.
type GameResult string

const (
	ResultWhiteWin        GameResult = "white_win"
	ResultBlackWin        GameResult = "black_win"
	ResultDraw            GameResult = "draw"
	ResultWhiteForfeitWin GameResult = "white_forfeit_win"
	ResultBlackForfeitWin GameResult = "black_forfeit_win"
	ResultDoubleForfeit   GameResult = "double_forfeit"
	ResultBye             GameResult = "bye"
)

// KnownGameResults lists every valid result variant, for validation at intake.
var KnownGameResults = []GameResult{
	ResultWhiteWin, ResultBlackWin, ResultDraw,
	ResultWhiteForfeitWin, ResultBlackForfeitWin,
	ResultDoubleForfeit, ResultBye,
}

// GameOutcome is one confirmed game between two participants, or a bye.
// For a bye BlackID is nil and Result must be ResultBye. Outcomes are
// immutable once confirmed; a participant appears in at most one outcome
// per round.
type GameOutcome struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Round        int        `json:"round" db:"round"`
	WhiteID      int        `json:"white_id" db:"white_id"`
	BlackID      *int       `json:"black_id,omitempty" db:"black_id"`
	Result       GameResult `json:"result" db:"result"`
	Confirmed    bool       `json:"confirmed" db:"confirmed"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// IsBye reports whether the outcome is an unpaired round.
func (o *GameOutcome) IsBye() bool {
	return o.Result == ResultBye || o.BlackID == nil
}

// SeatOf returns the seat the given participant occupied, and whether the
// participant took part in the game at all.
func (o *GameOutcome) SeatOf(participantID int) (Seat, bool) {
	if o.WhiteID == participantID {
		return SeatWhite, true
	}
	if o.BlackID != nil && *o.BlackID == participantID {
		return SeatBlack, true
	}
	return "", false
}

// OpponentOf returns the opposing participant ID, or nil for a bye.
func (o *GameOutcome) OpponentOf(participantID int) *int {
	if o.WhiteID == participantID {
		return o.BlackID
	}
	if o.BlackID != nil && *o.BlackID == participantID {
		white := o.WhiteID
		return &white
	}
	return nil
}
