// Package pairing generates next-round pairings from current standings and
// full opponent history. The generators are pure: they hold no state and
// read only what the caller supplies.
package pairing

import (
	"errors"

	"github.com/Dauren-Zh/tourney-engine/models"
)

// ErrPoolTooSmall is returned when fewer than two active participants remain.
// Anything larger always pairs: infeasible constraints degrade to flagged
// results instead of errors.
var ErrPoolTooSmall = errors.New("not enough active participants to pair (minimum 2)")

// Constraints configure the Swiss matcher. When both are set and cannot be
// satisfied together, color balance is sacrificed before rematch avoidance.
type Constraints struct {
	AvoidRematch  bool `json:"avoid_rematch"`
	BalanceColors bool `json:"balance_colors"`
}

// Candidate is one active participant as seen by the pairing engine:
// current score plus the seed rating used as the pairing-only tie-break.
type Candidate struct {
	ParticipantID int     `json:"participant_id"`
	Score         float64 `json:"score"`
	SeedRating    int     `json:"seed_rating"`
}

// Pair is a single board with assigned seats.
type Pair struct {
	WhiteID int `json:"white_id"`
	BlackID int `json:"black_id"`
}

// Result covers every supplied candidate exactly once across Pairs and the
// optional bye. ForcedRematch and RepeatedBye are operator-visibility
// flags, not failures.
type Result struct {
	RoundNumber      int    `json:"round_number"`
	Pairs            []Pair `json:"pairs"`
	ByeParticipantID *int   `json:"bye_participant_id,omitempty"`
	ForcedRematch    bool   `json:"forced_rematch,omitempty"`
	RepeatedBye      bool   `json:"repeated_bye,omitempty"`
}

// ColorCount tracks how often a participant has held each seat.
type ColorCount struct {
	White int
	Black int
}

// History is the who-played-whom record the constraints run against.
type History struct {
	meetings map[int]map[int]int
	colors   map[int]ColorCount
	byes     map[int]int
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{
		meetings: make(map[int]map[int]int),
		colors:   make(map[int]ColorCount),
		byes:     make(map[int]int),
	}
}

// BuildHistory indexes confirmed outcomes into meeting counts, per-seat
// color counts and bye counts.
func BuildHistory(outcomes []models.GameOutcome) *History {
	h := NewHistory()
	for _, o := range outcomes {
		if !o.Confirmed {
			continue
		}
		if o.IsBye() {
			h.byes[o.WhiteID]++
			continue
		}
		h.recordMeeting(o.WhiteID, *o.BlackID)
		cw := h.colors[o.WhiteID]
		cw.White++
		h.colors[o.WhiteID] = cw
		cb := h.colors[*o.BlackID]
		cb.Black++
		h.colors[*o.BlackID] = cb
	}
	return h
}

func (h *History) recordMeeting(a, b int) {
	if h.meetings[a] == nil {
		h.meetings[a] = make(map[int]int)
	}
	if h.meetings[b] == nil {
		h.meetings[b] = make(map[int]int)
	}
	h.meetings[a][b]++
	h.meetings[b][a]++
}

// Meetings returns how many times a and b have already played.
func (h *History) Meetings(a, b int) int {
	return h.meetings[a][b]
}

// Colors returns the seat counts for a participant.
func (h *History) Colors(id int) ColorCount {
	return h.colors[id]
}

// Byes returns how many byes a participant has already received.
func (h *History) Byes(id int) int {
	return h.byes[id]
}

// preferredSeat is the seat the participant has played less often; ok is
// false when the counts are even and either seat is fine.
func (h *History) preferredSeat(id int) (seat models.Seat, ok bool) {
	c := h.colors[id]
	switch {
	case c.White < c.Black:
		return models.SeatWhite, true
	case c.Black < c.White:
		return models.SeatBlack, true
	default:
		return "", false
	}
}

// assignSeats builds the pair giving each candidate the seat it has played
// less often. When both want the same seat the larger imbalance wins; a
// full tie goes to the lower participant ID as white, keeping the result
// deterministic.
func assignSeats(a, b int, h *History) Pair {
	ca, cb := h.colors[a], h.colors[b]
	balA := ca.White - ca.Black
	balB := cb.White - cb.Black
	switch {
	case balA < balB:
		return Pair{WhiteID: a, BlackID: b}
	case balB < balA:
		return Pair{WhiteID: b, BlackID: a}
	case a < b:
		return Pair{WhiteID: a, BlackID: b}
	default:
		return Pair{WhiteID: b, BlackID: a}
	}
}
