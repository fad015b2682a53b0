package models

import "time"

// TieBreakValues maps each configured metric to its computed value.
// Completeness over the tournament's configured metric set is an invariant:
// the ranking engine refuses to publish a snapshot with a partial set.
type TieBreakValues map[TieBreakMetric]float64

// RankingEntry is one participant's row in a standings snapshot.
type RankingEntry struct {
	ParticipantID int            `json:"participant_id"`
	Score         float64        `json:"score"`
	TieBreaks     TieBreakValues `json:"tie_breaks"`

	// Rank is 1-based. Participants equal on every configured criterion
	// share a rank; the next distinct rank accounts for the group size.
	Rank int `json:"rank"`
	// RankDelta is previous rank minus current rank (positive = climbed).
	// Nil when the participant was absent from the previous snapshot.
	RankDelta *int `json:"rank_delta,omitempty"`

	// Color balance, reported as a statistic rather than a sort key.
	WhiteGames int `json:"white_games"`
	BlackGames int `json:"black_games"`
}

// StandingsSnapshot is an immutable, versioned standings computation.
// Snapshots are append-only; a tournament's current standings is its
// highest-version snapshot.
type StandingsSnapshot struct {
	ID           int            `json:"id" db:"id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Version      int            `json:"version" db:"version"`
	Round        int            `json:"round" db:"round"`
	Entries      []RankingEntry `json:"entries" db:"-"`
	ComputedAt   time.Time      `json:"computed_at" db:"computed_at"`
}

// RankByParticipant returns a participantID -> rank lookup for delta diffing.
func (s *StandingsSnapshot) RankByParticipant() map[int]int {
	ranks := make(map[int]int, len(s.Entries))
	for _, e := range s.Entries {
		ranks[e.ParticipantID] = e.Rank
	}
	return ranks
}

// ChangedSince returns the IDs of participants whose rank differs from the
// previous snapshot, including participants the previous snapshot lacked.
func (s *StandingsSnapshot) ChangedSince(prev *StandingsSnapshot) []int {
	var prevRanks map[int]int
	if prev != nil {
		prevRanks = prev.RankByParticipant()
	}
	var changed []int
	for _, e := range s.Entries {
		old, ok := prevRanks[e.ParticipantID]
		if !ok || old != e.Rank {
			changed = append(changed, e.ParticipantID)
		}
	}
	return changed
}
