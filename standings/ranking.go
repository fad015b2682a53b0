package standings

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Dauren-Zh/tourney-engine/models"
)

// ErrMissingTieBreak guards the completeness invariant: every configured
// metric must be present in every entry or the computation fails.
var ErrMissingTieBreak = errors.New("participant is missing a configured tie-break value")

// Input is the immutable data a ranking computation runs over. The caller
// (the recalculation coordinator) captures it at trigger time.
type Input struct {
	Participants []models.Participant
	Outcomes     []models.GameOutcome
	Config       models.TournamentConfig
	Round        int
	// Previous is the last published snapshot, used for rank deltas.
	// Nil on the first computation.
	Previous *models.StandingsSnapshot
}

// Rank computes a complete standings snapshot: scores via the score model,
// every configured tie-break per participant, a deterministic total order,
// shared ranks for full ties and rank deltas against the previous snapshot.
// It fails fast on configuration or data-integrity errors; no partial
// snapshot is ever returned. Version assignment is left to the caller.
func Rank(in Input) (*models.StandingsSnapshot, error) {
	if err := in.Config.Validate(); err != nil {
		return nil, err
	}
	data, err := NewDataset(in.Participants, in.Outcomes, in.Config)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RankingEntry, 0, len(in.Participants))
	for _, p := range in.Participants {
		entry := models.RankingEntry{
			ParticipantID: p.ID,
			Score:         data.Scores[p.ID],
			TieBreaks:     make(models.TieBreakValues, len(in.Config.TieBreaks)),
		}
		for _, rule := range in.Config.TieBreaks {
			value, err := Compute(rule.Metric, p.ID, data)
			if err != nil {
				return nil, err
			}
			entry.TieBreaks[rule.Metric] = value
		}
		if len(entry.TieBreaks) != len(in.Config.TieBreaks) {
			return nil, fmt.Errorf("%w: participant %d", ErrMissingTieBreak, p.ID)
		}
		entry.WhiteGames, entry.BlackGames = ColorBalance(p.ID, data)
		entries = append(entries, entry)
	}

	// Deterministic base order: the configured criteria, then participant
	// ID. The ID only fixes iteration order inside tie groups, it never
	// breaks a tie for ranking purposes.
	sort.Slice(entries, func(i, j int) bool {
		if c := compareEntries(entries[i], entries[j], in.Config.TieBreaks); c != 0 {
			return c < 0
		}
		return entries[i].ParticipantID < entries[j].ParticipantID
	})

	assignRanks(entries, in.Config.TieBreaks, data)

	if in.Previous != nil {
		prevRanks := in.Previous.RankByParticipant()
		for i := range entries {
			if old, ok := prevRanks[entries[i].ParticipantID]; ok {
				delta := old - entries[i].Rank
				entries[i].RankDelta = &delta
			}
		}
	}

	return &models.StandingsSnapshot{
		Round:      in.Round,
		Entries:    entries,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// compareEntries orders by score descending, then each configured tie-break
// (descending unless the rule says ascending). Returns <0 when a ranks
// ahead of b, 0 when equal on every criterion.
func compareEntries(a, b models.RankingEntry, rules []models.TieBreakRule) int {
	switch {
	case a.Score > b.Score:
		return -1
	case a.Score < b.Score:
		return 1
	}
	for _, rule := range rules {
		av, bv := a.TieBreaks[rule.Metric], b.TieBreaks[rule.Metric]
		if av == bv {
			continue
		}
		if rule.Ascending == (av < bv) {
			return -1
		}
		return 1
	}
	return 0
}

// assignRanks walks tie groups in the sorted order. A group of exactly two
// gets the pairwise direct-encounter disambiguation; larger groups, and
// pairs that never met, share their rank. The next distinct rank always
// accounts for the group size (1224 numbering).
func assignRanks(entries []models.RankingEntry, rules []models.TieBreakRule, data *Dataset) {
	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && compareEntries(entries[start], entries[end], rules) == 0 {
			end++
		}

		if end-start == 2 {
			de := DirectEncounter(entries[start].ParticipantID, entries[end-1].ParticipantID, data)
			if de != 0 {
				if de < 0 {
					entries[start], entries[start+1] = entries[start+1], entries[start]
				}
				entries[start].Rank = start + 1
				entries[start+1].Rank = start + 2
				start = end
				continue
			}
		}

		for i := start; i < end; i++ {
			entries[i].Rank = start + 1
		}
		start = end
	}
}
