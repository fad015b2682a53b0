package pairing

import "sort"

// Swiss pairs the pool greedily from the top of the standings: the highest
// unpaired candidate meets the highest remaining candidate that satisfies
// the constraints. Candidate order is score descending, then seed rating
// descending (a pairing-only tie-break, independent of the standings
// tie-break chain), then participant ID for determinism.
//
// Constraint relaxation, in order: first the fully compliant opponent, then
// one sacrificing color balance, finally anyone left: a forced rematch,
// flagged on the result.
//
// An odd pool settles the bye before any board is paired, not after: the
// lowest-ranked candidate without a previous bye sits out, which keeps the
// recipient deterministic regardless of how the remaining boards resolve.
// When every candidate has already had a bye, the lowest-ranked overall
// sits out again and RepeatedBye is set.
func Swiss(candidates []Candidate, hist *History, cons Constraints, round int) (*Result, error) {
	if len(candidates) < 2 {
		return nil, ErrPoolTooSmall
	}
	if hist == nil {
		hist = NewHistory()
	}

	pool := make([]Candidate, len(candidates))
	copy(pool, candidates)
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Score != pool[j].Score {
			return pool[i].Score > pool[j].Score
		}
		if pool[i].SeedRating != pool[j].SeedRating {
			return pool[i].SeedRating > pool[j].SeedRating
		}
		return pool[i].ParticipantID < pool[j].ParticipantID
	})

	res := &Result{RoundNumber: round}

	if len(pool)%2 == 1 {
		byeIdx := len(pool) - 1
		for i := len(pool) - 1; i >= 0; i-- {
			if hist.Byes(pool[i].ParticipantID) == 0 {
				byeIdx = i
				break
			}
		}
		bye := pool[byeIdx].ParticipantID
		if hist.Byes(bye) > 0 {
			res.RepeatedBye = true
		}
		res.ByeParticipantID = &bye
		pool = append(pool[:byeIdx], pool[byeIdx+1:]...)
	}

	used := make([]bool, len(pool))
	for i := range pool {
		if used[i] {
			continue
		}
		used[i] = true

		j := pickOpponent(pool, used, i, hist, cons)
		used[j] = true
		if cons.AvoidRematch && hist.Meetings(pool[i].ParticipantID, pool[j].ParticipantID) > 0 {
			res.ForcedRematch = true
		}
		res.Pairs = append(res.Pairs, assignSeats(pool[i].ParticipantID, pool[j].ParticipantID, hist))
	}
	return res, nil
}

// pickOpponent scans downward from the anchor for the best remaining
// opponent, relaxing color balance before rematch avoidance.
func pickOpponent(pool []Candidate, used []bool, anchor int, hist *History, cons Constraints) int {
	type pass int
	const (
		fullyCompliant pass = iota
		noRematchOnly
		anyOpponent
	)
	for p := fullyCompliant; ; p++ {
		for j := range pool {
			if used[j] || j == anchor {
				continue
			}
			rematch := hist.Meetings(pool[anchor].ParticipantID, pool[j].ParticipantID) > 0
			switch p {
			case fullyCompliant:
				if cons.AvoidRematch && rematch {
					continue
				}
				if cons.BalanceColors && !colorCompatible(pool[anchor].ParticipantID, pool[j].ParticipantID, hist) {
					continue
				}
			case noRematchOnly:
				if cons.AvoidRematch && rematch {
					continue
				}
			case anyOpponent:
			}
			return j
		}
	}
}

// colorCompatible reports whether both candidates can get the seat each has
// played less often. Two candidates needing the same color are held apart
// until the constraint has to be relaxed.
func colorCompatible(a, b int, h *History) bool {
	seatA, needA := h.preferredSeat(a)
	seatB, needB := h.preferredSeat(b)
	if !needA || !needB {
		return true
	}
	return seatA != seatB
}
