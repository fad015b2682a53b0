package pairing

import "sort"

// RoundRobin produces the given round of a fixed circle-method rotation
// schedule: one candidate anchored, the rest rotating one slot per round,
// so every pair meets exactly once over size-1 rounds. The schedule is a
// function of participant IDs only, making any round reproducible without
// stored state. Odd pools pair against a ghost slot, which becomes the
// round's bye.
func RoundRobin(candidates []Candidate, hist *History, round int) (*Result, error) {
	if len(candidates) < 2 {
		return nil, ErrPoolTooSmall
	}
	if round < 1 {
		round = 1
	}
	if hist == nil {
		hist = NewHistory()
	}

	ids := make([]int, 0, len(candidates)+1)
	for _, c := range candidates {
		ids = append(ids, c.ParticipantID)
	}
	sort.Ints(ids)

	const ghost = -1
	if len(ids)%2 == 1 {
		ids = append(ids, ghost)
	}
	size := len(ids)

	// Rotate everything but ids[0]. A full cycle is size-1 rounds.
	rotations := (round - 1) % (size - 1)
	rest := append([]int(nil), ids[1:]...)
	for k := 0; k < rotations; k++ {
		last := rest[len(rest)-1]
		copy(rest[1:], rest[:len(rest)-1])
		rest[0] = last
	}
	arr := append([]int{ids[0]}, rest...)

	res := &Result{RoundNumber: round}
	for i := 0; i < size/2; i++ {
		a, b := arr[i], arr[size-1-i]
		if a == ghost || b == ghost {
			bye := a
			if a == ghost {
				bye = b
			}
			if hist.Byes(bye) > 0 {
				res.RepeatedBye = true
			}
			res.ByeParticipantID = &bye
			continue
		}
		res.Pairs = append(res.Pairs, assignSeats(a, b, hist))
	}
	return res, nil
}

// TotalRounds returns the length of a full round-robin cycle for a pool.
func TotalRounds(poolSize int) int {
	if poolSize%2 == 1 {
		return poolSize
	}
	return poolSize - 1
}
