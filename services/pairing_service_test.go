package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dauren-Zh/tourney-engine/pairing"
)

func newTestPairingService() PairingService {
	tr, pr, or, _, _ := testFixtures()
	return NewPairingService(tr, pr, or, nil)
}

func TestGeneratePairingsDefaultConstraints(t *testing.T) {
	svc := newTestPairingService()

	// The two fixture players met in round 1, so the default proposal can
	// only repeat the matchup and must say so.
	result, err := svc.GeneratePairings(context.Background(), 1, GeneratePairingsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.RoundNumber)
	require.Len(t, result.Pairs, 1)
	assert.True(t, result.ForcedRematch)
}

func TestGeneratePairingsCallerDisablesRematchAvoidance(t *testing.T) {
	svc := newTestPairingService()

	result, err := svc.GeneratePairings(context.Background(), 1, GeneratePairingsInput{
		Constraints: &pairing.Constraints{AvoidRematch: false, BalanceColors: true},
	})
	require.NoError(t, err)
	require.Len(t, result.Pairs, 1)
	assert.False(t, result.ForcedRematch, "a rematch is ordinary when avoidance is off")
}

func TestGeneratePairingsExplicitRound(t *testing.T) {
	svc := newTestPairingService()

	round := 1
	result, err := svc.GeneratePairings(context.Background(), 1, GeneratePairingsInput{Round: &round})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RoundNumber)
}

func TestGeneratePairingsRejectsRoundPastNext(t *testing.T) {
	svc := newTestPairingService()

	round := 5
	_, err := svc.GeneratePairings(context.Background(), 1, GeneratePairingsInput{Round: &round})
	assert.ErrorIs(t, err, ErrRoundOutOfRange)
}

func TestGeneratePairingsUnknownTournament(t *testing.T) {
	svc := newTestPairingService()

	_, err := svc.GeneratePairings(context.Background(), 99, GeneratePairingsInput{})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
