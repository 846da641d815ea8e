package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidActions_CheckWhenNoBetOwed(t *testing.T) {
	t.Parallel()
	br := NewBettingRound(100)
	p := &Player{Bet: 0, Chips: 1000}

	actions := br.ValidActions(p)

	var hasCheck, hasCall bool
	for _, a := range actions {
		if a.Action == Check {
			hasCheck = true
		}
		if a.Action == Call {
			hasCall = true
		}
	}
	assert.True(t, hasCheck)
	assert.False(t, hasCall)
}

func TestValidActions_CallAmountCappedByStack(t *testing.T) {
	t.Parallel()
	br := NewBettingRound(100)
	br.CurrentBet = 500
	p := &Player{Bet: 0, Chips: 200}

	actions := br.ValidActions(p)

	found := false
	for _, a := range actions {
		if a.Action == Call {
			found = true
			assert.Equal(t, 200, a.Amount, "call amount caps at remaining chips")
		}
	}
	assert.True(t, found)
}

func TestValidActions_ShortAllInClosesOutActedPlayers(t *testing.T) {
	t.Parallel()
	// Player already acted (matched the prior bet of 100) and now owes
	// an extra 50 because of a short all-in raise. They may only
	// fold/call, never raise, per spec's short-all-in rule.
	br := NewBettingRound(100)
	br.CurrentBet = 150
	br.MinRaise = 100 // unmet by the short raise
	p := &Player{Bet: 100, Chips: 1000, acted: true}

	actions := br.ValidActions(p)

	for _, a := range actions {
		assert.NotEqual(t, Raise, a.Action, "short all-in must not reopen action for a player who already acted")
	}
}

func TestValidActions_UnactedPlayerRetainsRaiseAfterShortAllIn(t *testing.T) {
	t.Parallel()
	// A player who has NOT yet acted this street still has full rights
	// even when the current bet reflects a short all-in raise.
	br := NewBettingRound(100)
	br.CurrentBet = 150
	br.MinRaise = 100
	p := &Player{Bet: 0, Chips: 1000, acted: false}

	actions := br.ValidActions(p)

	hasRaise := false
	for _, a := range actions {
		if a.Action == Raise {
			hasRaise = true
		}
	}
	assert.True(t, hasRaise)
}

func TestValidActions_NoRaiseWhenChipsOnlyCoverCall(t *testing.T) {
	t.Parallel()
	br := NewBettingRound(100)
	br.CurrentBet = 500
	p := &Player{Bet: 0, Chips: 500}

	actions := br.ValidActions(p)
	for _, a := range actions {
		assert.NotEqual(t, Raise, a.Action)
	}
}

func TestIsBettingComplete_PreflopBBOptionNotYetTaken(t *testing.T) {
	t.Parallel()
	players := []*Player{
		{Seat: 0, Bet: 100, Chips: 900, acted: true},  // SB/BTN in HU, called
		{Seat: 1, Bet: 100, Chips: 900, acted: false}, // BB, has not acted yet
	}
	br := NewBettingRound(100)
	br.CurrentBet = 100
	br.LastAggr = -1 // nobody has raised; BB still has the option

	assert.False(t, IsBettingComplete(players, Preflop, 0, br))
}

func TestIsBettingComplete_AllMatchedAndActed(t *testing.T) {
	t.Parallel()
	players := []*Player{
		{Seat: 0, Bet: 100, Chips: 900, acted: true},
		{Seat: 1, Bet: 100, Chips: 900, acted: true},
	}
	br := NewBettingRound(100)
	br.CurrentBet = 100
	br.LastAggr = 0

	assert.True(t, IsBettingComplete(players, Preflop, 0, br))
}

func TestIsBettingComplete_FoldedAndAllInPlayersIgnored(t *testing.T) {
	t.Parallel()
	players := []*Player{
		{Seat: 0, Folded: true},
		{Seat: 1, AllIn: true, Bet: 1000, Chips: 0, acted: true},
		{Seat: 2, Bet: 100, Chips: 900, acted: true},
	}
	br := NewBettingRound(100)
	br.CurrentBet = 100
	br.LastAggr = 2

	assert.True(t, IsBettingComplete(players, Flop, 0, br))
}
