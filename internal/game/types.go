package game

import "github.com/nlhe/pokerserver/poker"

// Street is a betting round within a hand.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river", "showdown"}[s]
}

// Action is a player's decision at a betting round. There is no
// separate "all-in" variant: going all-in is a Call or a Raise whose
// amount happens to exhaust the player's stack.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise"}[a]
}

// Player is one seat's state for the duration of a single hand.
type Player struct {
	Seat   int
	Name   string
	Chips  int // chips not yet committed to any pot
	Folded bool
	AllIn  bool

	Bet      int // committed this street, not yet swept into the pot ledger
	TotalBet int // committed across all streets this hand

	HoleCards poker.Hand

	// acted records whether this seat has acted since the last full
	// raise reopened the betting. A short all-in raise does not clear
	// this for seats that had already matched the prior bet, so they
	// can only call the extra amount, not raise again.
	acted bool
}
