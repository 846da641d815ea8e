package game

import "github.com/nlhe/pokerserver/poker"

// HandOption configures optional aspects of a new hand.
type HandOption func(*handConfig)

type handConfig struct {
	chipCounts []int // per-seat starting stacks; overrides startChips
	startChips int
	deck       *poker.Deck // pre-built deck; overrides the RNG-derived one
}

// WithUniformChips sets the same starting stack for every seat.
func WithUniformChips(chips int) HandOption {
	return func(c *handConfig) {
		c.startChips = chips
		c.chipCounts = nil
	}
}

// WithChips sets individual starting stacks per seat. len(chipCounts)
// must match the number of players passed to NewHand.
func WithChips(chipCounts []int) HandOption {
	return func(c *handConfig) {
		c.chipCounts = chipCounts
	}
}

// WithDeck supplies a pre-built deck, overriding the RNG-derived one.
// Used by tests that need a specific card sequence.
func WithDeck(deck *poker.Deck) HandOption {
	return func(c *handConfig) {
		c.deck = deck
	}
}
