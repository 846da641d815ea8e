// Package game implements a single hand of No-Limit Texas Hold'em as a
// betting state machine: preflop, flop, turn, river, showdown.
//
// The main type is HandState, which owns the players, the community
// board, the pot ledger, and the current betting round. Construct one
// with NewHand, drive it forward with ProcessAction, and inspect it
// with GetValidActions, IsComplete and GetWinners.
//
// # Basic usage
//
//	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
//	h := game.NewHand(rng, []string{"Alice", "Bob"}, 0, 50, 100)
//	h.ProcessAction(game.Fold, 0)
//	if h.IsComplete() {
//	    winners := h.GetWinners()
//	}
//
// # Determinism
//
// The RNG is always explicit and required; NewHand panics on a nil RNG
// so that tests can replay a hand bit-for-bit from a fixed seed.
package game
