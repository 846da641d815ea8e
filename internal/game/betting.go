package game

// ValidAction describes one legal action at a decision point, along
// with the amount bounds a Raise would need to respect.
type ValidAction struct {
	Action Action
	// Amount is the exact chip amount for Call (ignored for Fold/Check).
	Amount int
	// MinAmount/MaxAmount bound a Raise's target total bet.
	MinAmount int
	MaxAmount int
}

// BettingRound tracks the shared state of one street's betting.
type BettingRound struct {
	CurrentBet int // the highest current_bet among all players this street
	MinRaise   int // minimum legal raise increment this street
	LastAggr   int // seat of the last seat to bet or raise, or -1
	BBActed    bool
	bigBlind   int
}

// NewBettingRound starts a fresh betting round. bigBlind seeds the
// initial minimum raise increment per spec §4.3.
func NewBettingRound(bigBlind int) *BettingRound {
	return &BettingRound{
		MinRaise: bigBlind,
		LastAggr: -1,
		bigBlind: bigBlind,
	}
}

// ResetForNewRound clears street-scoped state for the next street. The
// minimum raise increment reverts to the big blind per spec §4.3.
func (br *BettingRound) ResetForNewRound() {
	br.CurrentBet = 0
	br.MinRaise = br.bigBlind
	br.LastAggr = -1
}

// ValidActions computes the legal action set for the given player, per
// spec §4.3. fold is always present; check iff the player already
// matches CurrentBet; call iff it doesn't; raise iff the player has
// chips beyond the call amount and full raise rights (a short all-in
// raise restricts everyone who already matched the old bet to fold or
// call only).
func (br *BettingRound) ValidActions(p *Player) []ValidAction {
	toCall := br.CurrentBet - p.Bet
	var actions []ValidAction
	actions = append(actions, ValidAction{Action: Fold})

	if toCall <= 0 {
		actions = append(actions, ValidAction{Action: Check})
	} else {
		callAmount := toCall
		if callAmount > p.Chips {
			callAmount = p.Chips
		}
		actions = append(actions, ValidAction{Action: Call, Amount: callAmount})
	}

	// A seat that already acted this street and merely owes more chips
	// because of a short all-in raise may only call or fold.
	if p.acted && toCall > 0 {
		return actions
	}

	maxTotal := p.Bet + p.Chips
	callCost := toCall
	if callCost > p.Chips {
		callCost = p.Chips
	}
	if p.Chips > callCost {
		minAmount := br.CurrentBet + br.MinRaise
		if minAmount > maxTotal {
			minAmount = maxTotal
		}
		actions = append(actions, ValidAction{
			Action:    Raise,
			MinAmount: minAmount,
			MaxAmount: maxTotal,
		})
	}

	return actions
}

// IsBettingComplete reports whether every still-contesting player has
// matched CurrentBet and acted since the last aggressor, honoring the
// preflop big-blind option.
func IsBettingComplete(players []*Player, street Street, button int, br *BettingRound) bool {
	contesting := 0
	for _, p := range players {
		if !p.Folded && !p.AllIn {
			contesting++
		}
	}
	if contesting == 0 {
		return true
	}

	for _, p := range players {
		if p.Folded || p.AllIn {
			continue
		}
		if p.Bet != br.CurrentBet {
			return false
		}
		if !p.acted {
			return false
		}
	}

	if street == Preflop && br.LastAggr == -1 {
		bb := bigBlindSeat(players, button)
		if bb >= 0 && !players[bb].Folded && !players[bb].AllIn && !br.BBActed {
			return false
		}
	}

	return true
}

func bigBlindSeat(players []*Player, button int) int {
	n := len(players)
	if n == 2 {
		return (button + 1) % n
	}
	return (button + 2) % n
}
