package game

import (
	"fmt"
	"math/rand"

	"github.com/nlhe/pokerserver/internal/pot"
	"github.com/nlhe/pokerserver/poker"
)

// HandState is the authoritative state of one hand in progress, from
// Dealing through Showdown.
type HandState struct {
	Players []*Player
	Button  int

	Street Street
	Board  poker.Hand

	SmallBlind int
	BigBlind   int

	ActivePlayer int // seat to act, or -1 between streets / at showdown
	Deck         *poker.Deck
	Betting      *BettingRound

	pots []pot.Pot
}

// NewHand deals a new hand: posts blinds, deals hole cards, and sets
// the first actor to decide. rng is required and is never time-seeded
// internally, so callers control determinism explicitly.
func NewHand(rng *rand.Rand, playerNames []string, button int, smallBlind, bigBlind int, opts ...HandOption) *HandState {
	if rng == nil {
		panic("rng is required for hand creation")
	}
	if len(playerNames) < 2 {
		panic("at least 2 players required")
	}
	if button < 0 || button >= len(playerNames) {
		panic("button position out of range")
	}

	cfg := &handConfig{
		startChips: 10_000,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.chipCounts != nil && len(cfg.chipCounts) != len(playerNames) {
		panic("chip counts must match number of players")
	}

	players := make([]*Player, len(playerNames))
	for i, name := range playerNames {
		chips := cfg.startChips
		if cfg.chipCounts != nil {
			chips = cfg.chipCounts[i]
		}
		players[i] = &Player{Seat: i, Name: name, Chips: chips}
	}

	deck := cfg.deck
	if deck == nil {
		deck = poker.NewDeck(rng)
	}

	h := &HandState{
		Players:    players,
		Button:     button,
		Street:     Preflop,
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		Deck:       deck,
		Betting:    NewBettingRound(bigBlind),
	}

	h.postBlinds()
	h.dealHoleCards()

	if len(players) == 2 {
		h.ActivePlayer = button
	} else {
		h.ActivePlayer = h.nextActivePlayer((button + 3) % len(players))
	}

	return h
}

func (h *HandState) postBlinds() {
	sb, bb := h.Button, (h.Button+1)%len(h.Players)
	if len(h.Players) != 2 {
		sb = (h.Button + 1) % len(h.Players)
		bb = (h.Button + 2) % len(h.Players)
	}

	post := func(seat, amount int) {
		p := h.Players[seat]
		paid := amount
		if paid > p.Chips {
			paid = p.Chips
		}
		p.Bet = paid
		p.TotalBet = paid
		p.Chips -= paid
		if p.Chips == 0 {
			p.AllIn = true
		}
	}
	post(sb, h.SmallBlind)
	post(bb, h.BigBlind)

	h.Betting.CurrentBet = h.Players[bb].Bet
	h.Betting.LastAggr = bb
	h.Betting.MinRaise = h.BigBlind
}

func (h *HandState) dealHoleCards() {
	for _, p := range h.Players {
		p.HoleCards = poker.NewHand(h.Deck.Deal(2)...)
	}
}

// GetValidActions returns the legal action set for the current actor,
// or nil if no seat is currently to act.
func (h *HandState) GetValidActions() []ValidAction {
	if h.ActivePlayer < 0 || h.ActivePlayer >= len(h.Players) {
		return nil
	}
	return h.Betting.ValidActions(h.Players[h.ActivePlayer])
}

// ProcessAction applies action/amount on behalf of the current actor,
// advances to the next actor, and rolls the street forward when
// betting on the current street is complete.
func (h *HandState) ProcessAction(action Action, amount int) error {
	if h.ActivePlayer < 0 {
		return fmt.Errorf("game: no seat is currently to act")
	}
	seat := h.ActivePlayer
	p := h.Players[seat]

	if seat == bigBlindSeat(h.Players, h.Button) && h.Street == Preflop {
		h.Betting.BBActed = true
	}

	switch action {
	case Fold:
		p.Folded = true
		p.acted = true

	case Check:
		if p.Bet != h.Betting.CurrentBet {
			return fmt.Errorf("game: cannot check, %d still owed", h.Betting.CurrentBet-p.Bet)
		}
		p.acted = true

	case Call:
		toCall := h.Betting.CurrentBet - p.Bet
		if toCall < 0 {
			toCall = 0
		}
		if toCall > p.Chips {
			toCall = p.Chips
		}
		p.Bet += toCall
		p.TotalBet += toCall
		p.Chips -= toCall
		if p.Chips == 0 {
			p.AllIn = true
		}
		p.acted = true

	case Raise:
		maxTotal := p.Bet + p.Chips
		if amount > maxTotal {
			return fmt.Errorf("game: raise amount %d exceeds available %d", amount, maxTotal)
		}
		minFullRaise := h.Betting.CurrentBet + h.Betting.MinRaise
		if amount < minFullRaise && amount < maxTotal {
			return fmt.Errorf("game: raise too small, minimum %d", minFullRaise)
		}
		if amount <= h.Betting.CurrentBet {
			return fmt.Errorf("game: raise must exceed current bet %d", h.Betting.CurrentBet)
		}

		increment := amount - h.Betting.CurrentBet
		delta := amount - p.Bet
		p.Chips -= delta
		p.Bet = amount
		p.TotalBet += delta
		if p.Chips == 0 {
			p.AllIn = true
		}

		fullRaise := increment >= h.Betting.MinRaise
		h.Betting.CurrentBet = amount
		h.Betting.LastAggr = seat
		if fullRaise {
			h.Betting.MinRaise = increment
			for _, other := range h.Players {
				other.acted = false
			}
		}
		p.acted = true

	default:
		return fmt.Errorf("game: unknown action %v", action)
	}

	if seat == bigBlindSeat(h.Players, h.Button) && h.Street == Preflop {
		h.Betting.BBActed = true
	}

	h.advance()
	return nil
}

// ForceFold folds the given seat immediately regardless of turn order,
// for disconnects and protocol violations. It never returns an error:
// folding a seat that already folded, or one not currently able to
// act, is a no-op.
func (h *HandState) ForceFold(seat int) {
	if seat < 0 || seat >= len(h.Players) {
		return
	}
	p := h.Players[seat]
	if p.Folded || p.AllIn {
		return
	}

	p.Folded = true
	p.acted = true
	if seat == bigBlindSeat(h.Players, h.Button) && h.Street == Preflop {
		h.Betting.BBActed = true
	}
	if h.Betting.LastAggr == seat {
		h.Betting.LastAggr = -1
	}

	if activeCount(h.Players) <= 1 {
		h.ActivePlayer = -1
		h.NextStreet()
	} else if seat == h.ActivePlayer {
		h.advance()
	} else if IsBettingComplete(h.Players, h.Street, h.Button, h.Betting) {
		h.NextStreet()
	}
}

// advance moves ActivePlayer to the next seat owed an action, rolling
// the street forward (possibly all the way to Showdown) once none remain.
func (h *HandState) advance() {
	if activeCount(h.Players) <= 1 {
		// A fold just dropped the field to a single survivor; the hand
		// is over regardless of whether that seat has "acted" yet.
		h.ActivePlayer = -1
		h.NextStreet()
		return
	}
	h.ActivePlayer = h.nextActivePlayer(h.ActivePlayer + 1)
	if h.ActivePlayer == -1 || IsBettingComplete(h.Players, h.Street, h.Button, h.Betting) {
		h.NextStreet()
	}
}

func (h *HandState) nextActivePlayer(from int) int {
	n := len(h.Players)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		p := h.Players[seat]
		if !p.Folded && !p.AllIn && !(p.acted && p.Bet == h.Betting.CurrentBet) {
			return seat
		}
	}
	return -1
}

func activeCount(players []*Player) int {
	n := 0
	for _, p := range players {
		if !p.Folded {
			n++
		}
	}
	return n
}

// NextStreet sweeps the street's bets into the committed totals,
// resets per-street bookkeeping, and deals the next street's community
// cards. If only one seat remains able to act (or none), it fast
// forwards through the remaining streets to Showdown without
// requesting further actions, per spec §4.3's "run out" rule.
func (h *HandState) NextStreet() {
	for _, p := range h.Players {
		p.Bet = 0
		p.acted = false
	}
	h.Betting.ResetForNewRound()

	if activeCount(h.Players) <= 1 {
		// All but one seat folded: the survivor wins every pot
		// uncontested. No further board cards are dealt.
		h.Street = Showdown
		h.ActivePlayer = -1
		h.finalizePots()
		return
	}

	switch h.Street {
	case Preflop:
		h.Street = Flop
		h.Board = poker.NewHand(h.Deck.Deal(3)...) | h.Board
	case Flop:
		h.Street = Turn
		h.Board.AddCard(h.Deck.DealOne())
	case Turn:
		h.Street = River
		h.Board.AddCard(h.Deck.DealOne())
	case River:
		h.Street = Showdown
		h.finalizePots()
		h.ActivePlayer = -1
		return
	case Showdown:
		return
	}

	first := h.nextActivePlayer((h.Button + 1) % len(h.Players))
	contesting := 0
	for _, p := range h.Players {
		if !p.Folded && !p.AllIn {
			contesting++
		}
	}
	if contesting < 2 {
		// Everyone remaining is all-in (or folded): run out the board
		// without soliciting further actions.
		h.ActivePlayer = -1
		h.NextStreet()
		return
	}
	h.ActivePlayer = first
}

func (h *HandState) finalizePots() {
	committed := make(map[int]int, len(h.Players))
	active := make(map[int]bool, len(h.Players))
	for _, p := range h.Players {
		committed[p.Seat] = p.TotalBet
		active[p.Seat] = !p.Folded
	}
	h.pots = pot.BuildPots(committed, active)
}

// IsComplete reports whether the hand has reached Showdown or only one
// contesting seat remains.
func (h *HandState) IsComplete() bool {
	return h.Street == Showdown || activeCount(h.Players) <= 1
}

// GetPots returns the hand's final pots. Valid once IsComplete reports true.
func (h *HandState) GetPots() []pot.Pot {
	return h.pots
}

// LivePots builds a snapshot of the pot structure as it stands right
// now, for broadcasting game state while a hand is still in progress
// (before NextStreet has swept bets into final pots).
func (h *HandState) LivePots() []pot.Pot {
	if h.pots != nil {
		return h.pots
	}
	committed := make(map[int]int, len(h.Players))
	active := make(map[int]bool, len(h.Players))
	for _, p := range h.Players {
		committed[p.Seat] = p.TotalBet
		active[p.Seat] = !p.Folded
	}
	return pot.BuildPots(committed, active)
}

// GetWinners evaluates every pot's best hand among its eligible seats
// and returns each pot's gross distribution (the full share of the
// pot, including the winner's own commitment), honoring the odd-chip
// clockwise-from-dealer+1 rule of spec §4.2.
func (h *HandState) GetWinners() []pot.Winner {
	rank := func(seat int) uint32 {
		p := h.Players[seat]
		return uint32(poker.Evaluate7Cards(p.HoleCards | h.Board))
	}

	var all []pot.Winner
	for _, p := range h.pots {
		all = append(all, pot.Distribute(p, rank, h.Button, len(h.Players))...)
	}
	return all
}
