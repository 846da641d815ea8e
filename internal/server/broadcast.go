package server

import (
	"golang.org/x/sync/errgroup"

	"github.com/nlhe/pokerserver/internal/game"
	"github.com/nlhe/pokerserver/internal/pot"
	"github.com/nlhe/pokerserver/internal/protocol"
	"github.com/nlhe/pokerserver/poker"
)

// broadcastLocked marshals msg once and fans it out to every connected
// seat concurrently. Must be called with c.mu held, since it reads
// c.seats; a send to a slow or backed-up connection never blocks
// delivery to the rest of the table.
func (c *Coordinator) broadcastLocked(msg any) {
	raw, err := protocol.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal broadcast message", "error", err)
		return
	}
	var g errgroup.Group
	for _, s := range c.seats {
		s := s
		if s.conn == nil {
			continue
		}
		g.Go(func() error {
			return s.conn.Send(raw)
		})
	}
	_ = g.Wait()
}

// broadcastEachLocked calls build for every connected seat and sends
// the per-recipient message it returns, concurrently. Must be called
// with c.mu held.
func (c *Coordinator) broadcastEachLocked(build func(s *seat) any) {
	var g errgroup.Group
	for _, s := range c.seats {
		s := s
		if s.conn == nil {
			continue
		}
		g.Go(func() error {
			raw, err := protocol.Marshal(build(s))
			if err != nil {
				return err
			}
			return s.conn.Send(raw)
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error("broadcast per-seat message", "error", err)
	}
}

// sendTo marshals msg once and delivers it to a single seat, if still
// connected.
func (c *Coordinator) sendTo(tournamentSeat int, msg any) {
	s := c.seatByNum(tournamentSeat)
	if s == nil || s.conn == nil {
		return
	}
	raw, err := protocol.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal message", "error", err, "seat", tournamentSeat)
		return
	}
	_ = s.conn.Send(raw)
}

func cardsToWire(cards []poker.Card) []protocol.Card {
	out := make([]protocol.Card, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func maskedHoleCards(n int) []protocol.Card {
	out := make([]protocol.Card, n)
	for i := range out {
		out[i] = "??"
	}
	return out
}

func potsToWire(pots []pot.Pot, active []int) []protocol.PotView {
	out := make([]protocol.PotView, len(pots))
	for i, p := range pots {
		eligible := make([]int, len(p.Eligible))
		for j, localSeat := range p.Eligible {
			eligible[j] = active[localSeat]
		}
		out[i] = protocol.PotView{Amount: p.Amount, EligibleSeats: eligible}
	}
	return out
}

// projectGameState builds the per-recipient view of hs: every seat's
// hole cards are masked except the recipient's own, and the full
// reveal at showdown.
func projectGameState(hs *game.HandState, active []int, recipientSeat int) protocol.GameStateView {
	players := make([]protocol.PlayerView, len(hs.Players))
	for i, p := range hs.Players {
		tSeat := active[i]
		known := tSeat == recipientSeat || hs.Street == game.Showdown
		var hole []protocol.Card
		if known {
			hole = cardsToWire(p.HoleCards.Cards())
		} else {
			hole = maskedHoleCards(p.HoleCards.CountCards())
		}
		players[i] = protocol.PlayerView{
			Seat:           tSeat,
			Name:           p.Name,
			Stack:          p.Chips,
			CurrentBet:     p.Bet,
			Folded:         p.Folded,
			AllIn:          p.AllIn,
			HoleCards:      hole,
			HoleCardsKnown: known,
		}
	}

	return protocol.GameStateView{
		Street:  hs.Street.String(),
		Board:   cardsToWire(hs.Board.Cards()),
		Pots:    potsToWire(hs.LivePots(), active),
		Players: players,
	}
}

func validActionsToWire(actions []game.ValidAction) []protocol.ValidActionWire {
	out := make([]protocol.ValidActionWire, len(actions))
	for i, a := range actions {
		w := protocol.ValidActionWire{Type: a.Action.String()}
		switch a.Action {
		case game.Call:
			w.Amount = protocol.IntPtr(a.Amount)
		case game.Raise:
			w.MinAmount = protocol.IntPtr(a.MinAmount)
			w.MaxAmount = protocol.IntPtr(a.MaxAmount)
		}
		out[i] = w
	}
	return out
}

func (c *Coordinator) broadcastHandStart(handNumber, dealerSeat, sb, bb int, hs *game.HandState, active []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sbSeat := active[(indexOf(active, dealerSeat)+1)%len(active)]
	bbSeat := active[(indexOf(active, dealerSeat)+2)%len(active)]
	if len(active) == 2 {
		sbSeat = dealerSeat
		bbSeat = active[(indexOf(active, dealerSeat)+1)%len(active)]
	}

	c.broadcastEachLocked(func(s *seat) any {
		players := make([]protocol.PlayerView, len(hs.Players))
		for i, p := range hs.Players {
			tSeat := active[i]
			known := tSeat == s.num
			var hole []protocol.Card
			if known {
				hole = cardsToWire(p.HoleCards.Cards())
			} else {
				hole = maskedHoleCards(p.HoleCards.CountCards())
			}
			players[i] = protocol.PlayerView{
				Seat: tSeat, Name: p.Name, Stack: p.Chips, CurrentBet: p.Bet,
				Folded: p.Folded, AllIn: p.AllIn, HoleCards: hole, HoleCardsKnown: known,
			}
		}
		return &protocol.HandStart{
			Type: protocol.TypeHandStart, HandNumber: handNumber,
			DealerSeat: dealerSeat, SBSeat: sbSeat, BBSeat: bbSeat,
			SBAmount: sb, BBAmount: bb, Players: players,
		}
	})
}

func (c *Coordinator) sendActionRequest(handNumber int, requestID string, hs *game.HandState, localActor, tournamentSeat int, active []int) {
	msg := &protocol.ActionRequest{
		Type:         protocol.TypeActionRequest,
		HandNumber:   handNumber,
		RequestID:    requestID,
		ActorSeat:    tournamentSeat,
		GameState:    projectGameState(hs, active, tournamentSeat),
		ValidActions: validActionsToWire(hs.GetValidActions()),
		TimeoutMs:    int(c.cfg.ActionTimeout.Milliseconds()),
	}
	c.sendTo(tournamentSeat, msg)
}

func (c *Coordinator) broadcastActionResult(handNumber int, requestID string, tournamentSeat int, action game.Action, amount int, timedOut, invalid bool, hs *game.HandState, active []int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.broadcastEachLocked(func(s *seat) any {
		return &protocol.ActionResult{
			Type: protocol.TypeActionResult, HandNumber: handNumber, RequestID: requestID,
			Seat:      tournamentSeat,
			Action:    protocol.ActionResultAction{Type: action.String(), Amount: amount},
			TimedOut:  timedOut,
			Invalid:   invalid,
			GameState: projectGameState(hs, active, s.num),
		}
	})
}

func (c *Coordinator) broadcastHandEnd(handNumber int, hs *game.HandState, active []int, winningsBySeat map[int]int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var winners []protocol.Winner
	for i, amt := range winningsBySeat {
		if amt <= 0 {
			continue
		}
		tSeat := active[i]
		// amount_won is the net gain this hand: gross pot share minus the
		// seat's own commitment, not the raw pot amount Distribute returns.
		net := amt - hs.Players[i].TotalBet
		winners = append(winners, protocol.Winner{Seat: tSeat, Name: c.roster.Players()[tSeat].Name, AmountWon: net})
	}

	revealed := make(map[string][]protocol.Card, len(hs.Players))
	for _, p := range hs.Players {
		if p.Folded {
			continue
		}
		revealed[p.Name] = cardsToWire(p.HoleCards.Cards())
	}

	stacks := make([]protocol.SeatStack, len(c.roster.Players()))
	for i, p := range c.roster.Players() {
		stacks[i] = protocol.SeatStack{Seat: p.Seat, Stack: p.Stack}
	}

	msg := &protocol.HandEnd{
		Type: protocol.TypeHandEnd, HandNumber: handNumber,
		Board: cardsToWire(hs.Board.Cards()), Winners: winners,
		HoleCardsRevealed: revealed, Stacks: stacks,
	}
	c.broadcastLocked(msg)
}

func indexOf(seats []int, target int) int {
	for i, s := range seats {
		if s == target {
			return i
		}
	}
	return -1
}
