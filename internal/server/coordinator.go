package server

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/nlhe/pokerserver/internal/game"
	"github.com/nlhe/pokerserver/internal/gameid"
	"github.com/nlhe/pokerserver/internal/protocol"
	"github.com/nlhe/pokerserver/internal/tournament"
)

// wireError carries a protocol error code alongside a human message,
// so the admission path can report the exact taxonomy code from spec
// §7 without the HTTP layer having to re-derive it.
type wireError struct {
	code    string
	message string
}

func (e *wireError) Error() string { return e.message }

func newWireError(code, format string, args ...any) *wireError {
	return &wireError{code: code, message: fmt.Sprintf(format, args...)}
}

// seat is one connected bot's coordinator-side handle: its permanent
// tournament seat number, claimed name, and the connection currently
// serving it.
type seat struct {
	num  int
	name string
	conn *Connection
}

// actionEnvelope is an inbound action frame tagged with the seat that
// sent it, so the coordinator can reject frames that arrive for a
// seat other than the one currently on the clock.
type actionEnvelope struct {
	seat int
	raw  []byte
}

// Coordinator runs one tournament end to end: lobby admission and
// debounce, then hand after hand (dealing, turn dispatch under a hard
// per-action timeout, broadcast with per-recipient hole-card masking)
// until a single seat remains.
type Coordinator struct {
	cfg     Config
	logger  *log.Logger
	clock   quartz.Clock
	monitor HandMonitor
	rng     *rand.Rand

	mu      sync.Mutex
	seats   []*seat
	byName  map[string]bool
	started bool

	lobbyTimer  *quartz.Timer
	actions     chan actionEnvelope
	disconnects chan int
	requestSeq  int

	roster       *tournament.Roster
	tournamentID string
}

// NewCoordinator builds a Coordinator ready to accept joins. clock and
// monitor may be nil, defaulting to a real clock and a no-op monitor.
func NewCoordinator(cfg Config, logger *log.Logger, clock quartz.Clock, monitor HandMonitor, rng *rand.Rand) *Coordinator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if monitor == nil {
		monitor = NullHandMonitor{}
	}
	return &Coordinator{
		cfg:         cfg,
		logger:      logger,
		clock:       clock,
		monitor:     monitor,
		rng:         rng,
		byName:      make(map[string]bool),
		actions:     make(chan actionEnvelope, 32),
		disconnects: make(chan int, 32),
	}
}

// Admit validates and seats a newly connected bot's join request. On
// success it returns the assigned seat number and arms or restarts the
// lobby debounce timer; on failure it returns a *wireError carrying
// the exact code the caller should report before closing the socket.
func (c *Coordinator) Admit(name string, conn *Connection) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return 0, newWireError(protocol.CodeTournamentStarted, "tournament already started")
	}
	if len(c.seats) >= c.cfg.MaxPlayers {
		return 0, newWireError(protocol.CodeTournamentFull, "tournament is full")
	}
	if c.byName[name] {
		return 0, newWireError(protocol.CodeBadName, "name %q already taken", name)
	}

	num := len(c.seats)
	s := &seat{num: num, name: name, conn: conn}
	c.seats = append(c.seats, s)
	c.byName[name] = true

	c.broadcastWaitingLocked()
	c.armLobbyTimerLocked()

	return num, nil
}

// HandleAction routes an inbound action frame from seatNum to the
// tournament loop currently waiting on it. Frames for any other seat,
// or arriving outside an active action window, are silently dropped —
// solicitAction's drain loop is the only consumer and it discards
// anything not addressed to the seat on the clock.
func (c *Coordinator) HandleAction(seatNum int, raw []byte) {
	select {
	case c.actions <- actionEnvelope{seat: seatNum, raw: raw}:
	default:
	}
}

// HandleDisconnect reports that seatNum's connection has closed.
func (c *Coordinator) HandleDisconnect(seatNum int) {
	select {
	case c.disconnects <- seatNum:
	default:
	}
}

func (c *Coordinator) broadcastWaitingLocked() {
	names := make([]string, len(c.seats))
	for i, s := range c.seats {
		names[i] = s.name
	}
	msg := &protocol.Waiting{Type: protocol.TypeWaiting, PlayerCount: len(c.seats), Names: names}
	c.broadcastLocked(msg)
}

// armLobbyTimerLocked (re)starts the lobby debounce once the minimum
// seat count is reached: every subsequent join restarts the clock per
// spec's Open Question #3 decision, so the tournament only begins once
// joins have actually quieted down.
func (c *Coordinator) armLobbyTimerLocked() {
	if len(c.seats) < c.cfg.MinPlayers {
		return
	}
	if c.lobbyTimer != nil {
		c.lobbyTimer.Stop()
	}
	if len(c.seats) >= c.cfg.MaxPlayers {
		go c.beginTournament()
		return
	}
	c.lobbyTimer = c.clock.AfterFunc(c.cfg.LobbyDebounce, func() {
		go c.beginTournament()
	})
}

// beginTournament closes the lobby and starts play. A no-op if called
// more than once (e.g. both the max-players fast path and a pending
// debounce fire).
func (c *Coordinator) beginTournament() {
	c.mu.Lock()
	if c.started || len(c.seats) < c.cfg.MinPlayers {
		c.mu.Unlock()
		return
	}
	c.started = true
	names := make([]string, len(c.seats))
	assignments := make([]protocol.SeatAssignment, len(c.seats))
	for i, s := range c.seats {
		names[i] = s.name
		assignments[i] = protocol.SeatAssignment{Seat: s.num, Name: s.name}
	}
	c.roster = tournament.NewRoster(names, c.cfg.BlindSchedule)
	c.tournamentID = gameid.Generate()
	c.broadcastLocked(&protocol.GameStart{
		Type:         protocol.TypeGameStart,
		TournamentID: c.tournamentID,
		Seats:        assignments,
	})
	c.mu.Unlock()

	c.logger.Info("tournament started", "tournament_id", c.tournamentID, "seats", len(names))
	c.monitor.OnGameStart(names)
	c.runTournament()
}

func (c *Coordinator) runTournament() {
	for !c.roster.IsComplete() {
		c.runHand()
		c.roster.AdvanceDealer()
	}
	winner, ok := c.roster.Winner()
	if !ok {
		return
	}
	c.mu.Lock()
	c.broadcastLocked(&protocol.GameEnd{
		Type:       protocol.TypeGameEnd,
		WinnerSeat: winner.Seat,
		WinnerName: winner.Name,
	})
	c.mu.Unlock()
	c.monitor.OnGameEnd(winner.Name)
}

// runHand plays a single hand to completion: deal, solicit actions
// from the seat on the clock under a hard timeout until the hand
// reaches showdown or folds out, then settle the pots into the
// roster's permanent stacks.
func (c *Coordinator) runHand() {
	handNumber, dealerSeat, sb, bb := c.roster.BeginHand()

	active := c.roster.ActiveSeats()
	names := make([]string, len(active))
	chips := make([]int, len(active))
	startStack := make([]int, len(active))
	localDealer := 0
	for i, tSeat := range active {
		p := c.roster.Players()[tSeat]
		names[i] = p.Name
		chips[i] = p.Stack
		startStack[i] = p.Stack
		if tSeat == dealerSeat {
			localDealer = i
		}
	}

	hs := game.NewHand(c.rng, names, localDealer, sb, bb, game.WithChips(chips))

	c.broadcastHandStart(handNumber, dealerSeat, sb, bb, hs, active)

	for !hs.IsComplete() {
		localActor := hs.ActivePlayer
		if localActor < 0 {
			break
		}
		tournamentSeat := active[localActor]

		c.requestSeq++
		requestID := fmt.Sprintf("h%d-a%d", handNumber, c.requestSeq)

		action, amount, timedOut, invalid := c.solicitAction(handNumber, requestID, hs, localActor, tournamentSeat, active)

		switch {
		case timedOut || invalid:
			hs.ForceFold(localActor)
		default:
			if err := hs.ProcessAction(action, amount); err != nil {
				invalid = true
				c.sendTo(tournamentSeat, &protocol.Error{Type: protocol.TypeError, Code: protocol.CodeBadAction, Message: err.Error()})
				hs.ForceFold(localActor)
			}
		}

		c.broadcastActionResult(handNumber, requestID, tournamentSeat, action, amount, timedOut, invalid, hs, active)
	}

	winningsBySeat := make(map[int]int, len(active))
	for _, w := range hs.GetWinners() {
		winningsBySeat[w.Seat] += w.Amount
	}
	for i, tSeat := range active {
		finalChips := hs.Players[i].Chips + winningsBySeat[i]
		delta := finalChips - startStack[i]
		_ = c.roster.ApplyResult(tSeat, delta)
	}

	c.broadcastHandEnd(handNumber, hs, active, winningsBySeat)

	potTotal := 0
	for _, p := range hs.GetPots() {
		potTotal += p.Amount
	}
	var winnerNames []string
	for i, tSeat := range active {
		if winningsBySeat[i] > 0 {
			winnerNames = append(winnerNames, c.roster.Players()[tSeat].Name)
		}
	}
	c.monitor.OnHandComplete(handNumber, potTotal, winnerNames)
}

// solicitAction sends an action_request to tournamentSeat and blocks
// until it responds, its timer expires, or it disconnects — the
// rendezvous pattern: exactly one of those three events resolves the
// wait, and late frames for a seat no longer on the clock are drained
// and discarded rather than left to poison the next request.
func (c *Coordinator) solicitAction(handNumber int, requestID string, hs *game.HandState, localActor, tournamentSeat int, active []int) (action game.Action, amount int, timedOut, invalid bool) {
	c.sendActionRequest(handNumber, requestID, hs, localActor, tournamentSeat, active)

	timeoutCh := make(chan struct{}, 1)
	timer := c.clock.AfterFunc(c.cfg.ActionTimeout, func() {
		select {
		case timeoutCh <- struct{}{}:
		default:
		}
	})
	defer timer.Stop()

	for {
		select {
		case env := <-c.actions:
			if env.seat != tournamentSeat {
				continue
			}
			parsed, err := protocol.ParseAction(env.raw)
			if err != nil {
				code := protocol.CodeBadAction
				var parseErr *protocol.ActionParseError
				if errors.As(err, &parseErr) {
					code = parseErr.Code
				}
				c.sendTo(tournamentSeat, &protocol.Error{Type: protocol.TypeError, Code: code, Message: err.Error()})
				if code == protocol.CodeBadJSON || code == protocol.CodeUnknownType {
					// Malformed frame or wrong envelope: reported, but the
					// connection and hand state are untouched — keep
					// waiting for this seat's actual decision.
					continue
				}
				return game.Fold, 0, false, true
			}
			act, amt := convertAction(parsed, hs, localActor)
			return act, amt, false, false

		case disconnected := <-c.disconnects:
			if disconnected == tournamentSeat {
				return game.Fold, 0, true, false
			}
			// Some other seat dropped; it'll be forced to fold on its
			// own turn. Keep waiting on the current actor.

		case <-timeoutCh:
			return game.Fold, 0, true, false
		}
	}
}

// convertAction maps a validated inbound action onto the engine's
// Action/amount pair. Per spec's Open Question #2 decision, a call's
// amount is always computed here — a client-supplied amount on call
// is accepted on the wire but ignored.
func convertAction(a *protocol.Action, hs *game.HandState, localActor int) (game.Action, int) {
	switch a.Action.Type {
	case "fold":
		return game.Fold, 0
	case "check":
		return game.Check, 0
	case "call":
		p := hs.Players[localActor]
		toCall := hs.Betting.CurrentBet - p.Bet
		if toCall < 0 {
			toCall = 0
		}
		if toCall > p.Chips {
			toCall = p.Chips
		}
		return game.Call, toCall
	case "raise":
		amt := 0
		if a.Action.Amount != nil {
			amt = *a.Action.Amount
		}
		return game.Raise, amt
	default:
		return game.Fold, 0
	}
}

func (c *Coordinator) seatByNum(num int) *seat {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range c.seats {
		if s.num == num {
			return s
		}
	}
	return nil
}
