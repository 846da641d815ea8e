// Package tournament owns the persistent seat roster across hands: who
// is seated, their chip stacks, the dealer button's rotation, blind
// escalation by hand number, and elimination.
package tournament

import "fmt"

// StartingStack is every player's chip count at game_start.
const StartingStack = 10_000

// Player is one seat's tournament-scoped state, persisting across
// hands (unlike game.Player, which exists only for one hand).
type Player struct {
	Seat       int
	Name       string
	Stack      int
	Eliminated bool
}

// BlindLevel is one rung of the blind schedule.
type BlindLevel struct {
	HandNumber int // the schedule takes effect at this hand number and holds until the next threshold
	SmallBlind int
	BigBlind   int
}

// DefaultBlindSchedule is the fixed escalation of spec §4.4/§6: hands
// 1, 10, 20, 30, 40, 50 step the blinds; hand numbers above the last
// threshold retain that level.
var DefaultBlindSchedule = []BlindLevel{
	{HandNumber: 1, SmallBlind: 50, BigBlind: 100},
	{HandNumber: 10, SmallBlind: 100, BigBlind: 200},
	{HandNumber: 20, SmallBlind: 200, BigBlind: 400},
	{HandNumber: 30, SmallBlind: 400, BigBlind: 800},
	{HandNumber: 40, SmallBlind: 800, BigBlind: 1600},
	{HandNumber: 50, SmallBlind: 1600, BigBlind: 3200},
}

// BlindsForHand returns the (small, big) blind amounts in effect for
// the given 1-indexed hand number, per schedule.
func BlindsForHand(schedule []BlindLevel, handNumber int) (sb, bb int) {
	sb, bb = schedule[0].SmallBlind, schedule[0].BigBlind
	for _, level := range schedule {
		if handNumber < level.HandNumber {
			break
		}
		sb, bb = level.SmallBlind, level.BigBlind
	}
	return sb, bb
}

// Roster owns the tournament's seats: join-time name uniqueness,
// permanent seat assignment, stacks across hands, dealer rotation, and
// elimination. Seats are never renumbered when a player is eliminated.
type Roster struct {
	players    []*Player
	schedule   []BlindLevel
	handNumber int
	dealer     int
}

// NewRoster builds a roster for the given names, in join order. Seats
// are assigned 0..N-1 in that order and are permanent for the
// tournament's duration.
func NewRoster(names []string, schedule []BlindLevel) *Roster {
	if schedule == nil {
		schedule = DefaultBlindSchedule
	}
	players := make([]*Player, len(names))
	for i, name := range names {
		players[i] = &Player{Seat: i, Name: name, Stack: StartingStack}
	}
	return &Roster{players: players, schedule: schedule}
}

// Players returns every seat, eliminated or not, in seat order.
func (r *Roster) Players() []*Player {
	return r.players
}

// ByName looks up a player by name, for join-time uniqueness checks.
func (r *Roster) ByName(name string) (*Player, bool) {
	for _, p := range r.players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// ActiveSeats returns the seat numbers of every non-eliminated player,
// in seat order.
func (r *Roster) ActiveSeats() []int {
	var seats []int
	for _, p := range r.players {
		if !p.Eliminated {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

// Remaining reports how many seats have not been eliminated.
func (r *Roster) Remaining() int {
	n := 0
	for _, p := range r.players {
		if !p.Eliminated {
			n++
		}
	}
	return n
}

// NextHandNumber returns the 1-indexed number of the hand about to be dealt.
func (r *Roster) NextHandNumber() int {
	return r.handNumber + 1
}

// CurrentBlinds returns the (small, big) blind for the hand about to be dealt.
func (r *Roster) CurrentBlinds() (sb, bb int) {
	return BlindsForHand(r.schedule, r.NextHandNumber())
}

// DealerSeat returns the seat that will deal the hand about to be
// dealt. The very first hand's dealer is seat 0 (rotation has not yet
// run); AdvanceDealer then rotates to the next active seat clockwise
// from there for the hand after.
func (r *Roster) DealerSeat() int {
	return r.dealer
}

// BeginHand records that a new hand is starting: advances the hand
// counter and returns (handNumber, dealerSeat, sb, bb) for it. The
// dealer button used is the roster's *current* dealer; callers should
// call AdvanceDealer after the hand completes, before the next
// BeginHand, to rotate it for the following hand.
func (r *Roster) BeginHand() (handNumber, dealerSeat, sb, bb int) {
	r.handNumber++
	sb, bb = BlindsForHand(r.schedule, r.handNumber)
	return r.handNumber, r.dealer, sb, bb
}

// AdvanceDealer rotates the dealer button to the next non-eliminated
// seat clockwise from the current dealer.
func (r *Roster) AdvanceDealer() {
	n := len(r.players)
	for i := 1; i <= n; i++ {
		seat := (r.dealer + i) % n
		if !r.players[seat].Eliminated {
			r.dealer = seat
			return
		}
	}
}

// ApplyResult adds delta (a signed net chip change) to seat's stack
// and marks it eliminated if the stack reaches zero.
func (r *Roster) ApplyResult(seat, delta int) error {
	if seat < 0 || seat >= len(r.players) {
		return fmt.Errorf("tournament: seat %d out of range", seat)
	}
	p := r.players[seat]
	p.Stack += delta
	if p.Stack <= 0 {
		p.Stack = 0
		p.Eliminated = true
	}
	return nil
}

// IsComplete reports whether the tournament has reached game_end: one
// or zero non-eliminated seats remain.
func (r *Roster) IsComplete() bool {
	return r.Remaining() <= 1
}

// Winner returns the sole remaining player when IsComplete is true.
func (r *Roster) Winner() (*Player, bool) {
	var last *Player
	count := 0
	for _, p := range r.players {
		if !p.Eliminated {
			last = p
			count++
		}
	}
	if count == 1 {
		return last, true
	}
	return nil, false
}
