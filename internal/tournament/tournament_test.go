package tournament

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlindsForHand_StepsAtEachThreshold(t *testing.T) {
	t.Parallel()
	sched := DefaultBlindSchedule

	cases := []struct {
		hand   int
		sb, bb int
	}{
		{1, 50, 100},
		{9, 50, 100},
		{10, 100, 200},
		{19, 100, 200},
		{20, 200, 400},
		{50, 1600, 3200},
		{1000, 1600, 3200}, // past the last threshold, holds
	}
	for _, c := range cases {
		sb, bb := BlindsForHand(sched, c.hand)
		assert.Equal(t, c.sb, sb, "hand %d small blind", c.hand)
		assert.Equal(t, c.bb, bb, "hand %d big blind", c.hand)
	}
}

func TestRoster_BeginHandAdvancesHandNumberAndBlinds(t *testing.T) {
	t.Parallel()
	r := NewRoster([]string{"a", "b", "c"}, nil)

	handNum, dealer, sb, bb := r.BeginHand()
	assert.Equal(t, 1, handNum)
	assert.Equal(t, 0, dealer)
	assert.Equal(t, 50, sb)
	assert.Equal(t, 100, bb)

	r.AdvanceDealer()
	handNum2, dealer2, _, _ := r.BeginHand()
	assert.Equal(t, 2, handNum2)
	assert.Equal(t, 1, dealer2)
}

func TestRoster_DealerRotationSkipsEliminatedSeats(t *testing.T) {
	t.Parallel()
	r := NewRoster([]string{"a", "b", "c", "d"}, nil)
	require.NoError(t, r.ApplyResult(1, -StartingStack)) // seat 1 busts

	assert.Equal(t, 0, r.DealerSeat())
	r.AdvanceDealer()
	assert.Equal(t, 2, r.DealerSeat(), "seat 1 is eliminated and must be skipped")
}

func TestRoster_ApplyResultEliminatesAtZero(t *testing.T) {
	t.Parallel()
	r := NewRoster([]string{"a", "b"}, nil)

	require.NoError(t, r.ApplyResult(0, -StartingStack))
	p := r.Players()[0]
	assert.True(t, p.Eliminated)
	assert.Equal(t, 0, p.Stack)
}

func TestRoster_ApplyResultNeverGoesNegative(t *testing.T) {
	t.Parallel()
	r := NewRoster([]string{"a", "b"}, nil)
	require.NoError(t, r.ApplyResult(0, -(StartingStack + 500)))
	assert.Equal(t, 0, r.Players()[0].Stack)
}

func TestRoster_IsCompleteAndWinner(t *testing.T) {
	t.Parallel()
	r := NewRoster([]string{"a", "b", "c"}, nil)
	assert.False(t, r.IsComplete())

	require.NoError(t, r.ApplyResult(0, -StartingStack))
	assert.False(t, r.IsComplete())

	require.NoError(t, r.ApplyResult(1, -StartingStack))
	assert.True(t, r.IsComplete())

	winner, ok := r.Winner()
	require.True(t, ok)
	assert.Equal(t, 2, winner.Seat)
}

func TestRoster_ByNameAndActiveSeats(t *testing.T) {
	t.Parallel()
	r := NewRoster([]string{"alice", "bob"}, nil)

	p, ok := r.ByName("alice")
	require.True(t, ok)
	assert.Equal(t, 0, p.Seat)

	_, ok = r.ByName("nobody")
	assert.False(t, ok)

	require.NoError(t, r.ApplyResult(1, -StartingStack))
	assert.Equal(t, []int{0}, r.ActiveSeats())
	assert.Equal(t, 1, r.Remaining())
}
