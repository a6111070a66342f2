package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGamePhase(t *testing.T) {
	g := &Game{Settings: GameSettings{Start: 100, End: 200, DrawPeriod: 50}}

	cases := []struct {
		now  int64
		want GamePhase
	}{
		{99, PhasePending},
		{100, PhaseOpen},
		{200, PhaseOpen},
		{201, PhaseDrawing},
		{250, PhaseDrawing},
		{251, PhaseRefundable},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, g.Phase(tc.now), "now=%d", tc.now)
	}
	require.Equal(t, int64(250), g.DrawDeadline())

	require.False(t, g.Finished(250))
	require.True(t, g.Finished(251))

	g.Settings.Complete = 220
	require.True(t, g.Drawn())
	require.Equal(t, PhaseComplete, g.Phase(150))
	require.True(t, g.Finished(150))
}

func TestGamePhase_RefundedBeforeDeadline(t *testing.T) {
	g := &Game{Settings: GameSettings{Start: 100, End: 200, DrawPeriod: 50}}
	g.Results.Refunded = true
	require.Equal(t, PhaseRefundable, g.Phase(210))
	require.True(t, g.Finished(210))
}

func TestTicketOwner(t *testing.T) {
	g := &Game{
		Players: []Player{{Address: "a", Balance: 3}, {Address: "b", Balance: 1}},
		Purchases: []TicketRange{
			{Player: "a", Count: 2},
			{Player: "b", Count: 1},
			{Player: "a", Count: 1},
		},
		TotalBalance: 4,
	}
	want := []string{"a", "a", "b", "a"}
	for n, w := range want {
		got, ok := g.TicketOwner(uint64(n))
		require.True(t, ok)
		require.Equal(t, w, got, "ticket %d", n)
	}
	_, ok := g.TicketOwner(4)
	require.False(t, ok)

	require.Equal(t, 1, g.PlayerIndex("b"))
	require.Equal(t, -1, g.PlayerIndex("c"))
	require.Equal(t, uint64(3), g.BalanceOf("a"))
	require.Equal(t, uint64(0), g.BalanceOf("c"))
}
