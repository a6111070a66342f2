package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"hashkeyraffle/internal/state"
)

func testGame() *state.Game {
	return &state.Game{
		Index: 2,
		Settings: state.GameSettings{
			Price: price, Start: 1000, End: 2000, DrawPeriod: 500,
		},
		Players:      []state.Player{{Address: "0xA", Balance: 2}, {Address: "0xB", Balance: 1}},
		TotalBalance: 3,
		Pot:          price.MulUint64(3),
	}
}

func TestStatusAt(t *testing.T) {
	g := testGame()

	cases := []struct {
		now       int64
		phase     state.GamePhase
		remaining time.Duration
	}{
		{900, state.PhasePending, 100 * time.Second},
		{1000, state.PhaseOpen, 1000 * time.Second},
		{2000, state.PhaseOpen, 0},
		{2100, state.PhaseDrawing, 400 * time.Second},
		{2600, state.PhaseRefundable, 0},
	}
	for _, tc := range cases {
		s := StatusAt(g, "0xA", time.Unix(tc.now, 0))
		require.Equal(t, tc.phase, s.Phase, "now=%d", tc.now)
		require.Equal(t, tc.remaining, s.Remaining, "now=%d", tc.now)
	}

	s := StatusAt(g, "0xA", time.Unix(1500, 0))
	require.Equal(t, uint64(2), s.GameIndex)
	require.Equal(t, uint64(2), s.MyTickets)
	require.Equal(t, 2, s.Players)
	require.Equal(t, uint64(3), s.TotalTickets)
	require.True(t, s.Pot.Equal(sdkmath.NewUint(3_000)))

	require.Zero(t, StatusAt(g, "", time.Unix(1500, 0)).MyTickets)

	g.Settings.Complete = 2100
	g.Results.Winner = "0xA"
	g.Results.PrizePaid = sdkmath.NewUint(2_700)
	s = StatusAt(g, "0xB", time.Unix(2200, 0))
	require.Equal(t, state.PhaseComplete, s.Phase)
	require.Equal(t, "0xA", s.Winner)
	require.Equal(t, "2700", s.Prize.String())
}

type fakeSource struct {
	mu    sync.Mutex
	index uint64
	game  *state.Game
	err   error
	polls int
}

func (f *fakeSource) CurrentGameIndex(context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.err != nil {
		return 0, f.err
	}
	return f.index, nil
}

func (f *fakeSource) Game(_ context.Context, index uint64) (*state.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.game == nil || f.game.Index != index {
		return nil, errors.New("game not found")
	}
	return f.game, nil
}

func newTestWatcher(src GameSource, now int64) *Watcher {
	w := NewWatcher(src, "0xA", time.Millisecond, log.NewNopLogger())
	w.now = func() time.Time { return time.Unix(now, 0) }
	return w
}

func TestWatcher_Poll(t *testing.T) {
	src := &fakeSource{}
	w := newTestWatcher(src, 1500)

	_, err := w.Poll(context.Background())
	require.ErrorIs(t, err, ErrNoGame)

	src.index, src.game = 2, testGame()
	s, err := w.Poll(context.Background())
	require.NoError(t, err)
	require.Equal(t, state.PhaseOpen, s.Phase)
	require.Equal(t, uint64(2), s.MyTickets)
}

func TestWatcher_RunStopsWhenCallbackDeclines(t *testing.T) {
	src := &fakeSource{index: 2, game: testGame()}
	w := newTestWatcher(src, 1500)

	var seen []Status
	err := w.Run(context.Background(), func(s Status) bool {
		seen = append(seen, s)
		return len(seen) < 3
	})
	require.NoError(t, err)
	require.Len(t, seen, 3)
}

func TestWatcher_RunKeepsPollingThroughErrors(t *testing.T) {
	src := &fakeSource{err: errors.New("rpc down")}
	w := newTestWatcher(src, 1500)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	called := false
	err := w.Run(ctx, func(Status) bool {
		called = true
		return true
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, called)

	src.mu.Lock()
	defer src.mu.Unlock()
	require.Greater(t, src.polls, 1)
}

func TestWatcher_RunWaitsForFirstGame(t *testing.T) {
	src := &fakeSource{}
	w := newTestWatcher(src, 1500)

	go func() {
		time.Sleep(5 * time.Millisecond)
		src.mu.Lock()
		src.index, src.game = 2, testGame()
		src.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var got Status
	err := w.Run(ctx, func(s Status) bool {
		got = s
		return false
	})
	require.NoError(t, err)
	require.Equal(t, uint64(2), got.GameIndex)
}
