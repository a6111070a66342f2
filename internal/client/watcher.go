package client

import (
	"context"
	"errors"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"

	"hashkeyraffle/internal/state"
)

// GameSource is what the watcher polls. *Client implements it.
type GameSource interface {
	CurrentGameIndex(ctx context.Context) (uint64, error)
	Game(ctx context.Context, index uint64) (*state.Game, error)
}

// Status is a snapshot of the current game as seen at Now.
type Status struct {
	GameIndex uint64
	Phase     state.GamePhase
	Now       time.Time

	// Remaining is the time until the next phase boundary: start while
	// pending, end while open, the draw deadline while drawing. Zero otherwise.
	Remaining time.Duration

	Price        sdkmath.Uint
	TotalTickets uint64
	Pot          sdkmath.Uint
	Players      int
	MyTickets    uint64

	Winner string
	Prize  sdkmath.Uint
}

// StatusAt summarizes g for player at now.
func StatusAt(g *state.Game, player string, now time.Time) Status {
	unix := now.Unix()
	s := Status{
		GameIndex:    g.Index,
		Phase:        g.Phase(unix),
		Now:          now,
		Price:        g.Settings.Price,
		TotalTickets: g.TotalBalance,
		Pot:          g.Pot,
		Players:      len(g.Players),
		Winner:       g.Results.Winner,
		Prize:        g.Results.PrizePaid,
	}
	if player != "" {
		s.MyTickets = g.BalanceOf(player)
	}
	var boundary int64
	switch s.Phase {
	case state.PhasePending:
		boundary = g.Settings.Start
	case state.PhaseOpen:
		boundary = g.Settings.End
	case state.PhaseDrawing:
		boundary = g.DrawDeadline()
	}
	if boundary > unix {
		s.Remaining = time.Duration(boundary-unix) * time.Second
	}
	return s
}

// ErrNoGame is passed to the watcher callback before the first game exists.
var ErrNoGame = errors.New("no game has been created")

// Watcher polls the chain for the current game.
type Watcher struct {
	src      GameSource
	player   string
	interval time.Duration
	logger   log.Logger
	now      func() time.Time
}

func NewWatcher(src GameSource, player string, interval time.Duration, logger log.Logger) *Watcher {
	return &Watcher{
		src:      src,
		player:   player,
		interval: interval,
		logger:   logger.With("module", "watcher"),
		now:      time.Now,
	}
}

// Poll fetches the current game once.
func (w *Watcher) Poll(ctx context.Context) (Status, error) {
	index, err := w.src.CurrentGameIndex(ctx)
	if err != nil {
		return Status{}, err
	}
	if index == 0 {
		return Status{}, ErrNoGame
	}
	g, err := w.src.Game(ctx, index)
	if err != nil {
		return Status{}, err
	}
	return StatusAt(g, w.player, w.now()), nil
}

// Run polls every interval and hands each status to fn until ctx is done or
// fn returns false. Poll failures are logged and retried on the next tick.
func (w *Watcher) Run(ctx context.Context, fn func(Status) bool) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		st, err := w.Poll(ctx)
		switch {
		case errors.Is(err, ErrNoGame):
			w.logger.Debug("waiting for first game")
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Warn("poll failed", "err", err)
		default:
			if !fn(st) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
