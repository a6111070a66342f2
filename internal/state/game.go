package state

import (
	sdkmath "cosmossdk.io/math"
)

type GameSettings struct {
	Price      sdkmath.Uint `json:"price"`
	FeePercent uint32       `json:"feePercent"`
	Start      int64        `json:"start"`
	End        int64        `json:"end"`
	// Complete is the unix second the draw settled the game. 0 means "not drawn".
	Complete   int64  `json:"complete"`
	DrawPeriod uint64 `json:"drawPeriod"`
	MinPlayers uint32 `json:"minPlayers"`
}

type GameSecurity struct {
	Entropy       []byte `json:"entropy"`
	LastBlockHash []byte `json:"lastBlockHash,omitempty"`
	SecretKeyHash []byte `json:"secretKeyHash"`
	// SecretKey is revealed by the draw.
	SecretKey string `json:"secretKey,omitempty"`
}

type GameResults struct {
	Refunded     bool         `json:"refunded"`
	Winner       string       `json:"winner,omitempty"`
	WinningIndex uint64       `json:"winningIndex"`
	PrizePaid    sdkmath.Uint `json:"prizePaid"`
	FeesPaid     sdkmath.Uint `json:"feesPaid"`
}

type Player struct {
	Address  string `json:"address"`
	Balance  uint64 `json:"balance"` // tickets held
	Refunded bool   `json:"refunded,omitempty"`
}

// TicketRange is a run of consecutive tickets bought by one player in one
// purchase. Ticket numbers are assigned in purchase order starting at 0.
type TicketRange struct {
	Player string `json:"player"`
	Count  uint64 `json:"count"`
}

type Game struct {
	Index    uint64       `json:"index"`
	Settings GameSettings `json:"settings"`
	Security GameSecurity `json:"security"`
	Results  GameResults  `json:"results"`

	Players   []Player      `json:"players"`
	Purchases []TicketRange `json:"purchases"`

	TotalBalance uint64       `json:"totalBalance"` // tickets sold
	Pot          sdkmath.Uint `json:"pot"`
}

type GamePhase string

const (
	PhasePending    GamePhase = "pending"    // before start
	PhaseOpen       GamePhase = "open"       // [start, end]
	PhaseDrawing    GamePhase = "drawing"    // (end, end+drawPeriod]
	PhaseRefundable GamePhase = "refundable" // past the draw deadline, never drawn
	PhaseComplete   GamePhase = "complete"   // drawn
)

// DrawDeadline is the last second at which the game may still be drawn.
func (g *Game) DrawDeadline() int64 {
	return g.Settings.End + int64(g.Settings.DrawPeriod)
}

func (g *Game) Drawn() bool {
	return g.Settings.Complete != 0
}

func (g *Game) Phase(now int64) GamePhase {
	switch {
	case g.Drawn():
		return PhaseComplete
	case now < g.Settings.Start:
		return PhasePending
	case now <= g.Settings.End:
		return PhaseOpen
	case now <= g.DrawDeadline() && !g.Results.Refunded:
		return PhaseDrawing
	default:
		return PhaseRefundable
	}
}

// Finished reports whether a following game may be created.
func (g *Game) Finished(now int64) bool {
	if g.Drawn() || g.Results.Refunded {
		return true
	}
	return now > g.DrawDeadline()
}

func (g *Game) PlayerIndex(addr string) int {
	for i := range g.Players {
		if g.Players[i].Address == addr {
			return i
		}
	}
	return -1
}

func (g *Game) BalanceOf(addr string) uint64 {
	if i := g.PlayerIndex(addr); i >= 0 {
		return g.Players[i].Balance
	}
	return 0
}

// TicketOwner returns the player holding ticket n (0-based).
func (g *Game) TicketOwner(n uint64) (string, bool) {
	var seen uint64
	for _, r := range g.Purchases {
		if n < seen+r.Count {
			return r.Player, true
		}
		seen += r.Count
	}
	return "", false
}
