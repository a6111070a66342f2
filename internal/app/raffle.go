package app

import (
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

const (
	maxDrawPeriodSecs uint64 = 7 * 24 * 60 * 60
	defaultMinPlayers uint32 = 1
	maxFeePercent     uint32 = 99
)

// blockInfo is the per-block context a tx executes in.
type blockInfo struct {
	Height int64
	Now    int64 // block time, unix seconds
	Hash   []byte
}

func raffleNewGame(st *state.State, blk blockInfo, caller string, msg codec.NewGameTx) (*abci.ExecTxResult, error) {
	if err := requireOwner(st, caller); err != nil {
		return nil, errorsmod.Wrap(err, "only the owner can create a game")
	}
	if prev := st.CurrentGame(); prev != nil && !prev.Finished(blk.Now) {
		return nil, errorsmod.Wrapf(ErrGameInProgress, "game %d is %s", prev.Index, prev.Phase(blk.Now))
	}
	if msg.Start < blk.Now {
		return nil, errorsmod.Wrapf(ErrInvalidGameConfig, "start %d is in the past (now %d)", msg.Start, blk.Now)
	}
	if msg.End <= msg.Start {
		return nil, errorsmod.Wrapf(ErrInvalidGameConfig, "end %d must be after start %d", msg.End, msg.Start)
	}
	if msg.Price.IsNil() || msg.Price.IsZero() {
		return nil, errorsmod.Wrap(ErrInvalidGameConfig, "price must be > 0")
	}
	if msg.FeePercent > maxFeePercent {
		return nil, errorsmod.Wrapf(ErrInvalidGameConfig, "feePercent %d must be below 100", msg.FeePercent)
	}
	if msg.DrawPeriod == 0 || msg.DrawPeriod > maxDrawPeriodSecs {
		return nil, errorsmod.Wrapf(ErrInvalidGameConfig, "drawPeriod %d must be in (0, %d]", msg.DrawPeriod, maxDrawPeriodSecs)
	}
	if _, err := addInt64AndU64Checked(msg.End, msg.DrawPeriod, "draw deadline"); err != nil {
		return nil, errorsmod.Wrap(ErrInvalidGameConfig, err.Error())
	}
	if len(msg.SecretKeyHash) != 32 {
		return nil, errorsmod.Wrapf(ErrInvalidGameConfig, "secretKeyHash must be 32 bytes, got %d", len(msg.SecretKeyHash))
	}
	minPlayers := msg.MinPlayers
	if minPlayers == 0 {
		minPlayers = defaultMinPlayers
	}

	index, err := addUint64Checked(st.CurrentGameIndex, 1, "game index")
	if err != nil {
		return nil, err
	}
	st.CurrentGameIndex = index
	st.Games[index] = &state.Game{
		Index: index,
		Settings: state.GameSettings{
			Price:      msg.Price,
			FeePercent: msg.FeePercent,
			Start:      msg.Start,
			End:        msg.End,
			DrawPeriod: msg.DrawPeriod,
			MinPlayers: minPlayers,
		},
		Security: state.GameSecurity{
			Entropy:       seedEntropy(blk.Hash, index),
			LastBlockHash: append([]byte(nil), blk.Hash...),
			SecretKeyHash: append([]byte(nil), msg.SecretKeyHash...),
		},
		Results: state.GameResults{
			PrizePaid: sdkmath.ZeroUint(),
			FeesPaid:  sdkmath.ZeroUint(),
		},
		Players:   []state.Player{},
		Purchases: []state.TicketRange{},
		Pot:       sdkmath.ZeroUint(),
	}

	return okEvent(EventTypeGameCreated, map[string]string{
		"gameIndex":     fmt.Sprintf("%d", index),
		"price":         msg.Price.String(),
		"feePercent":    fmt.Sprintf("%d", msg.FeePercent),
		"start":         fmt.Sprintf("%d", msg.Start),
		"end":           fmt.Sprintf("%d", msg.End),
		"secretKeyHash": hexutil.Encode(msg.SecretKeyHash),
	}), nil
}

func rafflePlay(st *state.State, blk blockInfo, player string, msg codec.PlayTx) (*abci.ExecTxResult, error) {
	g := st.CurrentGame()
	if g == nil {
		return nil, errorsmod.Wrap(ErrNoGame, "no game has been created")
	}
	if phase := g.Phase(blk.Now); phase != state.PhaseOpen {
		return nil, errorsmod.Wrapf(ErrGameNotOpen, "game %d is %s (start=%d end=%d now=%d)",
			g.Index, phase, g.Settings.Start, g.Settings.End, blk.Now)
	}
	if msg.Value.IsNil() || msg.Value.IsZero() {
		return nil, errorsmod.Wrap(ErrInvalidRequest, "value must be > 0")
	}
	if len(msg.Entropy) > codec.MaxPlayEntropy {
		return nil, errorsmod.Wrapf(ErrInvalidRequest, "entropy exceeds %d bytes", codec.MaxPlayEntropy)
	}

	price := g.Settings.Price
	whole := msg.Value.Quo(price)
	if whole.IsZero() {
		return nil, errorsmod.Wrapf(ErrInvalidRequest, "value %s is below the ticket price %s", msg.Value, price)
	}
	if !whole.BigInt().IsUint64() {
		return nil, errorsmod.Wrap(ErrInvalidRequest, "ticket count overflows uint64")
	}
	tickets := whole.Uint64()
	cost := price.MulUint64(tickets)
	overspend := msg.Value.Sub(cost)

	// The whole payment must be available even though only cost is taken.
	if bal := st.Balance(player); bal.LT(msg.Value) {
		return nil, errorsmod.Wrapf(ErrInsufficientFunds, "have=%s need=%s", bal, msg.Value)
	}
	total, err := addUint64Checked(g.TotalBalance, tickets, "total tickets")
	if err != nil {
		return nil, err
	}
	idx := g.PlayerIndex(player)
	if idx < 0 {
		g.Players = append(g.Players, state.Player{Address: player})
		idx = len(g.Players) - 1
	}
	balance, err := addUint64Checked(g.Players[idx].Balance, tickets, "player tickets")
	if err != nil {
		return nil, err
	}
	if err := st.Debit(player, cost); err != nil {
		return nil, errorsmod.Wrap(ErrInsufficientFunds, err.Error())
	}

	g.Players[idx].Balance = balance
	if n := len(g.Purchases); n > 0 && g.Purchases[n-1].Player == player {
		g.Purchases[n-1].Count += tickets
	} else {
		g.Purchases = append(g.Purchases, state.TicketRange{Player: player, Count: tickets})
	}
	g.TotalBalance = total
	g.Pot = g.Pot.Add(cost)
	mixEntropy(g, player, tickets, msg.Entropy, blk.Hash)

	res := okEvent(EventTypeTicketsPurchased, map[string]string{
		"gameIndex":    fmt.Sprintf("%d", g.Index),
		"player":       player,
		"balance":      fmt.Sprintf("%d", balance),
		"totalBalance": fmt.Sprintf("%d", total),
	})
	if !overspend.IsZero() {
		res.Events = append(res.Events, newEvent(EventTypeOverspendReturned, map[string]string{
			"gameIndex": fmt.Sprintf("%d", g.Index),
			"player":    player,
			"amount":    overspend.String(),
		}))
	}
	return res, nil
}

func raffleRefund(st *state.State, blk blockInfo, player string, msg codec.RefundTx) (*abci.ExecTxResult, error) {
	index := msg.GameIndex
	if index == 0 {
		index = st.CurrentGameIndex
	}
	g := st.Game(index)
	if g == nil {
		return nil, errorsmod.Wrapf(ErrNoGame, "game %d not found", index)
	}
	if g.Drawn() {
		return nil, errorsmod.Wrapf(ErrRefundNotAllowed, "game %d was drawn", index)
	}
	if blk.Now <= g.DrawDeadline() {
		return nil, errorsmod.Wrapf(ErrRefundNotAllowed, "refunds for game %d open after %d", index, g.DrawDeadline())
	}
	idx := g.PlayerIndex(player)
	if idx < 0 || g.Players[idx].Balance == 0 {
		return nil, errorsmod.Wrapf(ErrRefundNotAllowed, "%s holds no tickets in game %d", player, index)
	}
	if g.Players[idx].Refunded {
		return nil, errorsmod.Wrapf(ErrRefundNotAllowed, "%s was already refunded", player)
	}

	amount, err := refundPlayer(st, g, idx)
	if err != nil {
		return nil, err
	}
	g.Results.Refunded = true

	return okEvent(EventTypeRefundPaid, map[string]string{
		"gameIndex": fmt.Sprintf("%d", index),
		"player":    player,
		"amount":    amount.String(),
	}), nil
}

// refundPlayer moves a player's stake out of the pot back to their account.
func refundPlayer(st *state.State, g *state.Game, idx int) (sdkmath.Uint, error) {
	p := &g.Players[idx]
	amount := g.Settings.Price.MulUint64(p.Balance)
	if g.Pot.LT(amount) {
		return sdkmath.ZeroUint(), fmt.Errorf("game %d pot %s cannot cover refund %s", g.Index, g.Pot, amount)
	}
	g.Pot = g.Pot.Sub(amount)
	st.Credit(p.Address, amount)
	p.Refunded = true
	return amount, nil
}
