package app

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

// seedEntropy is the initial entropy of a game: keccak256(blockHash || u64be(index)).
func seedEntropy(blockHash []byte, index uint64) []byte {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], index)
	return crypto.Keccak256(blockHash, n[:])
}

// mixEntropy folds a purchase into the game entropy:
// keccak256(entropy || player || u64be(tickets) || clientEntropy || blockHash).
func mixEntropy(g *state.Game, player string, tickets uint64, clientEntropy, blockHash []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], tickets)
	g.Security.Entropy = crypto.Keccak256(g.Security.Entropy, common.HexToAddress(player).Bytes(), n[:], clientEntropy, blockHash)
	g.Security.LastBlockHash = append([]byte(nil), blockHash...)
}

// winningTicket picks a ticket number in [0, total).
func winningTicket(entropy []byte, secretKey string, blockHash []byte, total uint64) uint64 {
	seed := crypto.Keccak256(entropy, codec.HashSecret(secretKey), blockHash)
	n := new(big.Int).SetBytes(seed)
	return n.Mod(n, new(big.Int).SetUint64(total)).Uint64()
}

// feeAmount is floor(pot * feePercent / 100).
func feeAmount(pot sdkmath.Uint, feePercent uint32) sdkmath.Uint {
	return pot.MulUint64(uint64(feePercent)).QuoUint64(100)
}

func raffleDraw(st *state.State, blk blockInfo, caller string, msg codec.DrawTx) (*abci.ExecTxResult, error) {
	if err := requireOwner(st, caller); err != nil {
		return nil, errorsmod.Wrap(err, "only the owner can draw")
	}
	g := st.CurrentGame()
	if g == nil {
		return nil, errorsmod.Wrap(ErrNoGame, "no game has been created")
	}
	if g.Drawn() {
		return nil, errorsmod.Wrapf(ErrDrawNotAllowed, "game %d already drawn", g.Index)
	}
	if g.Results.Refunded {
		return nil, errorsmod.Wrapf(ErrDrawNotAllowed, "game %d has been refunded", g.Index)
	}
	if blk.Now <= g.Settings.End {
		return nil, errorsmod.Wrapf(ErrDrawNotAllowed, "game %d ends at %d (now %d)", g.Index, g.Settings.End, blk.Now)
	}
	if blk.Now > g.DrawDeadline() {
		return nil, errorsmod.Wrapf(ErrDrawNotAllowed, "draw period for game %d ended at %d", g.Index, g.DrawDeadline())
	}
	if err := codec.ValidateSecret(msg.SecretKey); err != nil {
		return nil, errorsmod.Wrap(ErrInvalidRequest, err.Error())
	}
	if !bytes.Equal(codec.HashSecret(msg.SecretKey), g.Security.SecretKeyHash) {
		return nil, errorsmod.Wrap(ErrSecretMismatch, "keccak256(secretKey) does not match the committed hash")
	}

	g.Security.SecretKey = msg.SecretKey
	g.Settings.Complete = blk.Now

	if len(g.Players) == 0 {
		return okEvent(EventTypeGameClosed, map[string]string{
			"gameIndex": fmt.Sprintf("%d", g.Index),
			"reason":    "no players",
		}), nil
	}
	if uint32(len(g.Players)) < g.Settings.MinPlayers {
		return refundAll(st, g)
	}

	idx := winningTicket(g.Security.Entropy, msg.SecretKey, blk.Hash, g.TotalBalance)
	winner, ok := g.TicketOwner(idx)
	if !ok {
		return nil, fmt.Errorf("game %d: ticket %d has no owner", g.Index, idx)
	}
	pot := g.Pot
	fees := feeAmount(pot, g.Settings.FeePercent)
	prize := pot.Sub(fees)

	st.Credit(winner, prize)
	st.Credit(st.Owner, fees)
	g.Pot = sdkmath.ZeroUint()
	g.Results.Winner = winner
	g.Results.WinningIndex = idx
	g.Results.PrizePaid = prize
	g.Results.FeesPaid = fees

	return okEvent(EventTypeAnnounceWinner, map[string]string{
		"gameIndex":      fmt.Sprintf("%d", g.Index),
		"winningIndex":   fmt.Sprintf("%d", idx),
		"winningAddress": winner,
		"winningPrize":   prize.String(),
		"feesPaid":       fees.String(),
		"secretKey":      msg.SecretKey,
	}), nil
}

// refundAll settles a drawn game that did not reach its minimum player count.
func refundAll(st *state.State, g *state.Game) (*abci.ExecTxResult, error) {
	events := []abci.Event{newEvent(EventTypeGameRefunded, map[string]string{
		"gameIndex": fmt.Sprintf("%d", g.Index),
		"reason":    fmt.Sprintf("%d players, %d required", len(g.Players), g.Settings.MinPlayers),
	})}
	for i := range g.Players {
		if g.Players[i].Refunded {
			continue
		}
		amount, err := refundPlayer(st, g, i)
		if err != nil {
			return nil, err
		}
		events = append(events, newEvent(EventTypeRefundPaid, map[string]string{
			"gameIndex": fmt.Sprintf("%d", g.Index),
			"player":    g.Players[i].Address,
			"amount":    amount.String(),
		}))
	}
	g.Results.Refunded = true
	return &abci.ExecTxResult{Code: 0, Events: events}, nil
}
