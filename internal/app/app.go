package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

const (
	AppVersion uint64 = 1
	ModuleName        = "raffle"
)

type RaffleApp struct {
	*abci.BaseApplication

	logger log.Logger
	store  *state.Store

	mu       sync.Mutex
	st       *state.State
	lastHash []byte

	// committed is what Query serves; it only moves on Commit.
	committed *state.State
}

// New loads the last committed state from store.
func New(store *state.Store, logger log.Logger) (*RaffleApp, error) {
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	height, hash, err := store.LastCommit()
	if err != nil {
		return nil, err
	}
	if height != st.Height {
		return nil, fmt.Errorf("commit info height %d does not match state height %d", height, st.Height)
	}
	if height > 0 {
		if got := st.AppHash(); !bytes.Equal(got, hash) {
			return nil, fmt.Errorf("stored app hash %X does not match state hash %X", hash, got)
		}
	}
	committed, err := st.Clone()
	if err != nil {
		return nil, err
	}
	return &RaffleApp{
		BaseApplication: abci.NewBaseApplication(),
		logger:          logger.With("module", ModuleName),
		store:           store,
		st:              st,
		lastHash:        hash,
		committed:       committed,
	}, nil
}

func (a *RaffleApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "hashkey-raffle",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx only verifies structure and signature; nonces and balances are
// checked when the tx executes.
func (a *RaffleApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		err = errorsmod.Wrap(ErrInvalidRequest, err.Error())
	} else if _, ok := txTypes[env.Type]; !ok {
		err = errorsmod.Wrapf(ErrUnknownTx, "%q", env.Type)
	} else {
		_, err = recoverSigner(env)
	}
	if err != nil {
		codespace, code, msg := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Codespace: codespace, Code: code, Log: msg}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *RaffleApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := applyGenesis(a.st, req.AppStateBytes); err != nil {
		return nil, fmt.Errorf("init chain: %w", err)
	}
	a.lastHash = a.st.AppHash()
	committed, err := a.st.Clone()
	if err != nil {
		return nil, fmt.Errorf("init chain: %w", err)
	}
	a.committed = committed
	a.logger.Info("genesis loaded", "chain_id", req.ChainId, "owner", a.st.Owner, "accounts", len(a.st.Accounts))
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *RaffleApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height
	blk := blockInfo{Height: req.Height, Now: req.Time.Unix(), Hash: req.Hash}

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		txResults = append(txResults, a.deliverTx(txBytes, blk))
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *RaffleApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Save(a.st, a.lastHash); err != nil {
		// Returning the error halts the node instead of diverging silently.
		return nil, err
	}
	committed, err := a.st.Clone()
	if err != nil {
		return nil, err
	}
	a.committed = committed
	a.logger.Debug("committed", "height", a.st.Height, "app_hash", fmt.Sprintf("%X", a.lastHash))
	return &abci.CommitResponse{}, nil
}

// Query reads the last committed state, never the block being finalized.
func (a *RaffleApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return queryResponse(a.committed, req.Path), nil
}

// deliverTx executes one tx against a staged copy of state and only keeps the
// copy when the tx succeeds.
func (a *RaffleApp) deliverTx(txBytes []byte, blk blockInfo) (res *abci.ExecTxResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("tx panicked", "height", blk.Height, "panic", r)
			res = errResult(errorsmod.Wrapf(ErrInvalidRequest, "tx aborted: %v", r))
		}
	}()

	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(errorsmod.Wrap(ErrInvalidRequest, err.Error()))
	}
	staged, err := a.st.Clone()
	if err != nil {
		return errResult(err)
	}
	res, err = execute(staged, env, blk)
	if err != nil {
		a.logger.Debug("tx rejected", "height", blk.Height, "type", env.Type, "signer", env.Signer, "err", err)
		return errResult(err)
	}
	a.st = staged

	switch env.Type {
	case codec.TypeNewGame, codec.TypeDraw, codec.TypeRefund:
		a.logger.Info("raffle tx", "height", blk.Height, "type", env.Type, "game", a.st.CurrentGameIndex, "events", eventTypes(res.Events))
	}
	return res
}

var txTypes = map[string]struct{}{
	codec.TypeBankMint: {},
	codec.TypeBankSend: {},
	codec.TypeNewGame:  {},
	codec.TypePlay:     {},
	codec.TypeDraw:     {},
	codec.TypeRefund:   {},
	codec.TypeSetValue: {},
}

func execute(st *state.State, env codec.TxEnvelope, blk blockInfo) (*abci.ExecTxResult, error) {
	switch env.Type {
	case codec.TypeBankMint:
		msg, err := decodeMsg[codec.BankMintTx](env)
		if err != nil {
			return nil, err
		}
		minter, err := requireAccountAuth(st, env, env.Signer)
		if err != nil {
			return nil, err
		}
		return bankMint(st, minter, msg)

	case codec.TypeBankSend:
		msg, err := decodeMsg[codec.BankSendTx](env)
		if err != nil {
			return nil, err
		}
		from, err := requireAccountAuth(st, env, msg.From)
		if err != nil {
			return nil, err
		}
		return bankSend(st, from, msg)

	case codec.TypeNewGame:
		msg, err := decodeMsg[codec.NewGameTx](env)
		if err != nil {
			return nil, err
		}
		owner, err := requireAccountAuth(st, env, msg.Owner)
		if err != nil {
			return nil, err
		}
		return raffleNewGame(st, blk, owner, msg)

	case codec.TypePlay:
		msg, err := decodeMsg[codec.PlayTx](env)
		if err != nil {
			return nil, err
		}
		player, err := requireAccountAuth(st, env, msg.Player)
		if err != nil {
			return nil, err
		}
		return rafflePlay(st, blk, player, msg)

	case codec.TypeDraw:
		msg, err := decodeMsg[codec.DrawTx](env)
		if err != nil {
			return nil, err
		}
		owner, err := requireAccountAuth(st, env, msg.Owner)
		if err != nil {
			return nil, err
		}
		return raffleDraw(st, blk, owner, msg)

	case codec.TypeRefund:
		msg, err := decodeMsg[codec.RefundTx](env)
		if err != nil {
			return nil, err
		}
		player, err := requireAccountAuth(st, env, msg.Player)
		if err != nil {
			return nil, err
		}
		return raffleRefund(st, blk, player, msg)

	case codec.TypeSetValue:
		msg, err := decodeMsg[codec.SetValueTx](env)
		if err != nil {
			return nil, err
		}
		account, err := requireAccountAuth(st, env, msg.Account)
		if err != nil {
			return nil, err
		}
		return kvSetValue(st, account, msg)

	default:
		return nil, errorsmod.Wrapf(ErrUnknownTx, "%q", env.Type)
	}
}

func decodeMsg[T any](env codec.TxEnvelope) (T, error) {
	var msg T
	if err := json.Unmarshal(env.Value, &msg); err != nil {
		return msg, errorsmod.Wrapf(ErrInvalidRequest, "bad %s value: %v", env.Type, err)
	}
	return msg, nil
}

func errResult(err error) *abci.ExecTxResult {
	codespace, code, msg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Codespace: codespace, Code: code, Log: msg}
}

func eventTypes(events []abci.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}
