package app

import (
	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

func bankMint(st *state.State, minter string, msg codec.BankMintTx) (*abci.ExecTxResult, error) {
	if err := requireOwner(st, minter); err != nil {
		return nil, err
	}
	to, err := normalizeAddress(msg.To)
	if err != nil {
		return nil, err
	}
	if msg.Amount.IsNil() || msg.Amount.IsZero() {
		return nil, errorsmod.Wrap(ErrInvalidRequest, "amount must be > 0")
	}
	st.Credit(to, msg.Amount)
	return okEvent(EventTypeBankMinted, map[string]string{
		"to":     to,
		"amount": msg.Amount.String(),
	}), nil
}

func bankSend(st *state.State, from string, msg codec.BankSendTx) (*abci.ExecTxResult, error) {
	to, err := normalizeAddress(msg.To)
	if err != nil {
		return nil, err
	}
	if msg.Amount.IsNil() || msg.Amount.IsZero() {
		return nil, errorsmod.Wrap(ErrInvalidRequest, "amount must be > 0")
	}
	if err := st.Debit(from, msg.Amount); err != nil {
		return nil, errorsmod.Wrap(ErrInsufficientFunds, err.Error())
	}
	st.Credit(to, msg.Amount)
	return okEvent(EventTypeBankSent, map[string]string{
		"from":   from,
		"to":     to,
		"amount": msg.Amount.String(),
	}), nil
}
