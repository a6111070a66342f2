package app

import (
	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

const (
	maxKeyLen   = 64
	maxValueLen = 1024
)

func kvSetValue(st *state.State, account string, msg codec.SetValueTx) (*abci.ExecTxResult, error) {
	if len(msg.Key) == 0 || len(msg.Key) > maxKeyLen {
		return nil, errorsmod.Wrapf(ErrInvalidRequest, "key must be 1..%d bytes, got %d", maxKeyLen, len(msg.Key))
	}
	if len(msg.Value) > maxValueLen {
		return nil, errorsmod.Wrapf(ErrInvalidRequest, "value exceeds %d bytes", maxValueLen)
	}
	st.SetValue(account, msg.Key, msg.Value)
	return okEvent(EventTypeValueSet, map[string]string{
		"account": account,
		"key":     msg.Key,
	}), nil
}
