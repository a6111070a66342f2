package app

import (
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"hashkeyraffle/internal/state"
)

type GenesisAccount struct {
	Address string       `json:"address"`
	Balance sdkmath.Uint `json:"balance"`
}

// GenesisState is the app_state carried in the CometBFT genesis file.
type GenesisState struct {
	Owner    string           `json:"owner"`
	Accounts []GenesisAccount `json:"accounts"`
}

// DefaultGenesis funds the owner with balance.
func DefaultGenesis(owner string, balance sdkmath.Uint) GenesisState {
	gs := GenesisState{Owner: owner, Accounts: []GenesisAccount{}}
	if !balance.IsNil() && !balance.IsZero() {
		gs.Accounts = append(gs.Accounts, GenesisAccount{Address: owner, Balance: balance})
	}
	return gs
}

func (gs GenesisState) Validate() error {
	if _, err := normalizeAddress(gs.Owner); err != nil {
		return errorsmod.Wrap(err, "genesis owner")
	}
	seen := map[string]bool{}
	for i, acct := range gs.Accounts {
		addr, err := normalizeAddress(acct.Address)
		if err != nil {
			return errorsmod.Wrapf(err, "genesis account %d", i)
		}
		if seen[addr] {
			return errorsmod.Wrapf(ErrInvalidRequest, "duplicate genesis account %s", addr)
		}
		seen[addr] = true
		if acct.Balance.IsNil() {
			return errorsmod.Wrapf(ErrInvalidRequest, "genesis account %s has no balance", addr)
		}
	}
	return nil
}

func applyGenesis(st *state.State, raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty app_state")
	}
	var gs GenesisState
	if err := json.Unmarshal(raw, &gs); err != nil {
		return fmt.Errorf("decode app_state: %w", err)
	}
	if err := gs.Validate(); err != nil {
		return err
	}
	owner, _ := normalizeAddress(gs.Owner)
	st.Owner = owner
	for _, acct := range gs.Accounts {
		addr, _ := normalizeAddress(acct.Address)
		st.Credit(addr, acct.Balance)
	}
	return nil
}
