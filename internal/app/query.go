package app

import (
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

// query routes a read-only request against st.
//
// Paths:
//   - /owner
//   - /account/<addr>
//   - /raffle/current_game_index
//   - /raffle/game/<i>[/settings|/security|/results|/balances|/tickets|/draw_length|/balance/<addr>]
//   - /kv/<addr>[/<key>]
func query(st *state.State, path string) (any, error) {
	if rest, ok := strings.CutPrefix(path, "/kv/"); ok {
		return queryValues(st, rest)
	}
	parts := strings.Split(strings.Trim(strings.TrimSpace(path), "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "owner":
		return codec.OwnerResponse{Owner: st.Owner}, nil

	case len(parts) == 2 && parts[0] == "account":
		addr, err := normalizeAddress(parts[1])
		if err != nil {
			return nil, err
		}
		return codec.AccountResponse{Address: addr, Balance: st.Balance(addr), Nonce: st.NonceMax[addr]}, nil

	case len(parts) == 2 && parts[0] == "raffle" && parts[1] == "current_game_index":
		return codec.CurrentGameIndexResponse{CurrentGameIndex: st.CurrentGameIndex}, nil

	case len(parts) >= 3 && parts[0] == "raffle" && parts[1] == "game":
		g, err := lookupGame(st, parts[2])
		if err != nil {
			return nil, err
		}
		return queryGame(g, parts[3:])

	default:
		return nil, errorsmod.Wrapf(ErrNotFound, "unknown query path %q", path)
	}
}

// queryValues serves /kv/<addr>[/<key>]. The key is everything after the
// address separator, byte for byte.
func queryValues(st *state.State, rest string) (any, error) {
	rawAddr, key, hasKey := strings.Cut(rest, "/")
	addr, err := normalizeAddress(rawAddr)
	if err != nil {
		return nil, err
	}
	if !hasKey || key == "" {
		values := st.Values[addr]
		if values == nil {
			values = map[string]string{}
		}
		return codec.ValuesResponse{Account: addr, Values: values}, nil
	}
	v, ok := st.Value(addr, key)
	if !ok {
		return nil, errorsmod.Wrapf(ErrNotFound, "no value for %s/%s", addr, key)
	}
	return codec.ValueResponse{Account: addr, Key: key, Value: v}, nil
}

func lookupGame(st *state.State, raw string) (*state.Game, error) {
	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, errorsmod.Wrapf(ErrInvalidRequest, "invalid game index %q", raw)
	}
	if index == 0 {
		index = st.CurrentGameIndex
	}
	g := st.Game(index)
	if g == nil {
		return nil, errorsmod.Wrapf(ErrNoGame, "game %d not found", index)
	}
	return g, nil
}

func queryGame(g *state.Game, rest []string) (any, error) {
	if len(rest) == 0 {
		return g, nil
	}
	switch rest[0] {
	case "settings":
		return g.Settings, nil
	case "security":
		return g.Security, nil
	case "results":
		return g.Results, nil
	case "balances":
		out := codec.BalancesResponse{
			GameIndex: g.Index,
			Addresses: make([]string, 0, len(g.Players)),
			Balances:  make([]uint64, 0, len(g.Players)),
		}
		for _, p := range g.Players {
			out.Addresses = append(out.Addresses, p.Address)
			out.Balances = append(out.Balances, p.Balance)
		}
		return out, nil
	case "tickets":
		return ticketListing(g), nil
	case "draw_length":
		return codec.DrawLengthResponse{GameIndex: g.Index, DrawLength: g.TotalBalance}, nil
	case "balance":
		if len(rest) != 2 {
			return nil, errorsmod.Wrap(ErrInvalidRequest, "expected /balance/<addr>")
		}
		addr, err := normalizeAddress(rest[1])
		if err != nil {
			return nil, err
		}
		return codec.PlayerBalanceResponse{GameIndex: g.Index, Address: addr, Balance: g.BalanceOf(addr)}, nil
	default:
		return nil, errorsmod.Wrapf(ErrNotFound, "unknown game view %q", rest[0])
	}
}

func ticketListing(g *state.Game) codec.TicketsResponse {
	out := codec.TicketsResponse{GameIndex: g.Index, Tickets: []string{}, Total: g.TotalBalance}
	for _, r := range g.Purchases {
		for i := uint64(0); i < r.Count; i++ {
			if len(out.Tickets) == codec.MaxTicketListing {
				out.Truncated = true
				return out
			}
			out.Tickets = append(out.Tickets, r.Player)
		}
	}
	return out
}

func queryResponse(st *state.State, path string) *abci.QueryResponse {
	v, err := query(st, path)
	if err != nil {
		codespace, code, log := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Codespace: codespace, Code: code, Log: log, Height: st.Height}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: st.Height}
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: st.Height}
}
