package codec

import sdkmath "cosmossdk.io/math"

// Query response bodies returned by the ABCI Query handler.

type OwnerResponse struct {
	Owner string `json:"owner"`
}

type AccountResponse struct {
	Address string       `json:"address"`
	Balance sdkmath.Uint `json:"balance"`
	Nonce   uint64       `json:"nonce"`
}

type CurrentGameIndexResponse struct {
	CurrentGameIndex uint64 `json:"currentGameIndex"`
}

// BalancesResponse holds parallel arrays in first-purchase order.
type BalancesResponse struct {
	GameIndex uint64   `json:"gameIndex"`
	Addresses []string `json:"addresses"`
	Balances  []uint64 `json:"balances"`
}

// TicketsResponse lists one address per ticket. Truncated is set when the
// list stopped at MaxTicketListing entries.
type TicketsResponse struct {
	GameIndex uint64   `json:"gameIndex"`
	Tickets   []string `json:"tickets"`
	Total     uint64   `json:"total"`
	Truncated bool     `json:"truncated,omitempty"`
}

const MaxTicketListing = 10000

type DrawLengthResponse struct {
	GameIndex  uint64 `json:"gameIndex"`
	DrawLength uint64 `json:"drawLength"`
}

type PlayerBalanceResponse struct {
	GameIndex uint64 `json:"gameIndex"`
	Address   string `json:"address"`
	Balance   uint64 `json:"balance"`
}

type ValueResponse struct {
	Account string `json:"account"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

type ValuesResponse struct {
	Account string            `json:"account"`
	Values  map[string]string `json:"values"`
}
