package app

import (
	"sort"

	abci "github.com/cometbft/cometbft/abci/types"
)

// Event names follow the contract events the dApp frontends listened for.
const (
	EventTypeGameCreated       = "GameCreated"
	EventTypeTicketsPurchased  = "TicketsPurchased"
	EventTypeOverspendReturned = "OverspendReturned"
	EventTypeAnnounceWinner    = "AnnounceWinner"
	EventTypeGameRefunded      = "GameRefunded"
	EventTypeGameClosed        = "GameClosed"
	EventTypeRefundPaid        = "RefundPaid"
	EventTypeValueSet          = "ValueSet"
	EventTypeBankMinted        = "BankMinted"
	EventTypeBankSent          = "BankSent"
)

func newEvent(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}

func okEvent(typ string, attrs map[string]string) *abci.ExecTxResult {
	return &abci.ExecTxResult{
		Code:   0,
		Events: []abci.Event{newEvent(typ, attrs)},
	}
}
