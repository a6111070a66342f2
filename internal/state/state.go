package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
)

type State struct {
	Height int64 `json:"height"`

	// Owner is the only account allowed to create games, draw and mint.
	Owner string `json:"owner"`

	Accounts map[string]sdkmath.Uint `json:"accounts"`
	NonceMax map[string]uint64       `json:"nonceMax,omitempty"` // signer -> last accepted tx.nonce, for replay protection

	CurrentGameIndex uint64           `json:"currentGameIndex"`
	Games            map[uint64]*Game `json:"games"`

	// Values backs the KeyValue store: account -> key -> value.
	Values map[string]map[string]string `json:"values,omitempty"`
}

func NewState() *State {
	return &State{
		Accounts: map[string]sdkmath.Uint{},
		NonceMax: map[string]uint64{},
		Games:    map[uint64]*Game{},
		Values:   map[string]map[string]string{},
	}
}

func (s *State) normalize() {
	if s.Accounts == nil {
		s.Accounts = map[string]sdkmath.Uint{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Games == nil {
		s.Games = map[uint64]*Game{}
	}
	if s.Values == nil {
		s.Values = map[string]map[string]string{}
	}
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

func (s *State) AppHash() []byte {
	// encoding/json sorts map keys, but games are hashed by id order explicitly
	// so the layout does not depend on that.
	type accountKV struct {
		Addr    string       `json:"addr"`
		Balance sdkmath.Uint `json:"balance"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	type valueKV struct {
		Account string `json:"account"`
		Key     string `json:"key"`
		Value   string `json:"value"`
	}

	accounts := make([]accountKV, 0, len(s.Accounts))
	for k, v := range s.Accounts {
		accounts = append(accounts, accountKV{Addr: k, Balance: v})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Addr < accounts[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	games := make([]*Game, 0, len(s.Games))
	for _, g := range s.Games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Index < games[j].Index })

	values := []valueKV{}
	for acct, kv := range s.Values {
		for k, v := range kv {
			values = append(values, valueKV{Account: acct, Key: k, Value: v})
		}
	}
	sort.Slice(values, func(i, j int) bool {
		if values[i].Account != values[j].Account {
			return values[i].Account < values[j].Account
		}
		return values[i].Key < values[j].Key
	})

	normalized := struct {
		Height           int64       `json:"height"`
		Owner            string      `json:"owner"`
		Accounts         []accountKV `json:"accounts"`
		NonceMax         []nonceKV   `json:"nonceMax,omitempty"`
		CurrentGameIndex uint64      `json:"currentGameIndex"`
		Games            []*Game     `json:"games"`
		Values           []valueKV   `json:"values,omitempty"`
	}{
		Height:           s.Height,
		Owner:            s.Owner,
		Accounts:         accounts,
		NonceMax:         nonces,
		CurrentGameIndex: s.CurrentGameIndex,
		Games:            games,
		Values:           values,
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}

// ---- Bank ----

func (s *State) Balance(addr string) sdkmath.Uint {
	bal, ok := s.Accounts[addr]
	if !ok {
		return sdkmath.ZeroUint()
	}
	return bal
}

func (s *State) Credit(addr string, amount sdkmath.Uint) {
	if amount.IsZero() {
		return
	}
	s.Accounts[addr] = s.Balance(addr).Add(amount)
}

func (s *State) Debit(addr string, amount sdkmath.Uint) error {
	bal := s.Balance(addr)
	if bal.LT(amount) {
		return fmt.Errorf("insufficient funds: have=%s need=%s", bal, amount)
	}
	if amount.IsZero() {
		return nil
	}
	s.Accounts[addr] = bal.Sub(amount)
	return nil
}

// TotalSupply sums every account balance plus every undistributed game pot.
func (s *State) TotalSupply() sdkmath.Uint {
	total := sdkmath.ZeroUint()
	for _, bal := range s.Accounts {
		total = total.Add(bal)
	}
	for _, g := range s.Games {
		total = total.Add(g.Pot)
	}
	return total
}

// ---- Raffle ----

func (s *State) Game(index uint64) *Game {
	return s.Games[index]
}

func (s *State) CurrentGame() *Game {
	if s.CurrentGameIndex == 0 {
		return nil
	}
	return s.Games[s.CurrentGameIndex]
}

// ---- KeyValue ----

func (s *State) SetValue(account, key, value string) {
	kv := s.Values[account]
	if kv == nil {
		kv = map[string]string{}
		s.Values[account] = kv
	}
	kv[key] = value
}

func (s *State) Value(account, key string) (string, bool) {
	v, ok := s.Values[account][key]
	return v, ok
}
