package codec

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// TxEnvelope is the transaction container.
//
// CometBFT transactions are opaque bytes; txs are JSON-encoded envelopes
// carrying a typed message and a recoverable secp256k1 signature.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Nonce is a decimal u64 that must increase per signer.
	Nonce  string        `json:"nonce,omitempty"`
	Signer string        `json:"signer,omitempty"`
	Sig    hexutil.Bytes `json:"sig,omitempty"` // 65 bytes [R || S || V]
}

const SignDomain = "hkr/tx/v1"

// Tx types.
const (
	TypeBankMint = "bank/mint"
	TypeBankSend = "bank/send"
	TypeNewGame  = "raffle/new_game"
	TypePlay     = "raffle/play"
	TypeDraw     = "raffle/draw"
	TypeRefund   = "raffle/refund"
	TypeSetValue = "kv/set"
)

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// SignBytes returns the 32-byte digest a signer signs:
// keccak256(DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || keccak256(value)).
func SignBytes(typ string, value []byte, nonce string, signer string) []byte {
	sum := crypto.Keccak256(value)
	out := make([]byte, 0, len(SignDomain)+1+len(typ)+1+len(nonce)+1+len(signer)+1+len(sum))
	out = append(out, []byte(SignDomain)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum...)
	return crypto.Keccak256(out)
}

// ---- Bank ----

type BankMintTx struct {
	To     string       `json:"to"`
	Amount sdkmath.Uint `json:"amount"`
}

type BankSendTx struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Amount sdkmath.Uint `json:"amount"`
}

// ---- Raffle ----

type NewGameTx struct {
	Owner         string        `json:"owner"`
	Price         sdkmath.Uint  `json:"price"`
	SecretKeyHash hexutil.Bytes `json:"secretKeyHash"`
	DrawPeriod    uint64        `json:"drawPeriod"`
	Start         int64         `json:"start"`
	End           int64         `json:"end"`
	FeePercent    uint32        `json:"feePercent"`
	MinPlayers    uint32        `json:"minPlayers,omitempty"` // default 1
}

type PlayTx struct {
	Player string       `json:"player"`
	Value  sdkmath.Uint `json:"value"`
	// Entropy is optional player-chosen randomness mixed into the game entropy.
	Entropy hexutil.Bytes `json:"entropy,omitempty"`
}

// MaxPlayEntropy caps PlayTx.Entropy.
const MaxPlayEntropy = 32

type DrawTx struct {
	Owner     string `json:"owner"`
	SecretKey string `json:"secretKey"`
}

type RefundTx struct {
	Player    string `json:"player"`
	GameIndex uint64 `json:"gameIndex,omitempty"` // 0 = current game
}

// ---- KeyValue ----

type SetValueTx struct {
	Account string `json:"account"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

// HashSecret is the commitment published by newGame: keccak256(secret).
func HashSecret(secret string) []byte {
	return crypto.Keccak256([]byte(secret))
}

// ValidateSecret rejects secrets that cannot survive the JSON reveal.
// encoding/json rewrites invalid UTF-8, so such a secret would never match
// its own commitment at draw time.
func ValidateSecret(secret string) error {
	if !utf8.ValidString(secret) {
		return fmt.Errorf("secret is not valid UTF-8")
	}
	return nil
}
