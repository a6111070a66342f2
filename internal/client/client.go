package client

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	cmttypes "github.com/cometbft/cometbft/types"
	"github.com/ethereum/go-ethereum/crypto"

	"hashkeyraffle/internal/codec"
	"hashkeyraffle/internal/state"
)

// RPC is the part of the CometBFT RPC client used here.
type RPC interface {
	ABCIQuery(ctx context.Context, path string, data cmtbytes.HexBytes) (*coretypes.ResultABCIQuery, error)
	BroadcastTxCommit(ctx context.Context, tx cmttypes.Tx) (*coretypes.ResultBroadcastTxCommit, error)
}

// TxError is a tx rejected by CheckTx or by execution.
type TxError struct {
	Stage     string // "check" or "deliver"
	Codespace string
	Code      uint32
	Log       string
}

func (e *TxError) Error() string {
	return fmt.Sprintf("%s tx failed: codespace=%s code=%d: %s", e.Stage, e.Codespace, e.Code, e.Log)
}

// QueryError is a non-zero ABCI query response.
type QueryError struct {
	Path      string
	Codespace string
	Code      uint32
	Log       string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s failed: codespace=%s code=%d: %s", e.Path, e.Codespace, e.Code, e.Log)
}

type TxResult struct {
	Hash   string
	Height int64
	Events []abci.Event
}

type Client struct {
	rpc  RPC
	key  *ecdsa.PrivateKey
	addr string

	mu        sync.Mutex
	lastNonce uint64
	now       func() time.Time
}

// Dial connects to a CometBFT RPC endpoint such as http://127.0.0.1:26657.
// key may be nil for query-only use.
func Dial(remote string, key *ecdsa.PrivateKey) (*Client, error) {
	rpc, err := rpchttp.New(remote)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", remote, err)
	}
	return New(rpc, key), nil
}

func New(rpc RPC, key *ecdsa.PrivateKey) *Client {
	c := &Client{rpc: rpc, key: key, now: time.Now}
	if key != nil {
		c.addr = crypto.PubkeyToAddress(key.PublicKey).Hex()
	}
	return c
}

// Address is the checksummed address of the signing key.
func (c *Client) Address() string {
	return c.addr
}

// nextNonce returns a strictly increasing nonce seeded from the wall clock so
// separate invocations of the CLI do not collide.
func (c *Client) nextNonce() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := uint64(c.now().UnixNano())
	if n <= c.lastNonce {
		n = c.lastNonce + 1
	}
	c.lastNonce = n
	return n
}

// Broadcast signs msg as typ and waits for it to be committed.
func (c *Client) Broadcast(ctx context.Context, typ string, msg any) (*TxResult, error) {
	if c.key == nil {
		return nil, fmt.Errorf("no signing key loaded")
	}
	tx, err := codec.SignTx(c.key, typ, msg, c.nextNonce())
	if err != nil {
		return nil, err
	}
	res, err := c.rpc.BroadcastTxCommit(ctx, cmttypes.Tx(tx))
	if err != nil {
		return nil, fmt.Errorf("broadcast %s: %w", typ, err)
	}
	if res.CheckTx.Code != 0 {
		return nil, &TxError{Stage: "check", Codespace: res.CheckTx.Codespace, Code: res.CheckTx.Code, Log: res.CheckTx.Log}
	}
	if res.TxResult.Code != 0 {
		return nil, &TxError{Stage: "deliver", Codespace: res.TxResult.Codespace, Code: res.TxResult.Code, Log: res.TxResult.Log}
	}
	return &TxResult{Hash: res.Hash.String(), Height: res.Height, Events: res.TxResult.Events}, nil
}

// ---- Transactions ----

type NewGameParams struct {
	Price      sdkmath.Uint
	Secret     string
	DrawPeriod time.Duration
	Start      time.Time
	End        time.Time
	FeePercent uint32
	MinPlayers uint32
}

// NewGame commits to keccak256(Secret); the secret itself never leaves the
// client until Draw.
func (c *Client) NewGame(ctx context.Context, p NewGameParams) (*TxResult, error) {
	if err := codec.ValidateSecret(p.Secret); err != nil {
		return nil, err
	}
	return c.Broadcast(ctx, codec.TypeNewGame, codec.NewGameTx{
		Owner:         c.addr,
		Price:         p.Price,
		SecretKeyHash: codec.HashSecret(p.Secret),
		DrawPeriod:    uint64(p.DrawPeriod / time.Second),
		Start:         p.Start.Unix(),
		End:           p.End.Unix(),
		FeePercent:    p.FeePercent,
		MinPlayers:    p.MinPlayers,
	})
}

// Play buys tickets with value. entropy is optional and mixed into the game
// entropy on chain.
func (c *Client) Play(ctx context.Context, value sdkmath.Uint, entropy []byte) (*TxResult, error) {
	if len(entropy) > codec.MaxPlayEntropy {
		return nil, fmt.Errorf("entropy exceeds %d bytes", codec.MaxPlayEntropy)
	}
	return c.Broadcast(ctx, codec.TypePlay, codec.PlayTx{Player: c.addr, Value: value, Entropy: entropy})
}

func (c *Client) Draw(ctx context.Context, secret string) (*TxResult, error) {
	if err := codec.ValidateSecret(secret); err != nil {
		return nil, err
	}
	return c.Broadcast(ctx, codec.TypeDraw, codec.DrawTx{Owner: c.addr, SecretKey: secret})
}

// Refund claims back tickets of gameIndex (0 = current game).
func (c *Client) Refund(ctx context.Context, gameIndex uint64) (*TxResult, error) {
	return c.Broadcast(ctx, codec.TypeRefund, codec.RefundTx{Player: c.addr, GameIndex: gameIndex})
}

func (c *Client) Send(ctx context.Context, to string, amount sdkmath.Uint) (*TxResult, error) {
	return c.Broadcast(ctx, codec.TypeBankSend, codec.BankSendTx{From: c.addr, To: to, Amount: amount})
}

func (c *Client) Mint(ctx context.Context, to string, amount sdkmath.Uint) (*TxResult, error) {
	return c.Broadcast(ctx, codec.TypeBankMint, codec.BankMintTx{To: to, Amount: amount})
}

func (c *Client) SetValue(ctx context.Context, key, value string) (*TxResult, error) {
	return c.Broadcast(ctx, codec.TypeSetValue, codec.SetValueTx{Account: c.addr, Key: key, Value: value})
}

// ---- Queries ----

func (c *Client) query(ctx context.Context, path string, out any) error {
	res, err := c.rpc.ABCIQuery(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("query %s: %w", path, err)
	}
	r := res.Response
	if r.Code != 0 {
		return &QueryError{Path: path, Codespace: r.Codespace, Code: r.Code, Log: r.Log}
	}
	if err := json.Unmarshal(r.Value, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) Owner(ctx context.Context) (string, error) {
	var out codec.OwnerResponse
	err := c.query(ctx, "/owner", &out)
	return out.Owner, err
}

func (c *Client) Account(ctx context.Context, addr string) (codec.AccountResponse, error) {
	var out codec.AccountResponse
	err := c.query(ctx, "/account/"+addr, &out)
	return out, err
}

func (c *Client) CurrentGameIndex(ctx context.Context) (uint64, error) {
	var out codec.CurrentGameIndexResponse
	err := c.query(ctx, "/raffle/current_game_index", &out)
	return out.CurrentGameIndex, err
}

func gamePath(index uint64, view string) string {
	p := fmt.Sprintf("/raffle/game/%d", index)
	if view != "" {
		p += "/" + view
	}
	return p
}

// Game returns the full game record (index 0 = current game).
func (c *Client) Game(ctx context.Context, index uint64) (*state.Game, error) {
	var out state.Game
	if err := c.query(ctx, gamePath(index, ""), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GameSettings(ctx context.Context, index uint64) (state.GameSettings, error) {
	var out state.GameSettings
	err := c.query(ctx, gamePath(index, "settings"), &out)
	return out, err
}

func (c *Client) GameSecurity(ctx context.Context, index uint64) (state.GameSecurity, error) {
	var out state.GameSecurity
	err := c.query(ctx, gamePath(index, "security"), &out)
	return out, err
}

func (c *Client) GameResults(ctx context.Context, index uint64) (state.GameResults, error) {
	var out state.GameResults
	err := c.query(ctx, gamePath(index, "results"), &out)
	return out, err
}

func (c *Client) Balances(ctx context.Context, index uint64) (codec.BalancesResponse, error) {
	var out codec.BalancesResponse
	err := c.query(ctx, gamePath(index, "balances"), &out)
	return out, err
}

func (c *Client) Tickets(ctx context.Context, index uint64) (codec.TicketsResponse, error) {
	var out codec.TicketsResponse
	err := c.query(ctx, gamePath(index, "tickets"), &out)
	return out, err
}

func (c *Client) DrawLength(ctx context.Context, index uint64) (uint64, error) {
	var out codec.DrawLengthResponse
	err := c.query(ctx, gamePath(index, "draw_length"), &out)
	return out.DrawLength, err
}

func (c *Client) PlayerBalance(ctx context.Context, index uint64, addr string) (uint64, error) {
	var out codec.PlayerBalanceResponse
	err := c.query(ctx, gamePath(index, "balance/"+addr), &out)
	return out.Balance, err
}

func (c *Client) Value(ctx context.Context, account, key string) (string, error) {
	var out codec.ValueResponse
	err := c.query(ctx, "/kv/"+account+"/"+key, &out)
	return out.Value, err
}

func (c *Client) Values(ctx context.Context, account string) (map[string]string, error) {
	var out codec.ValuesResponse
	err := c.query(ctx, "/kv/"+account, &out)
	return out.Values, err
}
