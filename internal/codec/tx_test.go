package codec

import (
	"encoding/json"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestDecodeTxEnvelope(t *testing.T) {
	_, err := DecodeTxEnvelope([]byte("{"))
	require.ErrorContains(t, err, "invalid tx json")

	_, err = DecodeTxEnvelope([]byte(`{"value":{}}`))
	require.ErrorContains(t, err, "missing tx.type")

	env, err := DecodeTxEnvelope([]byte(`{"type":"raffle/play","value":{"player":"0x01"},"nonce":"4"}`))
	require.NoError(t, err)
	require.Equal(t, TypePlay, env.Type)
	require.Equal(t, "4", env.Nonce)
	require.JSONEq(t, `{"player":"0x01"}`, string(env.Value))
}

func TestSignBytes_BindsEveryField(t *testing.T) {
	base := SignBytes(TypePlay, []byte(`{"a":1}`), "1", "0xabc")
	require.Len(t, base, 32)
	require.Equal(t, base, SignBytes(TypePlay, []byte(`{"a":1}`), "1", "0xabc"))

	require.NotEqual(t, base, SignBytes(TypeDraw, []byte(`{"a":1}`), "1", "0xabc"))
	require.NotEqual(t, base, SignBytes(TypePlay, []byte(`{"a":2}`), "1", "0xabc"))
	require.NotEqual(t, base, SignBytes(TypePlay, []byte(`{"a":1}`), "2", "0xabc"))
	require.NotEqual(t, base, SignBytes(TypePlay, []byte(`{"a":1}`), "1", "0xabd"))
	// Separators keep field boundaries unambiguous.
	require.NotEqual(t, SignBytes("ab", nil, "c", "d"), SignBytes("a", nil, "bc", "d"))
}

func TestSignTx_RecoversSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey).Hex()

	msg := PlayTx{Player: want, Value: sdkmath.NewUint(12345)}
	raw, err := SignTx(key, TypePlay, msg, 42)
	require.NoError(t, err)

	env, err := DecodeTxEnvelope(raw)
	require.NoError(t, err)
	require.Equal(t, want, env.Signer)
	require.Equal(t, "42", env.Nonce)
	require.Len(t, env.Sig, crypto.SignatureLength)

	pub, err := crypto.SigToPub(SignBytes(env.Type, env.Value, env.Nonce, env.Signer), env.Sig)
	require.NoError(t, err)
	require.Equal(t, want, crypto.PubkeyToAddress(*pub).Hex())

	var got PlayTx
	require.NoError(t, json.Unmarshal(env.Value, &got))
	require.True(t, got.Value.Equal(msg.Value))
}

func TestSignTx_UnencodableValue(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	_, err = SignTx(key, TypePlay, make(chan int), 1)
	require.ErrorContains(t, err, "encode raffle/play value")
}

func TestHashSecret(t *testing.T) {
	require.Len(t, HashSecret("s"), 32)
	require.Equal(t, crypto.Keccak256([]byte("s")), HashSecret("s"))
	require.NotEqual(t, HashSecret("s"), HashSecret("t"))
}

func TestValidateSecret(t *testing.T) {
	require.NoError(t, ValidateSecret("correct horse"))
	require.NoError(t, ValidateSecret("grüße"))
	require.ErrorContains(t, ValidateSecret("s\xff"), "UTF-8")

	// JSON cannot carry the raw byte.
	b, err := json.Marshal(DrawTx{SecretKey: "s\xff"})
	require.NoError(t, err)
	var back DrawTx
	require.NoError(t, json.Unmarshal(b, &back))
	require.NotEqual(t, HashSecret("s\xff"), HashSecret(back.SecretKey))
}

func TestPlayTx_EntropyIsHex(t *testing.T) {
	b, err := json.Marshal(PlayTx{Player: "0x01", Value: sdkmath.NewUint(1), Entropy: []byte{0xab, 0xcd}})
	require.NoError(t, err)
	require.Contains(t, string(b), `"entropy":"0xabcd"`)

	b, err = json.Marshal(PlayTx{Player: "0x01", Value: sdkmath.NewUint(1)})
	require.NoError(t, err)
	require.NotContains(t, string(b), "entropy")
}
