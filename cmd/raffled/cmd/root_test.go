package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"hashkeyraffle/internal/app"
	"hashkeyraffle/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestHashSecret(t *testing.T) {
	out, err := run(t, "hash-secret", "hunter2")
	require.NoError(t, err)
	require.Equal(t, hexutil.Encode(crypto.Keccak256([]byte("hunter2")))+"\n", out)

	_, err = run(t, "hash-secret")
	require.Error(t, err)
}

func TestInit_WritesConfigKeyAndGenesis(t *testing.T) {
	home := t.TempDir()
	out, err := run(t, "init", "--home", home, "--owner-balance", "777", "--log-format", "json")
	require.NoError(t, err)

	var printed map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &printed))
	require.Equal(t, config.ConfigPath(home), printed["config"])

	raw, err := os.ReadFile(config.GenesisPath(home))
	require.NoError(t, err)
	var gs app.GenesisState
	require.NoError(t, json.Unmarshal(raw, &gs))
	require.NoError(t, gs.Validate())
	require.Equal(t, printed["owner"], gs.Owner)
	require.Len(t, gs.Accounts, 1)
	require.True(t, gs.Accounts[0].Balance.Equal(sdkmath.NewUint(777)))

	out, err = run(t, "keys", "show", "--home", home)
	require.NoError(t, err)
	require.Contains(t, out, gs.Owner)

	cfgBytes, err := os.ReadFile(config.ConfigPath(home))
	require.NoError(t, err)
	require.Contains(t, string(cfgBytes), `log_format = "json"`)

	// A second init keeps the existing config.
	_, err = run(t, "init", "--home", home)
	require.ErrorContains(t, err, "already exists")
	_, err = run(t, "init", "--home", home, "--overwrite")
	require.NoError(t, err)
}

func TestInit_ExplicitOwner(t *testing.T) {
	home := t.TempDir()
	owner := "0x00000000000000000000000000000000000000aa"
	_, err := run(t, "init", "--home", home, "--owner", owner)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, "config", config.DefaultConfig().KeyFile))
	require.True(t, os.IsNotExist(err), "no key is generated when --owner is given")

	_, err = run(t, "init", "--home", t.TempDir(), "--owner", "nope")
	require.Error(t, err)
}

func TestTx_RequiresKey(t *testing.T) {
	_, err := run(t, "tx", "play", "100", "--home", t.TempDir())
	require.ErrorContains(t, err, "load key")

	_, err = run(t, "tx", "new-game", "--home", t.TempDir())
	require.ErrorContains(t, err, "--secret is required")
}

func TestHashSecret_RejectsInvalidUTF8(t *testing.T) {
	out, err := run(t, "hash-secret", "s\xff")
	require.ErrorContains(t, err, "UTF-8")
	require.Empty(t, out)
}

func TestPlayEntropy(t *testing.T) {
	b, err := playEntropy("0xabcd")
	require.NoError(t, err)
	require.Equal(t, []byte{0xab, 0xcd}, b)

	a, err := playEntropy("")
	require.NoError(t, err)
	require.Len(t, a, 32)
	b, err = playEntropy("")
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = playEntropy("abcd")
	require.ErrorContains(t, err, "invalid --entropy")
	_, err = playEntropy(hexutil.Encode(make([]byte, 33)))
	require.ErrorContains(t, err, "exceeds 32 bytes")
}
