package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoadKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "key.hex")

	key, err := GenerateKey(path)
	require.NoError(t, err)

	_, err = GenerateKey(path)
	require.ErrorContains(t, err, "already exists")

	loaded, err := LoadKey(path)
	require.NoError(t, err)
	require.Equal(t, KeyAddress(key), KeyAddress(loaded))
	require.Len(t, KeyAddress(key), 42)

	_, err = LoadKey(filepath.Join(t.TempDir(), "missing.hex"))
	require.Error(t, err)
}
