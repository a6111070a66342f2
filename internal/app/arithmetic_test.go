package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddInt64AndU64Checked(t *testing.T) {
	got, err := addInt64AndU64Checked(t0, testDrawLen, "draw deadline")
	require.NoError(t, err)
	require.Equal(t, t0+int64(testDrawLen), got)
}

func TestAddInt64AndU64Checked_Overflow(t *testing.T) {
	_, err := addInt64AndU64Checked(math.MaxInt64, 1, "draw deadline")
	require.ErrorContains(t, err, "overflows int64")
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = addInt64AndU64Checked(0, uint64(math.MaxInt64)+1, "draw deadline")
	require.ErrorContains(t, err, "overflows int64")
}

func TestAddUint64Checked(t *testing.T) {
	got, err := addUint64Checked(math.MaxUint64-1, 1, "tickets")
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64), got)

	_, err = addUint64Checked(math.MaxUint64, 1, "tickets")
	require.ErrorContains(t, err, "tickets overflows uint64")
	require.ErrorIs(t, err, ErrInvalidRequest)
}
