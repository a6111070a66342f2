package state

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"
)

const (
	addrA = "0x00000000000000000000000000000000000000aA"
	addrB = "0x00000000000000000000000000000000000000bB"
)

func sampleState() *State {
	st := NewState()
	st.Height = 7
	st.Owner = addrA
	st.Credit(addrA, sdkmath.NewUint(100))
	st.Credit(addrB, sdkmath.NewUint(50))
	st.NonceMax[addrB] = 3
	st.CurrentGameIndex = 1
	st.Games[1] = &Game{
		Index: 1,
		Settings: GameSettings{
			Price: sdkmath.NewUint(10), Start: 100, End: 200, DrawPeriod: 50, MinPlayers: 1,
		},
		Players:      []Player{{Address: addrB, Balance: 3}},
		Purchases:    []TicketRange{{Player: addrB, Count: 3}},
		TotalBalance: 3,
		Pot:          sdkmath.NewUint(30),
	}
	st.SetValue(addrB, "nick", "bee")
	return st
}

func TestAppHash_IndependentOfInsertionOrder(t *testing.T) {
	a := sampleState()

	b := NewState()
	b.SetValue(addrB, "nick", "bee")
	b.Games[1] = a.Games[1]
	b.CurrentGameIndex = 1
	b.NonceMax[addrB] = 3
	b.Credit(addrB, sdkmath.NewUint(50))
	b.Credit(addrA, sdkmath.NewUint(100))
	b.Owner = addrA
	b.Height = 7

	require.Equal(t, a.AppHash(), b.AppHash())
	require.Len(t, a.AppHash(), 32)

	b.SetValue(addrB, "nick", "b")
	require.NotEqual(t, a.AppHash(), b.AppHash())
}

func TestClone_IsDeep(t *testing.T) {
	st := sampleState()
	cp, err := st.Clone()
	require.NoError(t, err)
	require.Equal(t, st.AppHash(), cp.AppHash())

	cp.Credit(addrA, sdkmath.NewUint(1))
	cp.Games[1].Players[0].Balance = 99
	cp.SetValue(addrB, "nick", "changed")

	require.True(t, st.Balance(addrA).Equal(sdkmath.NewUint(100)))
	require.Equal(t, uint64(3), st.Games[1].Players[0].Balance)
	v, _ := st.Value(addrB, "nick")
	require.Equal(t, "bee", v)

	var nilState *State
	_, err = nilState.Clone()
	require.Error(t, err)
}

func TestBank(t *testing.T) {
	st := NewState()
	require.True(t, st.Balance(addrA).IsZero())

	st.Credit(addrA, sdkmath.ZeroUint())
	_, ok := st.Accounts[addrA]
	require.False(t, ok, "zero credit must not create an account")

	st.Credit(addrA, sdkmath.NewUint(10))
	require.Error(t, st.Debit(addrA, sdkmath.NewUint(11)))
	require.NoError(t, st.Debit(addrA, sdkmath.NewUint(4)))
	require.True(t, st.Balance(addrA).Equal(sdkmath.NewUint(6)))

	st.Games[1] = &Game{Index: 1, Pot: sdkmath.NewUint(4)}
	require.True(t, st.TotalSupply().Equal(sdkmath.NewUint(10)))
}

func TestCurrentGame(t *testing.T) {
	st := NewState()
	require.Nil(t, st.CurrentGame())
	st = sampleState()
	require.Equal(t, uint64(1), st.CurrentGame().Index)
	require.Nil(t, st.Game(2))
}

func TestStore_Roundtrip(t *testing.T) {
	store := NewStore(dbm.NewMemDB())

	st, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, NewState(), st)

	h, hash, err := store.LastCommit()
	require.NoError(t, err)
	require.Zero(t, h)
	require.Nil(t, hash)

	orig := sampleState()
	appHash := orig.AppHash()
	require.NoError(t, store.Save(orig, appHash))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, appHash, loaded.AppHash())

	h, hash, err = store.LastCommit()
	require.NoError(t, err)
	require.Equal(t, int64(7), h)
	require.Equal(t, appHash, hash)
}

func TestStore_CorruptCommitInfo(t *testing.T) {
	db := dbm.NewMemDB()
	require.NoError(t, db.Set(CommitInfoKey, []byte{1, 2}))
	_, _, err := NewStore(db).LastCommit()
	require.ErrorContains(t, err, "invalid commit info")
}
