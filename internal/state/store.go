package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	dbm "github.com/cosmos/cosmos-db"
)

var (
	// StateKey stores the JSON state snapshot.
	StateKey = []byte{0x01}

	// CommitInfoKey stores u64be(height) || appHash of the last commit.
	CommitInfoKey = []byte{0x02}
)

// Store persists State snapshots in a cosmos-db key/value database.
type Store struct {
	db dbm.DB
}

func NewStore(db dbm.DB) *Store {
	return &Store{db: db}
}

// OpenStore opens (or creates) the database named "raffle" under dir.
func OpenStore(dir string, backend dbm.BackendType) (*Store, error) {
	db, err := dbm.NewDB("raffle", backend, dir)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", backend, err)
	}
	return NewStore(db), nil
}

func (s *Store) Load() (*State, error) {
	b, err := s.db.Get(StateKey)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if b == nil {
		return NewState(), nil
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize()
	return &st, nil
}

func (s *Store) Save(st *State, appHash []byte) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	info := make([]byte, 8, 8+len(appHash))
	binary.BigEndian.PutUint64(info, uint64(st.Height))
	info = append(info, appHash...)

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(StateKey, b); err != nil {
		return fmt.Errorf("stage state: %w", err)
	}
	if err := batch.Set(CommitInfoKey, info); err != nil {
		return fmt.Errorf("stage commit info: %w", err)
	}
	if err := batch.WriteSync(); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// LastCommit returns the height and app hash recorded by the last Save.
func (s *Store) LastCommit() (int64, []byte, error) {
	b, err := s.db.Get(CommitInfoKey)
	if err != nil {
		return 0, nil, fmt.Errorf("read commit info: %w", err)
	}
	if b == nil {
		return 0, nil, nil
	}
	if len(b) < 8 {
		return 0, nil, fmt.Errorf("invalid commit info encoding")
	}
	return int64(binary.BigEndian.Uint64(b[:8])), b[8:], nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
