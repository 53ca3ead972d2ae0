package draft

import (
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/example/p2h/backend/internal/checklist"
)

// MetadataStep is the wizard step index for the unit-data entry screen.
const MetadataStep = -1

// Metadata is the unit/operator data entered on the first wizard step. The
// JSON tags match the mobile client payload.
type Metadata struct {
	OperatorName string `json:"operatorName"`
	UnitCode     string `json:"unitCode"`
	Shift        string `json:"shift"`
	HMStart      string `json:"hmStart"`
	Date         string `json:"date"`
}

// State is an in-progress wizard snapshot. It is advisory: the inspections
// table is the source of truth once a submission lands.
type State struct {
	CurrentStep int                 `json:"currentStep"`
	Metadata    Metadata            `json:"metadata"`
	Answers     checklist.AnswerSet `json:"answers"`
}

// Store is a keyed draft repository backed by an embedded badger database.
// One key is used per wizard; starting a second wizard under the same key
// overwrites the first, which is a documented limitation of the app.
type Store struct {
	db *badger.DB
}

// Open creates or opens the draft database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open draft store")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return errors.WithStack(s.db.Close())
}

func key(id string) []byte {
	return []byte("draft/" + id)
}

// Save persists the draft under id, replacing any previous snapshot.
func (s *Store) Save(id string, st State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return errors.WithStack(err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(id), payload)
	})
	return errors.Wrapf(err, "save draft %s", id)
}

// Load returns the draft stored under id. The second return value is false
// when no draft exists.
func (s *Store) Load(id string) (State, bool, error) {
	var st State
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &st)
		})
	})
	if err != nil {
		return State{}, false, errors.Wrapf(err, "load draft %s", id)
	}
	return st, found, nil
}

// Delete removes the draft under id. Deleting a missing draft is a no-op.
func (s *Store) Delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
	return errors.Wrapf(err, "delete draft %s", id)
}
