package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var sessionsBucket = []byte("sessions")

// BoltStore is a Store backed by a BBolt database, for single-node
// deployments that need sessions to survive restarts. Every operation
// runs inside one BBolt transaction, which is what makes the
// status-compare-and-swap atomic.
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

var _ Store = (*BoltStore)(nil)

// NewBoltStore returns a Store backed by the given BBolt database.
func NewBoltStore(db *bbolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating sessions bucket: %w", err)
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

// NewBoltStoreFromFile opens a BBolt database at the given path and
// returns a Store backed by it.
func NewBoltStoreFromFile(path string, options *bbolt.Options) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewBoltStore(db)
}

// Close closes the underlying BBolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Create(_ context.Context, data Data) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		if b.Get([]byte(data.SessionID)) != nil {
			return ErrExists
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		return b.Put([]byte(data.SessionID), raw)
	})
}

func (s *BoltStore) Get(_ context.Context, id string) (Data, error) {
	var data Data
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(sessionsBucket).Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &data)
	})
	if err != nil {
		return Data{}, err
	}
	return data, nil
}

func (s *BoltStore) Touch(ctx context.Context, id string, expect Status) (Data, error) {
	return s.UpdateIfStatus(ctx, id, expect, func(*Data) {})
}

func (s *BoltStore) UpdateIfStatus(_ context.Context, id string, expect Status, mutate func(*Data)) (Data, error) {
	var data Data
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionsBucket)
		raw := b.Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			return err
		}
		if data.Status != expect {
			return ErrInvalidState
		}
		mutate(&data)
		data.LastAccessedAt = s.now().UTC()
		updated, err := json.Marshal(data)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
	if err != nil {
		return Data{}, err
	}
	return data, nil
}
