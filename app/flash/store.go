// Package flash carries one-shot messages across a redirect.
package flash

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// KeyPrefix namespaces flash entries in the store.
const KeyPrefix = "flash:"

// Flash is a message shown once on the page after a redirect.
type Flash struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IsEmpty reports whether there is nothing to show.
func (f Flash) IsEmpty() bool {
	return f.Message == "" && f.Error == ""
}

// Store keeps pending flashes per session.
type Store interface {
	Put(sessionID string, f Flash, ttl time.Duration) error
	// Take returns and removes the pending flash for sessionID.
	Take(sessionID string) (Flash, bool, error)
}

// BadgerStore implements Store on BadgerDB; entries expire after their TTL.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens a store at path, or an in-memory one when path is empty.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create flash store directory")
		}
		opts = badger.DefaultOptions(path).WithSyncWrites(false)
	}
	opts = opts.WithLogger(nil).WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open flash store")
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func flashKey(sessionID string) []byte {
	return []byte(KeyPrefix + sessionID)
}

// Put stores f for sessionID, replacing any flash not yet shown.
func (s *BadgerStore) Put(sessionID string, f Flash, ttl time.Duration) error {
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "failed to marshal flash")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(flashKey(sessionID), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Take reads and deletes the flash in one transaction, so it is seen once.
func (s *BadgerStore) Take(sessionID string) (Flash, bool, error) {
	var f Flash
	found := false
	err := s.db.Update(func(txn *badger.Txn) error {
		key := flashKey(sessionID)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &f)
		}); err != nil {
			return errors.Wrap(err, "failed to unmarshal flash")
		}
		found = true
		return txn.Delete(key)
	})
	if err != nil {
		return Flash{}, false, err
	}
	return f, found, nil
}
