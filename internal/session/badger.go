package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// gcDiscardRatio is the value-log discard ratio passed to RunValueLogGC.
const gcDiscardRatio = 0.5

// BadgerStore keeps sessions in an embedded Badger database.
// Entries are written with a TTL so Badger expires them on its own.
type BadgerStore struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

var _ Store = (*BadgerStore)(nil)

// OpenBadger opens a Badger session store at path. An empty path opens an
// in-memory database.
func OpenBadger(path string, ttl time.Duration, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil
	opts.SyncWrites = true
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	logger.Info("Session store opened", "backend", "badger", "path", path, "ttl", ttl)
	return &BadgerStore{db: db, ttl: ttl, logger: logger}, nil
}

// Load returns the session with id or ErrSessionNotFound.
func (s *BadgerStore) Load(_ context.Context, id string) (*Session, error) {
	var sess *Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key(id)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sess, err = decode(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// Save writes the session and restarts its TTL.
func (s *BadgerStore) Save(_ context.Context, sess *Session) error {
	data, err := encode(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key(sess.ID)), data).WithTTL(s.ttl))
	})
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key(id)))
	})
}

// RunGC reclaims value-log space left by expired and overwritten sessions.
// It returns the number of value-log files rewritten.
func (s *BadgerStore) RunGC() (int, error) {
	var rewritten int
	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			rewritten++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return rewritten, nil
		default:
			return rewritten, err
		}
	}
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	s.logger.Info("Closing session store", "backend", "badger")
	return s.db.Close()
}
