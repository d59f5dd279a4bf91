package providers

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookreview/bookreview-server/internal/config"
	"github.com/bookreview/bookreview-server/internal/logger"
	"github.com/bookreview/bookreview-server/internal/session"
	"github.com/bookreview/bookreview-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "bookstore.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// SessionStoreHandle wraps the shopping-session store. Badger is set only
// for the badger backend, which needs periodic value-log GC.
type SessionStoreHandle struct {
	session.Store
	Badger *session.BadgerStore
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionStore opens the configured session backend.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		rs, err := session.OpenRedis(ctx, session.RedisOptions{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
			TTL:      cfg.Session.TTL,
		}, log.Logger)
		if err != nil {
			return nil, err
		}
		return &SessionStoreHandle{Store: rs}, nil

	case config.SessionBackendBadger:
		bs, err := session.OpenBadger(filepath.Join(cfg.Data.BasePath, "sessions"), cfg.Session.TTL, log.Logger)
		if err != nil {
			return nil, err
		}
		return &SessionStoreHandle{Store: bs, Badger: bs}, nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
