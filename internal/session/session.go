// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/orb-tui/internal/config"
	"github.com/jeranaias/orb-tui/internal/conversation"
	"github.com/jeranaias/orb-tui/internal/storage"
)

// HistoryKey is the slot key the conversation is stored under.
const HistoryKey = "chatHistory"

// EnvScope names the environment variable that overrides the scope.
const EnvScope = "ORB_SESSION"

// =============================================================================
// SCOPE
// =============================================================================

// ResolveScope returns the scope for this process.
func ResolveScope(explicit string) (string, error) {
	scope := explicit
	if scope == "" {
		scope = os.Getenv(EnvScope)
	}
	if scope == "" {
		scope = fmt.Sprintf("tty-%d", os.Getppid())
	}
	if err := storage.ValidateName(scope); err != nil {
		return "", err
	}
	return scope, nil
}

// =============================================================================
// BACKEND
// =============================================================================

// OpenBackend opens the storage backend cfg selects. Relative or empty
// paths resolve inside dir.
func OpenBackend(cfg config.SessionConfig, dir string) (storage.Backend, error) {
	switch cfg.Backend {
	case storage.KindMemory:
		return storage.NewMemoryBackend(), nil

	case storage.KindFile:
		path := resolvePath(cfg.Path, dir, "sessions")
		return storage.NewFileBackend(path)

	case storage.KindSQLite, "":
		path := resolvePath(cfg.Path, dir, "sessions.db")
		return storage.OpenSessionDB(path)

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

func resolvePath(configured, dir, fallback string) string {
	if configured == "" {
		return filepath.Join(dir, fallback)
	}
	if filepath.IsAbs(configured) {
		return configured
	}
	return filepath.Join(dir, configured)
}

// =============================================================================
// SESSION
// =============================================================================

// Session is an open conversation bound to one scope.
type Session struct {
	Scope string
	Store *conversation.Store

	backend storage.Backend
	log     *zap.Logger
}

// Open opens the configured backend, purges expired scopes and loads the
// conversation for scope.
func Open(cfg *config.Config, scope string, log *zap.Logger) (*Session, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return nil, err
	}
	backend, err := OpenBackend(cfg.Session, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	sess, err := OpenWith(backend, scope, cfg.Session.TTL(), time.Now(), log)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return sess, nil
}

// OpenWith binds scope on an already opened backend. Scopes idle for longer
// than ttl (measured at now) are purged first; a zero ttl skips the purge.
func OpenWith(backend storage.Backend, scope string, ttl time.Duration, now time.Time, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("scope", scope))

	if ttl > 0 {
		removed, err := backend.PurgeOlderThan(ttl, now)
		if err != nil {
			// Stale history is only a disk-space concern.
			log.Warn("failed to purge expired sessions", zap.Error(err))
		} else if removed > 0 {
			log.Info("purged expired sessions", zap.Int("count", removed))
		}
	}

	slot, err := backend.Slot(scope, HistoryKey)
	if err != nil {
		return nil, err
	}

	return &Session{
		Scope:   scope,
		Store:   conversation.Open(slot, log),
		backend: backend,
		log:     log,
	}, nil
}

// Backend exposes the storage backend for scope management commands.
func (s *Session) Backend() storage.Backend {
	return s.backend
}

// Close releases the backend. The history stays until its scope expires.
func (s *Session) Close() error {
	return s.backend.Close()
}

// Destroy ends the session: its history is erased and the backend closed.
func (s *Session) Destroy() error {
	err := s.Store.Destroy()
	if cerr := s.backend.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		s.log.Info("session destroyed")
	}
	return err
}
