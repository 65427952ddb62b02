package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNoToken is returned by storages that hold no token.
var ErrNoToken = errors.New("session: no token stored")

// TokenStorage persists the bearer token between runs.
type TokenStorage interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Session holds the bearer token used to authorize API requests.
type Session struct {
	mu      sync.Mutex
	token   string
	loaded  bool
	storage TokenStorage
	logger  *zap.Logger
}

// New returns a session backed by storage. A nil storage keeps the token in memory only.
func New(storage TokenStorage, logger *zap.Logger) *Session {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{storage: storage, logger: logger}
}

// Token returns the current token. When none is held in memory, storage is
// read once and the result cached for later calls. A failed read is retried
// on the next call.
func (s *Session) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" || s.loaded {
		return s.token
	}

	token, err := s.storage.Get(ctx)
	if errors.Is(err, ErrNoToken) {
		s.loaded = true
		return ""
	}
	if err != nil {
		s.logger.Warn("read persisted token failed", zap.Error(err))
		return ""
	}
	s.loaded = true
	s.token = token
	return s.token
}

// SetToken replaces the token and persists it.
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.loaded = true
	if token == "" {
		return s.storage.Clear(ctx)
	}
	return s.storage.Set(ctx, token)
}

// Clear forgets the token in memory and in storage.
func (s *Session) Clear(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

// IsAuthorized reports whether a non-empty token is available.
func (s *Session) IsAuthorized(ctx context.Context) bool {
	return s.Token(ctx) != ""
}
