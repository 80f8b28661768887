package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"
)

// SessionStoreImpl keeps one SessionManager per browser session in an expiring cache.
// Sessions idle for longer than the configured TTL are dropped; a connected wallet
// is disconnected when its session expires.
type SessionStoreImpl struct {
	sessions  *cache.Cache
	idleTTL   time.Duration
	registry  port.NetworkRegistry
	connector port.WalletConnector
	logger    port.Logger
	metrics   *metrics.Metrics
	newID     func() string
}

var _ port.SessionStore = (*SessionStoreImpl)(nil)

// NewSessionStore creates a store whose sessions expire after idleTTL without use.
func NewSessionStore(
	registry port.NetworkRegistry,
	connector port.WalletConnector,
	l port.Logger,
	m *metrics.Metrics,
	idleTTL time.Duration,
	cleanupInterval time.Duration,
) *SessionStoreImpl {
	s := &SessionStoreImpl{
		sessions:  cache.New(idleTTL, cleanupInterval),
		idleTTL:   idleTTL,
		registry:  registry,
		connector: connector,
		logger:    l,
		metrics:   m,
		newID:     uuid.NewString,
	}
	s.sessions.OnEvicted(func(id string, v interface{}) {
		manager, ok := v.(*SessionManagerImpl)
		if !ok {
			return
		}
		if manager.State().Status != entity.StatusDisconnected {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			manager.Disconnect(ctx)
			cancel()
		}
		s.logger.Debug("Session evicted", "session", id)
		s.metrics.SetActiveSessions(s.sessions.ItemCount())
	})
	return s
}

// Create starts a new session on the default network.
func (s *SessionStoreImpl) Create() (string, port.SessionManager) {
	id := s.newID()
	manager := NewSessionManager(id, s.registry, s.connector, s.logger, s.metrics)
	s.sessions.Set(id, manager, cache.DefaultExpiration)
	s.metrics.SetActiveSessions(s.sessions.ItemCount())
	s.logger.Info("Session created", "session", id, "network", manager.SelectedNetwork().ID)
	return id, manager
}

// Get returns the session and refreshes its idle timer.
func (s *SessionStoreImpl) Get(id string) (port.SessionManager, error) {
	v, found := s.sessions.Get(id)
	if !found {
		return nil, fmt.Errorf("%w: %q", entity.ErrSessionNotFound, id)
	}
	manager := v.(*SessionManagerImpl)
	// Replace refuses missing keys, so a concurrent Delete is never undone.
	if err := s.sessions.Replace(id, manager, cache.DefaultExpiration); err != nil {
		return nil, fmt.Errorf("%w: %q", entity.ErrSessionNotFound, id)
	}
	return manager, nil
}

// Delete disconnects the session's wallet and forgets the session.
func (s *SessionStoreImpl) Delete(ctx context.Context, id string) error {
	v, found := s.sessions.Get(id)
	if !found {
		return fmt.Errorf("%w: %q", entity.ErrSessionNotFound, id)
	}
	manager := v.(*SessionManagerImpl)
	manager.Disconnect(ctx)
	// Delete fires OnEvicted; the manager is already disconnected so it only logs.
	s.sessions.Delete(id)
	s.logger.Info("Session deleted", "session", id)
	return nil
}

// Count returns the number of live sessions.
func (s *SessionStoreImpl) Count() int {
	return s.sessions.ItemCount()
}
