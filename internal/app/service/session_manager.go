package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"
)

// SessionManagerImpl implements port.SessionManager.
//
// State machine:
//
//	Disconnected --Connect--> Connecting --ok--> Connected --Disconnect--> Disconnected
//	Connecting --failure / cancel / Disconnect--> Disconnected
//
// The lock is never held while waiting on the connector. Every transition out of
// Connecting bumps epoch, so an account request that settles after its attempt was
// abandoned can never be applied.
type SessionManagerImpl struct {
	id        string
	registry  port.NetworkRegistry
	connector port.WalletConnector
	logger    port.Logger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	selected entity.NetworkDescriptor
	state    entity.ConnectionState
	epoch    uint64
}

var _ port.SessionManager = (*SessionManagerImpl)(nil)

// NewSessionManager creates a manager with the registry's default network selected
// and no wallet connected.
func NewSessionManager(
	id string,
	registry port.NetworkRegistry,
	connector port.WalletConnector,
	l port.Logger,
	m *metrics.Metrics,
) *SessionManagerImpl {
	return &SessionManagerImpl{
		id:        id,
		registry:  registry,
		connector: connector,
		logger:    l,
		metrics:   m,
		selected:  registry.Default(),
		state:     entity.ConnectionState{Status: entity.StatusDisconnected},
	}
}

// SelectedNetwork returns the currently selected network.
func (s *SessionManagerImpl) SelectedNetwork() entity.NetworkDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected.Clone()
}

// State returns the current connection state.
func (s *SessionManagerImpl) State() entity.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns selection and connection read under one lock.
func (s *SessionManagerImpl) Snapshot() entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.Session{
		ID:         s.id,
		Network:    s.selected.Clone(),
		Connection: s.state,
	}
}

// SelectNetwork switches the selected network. The connection is left untouched.
func (s *SessionManagerImpl) SelectNetwork(id string) error {
	desc, ok := s.registry.Lookup(id)
	if !ok {
		s.logger.Warn("Rejected selection of unknown network", "session", s.id, "network", id)
		return fmt.Errorf("%w: %q", entity.ErrUnknownNetwork, id)
	}

	s.mu.Lock()
	prev := s.selected.ID
	s.selected = desc
	s.mu.Unlock()

	s.metrics.ObserveSelection(desc.ID)
	s.logger.Debug("Network selected", "session", s.id, "from", prev, "to", desc.ID)
	return nil
}

type accountsResult struct {
	accounts []string
	err      error
}

// Connect requests accounts through connectorID and, on success, moves the session
// to Connected with the first returned address.
//
// Connect fails with ErrAlreadyConnected while connected and with
// ErrConnectionInProgress while another attempt is pending; neither changes state.
// Collaborator failures are returned as *entity.ConnectionFailedError and leave the
// session Disconnected. If ctx ends first the session reverts to Disconnected,
// ctx.Err() is returned and the late result is discarded.
func (s *SessionManagerImpl) Connect(ctx context.Context, connectorID string) (entity.ConnectionState, error) {
	s.mu.Lock()
	switch s.state.Status {
	case entity.StatusConnected:
		state := s.state
		s.mu.Unlock()
		s.metrics.ObserveConnect(connectorID, metrics.OutcomeAlreadyConnected)
		return state, entity.ErrAlreadyConnected
	case entity.StatusConnecting:
		state := s.state
		s.mu.Unlock()
		s.metrics.ObserveConnect(connectorID, metrics.OutcomeInProgress)
		return state, entity.ErrConnectionInProgress
	}
	s.epoch++
	attempt := s.epoch
	s.state = entity.ConnectionState{Status: entity.StatusConnecting, ActiveConnectorID: connectorID}
	s.mu.Unlock()

	s.logger.Info("Connecting wallet", "session", s.id, "connector", connectorID)

	if err := s.checkConnector(ctx, connectorID); err != nil {
		return s.fail(attempt, connectorID, err)
	}

	// Buffered so the goroutine can always deliver and exit, even after we stop listening.
	done := make(chan accountsResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- accountsResult{err: fmt.Errorf("connector panicked: %v", r)}
			}
		}()
		accounts, err := s.connector.RequestAccounts(ctx, connectorID)
		done <- accountsResult{accounts: accounts, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() != nil {
				return s.abandon(attempt, connectorID, ctx.Err())
			}
			return s.fail(attempt, connectorID, entity.NewConnectionFailed(res.err.Error(), res.err))
		}
		address := firstAddress(res.accounts)
		if address == "" {
			return s.fail(attempt, connectorID, entity.NewConnectionFailed("no accounts returned", nil))
		}
		return s.succeed(attempt, connectorID, address)
	case <-ctx.Done():
		return s.abandon(attempt, connectorID, ctx.Err())
	}
}

func (s *SessionManagerImpl) checkConnector(ctx context.Context, connectorID string) error {
	if reader, ok := s.connector.(port.ConnectorStatusReader); ok {
		info, err := reader.ConnectorStatus(ctx, connectorID)
		switch {
		case errors.Is(err, entity.ErrUnknownConnector):
			return entity.NewConnectionFailed(fmt.Sprintf("connector %q is not available", connectorID), err)
		case err != nil:
			return entity.NewConnectionFailed(fmt.Sprintf("checking connector: %v", err), err)
		case !info.Ready:
			return entity.NewConnectionFailed(fmt.Sprintf("connector %q is not ready", connectorID), nil)
		}
		return nil
	}

	connectors, err := s.connector.ListConnectors(ctx)
	if err != nil {
		return entity.NewConnectionFailed(fmt.Sprintf("listing connectors: %v", err), err)
	}
	for _, c := range connectors {
		if c.ID != connectorID {
			continue
		}
		if !c.Ready {
			return entity.NewConnectionFailed(fmt.Sprintf("connector %q is not ready", connectorID), nil)
		}
		return nil
	}
	return entity.NewConnectionFailed(fmt.Sprintf("connector %q is not available", connectorID), entity.ErrUnknownConnector)
}

func (s *SessionManagerImpl) succeed(attempt uint64, connectorID, address string) (entity.ConnectionState, error) {
	s.mu.Lock()
	if s.epoch != attempt {
		state := s.state
		s.mu.Unlock()
		s.logger.Info("Discarding accounts of a cancelled connect", "session", s.id, "connector", connectorID)
		s.metrics.ObserveConnect(connectorID, metrics.OutcomeCancelled)
		return state, entity.NewConnectionFailed("connection attempt was cancelled", nil)
	}
	s.epoch++
	s.state = entity.ConnectionState{
		Status:            entity.StatusConnected,
		Address:           address,
		ActiveConnectorID: connectorID,
	}
	state := s.state
	s.mu.Unlock()

	s.metrics.ObserveConnect(connectorID, metrics.OutcomeConnected)
	s.logger.Info("Wallet connected", "session", s.id, "connector", connectorID, "address", address)
	return state, nil
}

func (s *SessionManagerImpl) fail(attempt uint64, connectorID string, err error) (entity.ConnectionState, error) {
	s.mu.Lock()
	if s.epoch == attempt {
		s.epoch++
		s.state = entity.ConnectionState{Status: entity.StatusDisconnected}
	}
	state := s.state
	s.mu.Unlock()

	s.metrics.ObserveConnect(connectorID, metrics.OutcomeFailed)
	s.logger.Warn("Wallet connection failed", "session", s.id, "connector", connectorID, "error", err)
	return state, err
}

func (s *SessionManagerImpl) abandon(attempt uint64, connectorID string, cause error) (entity.ConnectionState, error) {
	s.mu.Lock()
	if s.epoch == attempt {
		s.epoch++
		s.state = entity.ConnectionState{Status: entity.StatusDisconnected}
	}
	state := s.state
	s.mu.Unlock()

	s.metrics.ObserveConnect(connectorID, metrics.OutcomeCancelled)
	s.logger.Info("Wallet connection abandoned by caller", "session", s.id, "connector", connectorID, "reason", cause)
	return state, cause
}

// Disconnect resets the session to Disconnected. Local state is reset before the
// connector is asked to tear down, and teardown errors are only logged.
// Calling it while already disconnected does nothing.
func (s *SessionManagerImpl) Disconnect(ctx context.Context) entity.ConnectionState {
	s.mu.Lock()
	prev := s.state
	if prev.Status == entity.StatusDisconnected {
		s.mu.Unlock()
		return prev
	}
	s.epoch++
	s.state = entity.ConnectionState{Status: entity.StatusDisconnected}
	state := s.state
	s.mu.Unlock()

	var teardownErr error
	if prev.ActiveConnectorID != "" {
		teardownErr = s.teardown(ctx, prev.ActiveConnectorID)
	}
	s.metrics.ObserveDisconnect(teardownErr)

	if teardownErr != nil {
		s.logger.Warn("Connector teardown failed; session reset anyway",
			"session", s.id, "connector", prev.ActiveConnectorID, "error", teardownErr)
	} else {
		s.logger.Info("Wallet disconnected", "session", s.id, "connector", prev.ActiveConnectorID, "previous_status", prev.Status.String())
	}
	return state
}

func (s *SessionManagerImpl) teardown(ctx context.Context, connectorID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connector teardown panicked: %v", r)
		}
	}()
	return s.connector.Disconnect(ctx, connectorID)
}

// firstAddress returns the first non-blank account, in EIP-55 form when it is a
// hex address.
func firstAddress(accounts []string) string {
	for _, a := range accounts {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if common.IsHexAddress(a) {
			return common.HexToAddress(a).Hex()
		}
		return a
	}
	return ""
}
