package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// SessionManager owns the selected network and wallet connection of one session.
type SessionManager interface {
	SelectedNetwork() entity.NetworkDescriptor
	State() entity.ConnectionState
	Snapshot() entity.Session

	SelectNetwork(id string) error
	Connect(ctx context.Context, connectorID string) (entity.ConnectionState, error)
	Disconnect(ctx context.Context) entity.ConnectionState
}

// SessionStore keeps one SessionManager per browser session.
type SessionStore interface {
	Create() (string, SessionManager)
	Get(id string) (SessionManager, error)
	Delete(ctx context.Context, id string) error
	Count() int
}
