package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// WalletConnector is the capability every wallet backend implements.
// Failures are opaque to the caller apart from their message.
type WalletConnector interface {
	// ListConnectors returns the connectors this backend offers.
	ListConnectors(ctx context.Context) ([]entity.ConnectorInfo, error)

	// RequestAccounts performs the account request round trip through one connector.
	RequestAccounts(ctx context.Context, connectorID string) ([]string, error)

	// Disconnect tears down the connector's session.
	Disconnect(ctx context.Context, connectorID string) error
}

// ConnectorStatusReader is implemented by backends that can check a single connector
// without touching the others. Unknown ids yield entity.ErrUnknownConnector.
type ConnectorStatusReader interface {
	ConnectorStatus(ctx context.Context, connectorID string) (entity.ConnectorInfo, error)
}
