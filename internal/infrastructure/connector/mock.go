package connector

import (
	"context"
	"errors"
	"fmt"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// MockConnectorID is the id the mock backend offers.
const MockConnectorID = "mockConnector"

// mockConnector answers every account request with a fixed address, or with a
// fixed failure when failReason is set.
type mockConnector struct {
	address    string
	failReason string
}

// NewMock creates the in-process backend used by development configurations.
func NewMock(address, failReason string) port.WalletConnector {
	return &mockConnector{address: address, failReason: failReason}
}

func (m *mockConnector) ListConnectors(_ context.Context) ([]entity.ConnectorInfo, error) {
	return []entity.ConnectorInfo{{ID: MockConnectorID, Name: "Mock Wallet", Ready: true}}, nil
}

func (m *mockConnector) ConnectorStatus(_ context.Context, connectorID string) (entity.ConnectorInfo, error) {
	if connectorID != MockConnectorID {
		return entity.ConnectorInfo{}, fmt.Errorf("%w: %q", entity.ErrUnknownConnector, connectorID)
	}
	return entity.ConnectorInfo{ID: MockConnectorID, Name: "Mock Wallet", Ready: true}, nil
}

func (m *mockConnector) RequestAccounts(ctx context.Context, connectorID string) ([]string, error) {
	if connectorID != MockConnectorID {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownConnector, connectorID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.failReason != "" {
		return nil, errors.New(m.failReason)
	}
	return []string{m.address}, nil
}

func (m *mockConnector) Disconnect(_ context.Context, _ string) error {
	return nil
}
