// Package connector holds the wallet backends the session manager connects through.
package connector

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/infrastructure/configloader"
)

// New builds the backend selected by cfg.Connector.Kind.
func New(cfg *configloader.Config, logger *zap.Logger) (port.WalletConnector, error) {
	timeout := time.Duration(cfg.Connector.RequestTimeoutMillis) * time.Millisecond

	switch cfg.Connector.Kind {
	case configloader.ConnectorInjected:
		dialTimeout := time.Duration(cfg.RpcClient.DialTimeoutMs) * time.Millisecond
		return NewInjected(cfg.Connector.Injected, dialTimeout, timeout, logger), nil
	case configloader.ConnectorCoinbase:
		return NewCoinbase(cfg.Connector.Coinbase, timeout, logger), nil
	case configloader.ConnectorMock:
		return NewMock(cfg.Connector.Mock.Address, cfg.Connector.Mock.Fail), nil
	default:
		return nil, fmt.Errorf("unknown connector kind %q", cfg.Connector.Kind)
	}
}
