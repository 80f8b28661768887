package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
)

// JSON-RPC and EIP-1193 error codes the injected backend distinguishes.
const (
	codeMethodNotFound = -32601
	codeUserRejected   = 4001
	codeUnauthorized   = 4100
)

// injectedConnector is the generic multi-connector backend: every configured
// connector is an EIP-1193 style JSON-RPC endpoint (a browser-extension bridge, a
// local signer, a dev node with unlocked accounts).
type injectedConnector struct {
	entries     []configloader.InjectedConnectorConfig
	dialTimeout time.Duration
	callTimeout time.Duration
	logger      *zap.Logger

	mu         sync.Mutex
	clients    map[string]*rpc.Client
	failures   map[string]dialFailure
	retryAfter time.Duration
	dials      singleflight.Group
	dial       func(ctx context.Context, endpoint string) (*rpc.Client, error)
	now        func() time.Time
}

type dialFailure struct {
	err   error
	until time.Time
}

// dialRetryAfter is how long a failed dial is reported without redialing.
const dialRetryAfter = 30 * time.Second

var _ port.ConnectorStatusReader = (*injectedConnector)(nil)

// NewInjected creates the generic multi-connector backend.
func NewInjected(
	entries []configloader.InjectedConnectorConfig,
	dialTimeout, callTimeout time.Duration,
	logger *zap.Logger,
) port.WalletConnector {
	return &injectedConnector{
		entries:     append([]configloader.InjectedConnectorConfig(nil), entries...),
		dialTimeout: dialTimeout,
		callTimeout: callTimeout,
		logger:      logger.Named("InjectedConnector"),
		clients:     make(map[string]*rpc.Client),
		failures:    make(map[string]dialFailure),
		retryAfter:  dialRetryAfter,
		dial:        rpc.DialContext,
		now:         time.Now,
	}
}

func (c *injectedConnector) entry(connectorID string) (configloader.InjectedConnectorConfig, bool) {
	for _, e := range c.entries {
		if e.ID == connectorID {
			return e, true
		}
	}
	return configloader.InjectedConnectorConfig{}, false
}

// client returns a cached RPC client for the connector, dialing on first use.
// The dial runs outside c.mu and is shared by concurrent callers; a failed dial is
// remembered for retryAfter so unreachable endpoints fail fast.
func (c *injectedConnector) client(ctx context.Context, connectorID string) (*rpc.Client, error) {
	e, ok := c.entry(connectorID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnknownConnector, connectorID)
	}

	c.mu.Lock()
	if cl, exists := c.clients[connectorID]; exists {
		c.mu.Unlock()
		return cl, nil
	}
	if f, failed := c.failures[connectorID]; failed && c.now().Before(f.until) {
		c.mu.Unlock()
		return nil, fmt.Errorf("wallet endpoint for %s is unreachable: %w", connectorID, f.err)
	}
	c.mu.Unlock()

	ch := c.dials.DoChan(connectorID, func() (interface{}, error) {
		return c.dialEntry(ctx, e)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*rpc.Client), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *injectedConnector) dialEntry(ctx context.Context, e configloader.InjectedConnectorConfig) (*rpc.Client, error) {
	dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.dialTimeout)
	defer cancel()
	cl, err := c.dial(dialCtx, e.Endpoint)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.failures[e.ID] = dialFailure{err: err, until: c.now().Add(c.retryAfter)}
		c.logger.Warn("Failed to dial wallet endpoint", zap.String("connector", e.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to dial wallet endpoint for %s: %w", e.ID, err)
	}
	delete(c.failures, e.ID)
	if existing, exists := c.clients[e.ID]; exists {
		cl.Close()
		return existing, nil
	}
	c.clients[e.ID] = cl
	c.logger.Debug("Dialed wallet endpoint", zap.String("connector", e.ID))
	return cl, nil
}

// ConnectorStatus implements port.ConnectorStatusReader by dialing only the requested connector.
func (c *injectedConnector) ConnectorStatus(ctx context.Context, connectorID string) (entity.ConnectorInfo, error) {
	e, ok := c.entry(connectorID)
	if !ok {
		return entity.ConnectorInfo{}, fmt.Errorf("%w: %q", entity.ErrUnknownConnector, connectorID)
	}
	_, err := c.client(ctx, connectorID)
	return entity.ConnectorInfo{ID: e.ID, Name: displayName(e), Ready: err == nil}, nil
}

func displayName(e configloader.InjectedConnectorConfig) string {
	if e.Name == "" {
		return e.ID
	}
	return e.Name
}

// ListConnectors returns every configured connector, checking them concurrently.
// A connector whose endpoint cannot be dialed is reported as not ready.
func (c *injectedConnector) ListConnectors(ctx context.Context) ([]entity.ConnectorInfo, error) {
	infos := make([]entity.ConnectorInfo, len(c.entries))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range c.entries {
		g.Go(func() error {
			info, err := c.ConnectorStatus(gctx, e.ID)
			infos[i] = info
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// RequestAccounts calls eth_requestAccounts, falling back to eth_accounts for
// endpoints that do not implement the permission flow.
func (c *injectedConnector) RequestAccounts(ctx context.Context, connectorID string) ([]string, error) {
	cl, err := c.client(ctx, connectorID)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var accounts []string
	err = cl.CallContext(callCtx, &accounts, "eth_requestAccounts")
	if rpcCode(err) == codeMethodNotFound {
		c.logger.Debug("eth_requestAccounts not supported, falling back to eth_accounts", zap.String("connector", connectorID))
		err = cl.CallContext(callCtx, &accounts, "eth_accounts")
	}
	if err != nil {
		return nil, describeRPCError(err)
	}
	c.logger.Debug("Accounts returned", zap.String("connector", connectorID), zap.Int("count", len(accounts)))
	return accounts, nil
}

// Disconnect revokes the eth_accounts permission. Endpoints without the
// permission API have nothing to tear down.
func (c *injectedConnector) Disconnect(ctx context.Context, connectorID string) error {
	cl, err := c.client(ctx, connectorID)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	params := map[string]interface{}{"eth_accounts": map[string]interface{}{}}
	err = cl.CallContext(callCtx, nil, "wallet_revokePermissions", params)
	if rpcCode(err) == codeMethodNotFound {
		return nil
	}
	if err != nil {
		return describeRPCError(err)
	}
	return nil
}

// Close closes every dialed client.
func (c *injectedConnector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, cl := range c.clients {
		cl.Close()
		delete(c.clients, id)
	}
	clear(c.failures)
}

func rpcCode(err error) int {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}

func describeRPCError(err error) error {
	switch rpcCode(err) {
	case codeUserRejected:
		return fmt.Errorf("user rejected the request: %w", err)
	case codeUnauthorized:
		return fmt.Errorf("wallet has not authorized this origin: %w", err)
	default:
		return err
	}
}
