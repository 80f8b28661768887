package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
)

// EVMClientProvider implements the port.BalanceClientProvider interface.
type EVMClientProvider struct {
	clients           map[string]port.BalanceClient
	mu                sync.Mutex
	dials             singleflight.Group
	logger            port.Logger
	connectionTimeout time.Duration
	rpcCallTimeout    time.Duration
	rateLimit         rate.Limit
	burst             int
}

// NewEVMClientProvider creates a provider with one rate limiter per network.
func NewEVMClientProvider(cfg configloader.RpcClientConfig, logger port.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		clients:           make(map[string]port.BalanceClient),
		logger:            logger,
		connectionTimeout: time.Duration(cfg.DialTimeoutMs) * time.Millisecond,
		rpcCallTimeout:    time.Duration(cfg.CallTimeoutMs) * time.Millisecond,
		rateLimit:         rate.Limit(cfg.RateLimit),
		burst:             cfg.BurstLimit,
	}
}

// GetClient retrieves a balance client for the given network.
// It caches clients to avoid reconnecting repeatedly. Dials happen outside the
// provider lock and concurrent requests for one network share a single dial.
func (p *EVMClientProvider) GetClient(ctx context.Context, desc entity.NetworkDescriptor) (port.BalanceClient, error) {
	p.mu.Lock()
	if client, exists := p.clients[desc.ID]; exists {
		p.mu.Unlock()
		return client, nil
	}
	p.mu.Unlock()

	ch := p.dials.DoChan(desc.ID, func() (interface{}, error) {
		return p.dial(context.WithoutCancel(ctx), desc)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(port.BalanceClient), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *EVMClientProvider) dial(ctx context.Context, desc entity.NetworkDescriptor) (port.BalanceClient, error) {
	p.logger.Info("Creating new EVM client", "network", desc.ID, "endpoints", len(desc.RPCEndpoints))
	// Each network gets its own limiter so a slow chain cannot starve the others.
	limiter := rate.NewLimiter(p.rateLimit, p.burst)
	newClient, err := DialEVMClient(ctx, desc, p.connectionTimeout, p.rpcCallTimeout, limiter)
	if err != nil {
		p.logger.Error("Failed to create EVM client", "network", desc.ID, "error", err)
		return nil, fmt.Errorf("failed to create EVM client for %s: %w", desc.ID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[desc.ID] = newClient
	p.logger.Info("Successfully created and cached new EVM client", "network", desc.ID, "endpoint", newClient.Endpoint())
	return newClient, nil
}

// Close closes every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, c := range p.clients {
		c.Close()
		delete(p.clients, id)
	}
}
