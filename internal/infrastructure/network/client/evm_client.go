package client

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/time/rate"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// EVMClient implements the port.BalanceClient interface for EVM-compatible chains.
type EVMClient struct {
	ethClient      *ethclient.Client
	desc           entity.NetworkDescriptor
	endpoint       string
	rpcCallTimeout time.Duration
	limiter        *rate.Limiter
}

var _ port.BalanceClient = (*EVMClient)(nil)

// DialEVMClient connects to the first endpoint of the descriptor that answers with
// the expected chain id.
func DialEVMClient(
	ctx context.Context,
	desc entity.NetworkDescriptor,
	connectionTimeout time.Duration,
	rpcCallTimeout time.Duration,
	limiter *rate.Limiter,
) (*EVMClient, error) {
	var lastErr error
	for _, rpcURL := range desc.RPCEndpoints {
		client, err := dialAndVerify(ctx, rpcURL, desc.ChainID, connectionTimeout)
		if err != nil {
			lastErr = err
			continue
		}
		return &EVMClient{
			ethClient:      client,
			desc:           desc.Clone(),
			endpoint:       rpcURL,
			rpcCallTimeout: rpcCallTimeout,
			limiter:        limiter,
		}, nil
	}
	return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", desc.ID, lastErr)
}

func dialAndVerify(ctx context.Context, rpcURL string, wantChainID uint64, timeout time.Duration) (*ethclient.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	chainID, err := client.ChainID(dialCtx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to verify chainID for %s: %w", rpcURL, err)
	}
	if chainID.Uint64() != wantChainID {
		client.Close()
		return nil, fmt.Errorf("chainID mismatch for %s: expected %d, got %s", rpcURL, wantChainID, chainID)
	}
	return client, nil
}

// NativeBalance fetches the latest native balance of walletAddress.
func (c *EVMClient) NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, fmt.Errorf("invalid wallet address %q", walletAddress)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait for %s: %w", c.desc.ID, err)
		}
	}

	rpcCallCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	balance, err := c.ethClient.BalanceAt(rpcCallCtx, common.HexToAddress(walletAddress), nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance on %s: %w", c.endpoint, err)
	}
	return balance, nil
}

// Descriptor returns the network this client talks to.
func (c *EVMClient) Descriptor() entity.NetworkDescriptor {
	return c.desc.Clone()
}

// Endpoint returns the RPC URL the client is connected to.
func (c *EVMClient) Endpoint() string {
	return c.endpoint
}

// Close closes the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
