package port

import (
	"context"
	"math/big"

	"wallet_dashboard/internal/domain/entity"
)

// NetworkRegistry is the immutable set of networks a session may select.
type NetworkRegistry interface {
	// All returns every descriptor in registry order.
	All() []entity.NetworkDescriptor

	// Lookup returns the descriptor with the given id.
	Lookup(id string) (entity.NetworkDescriptor, bool)

	// LookupChainID returns the descriptor with the given chain id.
	LookupChainID(chainID uint64) (entity.NetworkDescriptor, bool)

	// Default returns the descriptor selected when a session starts.
	Default() entity.NetworkDescriptor
}

// BalanceClient reads native balances from a chain.
type BalanceClient interface {
	// NativeBalance fetches the native currency balance (e.g., ETH, CORE) for a wallet.
	NativeBalance(ctx context.Context, walletAddress string) (*big.Int, error)

	// Descriptor returns the network this client talks to.
	Descriptor() entity.NetworkDescriptor

	Close()
}

// BalanceClientProvider hands out one BalanceClient per network.
type BalanceClientProvider interface {
	GetClient(ctx context.Context, network entity.NetworkDescriptor) (BalanceClient, error)
}
