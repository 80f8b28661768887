package port

import (
	"context"

	"wallet_dashboard/internal/domain/entity"
)

// DashboardDataSource produces the view model for one network.
// address is empty when no wallet is connected.
type DashboardDataSource interface {
	Name() string
	Load(ctx context.Context, network entity.NetworkDescriptor, address string) (entity.DashboardViewModel, error)
}

// DashboardService derives the view model of a session.
type DashboardService interface {
	Dashboard(ctx context.Context, session entity.Session) (entity.DashboardViewModel, error)
}

// PriceFeed quotes a token in USD.
type PriceFeed interface {
	Quote(ctx context.Context, dexScreenerChainID, tokenAddress string) (entity.PriceQuote, error)
}
