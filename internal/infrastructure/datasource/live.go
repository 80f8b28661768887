package datasource

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/pkg/utils"
)

// LiveSource reads the native balance from the chain and prices it with the
// price feed. It has no transaction indexer, so recent activity is always empty.
type LiveSource struct {
	clients port.BalanceClientProvider
	prices  port.PriceFeed
	logger  port.Logger
}

var _ port.DashboardDataSource = (*LiveSource)(nil)

// NewLiveSource creates the chain-backed source.
func NewLiveSource(clients port.BalanceClientProvider, prices port.PriceFeed, l port.Logger) *LiveSource {
	return &LiveSource{clients: clients, prices: prices, logger: l}
}

func (s *LiveSource) Name() string { return configloader.SourceLive }

// Load fetches balance and price concurrently. A failed balance read fails the load;
// a failed price lookup only drops the USD figures.
func (s *LiveSource) Load(ctx context.Context, network entity.NetworkDescriptor, address string) (entity.DashboardViewModel, error) {
	symbol := network.NativeCurrency.Symbol
	vm := entity.DashboardViewModel{
		NetworkID:          network.ID,
		NetworkName:        network.DisplayName,
		Address:            address,
		Balance:            "0 " + symbol,
		USDBalance:         "$0.00",
		RecentTransactions: []entity.Transaction{},
		PriceOverview:      []entity.PriceTicker{},
		Source:             configloader.SourceLive,
	}

	var (
		balance *big.Int
		quote   *entity.PriceQuote
	)

	g, gctx := errgroup.WithContext(ctx)
	if address != "" {
		g.Go(func() error {
			client, err := s.clients.GetClient(gctx, network)
			if err != nil {
				return err
			}
			balance, err = client.NativeBalance(gctx, address)
			return err
		})
	}
	if network.DEXScreenerChainID != "" && network.PriceTokenAddress != "" {
		g.Go(func() error {
			q, err := s.prices.Quote(gctx, network.DEXScreenerChainID, network.PriceTokenAddress)
			if err != nil {
				s.logger.Warn("Price lookup failed", "network", network.ID, "error", err)
				return nil
			}
			quote = &q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return entity.DashboardViewModel{}, fmt.Errorf("reading balance on %s: %w", network.ID, err)
	}

	amount := utils.TokenAmount(balance, network.NativeCurrency.Decimals)
	vm.Balance = amount.String() + " " + symbol

	if quote != nil {
		price := decimal.NewFromFloat(quote.PriceUSD)
		vm.USDBalance = utils.FormatUSD(amount.Mul(price))
		vm.PriceOverview = append(vm.PriceOverview, entity.PriceTicker{
			Symbol:    symbol,
			Price:     utils.FormatUSD(price),
			Change24h: utils.FormatPercent(quote.Change24h),
		})
	}
	return vm, nil
}
