// Package datasource holds the dashboard data sources.
package datasource

import (
	"context"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
)

type mockEntry struct {
	balance      string
	usdBalance   string
	transactions []entity.Transaction
	overview     []entity.PriceTicker
}

// mockTable is the static demo data, keyed by network id.
var mockTable = map[string]mockEntry{ //nolint:gochecknoglobals
	"zkyoto": {
		balance:    "1.5 ASTR",
		usdBalance: "$0.05846",
		transactions: []entity.Transaction{
			{Direction: entity.TransactionIn, Description: "Recibido de 0x1234...", Amount: "+0.5 ETH"},
			{Direction: entity.TransactionOut, Description: "Enviado a 0x5678...", Amount: "-0.2 ETH"},
		},
		overview: []entity.PriceTicker{
			{Symbol: "ASTR", Price: "$0.05846", Change24h: "+2.5%"},
			{Symbol: "CORE", Price: "$0.9", Change24h: "-1.2%"},
			{Symbol: "UNI", Price: "$22.30", Change24h: "+3.7%"},
		},
	},
	"core-testnet": {
		balance:    "1 CORE",
		usdBalance: "$0.9255",
		transactions: []entity.Transaction{
			{Direction: entity.TransactionIn, Description: "Swap Astar to Core", Amount: "+2 CORE"},
			{Direction: entity.TransactionOut, Description: "Pancakeswap liquidity", Amount: "-1 CORE"},
		},
		overview: []entity.PriceTicker{
			{Symbol: "CORE", Price: "$380.00", Change24h: "+1.8%"},
			{Symbol: "CAKE", Price: "$18.20", Change24h: "+4.5%"},
			{Symbol: "ASTR", Price: "$1.00", Change24h: "0%"},
		},
	},
	"polygon": {
		balance:    "1000 MATIC",
		usdBalance: "$2,200.00",
		transactions: []entity.Transaction{
			{Direction: entity.TransactionIn, Description: "Aave interest", Amount: "+50 MATIC"},
			{Direction: entity.TransactionOut, Description: "QuickSwap trade", Amount: "-100 MATIC"},
		},
		overview: []entity.PriceTicker{
			{Symbol: "MATIC", Price: "$2.20", Change24h: "+5.7%"},
			{Symbol: "AAVE", Price: "$320.00", Change24h: "-0.8%"},
			{Symbol: "QUICK", Price: "$450.00", Change24h: "+2.3%"},
		},
	},
}

// MockSource serves the static demo table. Networks missing from the table get a
// zero balance in their native currency and empty lists.
type MockSource struct{}

var _ port.DashboardDataSource = MockSource{}

// NewMockSource creates the static source.
func NewMockSource() MockSource {
	return MockSource{}
}

func (MockSource) Name() string { return configloader.SourceMock }

// Load returns a fresh copy of the table entry for the network.
func (MockSource) Load(_ context.Context, network entity.NetworkDescriptor, address string) (entity.DashboardViewModel, error) {
	vm := entity.DashboardViewModel{
		NetworkID:          network.ID,
		NetworkName:        network.DisplayName,
		Address:            address,
		Balance:            "0 " + network.NativeCurrency.Symbol,
		USDBalance:         "$0.00",
		RecentTransactions: []entity.Transaction{},
		PriceOverview:      []entity.PriceTicker{},
		Source:             configloader.SourceMock,
	}

	entry, ok := mockTable[network.ID]
	if !ok {
		return vm, nil
	}
	vm.Balance = entry.balance
	vm.USDBalance = entry.usdBalance
	vm.RecentTransactions = append(vm.RecentTransactions, entry.transactions...)
	vm.PriceOverview = append(vm.PriceOverview, entry.overview...)
	return vm, nil
}
