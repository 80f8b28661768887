package entity

// TransactionDirection tells whether value entered or left the wallet.
type TransactionDirection string

const (
	TransactionIn  TransactionDirection = "in"
	TransactionOut TransactionDirection = "out"
)

// Transaction is one line of the recent activity list.
type Transaction struct {
	Direction   TransactionDirection `json:"type"`
	Description string               `json:"description"`
	Amount      string               `json:"amount"`
}

// PriceTicker is one entry of the price overview.
type PriceTicker struct {
	Symbol    string `json:"name"`
	Price     string `json:"price"`
	Change24h string `json:"change"`
}

// PriceQuote is a USD price with its 24h change in percent.
type PriceQuote struct {
	PriceUSD  float64
	Change24h float64
}

// DashboardViewModel is everything the dashboard renders for a network.
// It is derived from the selected network and the data source, never stored.
type DashboardViewModel struct {
	NetworkID          string        `json:"networkId"`
	NetworkName        string        `json:"networkName"`
	Address            string        `json:"address,omitempty"`
	Balance            string        `json:"balance"`
	USDBalance         string        `json:"usdBalance"`
	RecentTransactions []Transaction `json:"recentTransactions"`
	PriceOverview      []PriceTicker `json:"cryptoOverview"`
	Source             string        `json:"source"`
}
