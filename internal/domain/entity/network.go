package entity

// NativeCurrency describes the gas token of a network.
type NativeCurrency struct {
	Name     string `json:"name" yaml:"name"`
	Symbol   string `json:"symbol" yaml:"symbol"`
	Decimals uint8  `json:"decimals" yaml:"decimals"`
}

// NetworkDescriptor holds the static metadata of a network a user may select.
// Descriptors are built once at startup and never mutated afterwards.
type NetworkDescriptor struct {
	ID               string         `json:"id" yaml:"id"`
	DisplayName      string         `json:"displayName" yaml:"displayName"`
	Icon             string         `json:"icon" yaml:"icon"`
	ChainID          uint64         `json:"chainId" yaml:"chainId"`
	RPCEndpoints     []string       `json:"rpcEndpoints" yaml:"rpcEndpoints"`
	NativeCurrency   NativeCurrency `json:"nativeCurrency" yaml:"nativeCurrency"`
	BlockExplorerURL string         `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	ParentChain      string         `json:"parentChain,omitempty" yaml:"parentChain,omitempty"`

	// Used by the live data source to price the native currency.
	DEXScreenerChainID string `json:"-" yaml:"dexScreenerChainId,omitempty"`
	PriceTokenAddress  string `json:"-" yaml:"priceTokenAddress,omitempty"`
}

// ShortName returns the first word of the display name ("Astar zKyoto" -> "Astar").
func (n NetworkDescriptor) ShortName() string {
	for i, r := range n.DisplayName {
		if r == ' ' {
			return n.DisplayName[:i]
		}
	}
	return n.DisplayName
}

// Clone returns a deep copy so callers cannot alias the registry's slices.
func (n NetworkDescriptor) Clone() NetworkDescriptor {
	c := n
	c.RPCEndpoints = append([]string(nil), n.RPCEndpoints...)
	return c
}
