package networkdefinition

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
)

// Predefined network descriptors
var ( //nolint:gochecknoglobals // Global for definitions
	ZKyoto = entity.NetworkDescriptor{
		ID:          "zkyoto",
		DisplayName: "Astar zKyoto",
		Icon:        "🔷",
		ChainID:     6038361,
		RPCEndpoints: []string{
			"https://rpc.startale.com/zkyoto",
			"https://astar-zkyoto-rpc.dwellir.com",
		},
		NativeCurrency:     entity.NativeCurrency{Name: "Ethereum", Symbol: "ETH", Decimals: 18},
		BlockExplorerURL:   "https://explorer.zkyoto.network",
		ParentChain:        "Sepolia",
		DEXScreenerChainID: "ethereum",
		PriceTokenAddress:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH on mainnet, testnet ETH has no market
	}
	CoreTestnet = entity.NetworkDescriptor{
		ID:               "core-testnet",
		DisplayName:      "CoreDAO Testnet",
		Icon:             "🟨",
		ChainID:          1115,
		RPCEndpoints:     []string{"https://rpc.test.btcs.network"},
		NativeCurrency:   entity.NativeCurrency{Name: "Core Test Token", Symbol: "tCORE", Decimals: 18},
		BlockExplorerURL: "https://explorer.test.btcs.network",
		// tCORE has no market; the live source reports no USD value for it.
	}
	Polygon = entity.NetworkDescriptor{
		ID:                 "polygon",
		DisplayName:        "Polygon PoS",
		Icon:               "🟣",
		ChainID:            137,
		RPCEndpoints:       []string{"https://polygon-rpc.com/", "https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		NativeCurrency:     entity.NativeCurrency{Name: "MATIC", Symbol: "MATIC", Decimals: 18},
		BlockExplorerURL:   "https://polygonscan.com",
		DEXScreenerChainID: "polygon",
		PriceTokenAddress:  "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", // WMATIC
	}
)

// Registry implements port.NetworkRegistry over a fixed, validated list.
type Registry struct {
	ordered []entity.NetworkDescriptor
	byID    map[string]int
	byChain map[uint64]int
}

var _ port.NetworkRegistry = (*Registry)(nil)

// Default returns the built-in registry. The first entry is the initial selection.
func Default() *Registry {
	r, err := NewRegistry(ZKyoto, CoreTestnet, Polygon)
	if err != nil {
		// The built-in set is static; failing here is a programming error.
		panic(fmt.Sprintf("invalid built-in network registry: %v", err))
	}
	return r
}

// NewRegistry validates the descriptors and builds an immutable registry.
// Order is preserved; the first descriptor becomes the default selection.
func NewRegistry(descriptors ...entity.NetworkDescriptor) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, errors.New("network registry must contain at least one network")
	}

	r := &Registry{
		ordered: make([]entity.NetworkDescriptor, 0, len(descriptors)),
		byID:    make(map[string]int, len(descriptors)),
		byChain: make(map[uint64]int, len(descriptors)),
	}

	for i, d := range descriptors {
		if err := validateDescriptor(d); err != nil {
			return nil, fmt.Errorf("network #%d (%q): %w", i, d.ID, err)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate network id %q", d.ID)
		}
		if prev, dup := r.byChain[d.ChainID]; dup {
			return nil, fmt.Errorf("networks %q and %q share chain id %d", r.ordered[prev].ID, d.ID, d.ChainID)
		}
		r.byID[d.ID] = len(r.ordered)
		r.byChain[d.ChainID] = len(r.ordered)
		r.ordered = append(r.ordered, d.Clone())
	}
	return r, nil
}

func validateDescriptor(d entity.NetworkDescriptor) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(d.DisplayName) == "" {
		return errors.New("displayName is required")
	}
	if d.ChainID == 0 {
		return errors.New("chainId is required")
	}
	if len(d.RPCEndpoints) == 0 {
		return errors.New("at least one rpc endpoint is required")
	}
	for _, endpoint := range d.RPCEndpoints {
		if err := validateURL(endpoint); err != nil {
			return fmt.Errorf("rpc endpoint %q: %w", endpoint, err)
		}
	}
	if d.BlockExplorerURL != "" {
		if err := validateURL(d.BlockExplorerURL); err != nil {
			return fmt.Errorf("block explorer %q: %w", d.BlockExplorerURL, err)
		}
	}
	if strings.TrimSpace(d.NativeCurrency.Symbol) == "" {
		return errors.New("nativeCurrency.symbol is required")
	}
	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// All returns copies of every descriptor in registry order.
func (r *Registry) All() []entity.NetworkDescriptor {
	defsCopy := make([]entity.NetworkDescriptor, len(r.ordered))
	for i, d := range r.ordered {
		defsCopy[i] = d.Clone()
	}
	return defsCopy
}

// Lookup returns a specific network descriptor by its id.
func (r *Registry) Lookup(id string) (entity.NetworkDescriptor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return entity.NetworkDescriptor{}, false
	}
	return r.ordered[i].Clone(), true
}

// LookupChainID returns a specific network descriptor by its chain ID.
func (r *Registry) LookupChainID(chainID uint64) (entity.NetworkDescriptor, bool) {
	i, ok := r.byChain[chainID]
	if !ok {
		return entity.NetworkDescriptor{}, false
	}
	return r.ordered[i].Clone(), true
}

// Default returns the first descriptor.
func (r *Registry) Default() entity.NetworkDescriptor {
	return r.ordered[0].Clone()
}

// FromConfig builds the registry from configured descriptors, falling back to
// the built-in set when none are configured.
func FromConfig(configured []entity.NetworkDescriptor, log port.Logger) (*Registry, error) {
	if len(configured) == 0 {
		log.Info("No networks configured, using built-in registry")
		return Default(), nil
	}
	r, err := NewRegistry(configured...)
	if err != nil {
		return nil, fmt.Errorf("invalid network configuration: %w", err)
	}
	for _, d := range r.ordered {
		log.Debug(fmt.Sprintf("  - Network: %s (ID: %s, ChainID: %d)", d.DisplayName, d.ID, d.ChainID))
	}
	log.Info(fmt.Sprintf("Network registry initialized. Networks: %d", len(r.ordered)))
	return r, nil
}
