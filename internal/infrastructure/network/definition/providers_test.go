package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/logger"
)

func descriptor(id string, chainID uint64) entity.NetworkDescriptor {
	return entity.NetworkDescriptor{
		ID:             id,
		DisplayName:    "Net " + id,
		ChainID:        chainID,
		RPCEndpoints:   []string{"https://" + id + ".example"},
		NativeCurrency: entity.NativeCurrency{Name: id, Symbol: "T" + id, Decimals: 18},
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	r := Default()
	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"zkyoto", "core-testnet", "polygon"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "zkyoto", r.Default().ID)

	polygon, ok := r.LookupChainID(137)
	require.True(t, ok)
	assert.Equal(t, "polygon", polygon.ID)
	assert.Equal(t, "Polygon", polygon.ShortName())

	zkyoto, ok := r.Lookup("zkyoto")
	require.True(t, ok)
	assert.Equal(t, "Sepolia", zkyoto.ParentChain)
	assert.Equal(t, uint64(6038361), zkyoto.ChainID)
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(descriptor("a", 1), descriptor("b", 2))
	require.NoError(t, err)

	d, ok := r.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, uint64(2), d.ChainID)

	_, ok = r.Lookup("c")
	assert.False(t, ok)
	_, ok = r.LookupChainID(99)
	assert.False(t, ok)
}

func TestRegistry_ReturnsCopies(t *testing.T) {
	t.Parallel()

	src := descriptor("a", 1)
	r, err := NewRegistry(src)
	require.NoError(t, err)

	src.RPCEndpoints[0] = "https://mutated.example"
	all := r.All()
	all[0].RPCEndpoints[0] = "https://mutated.example"
	looked, _ := r.Lookup("a")
	looked.RPCEndpoints[0] = "https://mutated.example"

	again, _ := r.Lookup("a")
	assert.Equal(t, "https://a.example", again.RPCEndpoints[0])
	assert.Equal(t, "https://a.example", r.Default().RPCEndpoints[0])
}

func TestNewRegistry_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		descs   []entity.NetworkDescriptor
		wantErr string
	}{
		{"empty", nil, "at least one network"},
		{"duplicate id", []entity.NetworkDescriptor{descriptor("a", 1), descriptor("a", 2)}, `duplicate network id "a"`},
		{"duplicate chain id", []entity.NetworkDescriptor{descriptor("a", 1), descriptor("b", 1)}, "share chain id 1"},
		{"missing id", []entity.NetworkDescriptor{descriptor("", 1)}, "id is required"},
		{"missing chain id", []entity.NetworkDescriptor{descriptor("a", 0)}, "chainId is required"},
		{"no endpoints", []entity.NetworkDescriptor{func() entity.NetworkDescriptor {
			d := descriptor("a", 1)
			d.RPCEndpoints = nil
			return d
		}()}, "at least one rpc endpoint"},
		{"bad endpoint scheme", []entity.NetworkDescriptor{func() entity.NetworkDescriptor {
			d := descriptor("a", 1)
			d.RPCEndpoints = []string{"ftp://a.example"}
			return d
		}()}, `unsupported scheme "ftp"`},
		{"bad explorer", []entity.NetworkDescriptor{func() entity.NetworkDescriptor {
			d := descriptor("a", 1)
			d.BlockExplorerURL = "https://"
			return d
		}()}, "missing host"},
		{"missing symbol", []entity.NetworkDescriptor{func() entity.NetworkDescriptor {
			d := descriptor("a", 1)
			d.NativeCurrency.Symbol = ""
			return d
		}()}, "nativeCurrency.symbol is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRegistry(tc.descs...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	r, err := FromConfig(nil, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "zkyoto", r.Default().ID)

	r, err = FromConfig([]entity.NetworkDescriptor{descriptor("x", 10), descriptor("y", 11)}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "x", r.Default().ID)
	assert.Len(t, r.All(), 2)

	_, err = FromConfig([]entity.NetworkDescriptor{descriptor("x", 10), descriptor("x", 11)}, logger.Nop())
	require.ErrorContains(t, err, "invalid network configuration")
}
