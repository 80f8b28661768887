package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"wallet_dashboard/internal/domain/entity"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
)

// fakeConnector is a scriptable port.WalletConnector.
type fakeConnector struct {
	mu sync.Mutex

	connectors []entity.ConnectorInfo
	listErr    error
	accounts     []string
	requestErr   error
	requestPanic bool

	// When block is set RequestAccounts waits for it to be closed. With ignoreCtx the
	// wait does not observe the caller's context.
	block     chan struct{}
	ignoreCtx bool
	started   chan struct{}
	finished  chan struct{}

	disconnectErr   error
	disconnectPanic bool

	requestCalls    int
	disconnectCalls int
	disconnectedIDs []string
}

func newFakeConnector(accounts ...string) *fakeConnector {
	return &fakeConnector{
		connectors: []entity.ConnectorInfo{
			{ID: "mockConnector", Name: "Mock", Ready: true},
			{ID: "sleepy", Name: "Not Ready", Ready: false},
		},
		accounts: accounts,
		started:  make(chan struct{}, 16),
		finished: make(chan struct{}, 16),
	}
}

func (f *fakeConnector) ListConnectors(_ context.Context) ([]entity.ConnectorInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.ConnectorInfo(nil), f.connectors...), f.listErr
}

func (f *fakeConnector) RequestAccounts(ctx context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	f.requestCalls++
	block, ignoreCtx := f.block, f.ignoreCtx
	accounts, err := append([]string(nil), f.accounts...), f.requestErr
	panicking := f.requestPanic
	f.mu.Unlock()

	defer signal(f.finished)
	signal(f.started)

	if panicking {
		panic("wallet exploded")
	}

	if block != nil {
		if ignoreCtx {
			<-block
		} else {
			select {
			case <-block:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return accounts, err
}

// signal never blocks; tests that care read the first few signals only.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (f *fakeConnector) Disconnect(_ context.Context, connectorID string) error {
	f.mu.Lock()
	f.disconnectCalls++
	f.disconnectedIDs = append(f.disconnectedIDs, connectorID)
	panicking, err := f.disconnectPanic, f.disconnectErr
	f.mu.Unlock()

	if panicking {
		panic("teardown exploded")
	}
	return err
}

func (f *fakeConnector) calls() (request, disconnect int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestCalls, f.disconnectCalls
}

// statusConnector answers readiness checks through ConnectorStatus only.
type statusConnector struct {
	*fakeConnector
	checked []string
}

func (p *statusConnector) ConnectorStatus(_ context.Context, connectorID string) (entity.ConnectorInfo, error) {
	p.mu.Lock()
	p.checked = append(p.checked, connectorID)
	connectors := p.connectors
	p.mu.Unlock()

	for _, c := range connectors {
		if c.ID == connectorID {
			return c, nil
		}
	}
	return entity.ConnectorInfo{}, entity.ErrUnknownConnector
}

var errBoom = errors.New("boom")

// testRegistry holds two networks, "a" (default) and "b".
func testRegistry(t *testing.T) *networkdefinition.Registry {
	t.Helper()
	r, err := networkdefinition.NewRegistry(
		entity.NetworkDescriptor{
			ID:             "a",
			DisplayName:    "Net A",
			ChainID:        1,
			RPCEndpoints:   []string{"https://a.example"},
			NativeCurrency: entity.NativeCurrency{Name: "A", Symbol: "AAA", Decimals: 18},
		},
		entity.NetworkDescriptor{
			ID:             "b",
			DisplayName:    "Net B",
			ChainID:        2,
			RPCEndpoints:   []string{"https://b.example"},
			NativeCurrency: entity.NativeCurrency{Name: "B", Symbol: "BBB", Decimals: 18},
		},
	)
	require.NoError(t, err)
	return r
}
