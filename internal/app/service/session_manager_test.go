package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/logger"
	"wallet_dashboard/internal/pkg/metrics"
)

func newTestManager(t *testing.T, conn *fakeConnector) (*SessionManagerImpl, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())
	return NewSessionManager("s-1", testRegistry(t), conn, logger.Nop(), m), m
}

func waitStarted(t *testing.T, conn *fakeConnector) {
	t.Helper()
	select {
	case <-conn.started:
	case <-time.After(2 * time.Second):
		t.Fatal("RequestAccounts was not called")
	}
}

func TestSessionManager_InitialState(t *testing.T) {
	t.Parallel()

	mgr, _ := newTestManager(t, newFakeConnector())

	assert.Equal(t, "a", mgr.SelectedNetwork().ID)
	state := mgr.State()
	assert.Equal(t, entity.StatusDisconnected, state.Status)
	assert.Empty(t, state.Address)
	assert.Empty(t, state.ActiveConnectorID)

	snap := mgr.Snapshot()
	assert.Equal(t, "s-1", snap.ID)
	assert.Equal(t, "a", snap.Network.ID)
}

func TestSessionManager_SelectNetwork(t *testing.T) {
	t.Parallel()

	t.Run("known id switches selection", func(t *testing.T) {
		t.Parallel()
		mgr, m := newTestManager(t, newFakeConnector())

		require.NoError(t, mgr.SelectNetwork("b"))
		assert.Equal(t, "b", mgr.SelectedNetwork().ID)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.NetworkSelections.WithLabelValues("b")), 0)
	})

	t.Run("reselecting the same id is a no-op", func(t *testing.T) {
		t.Parallel()
		mgr, _ := newTestManager(t, newFakeConnector())

		require.NoError(t, mgr.SelectNetwork("a"))
		assert.Equal(t, "a", mgr.SelectedNetwork().ID)
	})

	t.Run("unknown id keeps previous selection", func(t *testing.T) {
		t.Parallel()
		mgr, _ := newTestManager(t, newFakeConnector())
		require.NoError(t, mgr.SelectNetwork("b"))

		err := mgr.SelectNetwork("nope")
		require.ErrorIs(t, err, entity.ErrUnknownNetwork)
		assert.Contains(t, err.Error(), `"nope"`)
		assert.Equal(t, "b", mgr.SelectedNetwork().ID)
	})

	t.Run("connection survives a network switch", func(t *testing.T) {
		t.Parallel()
		mgr, _ := newTestManager(t, newFakeConnector("0xABC"))
		_, err := mgr.Connect(context.Background(), "mockConnector")
		require.NoError(t, err)

		require.NoError(t, mgr.SelectNetwork("b"))

		state := mgr.State()
		assert.Equal(t, entity.StatusConnected, state.Status)
		assert.Equal(t, "0xABC", state.Address)
	})

	t.Run("returned descriptor is a copy", func(t *testing.T) {
		t.Parallel()
		mgr, _ := newTestManager(t, newFakeConnector())

		d := mgr.SelectedNetwork()
		d.RPCEndpoints[0] = "https://evil.example"

		assert.Equal(t, "https://a.example", mgr.SelectedNetwork().RPCEndpoints[0])
	})
}

func TestSessionManager_SelectConnectDisconnectScenario(t *testing.T) {
	t.Parallel()

	conn := newFakeConnector("0xABC")
	mgr, _ := newTestManager(t, conn)
	require.Equal(t, "a", mgr.SelectedNetwork().ID)

	require.NoError(t, mgr.SelectNetwork("b"))
	assert.Equal(t, "b", mgr.SelectedNetwork().ID)

	state, err := mgr.Connect(context.Background(), "mockConnector")
	require.NoError(t, err)
	assert.Equal(t, entity.ConnectionState{
		Status:            entity.StatusConnected,
		Address:           "0xABC",
		ActiveConnectorID: "mockConnector",
	}, state)
	assert.Equal(t, state, mgr.State())

	state = mgr.Disconnect(context.Background())
	assert.Equal(t, entity.ConnectionState{Status: entity.StatusDisconnected}, state)
	assert.Equal(t, state, mgr.State())
	assert.Equal(t, "b", mgr.SelectedNetwork().ID)

	_, disconnects := conn.calls()
	assert.Equal(t, 1, disconnects)
	assert.Equal(t, []string{"mockConnector"}, conn.disconnectedIDs)
}

func TestSessionManager_ConnectFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		connectorID string
		setup       func(*fakeConnector)
		wantReason  string
		wantCause   error
	}{
		{
			name:        "account request rejected",
			connectorID: "mockConnector",
			setup:       func(f *fakeConnector) { f.requestErr = errors.New("user rejected the request") },
			wantReason:  "user rejected the request",
		},
		{
			name:        "no accounts",
			connectorID: "mockConnector",
			setup:       func(f *fakeConnector) { f.accounts = nil },
			wantReason:  "no accounts returned",
		},
		{
			name:        "only blank accounts",
			connectorID: "mockConnector",
			setup:       func(f *fakeConnector) { f.accounts = []string{"", "  "} },
			wantReason:  "no accounts returned",
		},
		{
			name:        "unknown connector",
			connectorID: "ghost",
			setup:       func(*fakeConnector) {},
			wantReason:  `connector "ghost" is not available`,
			wantCause:   entity.ErrUnknownConnector,
		},
		{
			name:        "connector not ready",
			connectorID: "sleepy",
			setup:       func(*fakeConnector) {},
			wantReason:  `connector "sleepy" is not ready`,
		},
		{
			name:        "account request panics",
			connectorID: "mockConnector",
			setup:       func(f *fakeConnector) { f.requestPanic = true },
			wantReason:  "connector panicked: wallet exploded",
		},
		{
			name:        "listing connectors fails",
			connectorID: "mockConnector",
			setup:       func(f *fakeConnector) { f.listErr = errBoom },
			wantReason:  "listing connectors: boom",
			wantCause:   errBoom,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			conn := newFakeConnector("0xABC")
			tc.setup(conn)
			mgr, m := newTestManager(t, conn)

			state, err := mgr.Connect(context.Background(), tc.connectorID)
			require.Error(t, err)
			require.ErrorIs(t, err, entity.ErrConnectionFailed)

			var failed *entity.ConnectionFailedError
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, tc.wantReason, failed.Reason)
			if tc.wantCause != nil {
				assert.ErrorIs(t, err, tc.wantCause)
			}

			assert.Equal(t, entity.ConnectionState{Status: entity.StatusDisconnected}, state)
			assert.Equal(t, entity.StatusDisconnected, mgr.State().Status)
			assert.Empty(t, mgr.State().Address)
			assert.InDelta(t, 1.0, testutil.ToFloat64(m.ConnectAttempts.WithLabelValues(tc.connectorID, metrics.OutcomeFailed)), 0)
		})
	}
}

func TestSessionManager_ConnectChecksOnlyRequestedConnector(t *testing.T) {
	t.Parallel()

	fake := newFakeConnector("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	fake.listErr = errBoom
	conn := &statusConnector{fakeConnector: fake}
	mgr := NewSessionManager("s-1", testRegistry(t), conn, logger.Nop(), nil)

	state, err := mgr.Connect(context.Background(), "mockConnector")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConnected, state.Status)

	mgr.Disconnect(context.Background())
	_, err = mgr.Connect(context.Background(), "sleepy")
	require.ErrorIs(t, err, entity.ErrConnectionFailed)
	assert.Contains(t, err.Error(), `connector "sleepy" is not ready`)

	_, err = mgr.Connect(context.Background(), "ghost")
	require.ErrorIs(t, err, entity.ErrUnknownConnector)
	assert.Contains(t, err.Error(), `connector "ghost" is not available`)

	assert.Equal(t, []string{"mockConnector", "sleepy", "ghost"}, conn.checked)
}

func TestSessionManager_ConnectWhileConnected(t *testing.T) {
	t.Parallel()

	conn := newFakeConnector("0xABC")
	mgr, _ := newTestManager(t, conn)
	_, err := mgr.Connect(context.Background(), "mockConnector")
	require.NoError(t, err)

	state, err := mgr.Connect(context.Background(), "mockConnector")
	require.ErrorIs(t, err, entity.ErrAlreadyConnected)
	assert.Equal(t, entity.StatusConnected, state.Status)
	assert.Equal(t, "0xABC", mgr.State().Address)

	requests, _ := conn.calls()
	assert.Equal(t, 1, requests)
}

func TestSessionManager_ConcurrentConnectIsRejected(t *testing.T) {
	t.Parallel()

	conn := newFakeConnector("0xABC")
	conn.block = make(chan struct{})
	mgr, m := newTestManager(t, conn)

	type result struct {
		state entity.ConnectionState
		err   error
	}
	first := make(chan result, 1)
	go func() {
		s, err := mgr.Connect(context.Background(), "mockConnector")
		first <- result{s, err}
	}()
	waitStarted(t, conn)

	assert.Equal(t, entity.StatusConnecting, mgr.State().Status)
	assert.Empty(t, mgr.State().Address)

	state, err := mgr.Connect(context.Background(), "mockConnector")
	require.ErrorIs(t, err, entity.ErrConnectionInProgress)
	assert.Equal(t, entity.StatusConnecting, state.Status)

	close(conn.block)
	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, entity.StatusConnected, res.state.Status)

	requests, _ := conn.calls()
	assert.Equal(t, 1, requests)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ConnectAttempts.WithLabelValues("mockConnector", metrics.OutcomeInProgress)), 0)
}

func TestSessionManager_ConnectContextCancelled(t *testing.T) {
	t.Parallel()

	conn := newFakeConnector("0xABC")
	conn.block = make(chan struct{})
	conn.ignoreCtx = true
	mgr, _ := newTestManager(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := mgr.Connect(ctx, "mockConnector")
		done <- err
	}()
	waitStarted(t, conn)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, entity.ConnectionState{Status: entity.StatusDisconnected}, mgr.State())

	// The wallet answers after the caller gave up; the answer must be dropped.
	close(conn.block)
	<-conn.finished
	assert.Never(t, func() bool { return mgr.State().Status != entity.StatusDisconnected },
		50*time.Millisecond, 5*time.Millisecond)

	// A fresh attempt works normally.
	conn.mu.Lock()
	conn.block = nil
	conn.mu.Unlock()
	state, err := mgr.Connect(context.Background(), "mockConnector")
	require.NoError(t, err)
	assert.Equal(t, "0xABC", state.Address)
}

func TestSessionManager_ConnectDeadline(t *testing.T) {
	t.Parallel()

	conn := newFakeConnector("0xABC")
	conn.block = make(chan struct{})
	defer close(conn.block)
	mgr, _ := newTestManager(t, conn)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := mgr.Connect(ctx, "mockConnector")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, entity.StatusDisconnected, mgr.State().Status)
}

func TestSessionManager_DisconnectWhileConnecting(t *testing.T) {
	t.Parallel()

	conn := newFakeConnector("0xABC")
	conn.block = make(chan struct{})
	conn.ignoreCtx = true
	mgr, _ := newTestManager(t, conn)

	done := make(chan error, 1)
	go func() {
		_, err := mgr.Connect(context.Background(), "mockConnector")
		done <- err
	}()
	waitStarted(t, conn)

	state := mgr.Disconnect(context.Background())
	assert.Equal(t, entity.ConnectionState{Status: entity.StatusDisconnected}, state)

	close(conn.block)
	err := <-done
	require.ErrorIs(t, err, entity.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "cancelled")
	assert.Equal(t, entity.ConnectionState{Status: entity.StatusDisconnected}, mgr.State())

	_, disconnects := conn.calls()
	assert.Equal(t, 1, disconnects)
}

func TestSessionManager_Disconnect(t *testing.T) {
	t.Parallel()

	t.Run("from disconnected does nothing", func(t *testing.T) {
		t.Parallel()
		conn := newFakeConnector("0xABC")
		mgr, m := newTestManager(t, conn)

		state := mgr.Disconnect(context.Background())
		assert.Equal(t, entity.StatusDisconnected, state.Status)
		_, disconnects := conn.calls()
		assert.Zero(t, disconnects)
		assert.Zero(t, testutil.ToFloat64(m.Disconnects))
	})

	t.Run("twice is idempotent", func(t *testing.T) {
		t.Parallel()
		conn := newFakeConnector("0xABC")
		mgr, _ := newTestManager(t, conn)
		_, err := mgr.Connect(context.Background(), "mockConnector")
		require.NoError(t, err)

		first := mgr.Disconnect(context.Background())
		second := mgr.Disconnect(context.Background())
		assert.Equal(t, first, second)
		_, disconnects := conn.calls()
		assert.Equal(t, 1, disconnects)
	})

	t.Run("teardown error is swallowed", func(t *testing.T) {
		t.Parallel()
		conn := newFakeConnector("0xABC")
		conn.disconnectErr = errBoom
		mgr, m := newTestManager(t, conn)
		_, err := mgr.Connect(context.Background(), "mockConnector")
		require.NoError(t, err)

		state := mgr.Disconnect(context.Background())
		assert.Equal(t, entity.ConnectionState{Status: entity.StatusDisconnected}, state)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.TeardownFailures), 0)
	})

	t.Run("teardown panic is recovered", func(t *testing.T) {
		t.Parallel()
		conn := newFakeConnector("0xABC")
		conn.disconnectPanic = true
		mgr, m := newTestManager(t, conn)
		_, err := mgr.Connect(context.Background(), "mockConnector")
		require.NoError(t, err)

		var state entity.ConnectionState
		require.NotPanics(t, func() { state = mgr.Disconnect(context.Background()) })
		assert.Equal(t, entity.StatusDisconnected, state.Status)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.TeardownFailures), 0)
	})
}

func TestSessionManager_AddressNormalisation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		accounts []string
		want     string
	}{
		{"lowercase hex becomes checksummed", []string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"}, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		{"non-hex value kept verbatim", []string{"0xABC"}, "0xABC"},
		{"blank entries skipped", []string{" ", "0xABC", "0xDEF"}, "0xABC"},
		{"surrounding whitespace trimmed", []string{"  0xABC\n"}, "0xABC"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mgr, _ := newTestManager(t, newFakeConnector(tc.accounts...))

			state, err := mgr.Connect(context.Background(), "mockConnector")
			require.NoError(t, err)
			assert.Equal(t, tc.want, state.Address)
		})
	}
}

// Random interleavings of every operation must never break the
// address-iff-connected rule or leave the selection outside the registry.
func TestSessionManager_ConcurrentOperationsStayConsistent(t *testing.T) {
	t.Parallel()

	conn := newFakeConnector("0xABC")
	mgr, _ := newTestManager(t, conn)
	ids := []string{"a", "b", "missing"}

	check := func() {
		snap := mgr.Snapshot()
		if snap.Connection.Status == entity.StatusConnected {
			assert.NotEmpty(t, snap.Connection.Address)
		} else {
			assert.Empty(t, snap.Connection.Address)
		}
		assert.Contains(t, []string{"a", "b"}, snap.Network.ID)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				switch rnd.Intn(4) {
				case 0:
					_ = mgr.SelectNetwork(ids[rnd.Intn(len(ids))])
				case 1, 2:
					_, _ = mgr.Connect(context.Background(), "mockConnector")
				case 3:
					mgr.Disconnect(context.Background())
				}
				check()
			}
		}(int64(w))
	}
	wg.Wait()
	check()
}
