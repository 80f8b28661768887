package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/pkg/metrics"
)

// dashboardServiceImpl implements port.DashboardService on top of one data source.
type dashboardServiceImpl struct {
	source      port.DashboardDataSource
	cache       *cache.Cache
	group       singleflight.Group
	loadTimeout time.Duration
	logger      port.Logger
	metrics     *metrics.Metrics
}

// dashboardLoadTimeout bounds a shared load once it is detached from its callers.
const dashboardLoadTimeout = 30 * time.Second

// NewDashboardService creates a service that caches view models for ttl.
// A ttl of zero disables caching.
func NewDashboardService(
	source port.DashboardDataSource,
	l port.Logger,
	m *metrics.Metrics,
	ttl time.Duration,
	cleanupInterval time.Duration,
) port.DashboardService {
	s := &dashboardServiceImpl{
		source:      source,
		loadTimeout: dashboardLoadTimeout,
		logger:      l,
		metrics:     m,
	}
	if ttl > 0 {
		s.cache = cache.New(ttl, cleanupInterval)
	}
	l.Info("DashboardService initialized", "source", source.Name(), "cache_ttl", ttl.String())
	return s
}

func cacheKey(networkID, address string) string {
	return networkID + "|" + strings.ToLower(address)
}

// Dashboard returns the view model of the session's selected network. The address
// is only passed to the data source while the session is connected.
func (s *dashboardServiceImpl) Dashboard(ctx context.Context, session entity.Session) (entity.DashboardViewModel, error) {
	address := ""
	if session.Connection.IsConnected() {
		address = session.Connection.Address
	}
	key := cacheKey(session.Network.ID, address)

	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			s.metrics.ObserveCache(true)
			return v.(entity.DashboardViewModel), nil
		}
		s.metrics.ObserveCache(false)
	}

	// The shared load outlives any single caller; each caller waits on its own ctx.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()

		start := time.Now()
		vm, err := s.source.Load(loadCtx, session.Network, address)
		s.metrics.ObserveLoad(s.source.Name(), time.Since(start).Seconds())
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.SetDefault(key, vm)
		}
		return vm, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return entity.DashboardViewModel{}, ctx.Err()
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		s.logger.Error("Failed to load dashboard data",
			"network", session.Network.ID, "source", s.source.Name(), "error", err)
		return entity.DashboardViewModel{}, fmt.Errorf("loading dashboard for %s: %w", session.Network.ID, err)
	}
	if shared {
		s.logger.Debug("Dashboard load shared with a concurrent request", "network", session.Network.ID)
	}
	return v.(entity.DashboardViewModel), nil
}
