package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wallet_dashboard/internal/app/port"
	"wallet_dashboard/internal/app/service"
	"wallet_dashboard/internal/infrastructure/configloader"
	"wallet_dashboard/internal/infrastructure/connector"
	"wallet_dashboard/internal/infrastructure/datasource"
	"wallet_dashboard/internal/infrastructure/httpclient"
	networkclient "wallet_dashboard/internal/infrastructure/network/client"
	networkdefinition "wallet_dashboard/internal/infrastructure/network/definition"
	"wallet_dashboard/internal/infrastructure/restapi"
	"wallet_dashboard/internal/pkg/logger"
	"wallet_dashboard/internal/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE: func(_ *cobra.Command, _ []string) error {
		return serve(cfg)
	},
}

// application is the wired server and the resources it must release.
type application struct {
	server  *http.Server
	closers []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func serve(cfg *configloader.Config) error {
	zapLogger, err := logger.NewZap(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize zap logger: %w", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Init(zapLogger, cfg.Logging.Level)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app, err := buildApplication(cfg, zapLogger, reg)
	if err != nil {
		return err
	}
	defer app.close()

	go func() {
		logger.Info("Server starting", "address", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}

// buildApplication wires every component from cfg without starting anything.
func buildApplication(cfg *configloader.Config, zapLogger *zap.Logger, reg *prometheus.Registry) (*application, error) {
	app := &application{}

	registry, err := networkdefinition.FromConfig(cfg.Networks, logger.Named("NetworkRegistry"))
	if err != nil {
		return nil, err
	}

	walletConnector, err := connector.New(cfg, zapLogger)
	if err != nil {
		return nil, err
	}
	if c, ok := walletConnector.(interface{ Close() }); ok {
		app.closers = append(app.closers, c.Close)
	}
	logger.Info("Wallet connector initialized", "kind", cfg.Connector.Kind)

	m := metrics.New(reg)

	source, err := newDataSource(cfg, zapLogger, app)
	if err != nil {
		return nil, err
	}

	cleanup := time.Duration(cfg.Cache.CleanupIntervalMinutes) * time.Minute
	dashboards := service.NewDashboardService(
		source,
		logger.Named("DashboardService"),
		m,
		time.Duration(cfg.Cache.DashboardTTLSeconds)*time.Second,
		cleanup,
	)
	store := service.NewSessionStore(
		registry,
		walletConnector,
		logger.Named("SessionStore"),
		m,
		time.Duration(cfg.Cache.SessionIdleMinutes)*time.Minute,
		cleanup,
	)

	router := restapi.SetupRouter(restapi.RouterDeps{
		Catalog: restapi.NewCatalogHandler(registry, walletConnector, logger.Named("CatalogHandler")),
		Sessions: restapi.NewSessionHandler(
			store,
			dashboards,
			logger.Named("SessionHandler"),
			time.Duration(cfg.Connector.RequestTimeoutMillis)*time.Millisecond,
		),
		Gatherer: reg,
		Server:   cfg.Server,
		Swagger:  cfg.Swagger,
		Logger:   zapLogger,
	})

	app.server = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
	return app, nil
}

func newDataSource(cfg *configloader.Config, zapLogger *zap.Logger, app *application) (port.DashboardDataSource, error) {
	switch cfg.Dashboard.Source {
	case configloader.SourceMock:
		return datasource.NewMockSource(), nil
	case configloader.SourceLive:
		clients := networkclient.NewEVMClientProvider(cfg.RpcClient, logger.Named("EVMClientProvider"))
		app.closers = append(app.closers, clients.Close)
		prices := httpclient.NewDEXScreenerClient(
			cfg.DEXScreener.BaseURL,
			time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
			zapLogger,
		)
		return datasource.NewLiveSource(clients, prices, logger.Named("LiveSource")), nil
	default:
		return nil, fmt.Errorf("unknown dashboard source %q", cfg.Dashboard.Source)
	}
}
