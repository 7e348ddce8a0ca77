package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/quillpress/quillctl/internal/adapter/outbound/credfile"
	"github.com/quillpress/quillctl/internal/adapter/outbound/credsqlite"
	"github.com/quillpress/quillctl/internal/adapter/outbound/rest"
	"github.com/quillpress/quillctl/internal/config"
	"github.com/quillpress/quillctl/internal/domain/alert"
	"github.com/quillpress/quillctl/internal/domain/session"
	"github.com/quillpress/quillctl/internal/observe"
	"github.com/quillpress/quillctl/internal/service"
)

// app wires the configured components together for one CLI invocation.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observe.Metrics
	facade   *rest.Facade
	alerts   *alert.Broker
	manager  *session.Manager
	auth     *service.AuthService
	catalog  *service.CatalogService
	wallet   *service.WalletService

	closers []func()
}

// newApp loads config, builds the shared facade and lifecycle manager, and
// registers the response watcher. Callers must defer a.Close().
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return nil, err
	}
	if profileFlag != "" {
		cfg.Credentials.Profile = profileFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger, logClose := observe.NewLogger(observe.LogOptions{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logClose() })

	providers, err := observe.NewProviders(ctx, cfg.Tracing.Enabled, os.Stderr)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = providers.Shutdown(context.Background()) })

	a.registry = prometheus.NewRegistry()
	a.metrics = observe.NewMetrics(a.registry)

	a.facade, err = rest.New(rest.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.RequestTimeout(),
		Logger:  logger,
		Metrics: a.metrics,
		Tracer:  providers.TracerProvider.Tracer("quillctl"),
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	store, storeClose, err := openStore(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if storeClose != nil {
		a.closers = append(a.closers, storeClose)
	}

	a.alerts = alert.NewBroker(0)
	a.closers = append(a.closers, a.alerts.Close)

	// Forced-logout alerts surface on stderr; the metrics label rides the
	// same subscription.
	sub := a.alerts.Subscribe(func(al alert.Alert) {
		fmt.Fprintf(os.Stderr, "! %s\n", al.Message)
		a.metrics.InvalidationsTotal.WithLabelValues(al.Kind).Inc()
	})
	a.closers = append(a.closers, sub.Cancel)

	a.manager, err = session.NewManager(ctx, session.Options{
		Store:   store,
		Headers: a.facade,
		Alerts:  a.alerts,
		Logger:  logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	watch := rest.WatchAuth(a.facade, a.manager)
	a.manager.OnClose(watch.Remove)

	a.auth = service.NewAuthService(a.facade, a.manager, logger)
	a.catalog = service.NewCatalogService(a.facade, service.CatalogOptions{
		Retries: cfg.API.Retries,
		Logger:  logger,
		Metrics: a.metrics,
	})
	a.wallet = service.NewWalletService(a.facade, logger)
	return a, nil
}

// openStore picks the configured credential backend.
func openStore(cfg *config.Config, logger *slog.Logger) (session.CredentialStore, func(), error) {
	switch cfg.Credentials.Backend {
	case "sqlite":
		store, err := credsqlite.Open(cfg.Credentials.Path, cfg.Credentials.Profile, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open credential store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return credfile.New(cfg.Credentials.Path, logger), nil, nil
	}
}

// Close tears the app down in reverse construction order. The persisted
// session survives; only this process's resources are released.
func (a *app) Close() {
	if a.manager != nil {
		a.manager.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// withApp builds the app for a command run and tears it down afterwards.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(c *cobra.Command, args []string) error {
		a, err := newApp(c.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(c.Context(), a, args)
	}
}
