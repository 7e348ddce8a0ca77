package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/quillpress/quillctl/internal/domain/alert"
	"github.com/quillpress/quillctl/internal/domain/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Long-running session utilities",
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Hold the session open and report when it is invalidated",
	Long: `Hold the process open until the session is invalidated or the
process is interrupted. The expiry timer runs for the lifetime of the
watch, so a token that expires while watching logs the session out and
exits with the reason.

When metrics.listen_addr is configured, a Prometheus endpoint is served
at /metrics for the duration of the watch.`,
	RunE: withApp(runWatch),
}

func init() {
	sessionCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runWatch(ctx context.Context, a *app, _ []string) error {
	if a.manager.State() != session.StateLoggedIn {
		return errors.New("not logged in")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	invalidated := make(chan alert.Alert, 1)
	sub := a.alerts.Subscribe(func(al alert.Alert) {
		select {
		case invalidated <- al:
		default:
		}
	})
	defer sub.Cancel()

	var metricsSrv *http.Server
	if addr := a.cfg.Metrics.ListenAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics listener failed", "addr", addr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
		fmt.Fprintf(os.Stderr, "metrics listening on %s\n", addr)
	}

	a.metrics.SessionTransitions.WithLabelValues("logged_in").Inc()
	armedTicker := time.NewTicker(time.Second)
	defer armedTicker.Stop()

	fmt.Println("Watching session; Ctrl-C to stop.")
	for {
		select {
		case <-ctx.Done():
			fmt.Println("Watch stopped; session left intact.")
			return nil
		case al := <-invalidated:
			a.metrics.SessionTransitions.WithLabelValues("logged_out").Inc()
			return fmt.Errorf("session invalidated: %s", al.Message)
		case <-armedTicker.C:
			if a.manager.TimerArmed() {
				a.metrics.TimerArmed.Set(1)
			} else {
				a.metrics.TimerArmed.Set(0)
			}
		}
	}
}
