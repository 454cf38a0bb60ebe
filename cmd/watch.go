package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/folio/internal/config"
	"github.com/matheuskafuri/folio/internal/metrics"
	"github.com/matheuskafuri/folio/internal/resolve"
)

var (
	flagMetricsAddr string
	flagInterval    string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cache warm and serve metrics",
	Long: `Resolve every domain on an interval so the cache stays fresh, serving
Prometheus metrics on /metrics and the last result per domain on /healthz.

The interval defaults to refresh_interval from the config.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", ":9090", "address for /metrics and /healthz")
	watchCmd.Flags().StringVar(&flagInterval, "interval", "", "refresh interval (e.g., 15m, 1d)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	r, err := newRoot(rootOpts{})
	if err != nil {
		return err
	}
	defer r.Close()

	interval := r.Config.RefreshDuration()
	if flagInterval != "" {
		d := config.ParseDuration(flagInterval, 0)
		if d == 0 {
			return fmt.Errorf("invalid --interval value %q", flagInterval)
		}
		interval = d
	}

	w := newWatcher(r.Resolver, r.Domains, r.Logger.Named("watch"))
	srv := metrics.NewServer(func() any { return w.Status() }, r.Logger.Named("metrics"))
	addr, errc, err := srv.Start(flagMetricsAddr)
	if err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving metrics on http://%s/metrics, refreshing every %s\n", addr, interval)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := <-errc; err != nil {
			r.Logger.Error("Metrics server failed", zap.Error(err))
			stop()
		}
	}()

	w.Run(ctx, interval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// domainStatus is the health view of one domain's last resolution.
type domainStatus struct {
	Tier       resolve.Tier `json:"tier"`
	Items      int          `json:"items"`
	IsStale    bool         `json:"is_stale"`
	Error      string       `json:"error,omitempty"`
	ResolvedAt time.Time    `json:"resolved_at"`
}

type watcher struct {
	resolver *resolve.Resolver
	domains  []resolve.Domain
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	status map[string]domainStatus
}

func newWatcher(r *resolve.Resolver, domains []resolve.Domain, logger *zap.Logger) *watcher {
	return &watcher{
		resolver: r,
		domains:  domains,
		logger:   logger,
		now:      time.Now,
		status:   make(map[string]domainStatus),
	}
}

// Run resolves every domain immediately and then on each tick until ctx is
// done. Ticks force a remote load so the cache is renewed before it expires.
func (w *watcher) Run(ctx context.Context, interval time.Duration) {
	w.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx, resolve.ForceRefresh())
		}
	}
}

func (w *watcher) tick(ctx context.Context, opts ...resolve.ActivateOption) {
	var g errgroup.Group
	for _, d := range w.domains {
		g.Go(func() error {
			res := w.resolver.Resolve(ctx, d, opts...)
			if ctx.Err() != nil {
				return nil
			}
			w.record(d.Name, res)
			return nil
		})
	}
	_ = g.Wait()
}

func (w *watcher) record(name string, res resolve.Result) {
	st := domainStatus{
		Tier:       res.Tier,
		Items:      len(res.Items),
		IsStale:    res.IsStale,
		ResolvedAt: w.now().UTC(),
	}
	if res.Err != nil {
		st.Error = res.Err.Error()
		w.logger.Warn("Resolution degraded",
			zap.String("domain", name),
			zap.String("tier", string(res.Tier)),
			zap.Error(res.Err))
	} else {
		w.logger.Info("Resolved", zap.String("domain", name), zap.Int("items", st.Items))
	}

	w.mu.Lock()
	w.status[name] = st
	w.mu.Unlock()
}

// Status returns a copy of the last status per domain.
func (w *watcher) Status() map[string]domainStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]domainStatus, len(w.status))
	for k, v := range w.status {
		out[k] = v
	}
	return out
}
