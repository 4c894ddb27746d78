package cli

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/wikiassist/internal/adapters/driving/watcher"
	"github.com/custodia-labs/wikiassist/internal/core/domain"
	"github.com/custodia-labs/wikiassist/internal/core/services"
	"github.com/custodia-labs/wikiassist/internal/logger"
)

var (
	watchDebounce    time.Duration
	watchRescan      time.Duration
	watchInitial     bool
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-index pages as they change",
	Long: `Watches a page directory and indexes every page that is written.

With --rescan the whole directory is also swept periodically, catching
changes made while the watcher was not running. --metrics-addr exposes
Prometheus metrics at /metrics while watching.`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed page is indexed")
	f.DurationVar(&watchRescan, "rescan", 0, "interval between full directory sweeps (0 disables)")
	f.BoolVar(&watchInitial, "initial", true, "index the directory once before watching")
	f.StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	dir := pagesDir()
	if len(args) == 1 {
		dir = args[0]
	}
	ctx := cmd.Context()

	if watchMetricsAddr != "" {
		stop, err := serveMetrics(ctx, watchMetricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	var mu sync.Mutex
	report := func(res domain.IndexResult) {
		mu.Lock()
		defer mu.Unlock()
		printIndexResult(cmd, res)
	}

	var wg sync.WaitGroup
	switch {
	case watchRescan > 0:
		scheduler := services.NewScheduler(indexService, []string{dir}, watchRescan)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("rescan: %v", err)
			}
		}()
	case watchInitial:
		res := indexService.ProcessDirectory(ctx, dir)
		cmd.Printf("%s: %d indexed, %d skipped, %d failed\n", dir, res.Processed, res.Skipped, res.Failed)
	}

	w := watcher.New(dir, indexService, watcher.WithDebounce(watchDebounce), watcher.WithResultHandler(report))
	defer w.Close()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	err := w.Run(ctx)
	wg.Wait()
	return err
}

// serveMetrics starts a metrics endpoint and returns its shutdown func.
func serveMetrics(ctx context.Context, addr string) (func(), error) {
	if appMetrics == nil {
		return nil, errors.New("metrics not configured")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", appMetrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server: %v", err)
		}
	}()
	logger.Info("metrics listening on %s", addr)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown: %v", err)
		}
	}, nil
}

// pagesDir is the configured page root.
func pagesDir() string {
	if appSettings != nil && appSettings.Storage.PagesDir != "" {
		return appSettings.Storage.PagesDir
	}
	return domain.DefaultAppSettings().Storage.PagesDir
}
