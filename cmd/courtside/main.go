package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/courtside/internal/adapters/sink"
	"github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/analysis"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// HTTP server timeout constants for the optional metrics listener.
const (
	metricsReadTimeout       = 5 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optional prometheus exposition while the run is in flight.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	pipeline := app.New(
		app.WithLogger(log),
		app.WithMinAttempts(cfg.MinAttempts),
		app.WithConfidence(cfg.Confidence),
		app.WithWorkers(cfg.WorkerCount),
		app.WithStrict(cfg.Strict),
		app.WithMaxBadFraction(cfg.MaxBadFraction),
	)

	res, err := pipeline.RunFile(ctx, cfg.Input)
	if err != nil {
		log.Error(ctx, "pipeline run failed", logger.Error(err))
		os.Exit(1)
	}

	out := sink.New(sink.WithLogger(log))
	if cfg.ParquetOut != "" {
		if err := out.WriteParquet(ctx, cfg.ParquetOut, res.Records); err != nil {
			log.Error(ctx, "parquet output failed", logger.Error(err))
			os.Exit(1)
		}
	}
	if cfg.JSONOut != "" {
		if err := out.WriteJSON(ctx, cfg.JSONOut, res.Records); err != nil {
			log.Error(ctx, "json output failed", logger.Error(err))
			os.Exit(1)
		}
	}

	printReport(cfg, res)
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       metricsReadTimeout,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics listener failed", logger.Error(err))
	}
}

// printReport renders the analysis views for the finished run.
func printReport(cfg *config.Config, res *app.Result) {
	view := analysis.New(res.Records)
	d := res.Diagnostics

	fmt.Printf("run %s: %d posterior records\n", res.RunID, view.Len())
	fmt.Printf("diagnostics: malformed=%d unknown_position=%d empty_groups=%d sub_threshold=%d missing_prior=%d numeric_failures=%d\n\n",
		d.Malformed, d.UnknownDropped, d.EmptyGroups, d.SubThreshold, d.MissingPrior, d.NumericFailures)

	fmt.Println("shrinkage by sample size:")
	buckets, err := view.BucketSummary(cfg.BucketBounds)
	if err == nil {
		for _, b := range buckets {
			fmt.Printf("  %-10s n=%-5d mean=%+.4f sd=%.4f ci_width=%.4f\n",
				b.Label, b.Count, b.MeanShrinkage, b.StdDevShrinkage, b.MeanCIWidth)
		}
	}

	fmt.Println("\nby position:")
	for _, p := range view.PositionSummaries() {
		fmt.Printf("  %-8s posterior=%.4f |shrinkage|=%.4f ci_width=%.4f players=%d\n",
			p.Position, p.MeanPosterior, p.MeanAbsShrinkage, p.MeanCIWidth, p.Players)
	}

	fmt.Printf("\ntop %d by posterior mean, %s (>=%d attempts):\n", cfg.TopN, cfg.RankZone, cfg.RankMinAttempts)
	for i, r := range view.TopN(cfg.RankZone, cfg.TopN, int64(cfg.RankMinAttempts)) {
		fmt.Printf("  %2d. %-24s %s  %d/%d raw=%.3f post=%.3f [%.3f, %.3f]\n",
			i+1, r.PlayerName, r.Position, r.Makes, r.Attempts, r.RawPct, r.PosteriorMean, r.CILower, r.CIUpper)
	}

	if hi, ok := view.MostAttempts(); ok {
		fmt.Printf("\nhighest volume: %s %s attempts=%d ci_width=%.4f\n", hi.PlayerName, hi.Zone, hi.Attempts, hi.CIWidth)
	}
	if lo, ok := view.FewestAttempts(); ok {
		fmt.Printf("lowest volume:  %s %s attempts=%d ci_width=%.4f\n", lo.PlayerName, lo.Zone, lo.Attempts, lo.CIWidth)
	}

	fmt.Println("\nmost regularized down:")
	for _, r := range view.LargestShrinkage(5) {
		fmt.Printf("  %-24s %s attempts=%d raw=%.3f post=%.3f shrinkage=%+.4f\n",
			r.PlayerName, r.Zone, r.Attempts, r.RawPct, r.PosteriorMean, r.Shrinkage)
	}
	fmt.Println("most regularized up:")
	for _, r := range view.SmallestShrinkage(5) {
		fmt.Printf("  %-24s %s attempts=%d raw=%.3f post=%.3f shrinkage=%+.4f\n",
			r.PlayerName, r.Zone, r.Attempts, r.RawPct, r.PosteriorMean, r.Shrinkage)
	}
}
