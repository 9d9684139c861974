package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/hfcand"
	"github.com/hupe1980/hfcand/codec"
	"github.com/hupe1980/hfcand/metrics/prom"
	"github.com/hupe1980/hfcand/publish"
	"github.com/hupe1980/hfcand/recordio"
	"github.com/hupe1980/hfcand/resource"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build candidates from an event file and publish them",
		Long: `Reads JSON-lines events from the input store, builds candidates on a
bounded worker pool and publishes candidate, match and jet streams plus a
manifest to the output store. CURRENT is moved only after the run
succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd)
		},
	}

	f := cmd.Flags()
	f.String("input-dir", "", "input directory (local backend)")
	f.String("input", "", "input blob name")
	f.String("output-dir", "", "output directory (local backend)")
	f.String("output-backend", "", "output backend (local, memory, s3, minio)")
	f.String("compression", "", "output compression (none, zstd, lz4)")
	f.Int("workers", 0, "events processed concurrently")
	f.Bool("truth", false, "enable Monte Carlo truth matching")
	f.String("metrics-listen", "", "serve Prometheus metrics on this address")
	a.bind(cmd, map[string]string{
		"input-dir":      "input.dir",
		"input":          "input.name",
		"output-dir":     "output.dir",
		"output-backend": "output.backend",
		"compression":    "output.compression",
		"workers":        "resources.workers",
		"truth":          "truth.enabled",
		"metrics-listen": "metrics.listen",
	})
	return cmd
}

func (a *app) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := a.cfg

	in, err := openStore(ctx, cfg.Input.Store)
	if err != nil {
		return fmt.Errorf("input store: %w", err)
	}
	out, err := openStore(ctx, cfg.Output.Store)
	if err != nil {
		return fmt.Errorf("output store: %w", err)
	}
	cdc, ok := codec.ByName(cfg.Output.Codec)
	if !ok {
		return fmt.Errorf("unknown codec %q", cfg.Output.Codec)
	}
	comp, err := recordio.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return err
	}

	rc := resource.NewController(cfg.ResourceConfig())
	opts := []hfcand.Option{
		hfcand.WithResourceController(rc),
		hfcand.WithBatchSize(cfg.Resources.BatchSize),
	}

	basic := &hfcand.BasicMetricsCollector{}
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		mc, err := prom.NewCollector(reg)
		if err != nil {
			return err
		}
		_, stop, err := serveMetrics(ctx, cfg.Metrics.Listen, reg, a.logger)
		if err != nil {
			return err
		}
		defer stop()
		opts = append(opts, hfcand.WithMetricsCollector(mc))
	} else {
		opts = append(opts, hfcand.WithMetricsCollector(basic))
	}

	r, err := recordio.Open(ctx, in, cfg.Input.Name, codec.Default)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.Input.Name, err)
	}
	defer r.Close()

	pub, err := publish.New(ctx, out,
		publish.WithCodec(cdc),
		publish.WithCompression(comp),
		publish.WithResourceController(rc),
	)
	if err != nil {
		return err
	}
	logger := a.logger.WithRun(pub.RunID())

	creator, err := hfcand.New(cfg.ToCreatorConfig(), append(opts, hfcand.WithLogger(logger))...)
	if err != nil {
		_ = pub.Abort(context.WithoutCancel(ctx))
		return err
	}
	defer creator.Close()

	stats, err := creator.Run(ctx, r, pub)
	if err != nil {
		if aerr := pub.Abort(context.WithoutCancel(ctx)); aerr != nil {
			logger.Warn("abort run", "error", aerr)
		}
		return err
	}
	if err := pub.Commit(ctx, stats); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d events, %d candidates, %d rec matched, %d gen matched in %s\n",
		pub.RunID(), stats.Events, stats.Candidates, stats.RecMatched, stats.GenMatched, stats.Duration.Round(time.Millisecond))
	if cfg.Metrics.Listen == "" {
		s := basic.GetStats()
		logger.Debug("fit summary",
			"composite_fits", s.CompositeFits,
			"composite_failures", s.CompositeFails,
			"candidate_fits", s.CandidateFits,
			"candidate_failures", s.CandidateFails,
		)
	}
	return nil
}

// serveMetrics serves /metrics until the returned stop is called. It returns
// the bound address.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *hfcand.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())

	return ln.Addr().String(), func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
		<-done
	}, nil
}
