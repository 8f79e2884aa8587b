package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"hfquant/internal/config"
	"hfquant/internal/httpapi"
	"hfquant/internal/logging"
	"hfquant/internal/metrics"
	"hfquant/internal/pipeline"
	"hfquant/internal/report"
	"hfquant/pkg/types"
)

// runPipeline executes one run and, when configured, serves its status
// alongside it. Outputs (report, metrics textfile, summary) are written even
// when the run ends early.
func runPipeline(ctx context.Context, cfg config.Config, d *Deps) error {
	log := logging.New(d.Stderr, cfg.LogLevel)
	httpapi.SetLogger(log)

	policy, err := pipeline.ParsePolicy(cfg.OnFailure)
	if err != nil {
		return err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	drv := pipeline.New(pipeline.Options{
		Token:      cfg.Token,
		Repository: cfg.Repository,
		Method:     cfg.Method,
		WorkDir:    cfg.WorkDir,
		Toolchain: pipeline.Toolchain{
			Git:           cfg.Git,
			Python:        cfg.Python,
			ConvertScript: cfg.ConvertScript,
			QuantizeBin:   cfg.QuantizeBin,
		},
		Policy:       policy,
		StageTimeout: timeout,
		Runner:       d.Runner,
		Auth:         d.NewAuth(cfg.HFEndpoint),
		Prompter:     pipeline.NewLinePrompter(d.Stdin, d.Stdout),
		Stdout:       d.Stdout,
		Stderr:       d.Stderr,
		Logger:       log,
		Metrics:      rec,
	})

	// Bind before starting so a bad address fails the run up front.
	var ln net.Listener
	if cfg.Listen != "" {
		if ln, err = net.Listen("tcp", cfg.Listen); err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Listen, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	runCtx, finished := context.WithCancel(gctx)
	defer finished()

	var (
		rep    *types.Report
		runErr error
	)
	g.Go(func() error {
		defer finished()
		rep, runErr = drv.Run(runCtx)
		return nil
	})
	if ln != nil {
		srvOpts := httpapi.Options{CORSOrigins: cfg.CORSOrigins}
		h := httpapi.NewMux(drv.Tracker(), rec.Registry(), srvOpts)
		log.Info().Str("addr", ln.Addr().String()).Msg("status server listening")
		g.Go(func() error { return serveStatus(runCtx, ln, h, srvOpts, log) })
	}
	if err := g.Wait(); err != nil {
		return err
	}

	outErr := writeOutputs(cfg, rep, rec, d)
	if outErr != nil {
		log.Error().Err(outErr).Msg("write run outputs")
	}
	if runErr != nil {
		return runErr
	}
	return outErr
}

// serveStatus runs the status server for the lifetime of ctx. A server
// failure is logged and never cancels the run it reports on.
func serveStatus(ctx context.Context, ln net.Listener, h http.Handler, opts httpapi.Options, log zerolog.Logger) error {
	if err := httpapi.ServeListener(ctx, ln, h, opts); err != nil {
		log.Warn().Err(err).Msg("status server stopped; run continues")
	}
	return nil
}

func writeOutputs(cfg config.Config, rep *types.Report, rec *metrics.Recorder, d *Deps) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	if rep != nil && cfg.Report != "" {
		keep(report.Write(cfg.Report, rep))
	}
	if cfg.MetricsFile != "" {
		keep(rec.WriteTextfile(cfg.MetricsFile))
	}
	if rep != nil && len(rep.Stages) > 0 {
		keep(report.Summary(d.Stderr, rep))
	}
	return first
}
