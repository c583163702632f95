package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xXAI-botXx/3xM/config"
	"github.com/xXAI-botXx/3xM/convert"
	"github.com/xXAI-botXx/3xM/imaging"
	"github.com/xXAI-botXx/3xM/logging"
	"github.com/xXAI-botXx/3xM/metrics"
	"github.com/xXAI-botXx/3xM/pipeline"
	"github.com/xXAI-botXx/3xM/storage"
)

type runOptions struct {
	allowFailures  bool
	deleteOriginal bool
}

func sizeOf(cfg *config.PrepConfig) imaging.Size {
	return imaging.Size{Width: cfg.Width, Height: cfg.Height}
}

// runJob executes job, prints the summary table and writes the optional report
// and metrics files.
func runJob(cmd *cobra.Command, c *commandContext, cfg *config.PrepConfig, job pipeline.Job, opts runOptions) error {
	job.Extensions = cfg.Extensions

	stderr := cmd.ErrOrStderr()
	for _, s := range job.Stages {
		fmt.Fprintf(stderr, "Clearing %s\n", s.OutputDir)
	}

	interp, err := imaging.ParseInterpolation(cfg.Interpolation)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	runner := pipeline.NewRunner(
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(c.logger),
		pipeline.WithMetrics(collector),
		pipeline.WithReporter(newReporter(stderr, c.logger)),
		pipeline.WithConvertOptions(
			convert.WithJPEGQuality(cfg.JPEGQuality),
			convert.WithInterpolation(interp),
		),
		pipeline.WithDeleteOriginal(opts.deleteOriginal),
	)

	summary, runErr := runner.Run(cmd.Context(), job)
	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, job))
	if failures := summary.Failures(); len(failures) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), renderFailures(failures))
		for kind, n := range summary.Errors().CountByType() {
			c.logger.Warn("failures", zap.String("kind", string(kind)), logging.Count("count", n))
		}
	}

	if cfg.Report != "" {
		if err := pipeline.WriteReport(cfg.Report, pipeline.NewReport(summary, runErr, collector)); err != nil {
			c.logger.WithError(err).Error("write report")
		}
	}
	if cfg.Metrics != "" {
		_, err := storage.WriteFile(cfg.Metrics, func(w io.Writer) error {
			_, err := io.WriteString(w, collector.PrometheusFormat())
			return err
		})
		if err != nil {
			c.logger.WithError(err).Error("write metrics")
		}
	}

	if runErr != nil {
		return runErr
	}
	if summary.FailureCount() > 0 && !opts.allowFailures {
		return errItemsFailed
	}
	return nil
}

func parseModalities(names []string) ([]convert.Modality, error) {
	out := make([]convert.Modality, 0, len(names))
	for _, name := range names {
		m, err := convert.ParseModality(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(f.Fd())
}
