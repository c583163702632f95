package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xXAI-botXx/3xM/config"
	"github.com/xXAI-botXx/3xM/convert"
	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/metrics"
	"github.com/xXAI-botXx/3xM/pipeline"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var src, out string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert masks as they are written to a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(cmd.Flags(), map[string]string{
				"width":   "width",
				"height":  "height",
				"workers": "workers",
				"quiet":   "watch.quiet",
			})
			if err != nil {
				return err
			}
			if src == "" || out == "" {
				return apperrors.NewInvalid("src/out", src+" "+out, "both required")
			}

			collector := metrics.NewCollector()
			job := pipeline.DirJob(convert.ModalityMask, src, out, sizeOf(cfg))
			job.Extensions = cfg.Extensions
			w, err := pipeline.NewWatcher(job, convert.NewMaskConverter(convert.WithJPEGQuality(cfg.JPEGQuality)),
				pipeline.WithQuiet(cfg.Watch.Quiet),
				pipeline.WithWatchWorkers(cfg.Workers),
				pipeline.WithWatchLogger(ctx.logger),
				pipeline.WithWatchMetrics(collector),
			)
			if err != nil {
				return err
			}

			ctx.loader.Watch(func(next *config.PrepConfig, err error) {
				if err != nil {
					ctx.logger.WithError(err).Warn("config reload failed")
					return
				}
				ctx.logger.Info("config changed, restart watch to apply it")
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s, press Ctrl+C to stop\n", src)
			err = w.Run(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), renderCounts(collector))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&src, "src", "", "Directory of color-coded masks")
	flags.StringVar(&out, "out", "", "Directory label images are written to")
	flags.Int("width", 0, "Output width (0 keeps the original size)")
	flags.Int("height", 0, "Output height (0 keeps the original size)")
	flags.Int("workers", 0, "Parallel conversions (0 uses one per CPU)")
	flags.Duration("quiet", pipeline.DefaultQuiet, "Time a file must stay unchanged before it is converted")
	return cmd
}
