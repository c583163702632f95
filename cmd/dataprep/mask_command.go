package main

import (
	"github.com/spf13/cobra"

	"github.com/xXAI-botXx/3xM/convert"
	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/pipeline"
)

func newMaskCommand(ctx *commandContext) *cobra.Command {
	var (
		src, out      string
		allowFailures bool
	)

	cmd := &cobra.Command{
		Use:   "mask",
		Short: "Convert a directory of color masks into label images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(cmd.Flags(), map[string]string{
				"width":   "width",
				"height":  "height",
				"workers": "workers",
				"report":  "report",
				"metrics": "metrics",
			})
			if err != nil {
				return err
			}
			if src == "" {
				return apperrors.NewInvalid("src", src, "required")
			}
			if out == "" {
				return apperrors.NewInvalid("out", out, "required")
			}

			job := pipeline.DirJob(convert.ModalityMask, src, out, sizeOf(cfg))
			return runJob(cmd, ctx, cfg, job, runOptions{allowFailures: allowFailures})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&src, "src", "", "Directory of color-coded masks")
	flags.StringVar(&out, "out", "", "Directory label images are written to (cleared first)")
	flags.Int("width", 0, "Output width (0 keeps the original size)")
	flags.Int("height", 0, "Output height (0 keeps the original size)")
	flags.Int("workers", 0, "Parallel items (0 uses one per CPU)")
	flags.String("report", "", "Write a JSON run report to this path")
	flags.String("metrics", "", "Write run metrics to this path")
	flags.BoolVar(&allowFailures, "allow-failures", false, "Exit 0 even when items failed")
	return cmd
}
