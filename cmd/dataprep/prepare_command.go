package main

import (
	"github.com/spf13/cobra"

	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/pipeline"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	var allowFailures bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Resize rgb and depth images and convert masks of a dataset root",
		Long: "Reads <root>/rgb, <root>/depth and <root>/mask and writes the prepared images\n" +
			"to <root>/rgb-prep, <root>/depth-prep and <root>/mask-prep.\n" +
			"The output directories are deleted and recreated first.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(cmd.Flags(), map[string]string{
				"root":            "root",
				"width":           "width",
				"height":          "height",
				"workers":         "workers",
				"modalities":      "modalities",
				"jpeg-quality":    "jpeg_quality",
				"interpolation":   "interpolation",
				"delete-original": "delete_original",
				"report":          "report",
				"metrics":         "metrics",
			})
			if err != nil {
				return err
			}
			if cfg.Root == "" {
				return apperrors.NewInvalid("root", cfg.Root, "required")
			}
			modalities, err := parseModalities(cfg.Modalities)
			if err != nil {
				return err
			}

			job := pipeline.DatasetJob(cfg.Root, modalities, sizeOf(cfg))
			return runJob(cmd, ctx, cfg, job, runOptions{
				allowFailures:  allowFailures,
				deleteOriginal: cfg.DeleteOriginal,
			})
		},
	}

	flags := cmd.Flags()
	flags.String("root", "", "Dataset root holding rgb/, depth/ and mask/")
	flags.Int("width", 0, "Output width (0 keeps the original size)")
	flags.Int("height", 0, "Output height (0 keeps the original size)")
	flags.Int("workers", 0, "Parallel items (0 uses one per CPU)")
	flags.StringSlice("modalities", nil, "Modalities to prepare (rgb,depth,mask)")
	flags.Int("jpeg-quality", 0, "Quality of JPEG outputs")
	flags.String("interpolation", "", "Resize filter for rgb and depth (bilinear or nearest)")
	flags.Bool("delete-original", false, "Delete the source directories after a run without failures")
	flags.String("report", "", "Write a JSON run report to this path")
	flags.String("metrics", "", "Write run metrics to this path")
	flags.BoolVar(&allowFailures, "allow-failures", false, "Exit 0 even when items failed")
	return cmd
}
