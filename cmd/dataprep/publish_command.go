package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	apperrors "github.com/xXAI-botXx/3xM/errors"
	"github.com/xXAI-botXx/3xM/logging"
	"github.com/xXAI-botXx/3xM/storage"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var (
		prefix    string
		overwrite bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload the prepared directories of a dataset root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.load(cmd.Flags(), map[string]string{
				"root":       "root",
				"workers":    "workers",
				"modalities": "modalities",
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

			provider, err := storage.NewProvider(cfg.Publish)
			if err != nil {
				return err
			}
			if prefix == "" {
				prefix = cfg.Publish.Prefix
			}

			dirs := make([]string, len(modalities))
			for i, m := range modalities {
				dirs[i] = m.OutputDir()
			}
			publisher := storage.NewPublisher(provider, cfg.Workers,
				storage.WithPrefix(prefix),
				storage.WithExtensions(cfg.Extensions),
				storage.WithOverwrite(overwrite),
			)

			ctx.logger.Info("publishing",
				logging.File(filepath.Clean(cfg.Root)),
				logging.Name(provider.Name()),
				logging.Count("dirs", len(dirs)),
			)
			stats, err := publisher.Publish(cmd.Context(), cfg.Root, dirs)
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s files (%s) to %s, %s already present\n",
				humanize.Comma(int64(stats.Files)), humanize.Bytes(uint64(stats.Bytes)),
				provider.Name(), humanize.Comma(int64(stats.Skipped)))
			return err
		},
	}

	flags := cmd.Flags()
	flags.String("root", "", "Dataset root holding the prepared directories")
	flags.Int("workers", 0, "Parallel uploads (0 uses one per CPU)")
	flags.StringSlice("modalities", nil, "Modalities to publish (rgb,depth,mask)")
	flags.StringVar(&prefix, "prefix", "", "Object key prefix (defaults to publish.prefix)")
	flags.BoolVar(&overwrite, "overwrite", false, "Upload files that already exist remotely")
	return cmd
}

