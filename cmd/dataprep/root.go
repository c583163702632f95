package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xXAI-botXx/3xM/config"
	"github.com/xXAI-botXx/3xM/logging"
)

// errItemsFailed is returned when a run finished but some items produced no
// output. main exits non-zero without printing it again.
var errItemsFailed = errors.New("some items failed")

type commandContext struct {
	configFlag *string
	verbose    *bool
	loader     *config.Loader
	logger     logging.Logger
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{configFlag: configFlag, verbose: verbose, logger: logging.NewNop()}
}

// load reads the configuration with the command's flags layered on top and
// initializes the global logger from it. Only flags the user set are bound, so
// flag defaults never shadow files, environment or struct defaults.
func (c *commandContext) load(fs *pflag.FlagSet, keys map[string]string) (*config.PrepConfig, error) {
	opts := config.DefaultConfigOptions()
	opts.ConfigFile = *c.configFlag

	loader, err := config.NewLoader(opts)
	if err != nil {
		return nil, err
	}
	changed := make(map[string]string, len(keys))
	for flag, key := range keys {
		if fs.Changed(flag) {
			changed[flag] = key
		}
	}
	if err := loader.BindFlags(fs, changed); err != nil {
		return nil, err
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if *c.verbose {
		cfg.Log.Level = "debug"
	}
	c.loader = loader
	c.logger = logging.Init(cfg.Log).Named("dataprep")
	if files := loader.Files(); len(files) > 0 {
		c.logger.Debug("config loaded", logging.Count("files", len(files)), logging.File(files[len(files)-1]))
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	var (
		configFlag string
		verbose    bool
	)
	ctx := newCommandContext(&configFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:           "dataprep",
		Short:         "Prepare the 3xM dataset for training",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and stack traces on errors")

	rootCmd.AddCommand(newPrepareCommand(ctx))
	rootCmd.AddCommand(newMaskCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newPublishCommand(ctx))
	return rootCmd
}
