package main

import (
	"github.com/spf13/cobra"

	"github.com/nikmy/txflow/pkg/errors"
	"github.com/nikmy/txflow/pkg/logger"
)

type rootOptions struct {
	configPath     string
	configRequired bool
	dotEnvPath     string
	env            string
}

// app is what every subcommand gets once flags are parsed.
type app struct {
	opts rootOptions
	cfg  *Config
	log  logger.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "txflow",
		Short:         "Run database transactions one at a time and deliver their results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.opts.configRequired = cmd.Flags().Changed("config")

			cfg, err := loadConfig(a.opts)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.Environment)
			if err != nil {
				return errors.WrapFail(err, "init logger")
			}

			a.cfg, a.log = cfg, log
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "config.yaml", "path to yaml config")
	flags.StringVar(&a.opts.dotEnvPath, "dotenv", ".env", "path to .env file")
	flags.StringVar(&a.opts.env, "env", "", "environment (dev, prod)")

	cmd.AddCommand(
		newServeCommand(a),
		newQueryCommand(a),
		newExecCommand(a),
		newFindCommand(a),
		newLoadCommand(a),
		newFailuresCommand(a),
	)

	return cmd
}
