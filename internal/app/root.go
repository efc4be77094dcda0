package app

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/i18n"
)

// Version is the current version of zskema, set at build time.
var Version = "dev"

// session carries what every subcommand needs once flags are parsed.
type session struct {
	cfg    *Config
	logger zerolog.Logger
}

// validationConfig is the per-call library configuration for schemaName.
func (e *session) validationConfig(schemaName string) zskema.Config {
	c := zskema.DefaultConfig()
	c.Locale = i18n.Match(e.cfg.Lang)
	c.Logger = e.logger
	c.Name = schemaName
	return c
}

// NewRootCmd creates the root command and wires up subcommands.
func NewRootCmd(cfg *Config, stderr io.Writer) *cobra.Command {
	e := &session{cfg: cfg, logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "zskema",
		Short:         "Validate JSON and YAML documents against declarative schemas",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(stderr, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			e.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.Lang, "lang", cfg.Lang, "message language (en, ja or an Accept-Language list)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")

	rootCmd.AddCommand(NewValidateCmd(e))
	rootCmd.AddCommand(NewConstraintsCmd(e))
	rootCmd.AddCommand(NewJSONSchemaCmd(e))

	return rootCmd
}
