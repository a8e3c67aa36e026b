package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/shpdiag/internal/capture"
	"github.com/bimmerbailey/shpdiag/internal/config"
	"github.com/bimmerbailey/shpdiag/internal/output"
	"github.com/bimmerbailey/shpdiag/internal/pages"
	"github.com/bimmerbailey/shpdiag/internal/redact"
)

// loadConfig decodes the merged viper settings.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newDecoder builds a capture decoder from the configuration.
func newDecoder(cfg config.Config) (*capture.Decoder, error) {
	opts := capture.Options{Logger: logger}

	if cfg.PagesFile != "" {
		m, err := pages.Load(cfg.PagesFile)
		if err != nil {
			return nil, err
		}
		opts.Resolver = pages.NewResolver(m)
		logger.WithField("devices", len(m.Devices)).Debug("page map loaded")
	}

	if cfg.Redaction.Enabled {
		opts.Redactor = redact.New(cfg.Redaction.Patterns)
	}

	return capture.New(opts), nil
}

// newWriter builds an output writer for the command, honouring --no-color.
func newWriter(cmd *cobra.Command, cfg config.Config) (*output.Writer, error) {
	mode, err := output.ParseColorMode(cfg.Color)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("no-color"); f != nil && f.Value.String() == "true" {
		mode = output.ColorNever
	}
	return output.New(cmd.OutOrStdout(), output.ParseFormat(cfg.Format), mode), nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
