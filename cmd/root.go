package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"interplay/pkg/config"
)

var (
	configPath string
	verbose    bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "interplay",
	Short:         "Extract characters and their interactions from books with an LLM",
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// runContext returns ctx carrying a logger tagged with a fresh run id.
func runContext(ctx context.Context) context.Context {
	return log.WithContext(ctx, log.Default().With("run", ksuid.New().String()))
}
