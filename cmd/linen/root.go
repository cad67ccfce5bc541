package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Spok95/linen-service/internal/config"
	"github.com/Spok95/linen-service/internal/infra/logger"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "linen",
	Short:         "Linen service: batches, invoices and reports for a laundry",
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/example.yaml", "path to YAML config")
	rootCmd.AddCommand(serveCmd, migrateCmd, reportCmd)
}

// setup читает конфиг, ставит часовой пояс и создаёт логгер.
func setup() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if cfg.App.Timezone != "" {
		loc, err := time.LoadLocation(cfg.App.Timezone)
		if err != nil {
			return cfg, nil, fmt.Errorf("timezone %q: %w", cfg.App.Timezone, err)
		}
		time.Local = loc
	}
	return cfg, logger.New(cfg.App.Env), nil
}
