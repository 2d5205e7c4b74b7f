package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"booking-system/pkg/config"
	"booking-system/pkg/logger"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "booking-server",
	Short: "Barber and salon booking API server",
	Long: `booking-server runs the booking REST API for clients, workers and store owners.

Available subcommands:
  serve    - Start the HTTP server
  migrate  - Create or update the database schema
  complete - Complete finished appointments once and exit`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/server.yaml", "path to the config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(completeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadRuntime loads the configuration and builds the logger every command uses
func loadRuntime() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	return cfg, log, nil
}
