package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/laknarayana9/AgenticUnderwriting/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "underwriter",
	Short: "Property insurance quote underwriting pipeline",
	Long:  "Validates quote submissions, enriches them with address and hazard data, assesses them against retrieved underwriting guidelines, and prices accepted quotes.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
