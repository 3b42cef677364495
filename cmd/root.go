package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "envzone",
	Short: "Environmental zone monitoring and risk analysis",
	Long:  "Manages monitoring zones and their sensors, classifies pollution levels, scores zone risk, and runs geometric zone operations with environmental impact summaries.",
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
