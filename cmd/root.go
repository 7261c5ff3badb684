package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osaka-bousai/riskpoint/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "riskpoint",
	Short: "Terrain classification and disaster risk resolution for Osaka",
	Long:  "Classifies a coordinate against the GSI landform layers, fuses tabular and scored risk sources, and finds the nearest evacuation shelters.",
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
