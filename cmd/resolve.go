package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/osaka-bousai/riskpoint/internal/geo"
)

var (
	resolveLat   float64
	resolveLon   float64
	resolveLimit int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve terrain, risk and nearby shelters for a coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := geo.NewPoint(resolveLat, resolveLon)
		if err != nil {
			return err
		}

		pl, cleanup, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		assessment, err := pl.Resolve(ctx, p, resolveLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(assessment)
	},
}

func init() {
	resolveCmd.Flags().Float64Var(&resolveLat, "lat", 0, "latitude (required)")
	resolveCmd.Flags().Float64Var(&resolveLon, "lon", 0, "longitude (required)")
	resolveCmd.Flags().IntVar(&resolveLimit, "limit", 3, "number of shelters to return")
	resolveCmd.MarkFlagRequired("lat")
	resolveCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(resolveCmd)
}
