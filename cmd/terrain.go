package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/landform"
)

var (
	terrainLat  float64
	terrainLon  float64
	terrainZoom int
)

var terrainCmd = &cobra.Command{
	Use:   "terrain",
	Short: "Resolve the landform classification label for a coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := geo.NewPoint(terrainLat, terrainLon)
		if err != nil {
			return err
		}

		tiles, err := initTileClient()
		if err != nil {
			return err
		}

		r := landform.NewResolver(tiles, landform.WithZoom(terrainZoom))
		label, err := r.Resolve(cmd.Context(), p)
		if err != nil {
			return err
		}

		fmt.Println(label)
		return nil
	},
}

func init() {
	terrainCmd.Flags().Float64Var(&terrainLat, "lat", 0, "latitude (required)")
	terrainCmd.Flags().Float64Var(&terrainLon, "lon", 0, "longitude (required)")
	terrainCmd.Flags().IntVar(&terrainZoom, "zoom", landform.DefaultZoom, "tile zoom level")
	terrainCmd.MarkFlagRequired("lat")
	terrainCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(terrainCmd)
}
