package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/landform"
)

var (
	tileLat  float64
	tileLon  float64
	tileZoom int
)

var tileCmd = &cobra.Command{
	Use:   "tile",
	Short: "Show the tile address covering a coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := geo.NewPoint(tileLat, tileLon)
		if err != nil {
			return err
		}

		addr, err := geo.TileAt(p, tileZoom)
		if err != nil {
			return err
		}
		center := addr.Center()

		out := struct {
			geo.TiledAddress
			Path   string    `json:"path"`
			Center geo.Point `json:"center"`
		}{addr, addr.Path(), center}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	tileCmd.Flags().Float64Var(&tileLat, "lat", 0, "latitude (required)")
	tileCmd.Flags().Float64Var(&tileLon, "lon", 0, "longitude (required)")
	tileCmd.Flags().IntVar(&tileZoom, "zoom", landform.DefaultZoom, "tile zoom level")
	tileCmd.MarkFlagRequired("lat")
	tileCmd.MarkFlagRequired("lon")
	rootCmd.AddCommand(tileCmd)
}
