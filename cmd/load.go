package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/osaka-bousai/riskpoint/internal/store"
)

var (
	loadGeoJSONPath   string
	loadShapefilePath string
	loadCSVPath       string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import shelters and scored risk points into the store",
}

var loadSheltersCmd = &cobra.Command{
	Use:   "shelters",
	Short: "Import shelters from a GeoJSON feature collection or a shapefile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			shelters []store.Shelter
			err      error
		)
		switch {
		case loadGeoJSONPath != "":
			f, openErr := os.Open(loadGeoJSONPath)
			if openErr != nil {
				return eris.Wrapf(openErr, "open %s", loadGeoJSONPath)
			}
			defer f.Close()
			shelters, err = store.LoadSheltersGeoJSON(f)
		case loadShapefilePath != "":
			shelters, err = store.LoadSheltersShapefile(loadShapefilePath)
		default:
			return eris.New("one of --geojson or --shapefile is required")
		}
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		n, err := st.PutShelters(ctx, shelters)
		if err != nil {
			return err
		}
		zap.L().Info("shelters imported",
			zap.Int("parsed", len(shelters)), zap.Int("inserted", n))
		return nil
	},
}

var loadRisksCmd = &cobra.Command{
	Use:   "risks",
	Short: "Import scored risk points from CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		f, err := os.Open(loadCSVPath)
		if err != nil {
			return eris.Wrapf(err, "open %s", loadCSVPath)
		}
		defer f.Close()

		points, err := store.LoadRiskPointsCSV(f)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		n, err := st.PutRiskPoints(ctx, points)
		if err != nil {
			return err
		}
		zap.L().Info("risk points imported",
			zap.Int("parsed", len(points)), zap.Int("inserted", n))
		return nil
	},
}

func init() {
	loadSheltersCmd.Flags().StringVar(&loadGeoJSONPath, "geojson", "", "path to a shelter GeoJSON file")
	loadSheltersCmd.Flags().StringVar(&loadShapefilePath, "shapefile", "", "path to a shelter shapefile (.shp)")

	loadRisksCmd.Flags().StringVar(&loadCSVPath, "csv", "", "path to the scored risk CSV (required)")
	loadRisksCmd.MarkFlagRequired("csv")

	loadCmd.AddCommand(loadSheltersCmd)
	loadCmd.AddCommand(loadRisksCmd)
	rootCmd.AddCommand(loadCmd)
}
