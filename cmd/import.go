package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/ingest"
	"github.com/terrawatch/envzone/internal/model"
	"github.com/terrawatch/envzone/internal/store"
)

var (
	importShapefile string
	importGeoJSON   string
	importNameField string
	importCSV       string
	importXLSX      string
	importSheet     string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import zones or readings from files",
}

var importZonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "Import zones from a shapefile or GeoJSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importShapefile == "" && importGeoJSON == "" {
			return eris.New("either --shapefile or --geojson is required")
		}

		var zones []model.Zone
		var err error
		switch {
		case importShapefile != "":
			zones, err = ingest.ParseShapefileZones(importShapefile, ingest.ShapefileOptions{NameField: importNameField})
		case importGeoJSON != "":
			zones, err = ingest.ParseGeoJSONZones(importGeoJSON)
		}
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := ingest.NewImporter(st).ImportZones(ctx, zones)
		if err != nil {
			return err
		}
		zap.L().Info("zones imported", zap.Int("count", n))
		return nil
	},
}

var importReadingsCmd = &cobra.Command{
	Use:   "readings",
	Short: "Import sensor readings from a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importCSV == "" && importXLSX == "" {
			return eris.New("either --csv or --xlsx is required")
		}

		var readings []store.SensorReading
		var err error
		switch {
		case importCSV != "":
			readings, err = ingest.ParseReadingsCSV(importCSV)
		case importXLSX != "":
			readings, err = ingest.ParseReadingsXLSX(importXLSX, ingest.XLSXOptions{SheetName: importSheet})
		}
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := ingest.NewImporter(st).ImportReadings(ctx, readings)
		if err != nil {
			return err
		}
		zap.L().Info("readings imported", zap.Int("count", n))
		return nil
	},
}

func init() {
	importZonesCmd.Flags().StringVar(&importShapefile, "shapefile", "", "path to .shp file")
	importZonesCmd.Flags().StringVar(&importGeoJSON, "geojson", "", "path to GeoJSON FeatureCollection")
	importZonesCmd.Flags().StringVar(&importNameField, "name-field", "NAME", "shapefile attribute holding the zone name")

	importReadingsCmd.Flags().StringVar(&importCSV, "csv", "", "path to CSV file")
	importReadingsCmd.Flags().StringVar(&importXLSX, "xlsx", "", "path to XLSX workbook")
	importReadingsCmd.Flags().StringVar(&importSheet, "sheet", "", "workbook sheet name (default: first sheet)")

	importCmd.AddCommand(importZonesCmd)
	importCmd.AddCommand(importReadingsCmd)
	rootCmd.AddCommand(importCmd)
}
