package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/report"
)

var (
	reportOut   string
	reportZone  string
	reportLimit int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export saved zone analyses to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		analyses, err := st.ListAnalyses(ctx, reportZone, reportLimit)
		if err != nil {
			return err
		}

		zones, err := st.ListZones(ctx)
		if err != nil {
			return err
		}
		zoneNames := make(map[string]string, len(zones))
		for _, z := range zones {
			zoneNames[z.ID] = z.Name
		}

		if err := report.WriteAnalysesWorkbook(reportOut, analyses, zoneNames); err != nil {
			return err
		}
		zap.L().Info("report written",
			zap.String("path", reportOut),
			zap.Int("analyses", len(analyses)),
		)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "envzone-report.xlsx", "output workbook path")
	reportCmd.Flags().StringVar(&reportZone, "zone", "", "restrict to one zone ID")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0, "max analyses to export (default 100)")
	rootCmd.AddCommand(reportCmd)
}
