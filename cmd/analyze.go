package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var analyzeSave bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <zone-id>",
	Short: "Run a pollution analysis for a zone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		zoneID := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		zone, err := st.GetZone(ctx, zoneID)
		if err != nil {
			return err
		}
		if zone == nil {
			return eris.Errorf("zone %s not found", zoneID)
		}

		sensors, err := st.ListSensors(ctx, zoneID)
		if err != nil {
			return err
		}

		analyzer, err := newAnalyzer(st)
		if err != nil {
			return err
		}

		analysis := analyzer.AnalyzeZone(ctx, zoneID, sensors)

		if analyzeSave {
			if err := st.SaveAnalysis(ctx, analysis); err != nil {
				return eris.Wrap(err, "save analysis")
			}
			zap.L().Info("analysis snapshot saved", zap.String("zone_id", zoneID))
		}

		return printJSON(analysis)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", true, "persist the analysis snapshot")
	rootCmd.AddCommand(analyzeCmd)
}
