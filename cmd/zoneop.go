package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terrawatch/envzone/internal/geo"
	"github.com/terrawatch/envzone/internal/model"
	"github.com/terrawatch/envzone/internal/zoneops"
)

var zoneopCmd = &cobra.Command{
	Use:   "zoneop <operation> <zone-id>...",
	Short: "Run a geometric operation over zones",
	Long:  "Operations: union, intersection, buffer-1km, contains. For contains, the first zone is the container.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		op := zoneops.Operation(args[0])

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		zones := make([]model.Zone, 0, len(args)-1)
		for _, zoneID := range args[1:] {
			zone, err := st.GetZone(ctx, zoneID)
			if err != nil {
				return err
			}
			if zone == nil {
				return eris.Errorf("zone %s not found", zoneID)
			}
			zones = append(zones, *zone)
		}

		result := zoneops.NewOperator(geo.NewPlanarEngine()).Perform(op, zones)
		if result == nil {
			return eris.Errorf("operation %s produced no result", op)
		}
		return printJSON(result)
	},
}

func init() {
	rootCmd.AddCommand(zoneopCmd)
}
