package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/terrawatch/envzone/internal/geo"
	"github.com/terrawatch/envzone/internal/server"
	"github.com/terrawatch/envzone/internal/zoneops"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		analyzer, err := newAnalyzer(st)
		if err != nil {
			return err
		}
		operator := zoneops.NewOperator(geo.NewPlanarEngine())

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		return server.New(st, analyzer, operator, serverCfg).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "override the configured listen port")
	rootCmd.AddCommand(serveCmd)
}
