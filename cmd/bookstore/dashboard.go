package main

import (
	"github.com/spf13/cobra"

	"github.com/David-Botos/bookstore-ingress/pkg/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the ETL pipeline and serve the analytics dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrideString(cmd, "addr", &app.cfg.DashboardAddr)

		result, err := runETL(cmd)
		if err != nil {
			return err
		}

		state := dashboard.NewState(result.Report, result.RunID, result.Hosted)
		srv, err := dashboard.NewServer(state, app.registry, app.logger)
		if err != nil {
			return err
		}
		return srv.Run(cmd.Context(), app.cfg.DashboardAddr)
	},
}

func init() {
	addETLFlags(dashboardCmd)
	dashboardCmd.Flags().String("addr", "", "Listen address (env DASHBOARD_ADDR)")
	rootCmd.AddCommand(dashboardCmd)
}
