package main

import (
	"github.com/spf13/cobra"

	"github.com/David-Botos/bookstore-ingress/pkg/pipeline"
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Clean users, books and orders, replace their tables and print the top revenue days",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := runETL(cmd)
		return err
	},
}

func addETLFlags(cmd *cobra.Command) {
	cmd.Flags().String("users", "", "Users CSV file (env USERS_FILE)")
	cmd.Flags().String("books", "", "Books YAML file (env BOOKS_FILE)")
	cmd.Flags().String("orders", "", "Orders Parquet file (env ORDERS_FILE)")
	cmd.Flags().String("chart", "", "Where to save the revenue chart, empty to skip (env CHART_PATH)")
	cmd.Flags().Bool("hosted", false, "Skip database writes (env STREAMLIT_ENV or HOSTED_DASHBOARD)")
}

func applyETLFlags(cmd *cobra.Command) {
	overrideString(cmd, "users", &app.cfg.Inputs.Users)
	overrideString(cmd, "books", &app.cfg.Inputs.Books)
	overrideString(cmd, "orders", &app.cfg.Inputs.Orders)
	overrideString(cmd, "chart", &app.cfg.ChartPath)
}

func runETL(cmd *cobra.Command) (*pipeline.ETLResult, error) {
	applyETLFlags(cmd)
	return newRunner().RunETL(cmd.Context())
}

func init() {
	addETLFlags(etlCmd)
	rootCmd.AddCommand(etlCmd)
}
