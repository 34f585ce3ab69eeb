package main

import (
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Repair the notation file and insert its records into task_1",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrideString(cmd, "file", &app.cfg.Inputs.Notation)

		_, err := newRunner().RunNormalizer(cmd.Context())
		return err
	},
}

func init() {
	normalizeCmd.Flags().String("file", "", "Notation file to load (env NOTATION_FILE)")
	rootCmd.AddCommand(normalizeCmd)
}
