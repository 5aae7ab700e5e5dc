package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/mvv-cli/internal/loader"
	"github.com/sells-group/mvv-cli/internal/report"
)

var (
	statsInput string
	statsSheet string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a summary of the MVV source table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if statsInput != "" {
			cfg.Input.Path = statsInput
		}
		if statsSheet != "" {
			cfg.Input.Sheet = statsSheet
		}
		if err := cfg.Validate("stats"); err != nil {
			return err
		}

		t, err := loader.Load(cfg.Input.Path, loader.Options{Sheet: cfg.Input.Sheet})
		if err != nil {
			return eris.Wrap(err, "stats")
		}
		return report.Stats(cmd.OutOrStdout(), loader.ComputeStats(t))
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsInput, "input", "", "source CSV or XLSX (default from config)")
	statsCmd.Flags().StringVar(&statsSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	rootCmd.AddCommand(statsCmd)
}
