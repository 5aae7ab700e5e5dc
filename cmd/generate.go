package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mvv-cli/internal/synth"
)

var (
	generateOut        string
	generateRows       int
	generateComplete   int
	generateCategories int
	generateSeed       int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic MVV export for demos and tests",
	RunE: func(cmd *cobra.Command, _ []string) error {
		opts := synth.Options{
			Rows:       generateRows,
			Complete:   generateComplete,
			Categories: generateCategories,
			Seed:       generateSeed,
		}

		var buf bytes.Buffer
		if err := synth.Write(&buf, opts); err != nil {
			return err
		}

		if generateOut == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.MkdirAll(filepath.Dir(generateOut), 0o755); err != nil {
			return eris.Wrapf(err, "generate: create dir for %s", generateOut)
		}
		if err := os.WriteFile(generateOut, buf.Bytes(), 0o644); err != nil {
			return eris.Wrapf(err, "generate: write %s", generateOut)
		}

		zap.L().Info("generate: wrote synthetic export",
			zap.String("path", generateOut),
			zap.Int("rows", opts.Rows),
			zap.Int("complete", opts.Complete),
			zap.Int("categories", opts.Categories),
		)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "mvv-synthetic.csv", "output CSV path, - for stdout")
	generateCmd.Flags().IntVar(&generateRows, "rows", 95, "number of companies")
	generateCmd.Flags().IntVar(&generateComplete, "complete", 60, "companies with complete MVV text")
	generateCmd.Flags().IntVar(&generateCategories, "categories", 10, "number of categories")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 0, "random seed, 0 for random")
	rootCmd.AddCommand(generateCmd)
}
