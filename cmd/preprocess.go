package main

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mvv-cli/internal/artifact"
	"github.com/sells-group/mvv-cli/internal/config"
	"github.com/sells-group/mvv-cli/internal/loader"
	"github.com/sells-group/mvv-cli/internal/model"
	"github.com/sells-group/mvv-cli/internal/pipeline"
	"github.com/sells-group/mvv-cli/internal/report"
	"github.com/sells-group/mvv-cli/internal/store"
)

var (
	preprocessInput  string
	preprocessOutput string
	preprocessCSVOut string
	preprocessSheet  string
	preprocessRecord bool
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Clean the MVV export and write the analysis bundle",
	Long: "Loads the MVV source table, cleans every record, keeps companies with complete " +
		"mission, vision and values, groups them by category and writes the JSON bundle.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if preprocessInput != "" {
			cfg.Input.Path = preprocessInput
		}
		if preprocessOutput != "" {
			cfg.Output.Path = preprocessOutput
		}
		if preprocessCSVOut != "" {
			cfg.Output.CSVPath = preprocessCSVOut
		}
		if preprocessSheet != "" {
			cfg.Input.Sheet = preprocessSheet
		}
		if preprocessRecord {
			cfg.Store.Enabled = true
		}
		return runPreprocess(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func init() {
	preprocessCmd.Flags().StringVar(&preprocessInput, "input", "", "source CSV or XLSX (default from config)")
	preprocessCmd.Flags().StringVar(&preprocessOutput, "output", "", "bundle JSON path (default from config)")
	preprocessCmd.Flags().StringVar(&preprocessCSVOut, "csv-out", "", "also write complete companies as flat CSV")
	preprocessCmd.Flags().StringVar(&preprocessSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	preprocessCmd.Flags().BoolVar(&preprocessRecord, "record", false, "record the run in the run ledger")
	rootCmd.AddCommand(preprocessCmd)
}

// runPreprocess drives load, preprocess, aggregate and save, printing the
// table summary and the run result to out.
func runPreprocess(ctx context.Context, out io.Writer, c *config.Config) error {
	if err := c.Validate("preprocess"); err != nil {
		return err
	}

	if !c.Store.Enabled {
		b, skipped, err := preprocess(out, c)
		if err != nil {
			return err
		}
		return report.Summary(out, b, skipped, c.Output.Path)
	}

	st, err := store.Open(ctx, c.Store.DatabaseURL)
	if err != nil {
		return eris.Wrap(err, "preprocess: open run ledger")
	}
	defer st.Close() //nolint:errcheck

	return recordedPreprocess(ctx, st, out, c)
}

// recordedPreprocess runs preprocess as a ledger entry, marking it failed
// when any step returns an error.
func recordedPreprocess(ctx context.Context, st store.Store, out io.Writer, c *config.Config) (err error) {
	run, err := st.CreateRun(ctx, c.Input.Path, c.Output.Path)
	if err != nil {
		return eris.Wrap(err, "preprocess: record run")
	}
	defer func() {
		if err == nil {
			return
		}
		if ferr := st.FailRun(ctx, run.ID, err); ferr != nil {
			zap.L().Warn("preprocess: could not record failed run", zap.String("run_id", run.ID), zap.Error(ferr))
		}
	}()

	b, skipped, err := preprocess(out, c)
	if err != nil {
		return err
	}
	if err = st.CompleteRun(ctx, run.ID, model.SummaryOf(b, skipped)); err != nil {
		return eris.Wrap(err, "preprocess: record run result")
	}
	zap.L().Info("preprocess: run recorded", zap.String("run_id", run.ID))

	return report.Summary(out, b, skipped, c.Output.Path)
}

func preprocess(out io.Writer, c *config.Config) (*model.Bundle, int, error) {
	p := pipeline.NewProcessor(pipeline.WithOutput(out))

	if _, err := p.Load(c.Input.Path, loader.Options{Sheet: c.Input.Sheet}); err != nil {
		return nil, 0, err
	}
	if _, err := p.Preprocess(); err != nil {
		return nil, 0, err
	}

	b, err := p.Save(c.Output.Path)
	if err != nil {
		return nil, 0, err
	}

	if c.Output.CSVPath != "" {
		if err := artifact.WriteCSV(c.Output.CSVPath, b.Companies); err != nil {
			return nil, 0, eris.Wrap(err, "preprocess: write csv export")
		}
		zap.L().Info("preprocess: wrote csv export", zap.String("path", c.Output.CSVPath))
	}

	return b, len(p.Skipped()), nil
}
