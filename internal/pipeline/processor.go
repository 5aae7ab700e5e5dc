package pipeline

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mvv-cli/internal/artifact"
	"github.com/sells-group/mvv-cli/internal/loader"
	"github.com/sells-group/mvv-cli/internal/model"
	"github.com/sells-group/mvv-cli/internal/report"
)

// Processor runs the load -> preprocess -> aggregate -> save sequence over
// one source table. Each step consumes the complete output of the previous.
type Processor struct {
	out    io.Writer
	now    func() time.Time
	table  *loader.Table
	result TransformResult
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the clock used to stamp bundles.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithOutput sets where the table summary is printed. Nil disables it.
func WithOutput(w io.Writer) Option {
	return func(p *Processor) { p.out = w }
}

// NewProcessor creates a Processor. By default it prints nothing and stamps
// bundles with the local time.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load reads the source table at path and prints its summary.
func (p *Processor) Load(path string, opts loader.Options) (*loader.Table, error) {
	t, err := loader.Load(path, opts)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load")
	}
	zap.L().Info("pipeline: loaded table",
		zap.String("path", path),
		zap.Int("rows", t.Len()),
		zap.Strings("columns", t.Columns),
	)
	if err := p.UseTable(t); err != nil {
		return nil, err
	}
	return t, nil
}

// UseTable sets an already loaded table as the source and prints its summary.
func (p *Processor) UseTable(t *loader.Table) error {
	p.table = t
	p.result = TransformResult{}

	for _, col := range []string{model.ColMission, model.ColVision, model.ColValues} {
		if !t.Has(col) {
			zap.L().Warn("pipeline: source column missing, treating as empty", zap.String("column", col))
		}
	}

	if p.out == nil {
		return nil
	}
	return eris.Wrap(report.Stats(p.out, loader.ComputeStats(t)), "pipeline: print stats")
}

// Preprocess transforms every loaded row. Failing rows are skipped and
// available from Skipped.
func (p *Processor) Preprocess() ([]model.Company, error) {
	if p.table == nil {
		return nil, ErrNotLoaded
	}

	p.result = Transform(p.table)
	zap.L().Info("pipeline: preprocessed",
		zap.Int("rows", p.table.Len()),
		zap.Int("companies", len(p.result.Companies)),
		zap.Int("skipped", len(p.result.Skipped)),
	)
	return p.result.Companies, nil
}

// Skipped returns the rows rejected by the last Preprocess.
func (p *Processor) Skipped() []*RecordError {
	return p.result.Skipped
}

// Bundle aggregates the preprocessed companies. It fails with
// ErrNotPreprocessed when there are none.
func (p *Processor) Bundle() (*model.Bundle, error) {
	b, err := Aggregate(p.result.Companies, p.now())
	if err != nil {
		return nil, err
	}
	zap.L().Info("pipeline: bundle ready",
		zap.Int("complete", b.CompleteMVVCompanies),
		zap.Int("total", b.TotalCompanies),
		zap.Int("categories", len(b.Categories)),
	)
	return b, nil
}

// Save aggregates and writes the bundle to path.
func (p *Processor) Save(path string) (*model.Bundle, error) {
	b, err := p.Bundle()
	if err != nil {
		return nil, err
	}
	if err := artifact.WriteJSON(path, b); err != nil {
		return nil, eris.Wrap(err, "pipeline: save")
	}
	zap.L().Info("pipeline: saved bundle", zap.String("path", path))
	return b, nil
}
