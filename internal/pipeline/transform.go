package pipeline

import (
	"fmt"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mvv-cli/internal/loader"
	"github.com/sells-group/mvv-cli/internal/model"
)

// TransformResult holds the companies built from a table and the rows that
// were skipped.
type TransformResult struct {
	Companies []model.Company
	Skipped   []*RecordError
}

// Transform builds one Company per table row, in row order. Rows that fail
// are logged, collected in Skipped, and left out of Companies.
func Transform(t *loader.Table) TransformResult {
	res := TransformResult{Companies: make([]model.Company, 0, t.Len())}

	for _, row := range t.Rows {
		c, err := safeTransformRow(row)
		if err != nil {
			recErr := &RecordError{Row: row.Number, Err: err}
			zap.L().Warn("pipeline: skipping record",
				zap.Int("row", row.Number),
				zap.Error(err),
			)
			res.Skipped = append(res.Skipped, recErr)
			continue
		}
		res.Companies = append(res.Companies, c)
	}

	return res
}

// TransformRow cleans one source row into a Company.
func TransformRow(row loader.Row) (model.Company, error) {
	if n := nonEmpty(row.Overflow); n > 0 {
		return model.Company{}, eris.Wrapf(ErrInvalidRecord,
			"%d non-empty cells beyond the header", n)
	}

	rec := rawRecord(row)
	for _, f := range []struct{ col, value string }{
		{model.ColCompanyName, rec.CompanyName},
		{model.ColWebsite, rec.Website},
		{model.ColCategory, rec.Category},
		{model.ColStatus, rec.Status},
		{model.ColMission, rec.Mission},
		{model.ColVision, rec.Vision},
		{model.ColValues, rec.Values},
		{model.ColExtractionSource, rec.ExtractionSource},
		{model.ColExtractedFrom, rec.ExtractedFrom},
	} {
		if !utf8.ValidString(f.value) {
			return model.Company{}, eris.Wrapf(ErrInvalidRecord, "column %s is not valid UTF-8", f.col)
		}
	}

	mission := CleanText(rec.Mission)
	vision := CleanText(rec.Vision)
	values := CleanText(rec.Values)

	return model.Company{
		ID:          fmt.Sprintf("company_%d", rec.Row),
		Name:        CleanField(rec.CompanyName),
		Website:     CleanField(rec.Website),
		Category:    CleanField(rec.Category),
		Mission:     mission,
		Vision:      vision,
		Values:      values,
		CombinedMVV: CombinedText(mission, vision, values),
		ConfidenceScores: model.ConfidenceScores{
			Mission: confidence(rec.Row, model.ColMissionConfidence, rec.MissionConfidence),
			Vision:  confidence(rec.Row, model.ColVisionConfidence, rec.VisionConfidence),
			Values:  confidence(rec.Row, model.ColValuesConfidence, rec.ValuesConfidence),
		},
		ExtractionSource: CleanField(rec.ExtractionSource),
		ExtractedFrom:    CleanField(rec.ExtractedFrom),
		HasCompleteMVV:   mission != "" && vision != "" && values != "",
	}, nil
}

// safeTransformRow reports a panic in TransformRow as a record error.
func safeTransformRow(row loader.Row) (c model.Company, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Wrapf(ErrInvalidRecord, "panic: %v", r)
		}
	}()
	return TransformRow(row)
}

func rawRecord(row loader.Row) model.RawRecord {
	return model.RawRecord{
		Row:               row.Number,
		CompanyName:       row.Get(model.ColCompanyName),
		Website:           row.Get(model.ColWebsite),
		Category:          row.Get(model.ColCategory),
		Status:            row.Get(model.ColStatus),
		Mission:           row.Get(model.ColMission),
		Vision:            row.Get(model.ColVision),
		Values:            row.Get(model.ColValues),
		MissionConfidence: row.Get(model.ColMissionConfidence),
		VisionConfidence:  row.Get(model.ColVisionConfidence),
		ValuesConfidence:  row.Get(model.ColValuesConfidence),
		ExtractionSource:  row.Get(model.ColExtractionSource),
		ExtractedFrom:     row.Get(model.ColExtractedFrom),
	}
}

// confidence parses a score, logging and defaulting to 0 when malformed.
func confidence(row int, col, raw string) float64 {
	score, ok := ParseConfidence(raw)
	if !ok {
		zap.L().Warn("pipeline: unparseable confidence, using 0",
			zap.Int("row", row),
			zap.String("column", col),
			zap.String("value", raw),
		)
	}
	return score
}

func nonEmpty(cells []string) int {
	n := 0
	for _, c := range cells {
		if CleanField(c) != "" {
			n++
		}
	}
	return n
}
