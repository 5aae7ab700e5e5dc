// Package synth generates synthetic MVV extraction exports for demos and tests.
package synth

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mvv-cli/internal/model"
)

// Header is the column order of generated files.
var Header = []string{
	model.ColCompanyName,
	model.ColWebsite,
	model.ColCategory,
	model.ColStatus,
	model.ColMission,
	model.ColVision,
	model.ColValues,
	model.ColMissionConfidence,
	model.ColVisionConfidence,
	model.ColValuesConfidence,
	model.ColExtractionSource,
	model.ColExtractedFrom,
}

var categoryPool = []string{
	"製造業",
	"情報通信",
	"小売",
	"金融",
	"医療・ヘルスケア",
	"建設",
	"物流",
	"エネルギー",
	"食品",
	"不動産",
	"教育",
	"コンサルティング",
}

var sources = []string{"website", "perplexity", "manual"}

// Options controls the shape of a generated file.
type Options struct {
	Rows       int   // total data rows
	Complete   int   // rows with mission, vision and values all present
	Categories int   // distinct categories, assigned round-robin
	Seed       int64 // 0 picks a random seed
}

// Validate reports whether the options describe a satisfiable file.
func (o Options) Validate() error {
	switch {
	case o.Rows < 0:
		return eris.New("synth: rows must be >= 0")
	case o.Complete < 0 || o.Complete > o.Rows:
		return eris.Errorf("synth: complete must be between 0 and rows (%d)", o.Rows)
	case o.Categories < 1:
		return eris.New("synth: categories must be >= 1")
	}
	return nil
}

// CategoryName returns the name of the i-th generated category.
func CategoryName(i int) string {
	if i < len(categoryPool) {
		return categoryPool[i]
	}
	return fmt.Sprintf("カテゴリ%d", i+1)
}

// Write generates a CSV with a header row. The first o.Complete rows carry
// all three MVV fields; every later row is missing at least one of them.
func Write(w io.Writer, o Options) error {
	if err := o.Validate(); err != nil {
		return err
	}

	f := gofakeit.New(o.Seed)
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "synth: write header")
	}

	for i := 0; i < o.Rows; i++ {
		if err := cw.Write(row(f, i, i < o.Complete, CategoryName(i%o.Categories))); err != nil {
			return eris.Wrapf(err, "synth: write row %d", i+1)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "synth: flush")
}

func row(f *gofakeit.Faker, i int, complete bool, category string) []string {
	name := f.Company()
	site := "https://" + strings.ToLower(strings.NewReplacer(" ", "", ",", "", ".", "").Replace(name)) + ".example"

	mission := f.Sentence(8)
	vision := f.Sentence(6)
	values := strings.Join([]string{f.BuzzWord(), f.BuzzWord(), f.BuzzWord()}, "; ")

	status := model.StatusCompleted
	if !complete {
		// Drop one to three fields, always at least one.
		switch i % 3 {
		case 0:
			values = ""
		case 1:
			vision = ""
			values = ""
		default:
			mission = ""
		}
		if f.Bool() {
			status = "partial"
		}
	}

	return []string{
		name,
		site,
		category,
		status,
		mission,
		vision,
		values,
		score(f, mission),
		score(f, vision),
		score(f, values),
		f.RandomString(sources),
		site + "/about",
	}
}

func score(f *gofakeit.Faker, text string) string {
	if text == "" {
		return ""
	}
	return strconv.FormatFloat(f.Float64Range(0.5, 1.0), 'f', 2, 64)
}
