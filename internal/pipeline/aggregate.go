package pipeline

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/mvv-cli/internal/model"
)

// Aggregate keeps the companies with complete MVV text and groups them by
// category in first-seen order. TotalCompanies counts every preprocessed
// company, complete or not.
func Aggregate(companies []model.Company, at time.Time) (*model.Bundle, error) {
	if len(companies) == 0 {
		return nil, eris.Wrap(ErrNotPreprocessed, "pipeline: aggregate")
	}

	complete := make([]model.Company, 0, len(companies))
	var groups model.CategoryGroups
	for _, c := range companies {
		if !c.HasCompleteMVV {
			continue
		}
		complete = append(complete, c)
		groups.Add(c)
	}

	return &model.Bundle{
		TotalCompanies:       len(companies),
		CompleteMVVCompanies: len(complete),
		Companies:            complete,
		ByCategory:           groups,
		Categories:           groups.Names(),
		ProcessedAt:          at,
	}, nil
}
