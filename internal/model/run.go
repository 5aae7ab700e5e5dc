package model

import "time"

// RunStatus is the outcome of a preprocessing run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one preprocessing invocation recorded in the run ledger.
type Run struct {
	ID         string    `json:"id"`
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path"`
	Status     RunStatus `json:"status"`
	Total      int       `json:"total_companies"`
	Complete   int       `json:"complete_mvv_companies"`
	Skipped    int       `json:"skipped"`
	Categories int       `json:"categories"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RunSummary holds the counts recorded when a run completes.
type RunSummary struct {
	Total      int
	Complete   int
	Skipped    int
	Categories int
}

// SummaryOf returns the ledger counts of a bundle.
func SummaryOf(b *Bundle, skipped int) RunSummary {
	return RunSummary{
		Total:      b.TotalCompanies,
		Complete:   b.CompleteMVVCompanies,
		Skipped:    skipped,
		Categories: len(b.Categories),
	}
}
