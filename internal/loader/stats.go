package loader

import (
	"sort"

	"github.com/sells-group/mvv-cli/internal/model"
)

// topCategories bounds the per-category breakdown in Stats.
const topCategories = 10

// CategoryCount is the number of rows in one category.
type CategoryCount struct {
	Category string
	Count    int
}

// FieldFill counts rows with a non-empty value for one column.
type FieldFill struct {
	Field  string
	Filled int
	Total  int
}

// Rate returns the filled fraction as a percentage.
func (f FieldFill) Rate() float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Filled) / float64(f.Total) * 100
}

// Stats is a descriptive summary of a loaded table.
type Stats struct {
	Rows          int
	Columns       []string
	Completed     int
	Categories    int
	TopCategories []CategoryCount
	Fill          []FieldFill
}

// ComputeStats summarizes t. Empty categories are not counted. Categories
// are ranked by count, ties keep first-seen order.
func ComputeStats(t *Table) Stats {
	s := Stats{
		Rows:    t.Len(),
		Columns: append([]string(nil), t.Columns...),
	}

	counts := make(map[string]int)
	var order []string
	fill := map[string]int{}

	for _, row := range t.Rows {
		if row.Get(model.ColStatus) == model.StatusCompleted {
			s.Completed++
		}
		if cat := row.Get(model.ColCategory); cat != "" {
			if _, ok := counts[cat]; !ok {
				order = append(order, cat)
			}
			counts[cat]++
		}
		for _, col := range []string{model.ColMission, model.ColVision, model.ColValues} {
			if row.Get(col) != "" {
				fill[col]++
			}
		}
	}

	s.Categories = len(order)
	ranked := make([]CategoryCount, 0, len(order))
	for _, cat := range order {
		ranked = append(ranked, CategoryCount{Category: cat, Count: counts[cat]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > topCategories {
		ranked = ranked[:topCategories]
	}
	s.TopCategories = ranked

	for _, col := range []string{model.ColMission, model.ColVision, model.ColValues} {
		s.Fill = append(s.Fill, FieldFill{Field: col, Filled: fill[col], Total: s.Rows})
	}

	return s
}
