package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

// Source column names of the MVV extraction export.
const (
	ColCompanyName       = "companyName"
	ColWebsite           = "website"
	ColCategory          = "category"
	ColStatus            = "status"
	ColMission           = "mission"
	ColVision            = "vision"
	ColValues            = "values"
	ColMissionConfidence = "missionConfidence"
	ColVisionConfidence  = "visionConfidence"
	ColValuesConfidence  = "valuesConfidence"
	ColExtractionSource  = "extractionSource"
	ColExtractedFrom     = "extractedFrom"
)

// StatusCompleted is the extraction status of a finished row.
const StatusCompleted = "completed"

// RawRecord is one source row, with every column kept as text.
// Missing columns are empty strings.
type RawRecord struct {
	Row               int // 1-based data row number
	CompanyName       string
	Website           string
	Category          string
	Status            string
	Mission           string
	Vision            string
	Values            string
	MissionConfidence string
	VisionConfidence  string
	ValuesConfidence  string
	ExtractionSource  string
	ExtractedFrom     string
}

// ConfidenceScores holds the extractor's per-field confidence.
type ConfidenceScores struct {
	Mission float64 `json:"mission" csv:"mission"`
	Vision  float64 `json:"vision" csv:"vision"`
	Values  float64 `json:"values" csv:"values"`
}

// Company is a cleaned MVV record ready for embedding.
type Company struct {
	ID               string           `json:"id" csv:"id"`
	Name             string           `json:"name" csv:"name"`
	Website          string           `json:"website" csv:"website"`
	Category         string           `json:"category" csv:"category"`
	Mission          string           `json:"mission" csv:"mission"`
	Vision           string           `json:"vision" csv:"vision"`
	Values           string           `json:"values" csv:"values"`
	CombinedMVV      string           `json:"combined_mvv" csv:"combined_mvv"`
	ConfidenceScores ConfidenceScores `json:"confidence_scores" csv:"confidence_,inline"`
	ExtractionSource string           `json:"extraction_source" csv:"extraction_source"`
	ExtractedFrom    string           `json:"extracted_from" csv:"extracted_from"`
	HasCompleteMVV   bool             `json:"has_complete_mvv" csv:"has_complete_mvv"`
}

// Bundle is the preprocessed artifact consumed by the embedding step.
type Bundle struct {
	TotalCompanies       int            `json:"total_companies"`
	CompleteMVVCompanies int            `json:"complete_mvv_companies"`
	Companies            []Company      `json:"companies"`
	ByCategory           CategoryGroups `json:"by_category"`
	Categories           []string       `json:"categories"`
	ProcessedAt          time.Time      `json:"processed_at"`
}

// Check verifies the count and partition invariants of the bundle.
func (b *Bundle) Check() error {
	if b.CompleteMVVCompanies != len(b.Companies) {
		return eris.Errorf("bundle: complete_mvv_companies=%d but companies has %d entries",
			b.CompleteMVVCompanies, len(b.Companies))
	}
	if b.TotalCompanies < b.CompleteMVVCompanies {
		return eris.Errorf("bundle: total_companies=%d is less than complete_mvv_companies=%d",
			b.TotalCompanies, b.CompleteMVVCompanies)
	}

	flat := make(map[string]int, len(b.Companies))
	for _, c := range b.Companies {
		flat[c.ID]++
	}

	grouped := 0
	for _, name := range b.ByCategory.Names() {
		for _, c := range b.ByCategory.Get(name) {
			if c.Category != name {
				return eris.Errorf("bundle: company %s (category %q) filed under %q", c.ID, c.Category, name)
			}
			if flat[c.ID] == 0 {
				return eris.Errorf("bundle: company %s grouped but missing from companies", c.ID)
			}
			flat[c.ID]--
			grouped++
		}
	}
	if grouped != len(b.Companies) {
		return eris.Errorf("bundle: by_category holds %d companies, companies holds %d", grouped, len(b.Companies))
	}

	if len(b.Categories) != b.ByCategory.Len() {
		return eris.Errorf("bundle: %d categories listed, %d grouped", len(b.Categories), b.ByCategory.Len())
	}
	for i, name := range b.ByCategory.Names() {
		if b.Categories[i] != name {
			return eris.Errorf("bundle: categories[%d]=%q, by_category key %q", i, b.Categories[i], name)
		}
	}
	return nil
}

// CategoryGroups maps category name to companies, remembering the order in
// which categories were first added. It encodes as a JSON object whose keys
// follow that order.
type CategoryGroups struct {
	order  []string
	groups map[string][]Company
}

// Add appends c to the group for its category.
func (g *CategoryGroups) Add(c Company) {
	if g.groups == nil {
		g.groups = make(map[string][]Company)
	}
	if _, ok := g.groups[c.Category]; !ok {
		g.order = append(g.order, c.Category)
	}
	g.groups[c.Category] = append(g.groups[c.Category], c)
}

// Names returns category names in first-seen order.
func (g CategoryGroups) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Get returns the companies in a category, or nil.
func (g CategoryGroups) Get(name string) []Company {
	return g.groups[name]
}

// Len returns the number of categories.
func (g CategoryGroups) Len() int {
	return len(g.order)
}

// MarshalJSON encodes the groups as an ordered JSON object without HTML escaping.
func (g CategoryGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, name := range g.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(name); err != nil {
			return nil, eris.Wrapf(err, "category groups: encode key %q", name)
		}
		buf.WriteByte(':')
		if err := enc.Encode(g.groups[name]); err != nil {
			return nil, eris.Wrapf(err, "category groups: encode group %q", name)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of category -> companies, keeping key order.
func (g *CategoryGroups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "category groups: read object start")
	}
	if tok == nil {
		*g = CategoryGroups{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return eris.Errorf("category groups: expected object, got %v", tok)
	}

	out := CategoryGroups{groups: make(map[string][]Company)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "category groups: read key")
		}
		name, ok := keyTok.(string)
		if !ok {
			return eris.Errorf("category groups: expected string key, got %v", keyTok)
		}

		var companies []Company
		if err := dec.Decode(&companies); err != nil {
			return eris.Wrapf(err, "category groups: decode group %q", name)
		}
		if _, dup := out.groups[name]; !dup {
			out.order = append(out.order, name)
		}
		out.groups[name] = companies
	}
	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "category groups: read object end")
	}

	*g = out
	return nil
}
