package pipeline

import (
	"math"
	"strconv"
	"strings"
)

// listSeparator replaces ';' in MVV text. Values lists exported from
// Latin-script sources use semicolons; the corpus uses the ideographic comma.
const listSeparator = "、"

// Labels prefixed to each segment of the combined MVV text.
const (
	missionLabel = "Mission: "
	visionLabel  = "Vision: "
	valuesLabel  = "Values: "

	segmentSeparator = " | "
)

// CleanText trims surrounding whitespace and replaces every ';', together
// with any whitespace around it, by the ideographic comma.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.Contains(s, ";") {
		return s
	}
	parts := strings.Split(s, ";")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, listSeparator)
}

// CombinedText joins the non-empty MVV fields into one labeled string for
// similarity analysis. Empty fields are omitted entirely.
func CombinedText(mission, vision, values string) string {
	parts := make([]string, 0, 3)
	if mission != "" {
		parts = append(parts, missionLabel+mission)
	}
	if vision != "" {
		parts = append(parts, visionLabel+vision)
	}
	if values != "" {
		parts = append(parts, valuesLabel+values)
	}
	return strings.Join(parts, segmentSeparator)
}

// ParseConfidence parses a confidence score. Empty input yields 0 with ok
// set; unparseable or non-finite input yields 0 with ok unset.
func ParseConfidence(s string) (score float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if isHexLiteral(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isHexLiteral reports whether s uses the 0x float syntax, e.g. "0x1p-2".
func isHexLiteral(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// CleanField trims a descriptive field (name, website, category) without
// rewriting its content.
func CleanField(s string) string {
	return strings.TrimSpace(s)
}
