package loader

import (
	"path/filepath"
	"strings"
)

// Options selects how a source file is read.
type Options struct {
	Sheet string // xlsx worksheet; empty selects the first
}

// Load reads path as XLSX when it has an .xlsx extension and as CSV otherwise.
func Load(path string, opts Options) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSXFile(path, opts.Sheet)
	}
	return ReadCSVFile(path)
}
