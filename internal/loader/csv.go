package loader

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "loader: open csv")
	}
	defer f.Close() //nolint:errcheck

	t, err := ReadCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: %s", path)
	}
	return t, nil
}

// ReadCSV parses a UTF-8 CSV with an optional byte-order mark. The input must
// be valid UTF-8 and well-formed CSV; any failure rejects the whole table.
func ReadCSV(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "loader: read csv")
	}
	if !utf8.Valid(raw) {
		return nil, eris.New("loader: csv is not valid UTF-8")
	}

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(raw), dec))
	reader.FieldsPerRecord = -1 // ragged rows are handled per record

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "loader: parse csv")
	}

	return buildTable(records)
}
