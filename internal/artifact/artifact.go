// Package artifact writes and reads the preprocessed MVV bundle.
package artifact

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/mvv-cli/internal/model"
)

// WriteJSON writes the bundle as indented JSON with non-ASCII text kept
// verbatim. The file appears at path only once it is fully written.
func WriteJSON(path string, b *model.Bundle) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeJSON(w, b)
	})
}

// EncodeJSON writes the bundle to w as 2-space indented JSON without HTML escaping.
func EncodeJSON(w io.Writer, b *model.Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return eris.Wrap(err, "artifact: encode json")
	}
	return nil
}

// ReadJSON loads a bundle written by WriteJSON.
func ReadJSON(path string) (*model.Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "artifact: open json")
	}
	defer f.Close() //nolint:errcheck

	var b model.Bundle
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&b); err != nil {
		return nil, eris.Wrapf(err, "artifact: decode %s", path)
	}
	return &b, nil
}

// WriteCSV writes companies as a flat CSV, one row per company, with the
// confidence scores expanded into confidence_* columns.
func WriteCSV(path string, companies []model.Company) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		enc := csvutil.NewEncoder(cw)
		if err := enc.EncodeHeader(model.Company{}); err != nil {
			return eris.Wrap(err, "artifact: encode csv header")
		}
		for _, c := range companies {
			if err := enc.Encode(c); err != nil {
				return eris.Wrapf(err, "artifact: encode csv row %s", c.ID)
			}
		}
		cw.Flush()
		return eris.Wrap(cw.Error(), "artifact: flush csv")
	})
}

// writeAtomic creates the parent directory, writes to a temp file next to
// path and renames it into place. On any failure the temp file is removed
// and path is left untouched.
func writeAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "artifact: create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return eris.Wrap(err, "artifact: create temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return eris.Wrap(err, "artifact: flush")
	}
	if err = tmp.Sync(); err != nil {
		return eris.Wrap(err, "artifact: sync")
	}
	if err = tmp.Chmod(0o644); err != nil {
		return eris.Wrap(err, "artifact: chmod")
	}
	if err = tmp.Close(); err != nil {
		return eris.Wrap(err, "artifact: close")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "artifact: rename into %s", path)
	}
	return nil
}
