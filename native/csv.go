package native

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/errors"
)

// csvFormat reads delimited text. A CSV file holds a single sheet named
// after the file without its extension; an empty sheet name selects it.
type csvFormat struct {
	comma rune
}

func sheetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (csvFormat) sheets(path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return []string{sheetName(path)}, nil
}

func (c csvFormat) read(ctx context.Context, path, sheet string) (*grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet != "" && sheet != sheetName(path) {
		return nil, errors.SheetNotFound(path, sheet)
	}

	r := csv.NewReader(f)
	r.Comma = c.comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	g := &grid{}
	for {
		if err := g.checkpoint(ctx); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(cell.Row, len(rec))
		for i, v := range rec {
			row[i] = infer(v)
		}
		g.add(row)
	}
	return g, nil
}
