package native

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/fastsheet/boundary"
	"github.com/wippyai/fastsheet/errors"
	"github.com/wippyai/fastsheet/resource"
)

// Config holds decoder configuration. A nil Config uses defaults.
type Config struct {
	// Comma is the CSV field separator. Zero means ','.
	Comma rune

	// Charset is passed to the xls reader. Empty means "utf-8".
	Charset string
}

// Decoder reads xlsx, xlsm, xls and csv files in process. It implements
// boundary.Decoder and holds no per-call state.
type Decoder struct {
	charset string
	comma   rune
}

var _ boundary.Decoder = (*Decoder)(nil)

// New creates a decoder.
func New(cfg *Config) *Decoder {
	d := &Decoder{comma: ',', charset: "utf-8"}
	if cfg != nil {
		if cfg.Comma != 0 {
			d.comma = cfg.Comma
		}
		if cfg.Charset != "" {
			d.charset = cfg.Charset
		}
	}
	return d
}

// format is one supported file type.
type format interface {
	sheets(path string) ([]string, error)
	read(ctx context.Context, path, sheet string) (*grid, error)
}

func (d *Decoder) format(path string) (format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return xlsxFormat{}, nil
	case ".xls":
		return xlsFormat{charset: d.charset}, nil
	case ".csv", ".txt":
		return csvFormat{comma: d.comma}, nil
	default:
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, errors.FileNotFound(path, err)
		}
		return nil, errors.Decode(path, fmt.Sprintf("unsupported file type %q", ext), nil)
	}
}

// Decode reads sheet from the file at path and writes it into the slots
// addr resolves to.
func (d *Decoder) Decode(ctx context.Context, reg boundary.Registry, addr resource.Handle, path, sheet string) error {
	slots, ok := reg.Resolve(addr)
	if !ok {
		return errors.CorruptPopulation("address %#x does not resolve", uint32(addr))
	}

	f, err := d.format(path)
	if err != nil {
		return err
	}
	g, err := f.read(ctx, path, sheet)
	if err != nil {
		return located(err, path)
	}

	g.writeTo(slots)
	return nil
}

// Sheets lists the sheet names of the file at path in workbook order.
// CSV files have a single sheet named after the file.
func (d *Decoder) Sheets(path string) ([]string, error) {
	f, err := d.format(path)
	if err != nil {
		return nil, err
	}
	names, err := f.sheets(path)
	if err != nil {
		return nil, located(err, path)
	}
	return names, nil
}

// located maps reader failures onto the error taxonomy.
func located(err error, path string) error {
	var e *errors.Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		return errors.FileNotFound(path, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Decode(path, "decode canceled", err)
	}
	return errors.Decode(path, err.Error(), err)
}
