package fastsheet

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/fastsheet/boundary"
	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/engine"
	"github.com/wippyai/fastsheet/handle"
	"github.com/wippyai/fastsheet/native"
)

type (
	Cell = cell.Cell
	Row  = cell.Row
)

// Options configures Open. A nil Options reads with the native decoder
// and no header.
type Options struct {
	// Decoder performs the decode. Nil means native.New(nil).
	Decoder boundary.Decoder

	// Logger overrides the boundary logger for this call.
	Logger *zap.Logger

	// Header moves the first decoded row out of the rows and into Header.
	Header bool
}

// Open decodes sheet from the file at path and returns the resulting
// table. On error no Table is returned.
func Open(ctx context.Context, path, sheet string, opts *Options) (*Table, error) {
	if opts == nil {
		opts = &Options{}
	}
	dec := opts.Decoder
	if dec == nil {
		dec = native.New(nil)
	}

	adapter := boundary.New(dec, &boundary.Config{Logger: opts.Logger})
	defer adapter.Close()

	h := handle.New()
	if err := adapter.Populate(ctx, h, path, sheet, opts.Header); err != nil {
		return nil, err
	}

	t, err := NewTable(h)
	if err != nil {
		return nil, err
	}
	t.file, t.sheet = path, sheet
	return t, nil
}

// SetLogger sets the logger used by the boundary adapter and the engine.
func SetLogger(l *zap.Logger) {
	boundary.SetLogger(l)
	engine.SetLogger(l)
}
