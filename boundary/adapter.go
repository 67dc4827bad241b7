package boundary

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/fastsheet/errors"
	"github.com/wippyai/fastsheet/handle"
	"github.com/wippyai/fastsheet/resource"
)

// SlotsTypeID is the resource type under which population targets are pinned.
const SlotsTypeID uint32 = 1

// Registry resolves an address handed to a decoder back to the slots it
// may write. Resolution succeeds only while the adapter holds the pin,
// that is, for the duration of the Decode call that received the address.
type Registry interface {
	Resolve(addr resource.Handle) (handle.Slots, bool)
}

// Decoder is the external decode routine. It parses the named sheet of
// the file at path and writes the result into the slots addr resolves
// to. It must not use addr after returning.
type Decoder interface {
	Decode(ctx context.Context, reg Registry, addr resource.Handle, path, sheet string) error
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, reg Registry, addr resource.Handle, path, sheet string) error

// Decode calls f.
func (f DecoderFunc) Decode(ctx context.Context, reg Registry, addr resource.Handle, path, sheet string) error {
	return f(ctx, reg, addr, path, sheet)
}

// Config holds adapter configuration. A nil Config uses defaults.
type Config struct {
	// Logger overrides the package logger for this adapter.
	Logger *zap.Logger
}

// Adapter bridges a handle to a Decoder. It owns the pin table that
// gives handles a stable address during the decode call.
type Adapter struct {
	decoder Decoder
	table   *resource.Table
	pins    *resource.TypedTable[handle.Slots]
	log     *zap.Logger
}

// New creates an adapter for dec.
func New(dec Decoder, cfg *Config) *Adapter {
	log := Logger()
	if cfg != nil && cfg.Logger != nil {
		log = cfg.Logger
	}

	table := resource.NewTable()
	table.Subscribe(pinLogger{log: log})

	return &Adapter{
		decoder: dec,
		table:   table,
		pins:    resource.NewTypedTable[handle.Slots](table, SlotsTypeID),
		log:     log,
	}
}

// Resolve implements Registry.
func (a *Adapter) Resolve(addr resource.Handle) (handle.Slots, bool) {
	return a.pins.Get(addr)
}

// Pinned returns the number of handles currently pinned.
func (a *Adapter) Pinned() int {
	return a.pins.Len()
}

// Close releases the pin table. Populate fails after Close.
func (a *Adapter) Close() error {
	return a.table.Close()
}

// Populate runs the single population of h: it pins h, invokes the
// decoder synchronously, releases the pin and checks the written data.
// On success h is Populated; on any failure h is Poisoned, except when
// h was not Empty to begin with, which fails with AlreadyPopulated and
// leaves h untouched.
func (a *Adapter) Populate(ctx context.Context, h *handle.Handle, path, sheet string, header bool) error {
	if h == nil {
		return errors.InvalidInput(errors.PhasePopulate, "nil handle")
	}
	if path == "" {
		return errors.InvalidInput(errors.PhaseOpen, "file path is empty")
	}

	slots, err := h.Begin()
	if err != nil {
		a.log.Debug("population rejected",
			zap.String("path", path),
			zap.String("sheet", sheet),
			zap.Stringer("state", h.State()))
		return err
	}

	start := time.Now()
	if err := a.invoke(ctx, slots, path, sheet); err != nil {
		err = classify(err, path, sheet)
		h.Poison(err)
		a.log.Debug("decode failed",
			zap.String("path", path),
			zap.String("sheet", sheet),
			zap.Error(err))
		return err
	}

	if err := h.Seal(header); err != nil {
		err = classify(err, path, sheet)
		if errors.IsFatal(err) {
			a.log.Error("decoder broke the handle layout contract",
				zap.String("path", path),
				zap.String("sheet", sheet),
				zap.Error(err))
		} else {
			a.log.Debug("decoder reported failure",
				zap.String("path", path),
				zap.String("sheet", sheet),
				zap.Error(err))
		}
		return err
	}

	a.log.Debug("handle populated",
		zap.String("path", path),
		zap.String("sheet", sheet),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// invoke pins slots for exactly the duration of the decoder call. The
// pin is released on every exit path, including a panicking decoder.
func (a *Adapter) invoke(ctx context.Context, slots handle.Slots, path, sheet string) (err error) {
	addr := a.pins.Insert(slots)
	if addr == 0 {
		return errors.InvalidInput(errors.PhasePopulate, "adapter closed or out of addresses")
	}
	defer a.pins.Remove(addr)

	defer func() {
		if r := recover(); r != nil {
			err = errors.Decode(path, fmt.Sprintf("decoder panic: %v", r), nil)
		}
	}()

	return a.decoder.Decode(ctx, a, addr, path, sheet)
}

// classify maps decoder failures onto the error taxonomy. Typed errors
// pass through; missing files become FileNotFound; everything else is a
// DecodeError.
func classify(err error, path, sheet string) error {
	if e, ok := err.(*errors.Error); ok {
		if len(e.Path) > 0 {
			return e
		}
		located := *e
		located.Path = []string{path, sheet}
		return &located
	}
	var e *errors.Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, fs.ErrNotExist) {
		return errors.FileNotFound(path, err)
	}
	return errors.Decode(path, "decode failed", err)
}

type pinLogger struct {
	log *zap.Logger
}

func (p pinLogger) OnResourceEvent(e resource.Event) {
	if ce := p.log.Check(zap.DebugLevel, "handle "+e.Type.String()); ce != nil {
		ce.Write(zap.Uint32("addr", uint32(e.Handle)))
	}
}
