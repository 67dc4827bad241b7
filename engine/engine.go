package engine

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/fastsheet/boundary"
	"github.com/wippyai/fastsheet/errors"
	"github.com/wippyai/fastsheet/resource"
)

// Config holds configuration for engine creation. A nil Config locates
// the default artifact with default limits.
type Config struct {
	// Logger overrides the package logger for this engine.
	Logger *zap.Logger

	// Name is the artifact base name. Empty means DefaultName.
	Name string

	// SearchPaths are searched before EnvLibraryPath. An entry may name
	// the artifact file directly.
	SearchPaths []string

	// Binary is a compiled guest. When set, no search is performed.
	Binary []byte

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Engine hosts the decoder guest. It implements boundary.Decoder and is
// safe for concurrent use: every decode runs in its own guest instance.
type Engine struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	log      *zap.Logger
	source   string
	closed   atomic.Bool
}

var _ boundary.Decoder = (*Engine)(nil)

// New loads, compiles and checks the decoder guest. Every failure is a
// LibraryLoadError.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	log := Logger()
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	bin, source, err := load(cfg)
	if err != nil {
		return nil, err
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	fail := func(detail string, cause error) (*Engine, error) {
		_ = r.Close(ctx)
		return nil, errors.LibraryLoad(fmt.Sprintf("%s: %s", source, detail), cause)
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		return fail("instantiate WASI", err)
	}
	if _, err := instantiateHost(ctx, r); err != nil {
		return fail("instantiate host module", err)
	}

	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		return fail("compile", err)
	}
	if err := checkExports(compiled); err != nil {
		return fail("abi", err)
	}

	log.Debug("decoder library loaded",
		zap.String("source", source),
		zap.Int("size", len(bin)))

	return &Engine{
		runtime:  r,
		compiled: compiled,
		log:      log,
		source:   source,
	}, nil
}

func load(cfg *Config) ([]byte, string, error) {
	if len(cfg.Binary) > 0 {
		return cfg.Binary, "<binary>", nil
	}
	p, err := Locate(cfg)
	if err != nil {
		return nil, "", err
	}
	bin, err := os.ReadFile(p)
	if err != nil {
		return nil, "", errors.LibraryLoad("read "+p, err)
	}
	return bin, p, nil
}

func checkExports(compiled wazero.CompiledModule) error {
	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		return fmt.Errorf("missing export %q", ExportMemory)
	}
	fns := compiled.ExportedFunctions()
	for name, sig := range guestExports {
		def, ok := fns[name]
		if !ok {
			return fmt.Errorf("missing export %q", name)
		}
		if !sig.matches(def) {
			return fmt.Errorf("export %q has signature %v -> %v", name, def.ParamTypes(), def.ResultTypes())
		}
	}
	return nil
}

// Source names where the guest was loaded from.
func (e *Engine) Source() string {
	return e.source
}

// Decode runs one decode of sheet in the file at p. The file's directory
// is mounted read-only at GuestRoot and the guest sees the file under it.
func (e *Engine) Decode(ctx context.Context, reg boundary.Registry, addr resource.Handle, p, sheet string) error {
	if e.closed.Load() {
		return errors.Decode(p, "engine closed", nil)
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return errors.Decode(p, "resolve path", err)
	}
	dir, base := filepath.Split(abs)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return errors.FileNotFound(p, err)
	}

	c := &call{reg: reg}
	ctx = withCall(ctx, c)

	modCfg := wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions(ExportInit).
		WithFSConfig(wazero.NewFSConfig().WithReadOnlyDirMount(dir, GuestRoot))

	start := time.Now()
	inst, err := e.runtime.InstantiateModule(ctx, e.compiled, modCfg)
	if err != nil {
		return errors.Decode(p, "instantiate decoder", err)
	}
	defer inst.Close(ctx)

	mem := guestMemory{mem: inst.Memory()}
	alloc := newGuestAllocator(inst.ExportedFunction(ExportAlloc))

	guestPath := path.Join(GuestRoot, base)
	pathPtr, pathLen, err := lowerString(ctx, alloc, mem, guestPath)
	if err != nil {
		return errors.Decode(p, "pass path", err)
	}
	sheetPtr, sheetLen, err := lowerString(ctx, alloc, mem, sheet)
	if err != nil {
		return errors.Decode(p, "pass sheet name", err)
	}

	results, err := inst.ExportedFunction(ExportDecode).Call(ctx,
		uint64(addr), uint64(pathPtr), uint64(pathLen), uint64(sheetPtr), uint64(sheetLen))
	if err != nil {
		return errors.Decode(p, "decoder trapped", err)
	}
	status := Status(uint32(results[0]))

	e.log.Debug("decode returned",
		zap.String("path", p),
		zap.String("sheet", sheet),
		zap.Stringer("status", status),
		zap.Duration("elapsed", time.Since(start)))

	if c.fault != nil {
		return errors.CorruptPopulation("%v", c.fault)
	}

	switch status {
	case StatusOK:
		return nil
	case StatusFileNotFound:
		var cause error
		if c.message != "" {
			cause = fmt.Errorf("decoder: %s", c.message)
		}
		return errors.FileNotFound(p, cause)
	case StatusSheetNotFound:
		return errors.SheetNotFound(p, sheet)
	default:
		detail := c.message
		if detail == "" {
			detail = fmt.Sprintf("decoder returned status %d", uint32(status))
		}
		return errors.Decode(p, detail, nil)
	}
}

// Close releases the runtime and every compiled module.
func (e *Engine) Close(ctx context.Context) error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.runtime.Close(ctx)
}
