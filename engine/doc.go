// Package engine hosts the external spreadsheet decoder as a WebAssembly
// guest running in wazero.
//
// The guest is a core module compiled from any language. It exports its
// linear memory, an allocator the host uses to pass strings in, and the
// decode entry point. It reports its result through the "fastsheet" host
// module, addressing the population target by the 32-bit address the
// boundary adapter pinned for the call.
//
// # Guest ABI
//
//	export memory
//	export fastsheet_alloc(size, align i32) -> ptr i32
//	export fastsheet_decode(addr, path_ptr, path_len, sheet_ptr, sheet_len i32) -> status i32
//
//	import fastsheet.set_width(addr, n i32)
//	import fastsheet.set_height(addr, n i32)
//	import fastsheet.begin_row(addr i32)
//	import fastsheet.push_empty(addr i32)
//	import fastsheet.push_string(addr, ptr, len i32)
//	import fastsheet.push_number(addr i32, v f64)
//	import fastsheet.push_bool(addr, v i32)
//	import fastsheet.push_datetime(addr i32, unix_nanos i64)
//	import fastsheet.report_error(addr, ptr, len i32)
//
// Status codes:
//
//	0  ok
//	1  file not found       -> FileNotFound
//	2  sheet not found      -> SheetNotFound
//	3  decode error         -> DecodeError (message from report_error)
//	*  anything else        -> DecodeError
//
// A trap is a DecodeError. A write to an address that does not resolve is
// a CorruptPopulation, whatever status the guest returns.
//
// # Filesystem
//
// Each decode instantiates the guest afresh, anonymously, with WASI
// preview1 and the decoded file's directory mounted read-only at /work.
// The path passed to fastsheet_decode is the guest-side path, /work/<name>.
// A reactor-style guest may export _initialize, which runs on instantiation.
//
// # Locating the Artifact
//
// New loads Config.Binary when set. Otherwise Locate tries
//
//	<name>-<GOOS>-<GOARCH>.wasm
//	<name>.wasm
//
// in Config.SearchPaths, FASTSHEET_LIBRARY_PATH, the executable's
// directory and the working directory. Any failure to find, compile or
// validate the artifact is a LibraryLoadError.
//
// # Usage
//
//	eng, err := engine.New(ctx, &engine.Config{SearchPaths: []string{"./lib"}})
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
//	adapter := boundary.New(eng, nil)
package engine
