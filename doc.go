// Package fastsheet reads one sheet of a spreadsheet file into an
// immutable, fully typed table.
//
// The decode itself happens behind a language boundary: either the
// in-process decoder in package native, or a WebAssembly decoder hosted
// by package engine. Both write into a caller-owned record handle that
// is populated exactly once, then validated, then exposed read-only.
//
// # Architecture Overview
//
//	fastsheet/          Open and the Table query surface
//	├── cell/           Cell and Row value types
//	├── handle/         Record handle and its lifecycle
//	├── boundary/       Pins a handle, runs a decoder, validates the result
//	├── resource/       Handle table giving pinned values stable addresses
//	├── engine/         wazero host for WebAssembly decoders
//	├── native/         In-process xlsx, xls and csv decoder
//	├── columnar/       Arrow record and Parquet export of a Table
//	├── errors/         Structured error types
//	└── cmd/fastsheet/  Command line viewer
//
// # Quick Start
//
//	t, err := fastsheet.Open(ctx, "book.xlsx", "Sheet1", &fastsheet.Options{Header: true})
//	if err != nil {
//	    return err
//	}
//	header, _ := t.Header()
//	for i, row := range t.Rows() {
//	    fmt.Println(i, row)
//	}
//
// Open either returns a complete Table or an error. It never returns a
// partially populated table.
//
// # Using a WebAssembly Decoder
//
//	eng, err := engine.New(ctx, &engine.Config{SearchPaths: []string{"./lib"}})
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
//	t, err := fastsheet.Open(ctx, "book.xlsx", "Sheet1", &fastsheet.Options{Decoder: eng})
//
// # Queries
//
// Row and Column fail with IndexOutOfRange outside the table; they never
// clamp. Rows and ColumnSeq return restartable iterators; EachRow and
// EachColumn apply a function eagerly and stop at its first error. Every
// returned row and column is a copy, so a Table is safe for concurrent
// reads.
//
// # Error Handling
//
// Errors are *errors.Error values with a Kind and a Phase:
//
//	t, err := fastsheet.Open(ctx, path, "Missing", nil)
//	if errors.Is(err, errors.ErrSheetNotFound) {
//	    // ...
//	}
package fastsheet
