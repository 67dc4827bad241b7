// Package errors provides structured error types for fastsheet.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the file/sheet path, a detail message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindSheetNotFound).
//		Path("book.xlsx", "Sheet9").
//		Detail("sheet %q not found", "Sheet9").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SheetNotFound("book.xlsx", "Sheet9")
//	err := errors.OutOfRange("column", 5, 3)
//
// Every Kind has a sentinel for errors.Is that ignores Phase:
//
//	if errors.Is(err, errors.ErrSheetNotFound) { ... }
//
// CorruptPopulation is fatal: the decoder and the handle disagree about
// the record layout. IsFatal reports it.
package errors
