// Package columnar exports a fastsheet.Table as an Apache Arrow record or
// a Parquet file.
//
// Column types are inferred from the non-empty cells of each column:
//
//	all numbers   float64
//	all booleans  bool
//	all times     timestamp[ns, UTC]
//	otherwise     utf8 (display form of each cell)
//
// Every field is nullable and empty cells become nulls.
package columnar
