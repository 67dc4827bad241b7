// Package native decodes spreadsheets in process. It is the default
// decoder behind fastsheet.Open and follows the same population contract
// as the wasm guest hosted by package engine.
//
// Supported files, by extension:
//
//	.xlsx .xlsm   excelize
//	.xls          extrame/xls
//	.csv .txt     encoding/csv (one sheet; the sheet name is ignored)
//
// Cells are mapped as follows. Error cells become empty. Strings are
// trimmed and a blank string is empty. Booleans stay booleans. Numbers
// whose cell style is a date or time format become times; other numbers
// stay numbers. Readers that only yield text (xls, csv) infer numbers,
// booleans and common date layouts from the text.
//
// The written table is the used range of the sheet: the smallest
// rectangle holding every non-empty cell. Shorter rows are padded with
// empty cells to its width.
package native
