package fastsheet

import (
	"iter"
	"sync"

	"github.com/wippyai/fastsheet/errors"
	"github.com/wippyai/fastsheet/handle"
)

// Table is the read-only view of a populated handle.
type Table struct {
	data     handle.Data
	columns  []Row
	colsOnce sync.Once
	file     string
	sheet    string
}

// NewTable wraps a populated handle. It fails with UnpopulatedHandle for
// a handle in any other state.
func NewTable(h *handle.Handle) (*Table, error) {
	if h == nil {
		return nil, errors.Unpopulated("nil")
	}
	d, err := h.Snapshot()
	if err != nil {
		return nil, err
	}
	return &Table{data: d}, nil
}

// File returns the path the table was opened from, or "" for NewTable.
func (t *Table) File() string { return t.file }

// Sheet returns the sheet name the table was opened with.
func (t *Table) Sheet() string { return t.sheet }

// Width returns the number of columns.
func (t *Table) Width() int { return t.data.Width }

// Height returns the number of rows, excluding the header.
func (t *Table) Height() int { return t.data.Height }

// Header returns the header row. ok is false when the table was opened
// without a header or the sheet was empty.
func (t *Table) Header() (Row, bool) {
	if !t.data.HasHeader {
		return nil, false
	}
	return t.data.Header.Clone(), true
}

// Row returns row n.
func (t *Table) Row(n int) (Row, error) {
	if n < 0 || n >= t.data.Height {
		return nil, errors.OutOfRange("row", n, t.data.Height)
	}
	return t.data.Rows[n].Clone(), nil
}

// Column returns column n, one cell per row in row order.
func (t *Table) Column(n int) (Row, error) {
	if n < 0 || n >= t.data.Width {
		return nil, errors.OutOfRange("column", n, t.data.Width)
	}
	return t.materialize()[n].Clone(), nil
}

// Columns returns every column, index 0 to Width()-1.
func (t *Table) Columns() []Row {
	cols := t.materialize()
	out := make([]Row, len(cols))
	for i, c := range cols {
		out[i] = c.Clone()
	}
	return out
}

// Rows returns an iterator over the rows in storage order. Each call
// returns an independent iterator.
func (t *Table) Rows() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, r := range t.data.Rows {
			if !yield(i, r.Clone()) {
				return
			}
		}
	}
}

// ColumnSeq returns an iterator over the columns in index order.
func (t *Table) ColumnSeq() iter.Seq2[int, Row] {
	return func(yield func(int, Row) bool) {
		for i, c := range t.materialize() {
			if !yield(i, c.Clone()) {
				return
			}
		}
	}
}

// EachRow calls fn for every row and stops at the first error.
func (t *Table) EachRow(fn func(int, Row) error) error {
	for i, r := range t.Rows() {
		if err := fn(i, r); err != nil {
			return err
		}
	}
	return nil
}

// EachColumn calls fn for every column and stops at the first error.
func (t *Table) EachColumn(fn func(int, Row) error) error {
	for i, c := range t.ColumnSeq() {
		if err := fn(i, c); err != nil {
			return err
		}
	}
	return nil
}

// materialize builds the column-major copy once.
func (t *Table) materialize() []Row {
	t.colsOnce.Do(func() {
		cols := make([]Row, t.data.Width)
		for j := range cols {
			col := make(Row, t.data.Height)
			for i, r := range t.data.Rows {
				col[i] = r[j]
			}
			cols[j] = col
		}
		t.columns = cols
	})
	return t.columns
}
