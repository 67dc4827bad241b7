package fastsheet

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wippyai/fastsheet/boundary"
	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/errors"
	"github.com/wippyai/fastsheet/handle"
	"github.com/wippyai/fastsheet/resource"
)

// sheetDecoder serves fixed sheets by name.
type sheetDecoder struct {
	sheets map[string][]Row
	calls  int
	mu     sync.Mutex
}

func (d *sheetDecoder) Decode(ctx context.Context, reg boundary.Registry, addr resource.Handle, path, sheet string) error {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	rows, ok := d.sheets[sheet]
	if !ok {
		return errors.SheetNotFound(path, sheet)
	}
	s, ok := reg.Resolve(addr)
	if !ok {
		return stderrors.New("address does not resolve")
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	s.SetWidth(width)
	s.SetHeight(len(rows))
	for _, r := range rows {
		s.AppendRow(r)
	}
	return nil
}

var (
	decoded0 = Row{cell.String("id"), cell.String("name"), cell.String("score")}
	decoded1 = Row{cell.Number(1), cell.String("Ada"), cell.Number(9.5)}
	decoded2 = Row{cell.Number(2), cell.String("Grace"), cell.Empty()}
)

func newDecoder() *sheetDecoder {
	return &sheetDecoder{sheets: map[string][]Row{
		"Sheet1": {decoded0, decoded1},
		"Three":  {decoded0, decoded1, decoded2},
		"Empty":  {},
	}}
}

func open(t *testing.T, sheet string, header bool) *Table {
	t.Helper()
	tbl, err := Open(context.Background(), "book.xlsx", sheet, &Options{Header: header, Decoder: newDecoder()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return tbl
}

func TestOpen_HeaderScenario(t *testing.T) {
	tbl := open(t, "Sheet1", true)

	if tbl.Width() != 3 || tbl.Height() != 1 {
		t.Fatalf("width=%d height=%d, want 3, 1", tbl.Width(), tbl.Height())
	}
	header, ok := tbl.Header()
	if !ok || !header.Equal(decoded0) {
		t.Errorf("Header() = %v, %v", header, ok)
	}
	row, err := tbl.Row(0)
	if err != nil || !row.Equal(decoded1) {
		t.Errorf("Row(0) = %v, %v", row, err)
	}
	if tbl.File() != "book.xlsx" || tbl.Sheet() != "Sheet1" {
		t.Errorf("File/Sheet = %q/%q", tbl.File(), tbl.Sheet())
	}
}

func TestOpen_NoHeader(t *testing.T) {
	tbl := open(t, "Sheet1", false)

	if _, ok := tbl.Header(); ok {
		t.Error("Header() present without header option")
	}
	if tbl.Height() != 2 {
		t.Fatalf("Height() = %d", tbl.Height())
	}
	row, _ := tbl.Row(0)
	if !row.Equal(decoded0) {
		t.Errorf("Row(0) = %v, want the first decoded row", row)
	}
}

func TestOpen_SheetNotFound(t *testing.T) {
	dec := newDecoder()
	tbl, err := Open(context.Background(), "book.xlsx", "Missing", &Options{Decoder: dec})
	if !errors.Is(err, errors.ErrSheetNotFound) {
		t.Fatalf("err = %v, want SheetNotFound", err)
	}
	if tbl != nil {
		t.Fatal("Open returned a table alongside an error")
	}
	if dec.calls != 1 {
		t.Errorf("decoder called %d times, want 1", dec.calls)
	}
}

func TestOpen_EmptySheetWithHeader(t *testing.T) {
	tbl := open(t, "Empty", true)
	if tbl.Width() != 0 || tbl.Height() != 0 {
		t.Fatalf("width=%d height=%d", tbl.Width(), tbl.Height())
	}
	if _, ok := tbl.Header(); ok {
		t.Error("empty sheet has no header")
	}
	if len(tbl.Columns()) != 0 {
		t.Error("Columns() not empty")
	}
}

func TestOpen_NativeDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Open(context.Background(), path, "", &Options{Header: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	row, _ := tbl.Row(0)
	if !row.Equal(Row{cell.Number(1), cell.String("x")}) {
		t.Errorf("Row(0) = %v", row)
	}

	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), "", nil); !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}

	tbl, err = Open(context.Background(), path, "NoSuchSheet", nil)
	if !errors.Is(err, errors.ErrSheetNotFound) || tbl != nil {
		t.Errorf("missing sheet: table %v, err = %v", tbl != nil, err)
	}
	if _, err := Open(context.Background(), path, "data", nil); err != nil {
		t.Errorf("named sheet: %v", err)
	}
}

func TestTable_Invariants(t *testing.T) {
	for _, header := range []bool{false, true} {
		tbl := open(t, "Three", header)

		n := 0
		for i, r := range tbl.Rows() {
			if len(r) != tbl.Width() {
				t.Errorf("row %d has %d cells, width %d", i, len(r), tbl.Width())
			}
			got, err := tbl.Row(i)
			if err != nil || !got.Equal(r) {
				t.Errorf("Row(%d) = %v, %v; iterator gave %v", i, got, err, r)
			}
			n++
		}
		if n != tbl.Height() {
			t.Errorf("iterated %d rows, height %d", n, tbl.Height())
		}

		cols := tbl.Columns()
		if len(cols) != tbl.Width() {
			t.Fatalf("len(Columns()) = %d, width %d", len(cols), tbl.Width())
		}
		for j := 0; j < tbl.Width(); j++ {
			col, err := tbl.Column(j)
			if err != nil {
				t.Fatal(err)
			}
			if !col.Equal(cols[j]) {
				t.Errorf("Column(%d) = %v, Columns()[%d] = %v", j, col, j, cols[j])
			}
			for i := 0; i < tbl.Height(); i++ {
				row, _ := tbl.Row(i)
				if !col[i].Equal(row[j]) {
					t.Errorf("Column(%d)[%d] = %v, Row(%d)[%d] = %v", j, i, col[i], i, j, row[j])
				}
			}
		}
	}
}

func TestTable_OutOfRange(t *testing.T) {
	tbl := open(t, "Sheet1", true)

	tests := []struct {
		fn   func() (Row, error)
		name string
	}{
		{name: "row negative", fn: func() (Row, error) { return tbl.Row(-1) }},
		{name: "row height", fn: func() (Row, error) { return tbl.Row(1) }},
		{name: "column 5", fn: func() (Row, error) { return tbl.Column(5) }},
		{name: "column width", fn: func() (Row, error) { return tbl.Column(3) }},
		{name: "column negative", fn: func() (Row, error) { return tbl.Column(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.fn()
			if !errors.Is(err, errors.ErrIndexOutOfRange) {
				t.Fatalf("err = %v, want IndexOutOfRange", err)
			}
			if r != nil {
				t.Errorf("got row %v alongside error", r)
			}
		})
	}
}

func TestTable_Restartable(t *testing.T) {
	tbl := open(t, "Three", false)

	collect := func(seq func(func(int, Row) bool)) []Row {
		var out []Row
		seq(func(_ int, r Row) bool {
			out = append(out, r)
			return true
		})
		return out
	}

	rows := tbl.Rows()
	first, second := collect(rows), collect(rows)
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("row passes = %d, %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Errorf("row pass mismatch at %d", i)
		}
	}

	cols := tbl.ColumnSeq()
	a, b := collect(cols), collect(cols)
	if len(a) != 3 || len(b) != 3 {
		t.Fatalf("column passes = %d, %d", len(a), len(b))
	}

	// Early exit from one iterator does not affect another.
	for range tbl.Rows() {
		break
	}
	if got := collect(tbl.Rows()); len(got) != 3 {
		t.Errorf("fresh iterator yielded %d rows after an early break", len(got))
	}
}

func TestTable_ReturnsCopies(t *testing.T) {
	tbl := open(t, "Sheet1", true)

	row, _ := tbl.Row(0)
	row[0] = cell.String("changed")
	col, _ := tbl.Column(1)
	col[0] = cell.String("changed")
	header, _ := tbl.Header()
	header[0] = cell.String("changed")

	if again, _ := tbl.Row(0); !again.Equal(decoded1) {
		t.Errorf("Row(0) mutated through a returned copy: %v", again)
	}
	if again, _ := tbl.Column(1); !again[0].Equal(decoded1[1]) {
		t.Errorf("Column(1) mutated through a returned copy: %v", again)
	}
	if again, _ := tbl.Header(); !again.Equal(decoded0) {
		t.Errorf("Header() mutated through a returned copy: %v", again)
	}
}

func TestTable_Each(t *testing.T) {
	tbl := open(t, "Three", false)

	var seen []int
	if err := tbl.EachRow(func(i int, r Row) error {
		seen = append(seen, i)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 3 {
		t.Errorf("EachRow visited %v", seen)
	}

	stop := stderrors.New("stop")
	visited := 0
	err := tbl.EachColumn(func(i int, c Row) error {
		visited++
		if i == 1 {
			return stop
		}
		return nil
	})
	if err != stop || visited != 2 {
		t.Errorf("EachColumn err = %v after %d columns", err, visited)
	}
}

func TestTable_ConcurrentReads(t *testing.T) {
	tbl := open(t, "Three", true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if len(tbl.Columns()) != 3 {
					t.Error("Columns() length changed")
					return
				}
				for range tbl.Rows() {
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewTable(t *testing.T) {
	if _, err := NewTable(handle.New()); !errors.Is(err, errors.ErrUnpopulatedHandle) {
		t.Fatalf("empty handle err = %v", err)
	}
	if _, err := NewTable(nil); !errors.Is(err, errors.ErrUnpopulatedHandle) {
		t.Fatalf("nil handle err = %v", err)
	}

	h := handle.New()
	a := boundary.New(newDecoder(), nil)
	if err := a.Populate(context.Background(), h, "book.xlsx", "Sheet1", false); err != nil {
		t.Fatal(err)
	}
	tbl, err := NewTable(h)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Height() != 2 || tbl.File() != "" {
		t.Errorf("Height()=%d File()=%q", tbl.Height(), tbl.File())
	}
}
