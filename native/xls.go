package native

import (
	"context"

	"github.com/extrame/xls"

	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/errors"
)

// xlsFormat reads legacy BIFF workbooks. The reader yields formatted
// text only, so cells are typed by inference.
type xlsFormat struct {
	charset string
}

func (x xlsFormat) open(path string) (*xls.WorkBook, error) {
	wb, err := xls.Open(path, x.charset)
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, errors.Decode(path, "no workbook stream", nil)
	}
	return wb, nil
}

// row returns row i of ws, or nil when the sheet has no record for it.
func row(ws *xls.WorkSheet, i int) (r *xls.Row) {
	// WorkSheet.Row dereferences the missing row.
	defer func() {
		if recover() != nil {
			r = nil
		}
	}()
	return ws.Row(i)
}

func (x xlsFormat) sheets(path string) ([]string, error) {
	wb, err := x.open(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if ws := wb.GetSheet(i); ws != nil {
			names = append(names, ws.Name)
		}
	}
	return names, nil
}

func (x xlsFormat) read(ctx context.Context, path, sheet string) (*grid, error) {
	wb, err := x.open(path)
	if err != nil {
		return nil, err
	}

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil && s.Name == sheet {
			ws = s
			break
		}
	}
	if ws == nil {
		return nil, errors.SheetNotFound(path, sheet)
	}

	g := &grid{}
	for i := 0; i <= int(ws.MaxRow); i++ {
		if err := g.checkpoint(ctx); err != nil {
			return nil, err
		}
		r := row(ws, i)
		if r == nil {
			g.add(nil)
			continue
		}
		cells := make(cell.Row, 0, r.LastCol()+1)
		for j := 0; j <= r.LastCol(); j++ {
			cells = append(cells, infer(r.Col(j)))
		}
		g.add(cells)
	}
	return g, nil
}
