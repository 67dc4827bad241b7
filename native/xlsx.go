package native

import (
	"context"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/errors"
)

type xlsxFormat struct{}

func (xlsxFormat) sheets(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (xlsxFormat) read(ctx context.Context, path, sheet string) (*grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, errors.SheetNotFound(path, sheet)
	}

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	r := xlsxReader{f: f, sheet: sheet, date1904: date1904, dateStyle: map[int]bool{}}
	g := &grid{rows: make([]cell.Row, 0, len(rows))}
	for i, raw := range rows {
		if err := g.checkpoint(ctx); err != nil {
			return nil, err
		}
		row := make(cell.Row, len(raw))
		for j, v := range raw {
			row[j] = r.cell(j+1, i+1, v)
		}
		g.add(row)
	}
	return g, nil
}

type xlsxReader struct {
	f         *excelize.File
	dateStyle map[int]bool
	sheet     string
	date1904  bool
}

// cell types the raw value at (col, row), both 1-based.
func (r xlsxReader) cell(col, row int, raw string) cell.Cell {
	if raw == "" {
		return cell.Empty()
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return text(raw)
	}
	typ, err := r.f.GetCellType(r.sheet, axis)
	if err != nil {
		return text(raw)
	}

	switch typ {
	case excelize.CellTypeError:
		return cell.Empty()
	case excelize.CellTypeBool:
		return cell.Bool(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return text(raw)
	case excelize.CellTypeDate:
		if t, ok := parseTime(raw); ok {
			return cell.Time(t)
		}
		return text(raw)
	}

	// Unset, number and formula cells carry their value as a number when
	// it parses as one.
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return text(raw)
	}
	if r.isDate(axis) {
		if t, err := excelize.ExcelDateToTime(n, r.date1904); err == nil {
			return cell.Time(t.UTC())
		}
	}
	return cell.Number(n)
}

func (r xlsxReader) isDate(axis string) bool {
	id, err := r.f.GetCellStyle(r.sheet, axis)
	if err != nil || id == 0 {
		return false
	}
	if d, ok := r.dateStyle[id]; ok {
		return d
	}
	d := false
	if style, err := r.f.GetStyle(id); err == nil {
		d = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			d = isDateFormat(*style.CustomNumFmt)
		}
	}
	r.dateStyle[id] = d
	return d
}

// isDateNumFmt reports whether a built-in number format id renders dates.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormat reports whether a custom format code contains date or time
// tokens outside quoted literals, escapes and bracketed sections.
func isDateFormat(code string) bool {
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '\\':
			i++
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		default:
			switch c | 0x20 {
			case 'y', 'm', 'd', 'h', 's':
				return true
			}
		}
	}
	return false
}
