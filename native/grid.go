package native

import (
	"context"

	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/handle"
)

// ctxCheckEvery is how many rows are read between cancellation checks.
const ctxCheckEvery = 1024

// grid collects physical rows before they are cut to the used range.
type grid struct {
	rows []cell.Row
}

func (g *grid) add(r cell.Row) {
	g.rows = append(g.rows, r)
}

func (g *grid) checkpoint(ctx context.Context) error {
	if len(g.rows)%ctxCheckEvery != 0 {
		return nil
	}
	return ctx.Err()
}

// used returns the rows inside the smallest rectangle holding every
// non-empty cell, each padded to the rectangle's width. Empty rows and
// columns inside the rectangle are kept.
func (g *grid) used() ([]cell.Row, int) {
	top, bottom := -1, -1
	left, right := -1, -1
	for i, r := range g.rows {
		for j, c := range r {
			if c.IsEmpty() {
				continue
			}
			if top < 0 {
				top = i
			}
			bottom = i
			if left < 0 || j < left {
				left = j
			}
			if j > right {
				right = j
			}
		}
	}
	if top < 0 {
		return nil, 0
	}

	width := right - left + 1
	out := make([]cell.Row, 0, bottom-top+1)
	for _, r := range g.rows[top : bottom+1] {
		if left < len(r) {
			r = r[left:min(len(r), right+1)]
		} else {
			r = nil
		}
		out = append(out, r.Pad(width))
	}
	return out, width
}

func (g *grid) writeTo(s handle.Slots) {
	rows, width := g.used()
	s.SetWidth(width)
	s.SetHeight(len(rows))
	for _, r := range rows {
		s.AppendRow(r)
	}
}
