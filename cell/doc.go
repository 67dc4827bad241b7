// Package cell defines the scalar values a decoded sheet is made of.
//
// A Cell is a closed variant over five kinds:
//
//	Kind     Go value
//	──────────────────────
//	Empty    nil
//	String   string
//	Number   float64
//	Bool     bool
//	Time     time.Time
//
// Cells are immutable: the kind and payload are fixed by the constructor.
// A Row is an ordered sequence of cells; within a populated table every
// row has the same length.
package cell
