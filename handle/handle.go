package handle

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/errors"
	"github.com/wippyai/fastsheet/resource"
)

// State is a handle's position in its lifecycle.
type State int32

const (
	StateEmpty State = iota
	StatePopulating
	StatePopulated
	StatePoisoned
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulating:
		return "populating"
	case StatePopulated:
		return "populated"
	case StatePoisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}

// Slots is the write-only capability a decoder receives for the
// duration of a single population call. Every method becomes a no-op
// once the population call has returned.
type Slots interface {
	// SetWidth writes the column count.
	SetWidth(n int)
	// SetHeight writes the row count.
	SetHeight(n int)
	// BeginRow finishes the row in progress, if any, and starts a new one.
	BeginRow()
	// Push appends a cell to the row in progress.
	Push(c cell.Cell)
	// AppendRow finishes the row in progress, if any, and appends a copy of r.
	AppendRow(r cell.Row)
	// Fail reports that the decode failed. The first reported error is
	// returned by Seal in place of the written data.
	Fail(err error)
}

// Data is the content of a populated handle.
type Data struct {
	Rows      []cell.Row
	Header    cell.Row
	Width     int
	Height    int
	HasHeader bool
}

// Handle is a caller-owned record populated exactly once by a decoder.
// The zero Handle is empty and ready for population.
type Handle struct {
	w     *writer
	err   error
	data  Data
	errMu sync.Mutex
	state atomic.Int32
}

// New returns an empty handle.
func New() *Handle {
	return &Handle{}
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Begin moves the handle from Empty to Populating and returns the write
// capability for the population call. Any other starting state fails
// with AlreadyPopulated, so at most one population is ever in flight.
func (h *Handle) Begin() (Slots, error) {
	if !h.state.CompareAndSwap(int32(StateEmpty), int32(StatePopulating)) {
		return nil, errors.AlreadyPopulated(h.State().String())
	}
	h.w = &writer{width: -1, height: -1}
	return h.w, nil
}

// Seal closes the write capability, checks the written slots for
// consistency and makes the handle readable. When header is set the
// first row moves into the header slot and the height shrinks by one.
// An inconsistent population poisons the handle and returns
// CorruptPopulation. A failure reported through Slots.Fail poisons it
// too and is returned as a DecodeError unless it already has a kind.
func (h *Handle) Seal(header bool) error {
	if st := h.State(); st != StatePopulating {
		if st == StateEmpty {
			return errors.Unpopulated(st.String())
		}
		return errors.AlreadyPopulated(st.String())
	}

	w := h.w
	h.w = nil
	out := w.close()
	rows, width, height := out.rows, out.width, out.height

	err := reported(out.failure)
	if err == nil {
		err = validate(rows, width, height, out.fault)
	}
	if err != nil {
		h.setErr(err)
		h.state.Store(int32(StatePoisoned))
		return err
	}

	d := Data{Rows: rows, Width: width, Height: height}
	if header && len(rows) > 0 {
		d.Header = rows[0]
		d.HasHeader = true
		d.Rows = rows[1:]
		d.Height--
	}
	h.data = d
	h.state.Store(int32(StatePopulated))
	return nil
}

// Poison abandons an in-flight population because of err. Data written
// so far is discarded and the handle can never be read.
func (h *Handle) Poison(err error) {
	if !h.state.CompareAndSwap(int32(StatePopulating), int32(StatePoisoned)) {
		return
	}
	h.setErr(err)
	if h.w != nil {
		h.w.close()
		h.w = nil
	}
}

// Err returns the error that poisoned the handle, or nil.
func (h *Handle) Err() error {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	return h.err
}

func (h *Handle) setErr(err error) {
	h.errMu.Lock()
	h.err = err
	h.errMu.Unlock()
}

// Width returns the column count.
func (h *Handle) Width() (int, error) {
	if err := h.readable(); err != nil {
		return 0, err
	}
	return h.data.Width, nil
}

// Height returns the row count, excluding a consumed header.
func (h *Handle) Height() (int, error) {
	if err := h.readable(); err != nil {
		return 0, err
	}
	return h.data.Height, nil
}

// Rows returns the populated rows. The slice is owned by the handle and
// must not be modified.
func (h *Handle) Rows() ([]cell.Row, error) {
	if err := h.readable(); err != nil {
		return nil, err
	}
	return h.data.Rows, nil
}

// Header returns the consumed header row, if header extraction was requested.
func (h *Handle) Header() (cell.Row, bool, error) {
	if err := h.readable(); err != nil {
		return nil, false, err
	}
	return h.data.Header, h.data.HasHeader, nil
}

// Snapshot returns all four slots at once. Slices are owned by the
// handle and must not be modified.
func (h *Handle) Snapshot() (Data, error) {
	if err := h.readable(); err != nil {
		return Data{}, err
	}
	return h.data, nil
}

func (h *Handle) readable() error {
	if st := h.State(); st != StatePopulated {
		return errors.Unpopulated(st.String())
	}
	return nil
}

// reported turns a decoder-reported failure into a DecodeError. Typed
// errors keep their kind and are copied so shared values stay untouched.
func reported(err error) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if errors.As(err, &e) {
		c := *e
		return &c
	}
	return errors.New(errors.PhaseDecode, errors.KindDecode).
		Detail(err.Error()).
		Cause(err).
		Build()
}

func validate(rows []cell.Row, width, height int, fault error) error {
	if fault != nil {
		return fault
	}
	if width < 0 {
		return errors.CorruptPopulation("width slot never written")
	}
	if height < 0 {
		return errors.CorruptPopulation("height slot never written")
	}
	if len(rows) != height {
		return errors.CorruptPopulation("%d rows written, height is %d", len(rows), height)
	}
	for i, r := range rows {
		if len(r) != width {
			return errors.CorruptPopulation("row %d has %d cells, width is %d", i, len(r), width)
		}
	}
	return nil
}

// maxPrealloc bounds capacity reserved from decoder-supplied counts.
const maxPrealloc = 1 << 16

// writer implements Slots. It records the first contract violation
// instead of panicking so the decoder call can finish and the adapter
// can report a single CorruptPopulation.
type writer struct {
	fault   error
	failure error
	rows    []cell.Row
	cur     cell.Row
	width   int
	height  int
	mu      sync.Mutex
	inRow   bool
	closed  bool
}

func (w *writer) SetWidth(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if n < 0 {
		w.setFault(errors.CorruptPopulation("negative width %d", n))
		return
	}
	w.width = n
}

func (w *writer) SetHeight(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if n < 0 {
		w.setFault(errors.CorruptPopulation("negative height %d", n))
		return
	}
	w.height = n
	if w.rows == nil {
		w.rows = make([]cell.Row, 0, min(n, maxPrealloc))
	}
}

func (w *writer) BeginRow() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.flush()
	w.inRow = true
	if w.width > 0 {
		w.cur = make(cell.Row, 0, min(w.width, maxPrealloc))
	}
}

func (w *writer) Push(c cell.Cell) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if !w.inRow {
		w.setFault(errors.CorruptPopulation("cell pushed outside of a row"))
		return
	}
	w.cur = append(w.cur, c)
}

func (w *writer) AppendRow(r cell.Row) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.flush()
	w.rows = append(w.rows, r.Clone())
}

func (w *writer) Fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || err == nil {
		return
	}
	if w.failure == nil {
		w.failure = err
	}
}

var _ resource.Dropper = (*writer)(nil)

// Drop closes the capability when its pin is released, so a decoder
// that kept the reference can no longer write.
func (w *writer) Drop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
	w.closed = true
}

func (w *writer) flush() {
	if !w.inRow {
		return
	}
	row := w.cur
	if row == nil {
		row = cell.Row{}
	}
	w.rows = append(w.rows, row)
	w.cur = nil
	w.inRow = false
}

func (w *writer) setFault(err error) {
	if w.fault == nil {
		w.fault = err
	}
}

// written is what a writer holds when it is closed.
type written struct {
	fault   error
	failure error
	rows    []cell.Row
	width   int
	height  int
}

func (w *writer) close() written {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flush()
	w.closed = true
	return written{
		rows:    w.rows,
		width:   w.width,
		height:  w.height,
		fault:   w.fault,
		failure: w.failure,
	}
}
