package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseOpen     Phase = "open"     // table construction
	PhaseLoad     Phase = "load"     // decoder artifact loading
	PhaseDecode   Phase = "decode"   // external decode call
	PhasePopulate Phase = "populate" // handle lifecycle transitions
	PhaseValidate Phase = "validate" // post-population consistency check
	PhaseQuery    Phase = "query"    // tabular view reads
)

// Kind categorizes the error
type Kind string

const (
	KindFileNotFound      Kind = "file_not_found"
	KindSheetNotFound     Kind = "sheet_not_found"
	KindDecode            Kind = "decode_error"
	KindLibraryLoad       Kind = "library_load"
	KindUnpopulated       Kind = "unpopulated_handle"
	KindAlreadyPopulated  Kind = "already_populated"
	KindCorruptPopulation Kind = "corrupt_population"
	KindOutOfRange        Kind = "out_of_range"
	KindInvalidInput      Kind = "invalid_input"
)

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrFileNotFound      = &Error{Kind: KindFileNotFound}
	ErrSheetNotFound     = &Error{Kind: KindSheetNotFound}
	ErrDecode            = &Error{Kind: KindDecode}
	ErrLibraryLoad       = &Error{Kind: KindLibraryLoad}
	ErrUnpopulatedHandle = &Error{Kind: KindUnpopulated}
	ErrAlreadyPopulated  = &Error{Kind: KindAlreadyPopulated}
	ErrCorruptPopulation = &Error{Kind: KindCorruptPopulation}
	ErrIndexOutOfRange   = &Error{Kind: KindOutOfRange}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
)

// Error is the structured error type used throughout fastsheet
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	if e.Phase != "" {
		b.WriteByte('[')
		b.WriteString(string(e.Phase))
		b.WriteString("] ")
	}
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Kind must match; Phase must match only when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Phase == "" || e.Phase == t.Phase
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the file/sheet location the error refers to
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// IsFatal reports whether err signals a broken contract between the
// decoder and the handle layout. Such errors must not be retried.
func IsFatal(err error) bool {
	return Is(err, ErrCorruptPopulation)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return ""
}

// Convenience constructors for common error patterns

// FileNotFound creates a missing-file error
func FileNotFound(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindFileNotFound,
		Path:   []string{path},
		Detail: fmt.Sprintf("file %q not found", path),
		Cause:  cause,
	}
}

// SheetNotFound creates a missing-sheet error
func SheetNotFound(path, sheet string) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindSheetNotFound,
		Path:   []string{path, sheet},
		Detail: fmt.Sprintf("sheet %q not found", sheet),
		Value:  sheet,
	}
}

// Decode creates a malformed-content error
func Decode(path, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindDecode,
		Path:   []string{path},
		Detail: detail,
		Cause:  cause,
	}
}

// LibraryLoad creates an error for a decoder artifact that could not be
// located, compiled or linked
func LibraryLoad(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLibraryLoad,
		Detail: detail,
		Cause:  cause,
	}
}

// Unpopulated creates an error for reads of a handle that holds no data
func Unpopulated(state string) *Error {
	return &Error{
		Phase:  PhaseQuery,
		Kind:   KindUnpopulated,
		Detail: fmt.Sprintf("handle is %s", state),
		Value:  state,
	}
}

// AlreadyPopulated creates an error for a second population attempt
func AlreadyPopulated(state string) *Error {
	return &Error{
		Phase:  PhasePopulate,
		Kind:   KindAlreadyPopulated,
		Detail: fmt.Sprintf("handle is %s", state),
		Value:  state,
	}
}

// CorruptPopulation creates a layout-disagreement error
func CorruptPopulation(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindCorruptPopulation,
		Detail: detail,
	}
}

// OutOfRange creates an index error for row/column queries
func OutOfRange(what string, index, length int) *Error {
	return &Error{
		Phase:  PhaseQuery,
		Kind:   KindOutOfRange,
		Path:   []string{what},
		Detail: fmt.Sprintf("index %d out of range [0, %d)", index, length),
		Value:  index,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}
