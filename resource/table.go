package resource

import (
	"sync"
)

// Table maps handles to values and notifies observers of lifecycle events.
type Table struct {
	backend   Backend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return NewTableWithBackend(NewLocalBackend())
}

// NewTableWithBackend creates a table over a custom backend.
func NewTableWithBackend(b Backend) *Table {
	return &Table{backend: b}
}

// Insert adds a value and returns its handle, or 0 if the table is
// closed or full.
func (t *Table) Insert(typeID uint32, value any) Handle {
	t.closeMu.RLock()
	if t.closed {
		t.closeMu.RUnlock()
		return 0
	}
	t.closeMu.RUnlock()

	handle, err := t.backend.Create(typeID, value)
	if err != nil {
		return 0
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *Table) GetTyped(handle Handle, typeID uint32) (any, bool) {
	actualTypeID, ok := t.backend.TypeID(handle)
	if !ok || actualTypeID != typeID {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Remove drops a value and returns (value, true) if found.
func (t *Table) Remove(handle Handle) (any, bool) {
	typeID, _ := t.backend.TypeID(handle)
	value, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{
		Type:   EventDropped,
		Handle: handle,
		TypeID: typeID,
		Value:  value,
	})

	return value, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Each visits every live handle until fn returns false.
func (t *Table) Each(fn func(Handle, uint32, any) bool) {
	t.backend.Each(fn)
}

// Clear drops all values.
func (t *Table) Clear() {
	// Collect handles first to avoid holding the backend lock during Remove
	var handles []Handle
	t.backend.Each(func(h Handle, typeID uint32, value any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close releases all values and stops accepting inserts.
func (t *Table) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}

// TypedTable provides type-safe access to values of one type in a Table.
type TypedTable[T any] struct {
	table  *Table
	typeID uint32
}

// NewTypedTable returns a view of table restricted to typeID.
func NewTypedTable[T any](table *Table, typeID uint32) *TypedTable[T] {
	return &TypedTable[T]{table: table, typeID: typeID}
}

// Insert adds a value and returns its handle.
func (t *TypedTable[T]) Insert(value T) Handle {
	return t.table.Insert(t.typeID, value)
}

// Get retrieves a value by handle. Handles of another type resolve to nothing.
func (t *TypedTable[T]) Get(handle Handle) (T, bool) {
	var zero T
	v, ok := t.table.GetTyped(handle, t.typeID)
	if !ok {
		return zero, false
	}
	tv, ok := v.(T)
	if !ok {
		return zero, false
	}
	return tv, true
}

// Remove drops a value and returns it if found and of this table's type.
func (t *TypedTable[T]) Remove(handle Handle) (T, bool) {
	var zero T
	if typeID, ok := t.table.backend.TypeID(handle); !ok || typeID != t.typeID {
		return zero, false
	}
	v, ok := t.table.Remove(handle)
	if !ok {
		return zero, false
	}
	tv, _ := v.(T)
	return tv, true
}

// Len returns the number of live handles of this type.
func (t *TypedTable[T]) Len() int {
	n := 0
	t.Each(func(Handle, T) bool {
		n++
		return true
	})
	return n
}

// Each iterates over all live values of this type.
func (t *TypedTable[T]) Each(fn func(Handle, T) bool) {
	t.table.Each(func(h Handle, typeID uint32, v any) bool {
		if typeID != t.typeID {
			return true
		}
		tv, ok := v.(T)
		if !ok {
			return true
		}
		return fn(h, tv)
	})
}
