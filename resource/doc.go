// Package resource provides the handle table that gives host-side values
// a stable 32-bit address.
//
// External decoders cannot hold Go pointers. Instead the boundary adapter
// inserts the value it wants written into a Table and passes the returned
// Handle across the boundary. The external side sends the handle back on
// every write, and the host resolves it to the live value.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Pin a value, get its address
//	handle := table.Insert(typeID, value)
//
//	// Resolve an address
//	value, ok := table.Get(handle)
//
//	// Release the pin
//	value, ok := table.Remove(handle)
//
// # Address Stability
//
// A handle stays valid from Insert until Remove, independent of the Go
// garbage collector. Slots are reused, but every release advances the
// slot's generation, which is encoded in the handle's upper bits. An
// address retained past its release therefore resolves to nothing rather
// than to whatever value occupies the slot next.
//
// # Type Safety
//
// Handles are typed; GetTyped and TypedTable reject handles inserted
// under another type ID:
//
//	pins := resource.NewTypedTable[handle.Slots](table, SlotsTypeID)
//	addr := pins.Insert(slots)
//	slots, ok := pins.Get(addr)
//
// # Observers
//
// Subscribe an Observer to follow Created/Dropped events, for example to
// log pin and release of population targets.
package resource
