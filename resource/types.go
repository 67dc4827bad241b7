package resource

// Handle is an opaque 32-bit address for a value held in a table.
// The low bits select a slot and the high bits carry the slot's
// generation, so an address kept after its slot was released never
// resolves to the slot's next occupant.
// Handle 0 is reserved and always invalid.
type Handle uint32

const (
	slotBits = 20
	slotMask = 1<<slotBits - 1
	genMask  = 1<<(32-slotBits) - 1

	// MaxSlots is the number of values a table can hold at once.
	MaxSlots = slotMask
)

func makeHandle(slot int, gen uint32) Handle {
	return Handle((gen&genMask)<<slotBits | uint32(slot+1))
}

func (h Handle) slot() int {
	return int(uint32(h)&slotMask) - 1
}

func (h Handle) gen() uint32 {
	return uint32(h) >> slotBits
}

// Event types for lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event represents a lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Backend provides the underlying storage mechanism.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID uint32, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// TypeID returns the type a handle was created with.
	TypeID(handle Handle) (uint32, bool)

	// Drop removes a value and returns (value, true) if the handle was live.
	Drop(handle Handle) (any, bool)

	// Len returns the number of live handles.
	Len() int

	// Each visits every live handle until fn returns false.
	Each(fn func(Handle, uint32, any) bool)

	// Close releases all values held by the backend.
	Close() error
}

// Dropper is optionally implemented by values that need cleanup on removal.
type Dropper interface {
	Drop()
}
