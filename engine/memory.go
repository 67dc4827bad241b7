package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// guestMemory wraps the guest's linear memory with error-returning access.
type guestMemory struct {
	mem api.Memory
}

func (m guestMemory) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

// ReadString copies length bytes at offset into a Go string.
func (m guestMemory) ReadString(offset, length uint32) (string, error) {
	data, err := m.Read(offset, length)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (m guestMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

// guestAllocator allocates through the guest's fastsheet_alloc export.
type guestAllocator struct {
	fn    api.Function
	stack []uint64
}

func newGuestAllocator(fn api.Function) *guestAllocator {
	return &guestAllocator{fn: fn, stack: make([]uint64, 2)}
}

func (a *guestAllocator) Alloc(ctx context.Context, size, align uint32) (uint32, error) {
	a.stack[0] = uint64(size)
	a.stack[1] = uint64(align)
	if err := a.fn.CallWithStack(ctx, a.stack); err != nil {
		return 0, fmt.Errorf("%s(%d, %d): %w", ExportAlloc, size, align, err)
	}
	return uint32(a.stack[0]), nil
}

// lowerString copies s into guest memory and returns its pointer and
// length. The empty string is passed as (0, 0) without allocating.
func lowerString(ctx context.Context, alloc *guestAllocator, mem guestMemory, s string) (uint32, uint32, error) {
	if s == "" {
		return 0, 0, nil
	}
	ptr, err := alloc.Alloc(ctx, uint32(len(s)), 1)
	if err != nil {
		return 0, 0, err
	}
	if ptr == 0 {
		return 0, 0, fmt.Errorf("%s returned null for %d bytes", ExportAlloc, len(s))
	}
	if err := mem.Write(ptr, []byte(s)); err != nil {
		return 0, 0, err
	}
	return ptr, uint32(len(s)), nil
}
