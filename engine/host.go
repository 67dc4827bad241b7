package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/fastsheet/boundary"
	"github.com/wippyai/fastsheet/cell"
	"github.com/wippyai/fastsheet/errors"
	"github.com/wippyai/fastsheet/handle"
	"github.com/wippyai/fastsheet/resource"
)

type callKey struct{}

// call is the per-decode state the host functions reach through the
// context. A guest instance runs on one goroutine, so it is unguarded.
type call struct {
	reg     boundary.Registry
	fault   error
	message string
}

func withCall(ctx context.Context, c *call) context.Context {
	return context.WithValue(ctx, callKey{}, c)
}

func callFrom(ctx context.Context) *call {
	c, _ := ctx.Value(callKey{}).(*call)
	return c
}

func (c *call) setFault(format string, args ...any) {
	if c.fault == nil {
		c.fault = fmt.Errorf(format, args...)
	}
}

// slots resolves the address the guest passed. An address that does not
// resolve is recorded as a fault and the write is dropped.
func slots(ctx context.Context, addr uint64, fn string) handle.Slots {
	c := callFrom(ctx)
	if c == nil {
		return nil
	}
	s, ok := c.reg.Resolve(resource.Handle(uint32(addr)))
	if !ok {
		c.setFault("%s: unknown address %#x", fn, uint32(addr))
		return nil
	}
	return s
}

func readGuestString(ctx context.Context, mod api.Module, ptr, length uint64, fn string) (string, bool) {
	s, err := guestMemory{mem: mod.Memory()}.ReadString(uint32(ptr), uint32(length))
	if err != nil {
		if c := callFrom(ctx); c != nil {
			c.setFault("%s: %v", fn, err)
		}
		return "", false
	}
	return s, true
}

type hostFunc struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

func hostFuncs() []hostFunc {
	return []hostFunc{
		{
			name:   FuncSetWidth,
			params: []api.ValueType{i32, i32},
			fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				if s := slots(ctx, stack[0], FuncSetWidth); s != nil {
					s.SetWidth(int(api.DecodeI32(stack[1])))
				}
			},
		},
		{
			name:   FuncSetHeight,
			params: []api.ValueType{i32, i32},
			fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				if s := slots(ctx, stack[0], FuncSetHeight); s != nil {
					s.SetHeight(int(api.DecodeI32(stack[1])))
				}
			},
		},
		{
			name:   FuncBeginRow,
			params: []api.ValueType{i32},
			fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				if s := slots(ctx, stack[0], FuncBeginRow); s != nil {
					s.BeginRow()
				}
			},
		},
		{
			name:   FuncPushEmpty,
			params: []api.ValueType{i32},
			fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				if s := slots(ctx, stack[0], FuncPushEmpty); s != nil {
					s.Push(cell.Empty())
				}
			},
		},
		{
			name:   FuncPushString,
			params: []api.ValueType{i32, i32, i32},
			fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				s := slots(ctx, stack[0], FuncPushString)
				if s == nil {
					return
				}
				if str, ok := readGuestString(ctx, mod, stack[1], stack[2], FuncPushString); ok {
					s.Push(cell.String(str))
				}
			},
		},
		{
			name:   FuncPushNumber,
			params: []api.ValueType{i32, f64},
			fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				if s := slots(ctx, stack[0], FuncPushNumber); s != nil {
					s.Push(cell.Number(math.Float64frombits(stack[1])))
				}
			},
		},
		{
			name:   FuncPushBool,
			params: []api.ValueType{i32, i32},
			fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				if s := slots(ctx, stack[0], FuncPushBool); s != nil {
					s.Push(cell.Bool(uint32(stack[1]) != 0))
				}
			},
		},
		{
			name:   FuncPushDatetime,
			params: []api.ValueType{i32, i64},
			fn: func(ctx context.Context, _ api.Module, stack []uint64) {
				if s := slots(ctx, stack[0], FuncPushDatetime); s != nil {
					s.Push(cell.Time(time.Unix(0, int64(stack[1])).UTC()))
				}
			},
		},
		{
			name:   FuncReportError,
			params: []api.ValueType{i32, i32, i32},
			fn: func(ctx context.Context, mod api.Module, stack []uint64) {
				c := callFrom(ctx)
				if c == nil {
					return
				}
				msg, ok := readGuestString(ctx, mod, stack[1], stack[2], FuncReportError)
				if !ok {
					return
				}
				// The message is kept even when addr does not resolve.
				c.message = msg
				if s, ok := c.reg.Resolve(resource.Handle(uint32(stack[0]))); ok {
					s.Fail(errors.New(errors.PhaseDecode, errors.KindDecode).Detail(msg).Build())
				}
			},
		},
	}
}

// instantiateHost registers the fastsheet host module on r.
func instantiateHost(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(HostModule)
	for _, f := range hostFuncs() {
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(f.fn, f.params, f.results).
			WithParameterNames(paramNames(f.params)...).
			Export(f.name)
	}
	return builder.Instantiate(ctx)
}

func paramNames(params []api.ValueType) []string {
	names := make([]string, len(params))
	names[0] = "addr"
	for i := 1; i < len(names); i++ {
		names[i] = fmt.Sprintf("arg%d", i)
	}
	return names
}
