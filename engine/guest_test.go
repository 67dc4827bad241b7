package engine

import (
	"encoding/binary"
	"math"
)

// guest assembles a minimal decoder module. Its fastsheet_decode checks
// the sheet name (when set), replays ops as host calls and returns status.
type guest struct {
	sheet    string
	ops      []op
	status   uint32
	noDecode bool
	badAlloc bool
}

type opKind int

const (
	opWidth opKind = iota
	opHeight
	opBeginRow
	opEmpty
	opString
	opNumber
	opBool
	opDatetime
	opReportError
	opEchoPath
	opEchoSheet
	opTrap
)

type op struct {
	kind opKind
	i    int32
	f    float64
	n    int64
	s    string
	// addr, when non-zero, replaces the address the host passed in.
	addr uint32
}

func setWidth(n int32) op      { return op{kind: opWidth, i: n} }
func setHeight(n int32) op     { return op{kind: opHeight, i: n} }
func beginRow() op             { return op{kind: opBeginRow} }
func pushEmpty() op            { return op{kind: opEmpty} }
func pushString(s string) op   { return op{kind: opString, s: s} }
func pushNumber(f float64) op  { return op{kind: opNumber, f: f} }
func pushDatetime(ns int64) op { return op{kind: opDatetime, n: ns} }
func reportError(s string) op  { return op{kind: opReportError, s: s} }
func echoPath() op             { return op{kind: opEchoPath} }
func echoSheet() op            { return op{kind: opEchoSheet} }
func trap() op                 { return op{kind: opTrap} }

func pushBool(v bool) op {
	o := op{kind: opBool}
	if v {
		o.i = 1
	}
	return o
}

func (o op) at(addr uint32) op {
	o.addr = addr
	return o
}

// host import function indices, in import order.
const (
	fnSetWidth = iota
	fnSetHeight
	fnBeginRow
	fnPushEmpty
	fnPushString
	fnPushNumber
	fnPushBool
	fnPushDatetime
	fnReportError
	fnAlloc
	fnDecode
)

const (
	valI32 = 0x7f
	valI64 = 0x7e
	valF64 = 0x7c

	dataBase = 16
)

func (g guest) build() []byte {
	// Strings live in one data segment starting at dataBase.
	var data []byte
	offsets := map[string]uint32{}
	intern := func(s string) uint32 {
		if off, ok := offsets[s]; ok {
			return off
		}
		off := uint32(dataBase + len(data))
		data = append(data, s...)
		offsets[s] = off
		return off
	}
	for _, o := range g.ops {
		if o.kind == opString || o.kind == opReportError {
			intern(o.s)
		}
	}
	heap := (dataBase + len(data) + 7) &^ 7
	heap += 1024

	var m []byte
	m = append(m, 0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00)

	// type section
	types := [][2][]byte{
		{{valI32, valI32}, nil},
		{{valI32}, nil},
		{{valI32, valI32, valI32}, nil},
		{{valI32, valF64}, nil},
		{{valI32, valI64}, nil},
		{{valI32, valI32}, {valI32}},
		{{valI32, valI32, valI32, valI32, valI32}, {valI32}},
	}
	if g.badAlloc {
		types[5] = [2][]byte{{valI32}, {valI32}}
	}
	var sec []byte
	sec = uleb(sec, uint64(len(types)))
	for _, t := range types {
		sec = append(sec, 0x60)
		sec = vec(sec, t[0])
		sec = vec(sec, t[1])
	}
	m = section(m, 1, sec)

	// import section
	imports := []struct {
		name string
		typ  byte
	}{
		{FuncSetWidth, 0},
		{FuncSetHeight, 0},
		{FuncBeginRow, 1},
		{FuncPushEmpty, 1},
		{FuncPushString, 2},
		{FuncPushNumber, 3},
		{FuncPushBool, 0},
		{FuncPushDatetime, 4},
		{FuncReportError, 2},
	}
	sec = uleb(nil, uint64(len(imports)))
	for _, im := range imports {
		sec = name(sec, HostModule)
		sec = name(sec, im.name)
		sec = append(sec, 0x00, im.typ)
	}
	m = section(m, 2, sec)

	// function section
	m = section(m, 3, []byte{0x02, 0x05, 0x06})

	// memory section: one memory, min 1 page
	m = section(m, 5, []byte{0x01, 0x00, 0x01})

	// global section: mutable i32 heap pointer
	sec = []byte{0x01, valI32, 0x01, 0x41}
	sec = sleb(sec, int64(heap))
	sec = append(sec, 0x0b)
	m = section(m, 6, sec)

	// export section
	type export struct {
		name string
		kind byte
		idx  byte
	}
	exports := []export{
		{ExportMemory, 0x02, 0},
		{ExportAlloc, 0x00, fnAlloc},
	}
	if !g.noDecode {
		exports = append(exports, export{ExportDecode, 0x00, fnDecode})
	}
	sec = uleb(nil, uint64(len(exports)))
	for _, e := range exports {
		sec = name(sec, e.name)
		sec = append(sec, e.kind, e.idx)
	}
	m = section(m, 7, sec)

	// code section
	alloc := []byte{
		0x00,       // no locals
		0x23, 0x00, // global.get 0
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
		0x0b,
	}
	if g.badAlloc {
		// (i32) -> i32 variant, never called.
		alloc = []byte{0x00, 0x20, 0x00, 0x0b}
	}
	decode := g.decodeBody(offsets)
	sec = uleb(nil, 2)
	sec = uleb(sec, uint64(len(alloc)))
	sec = append(sec, alloc...)
	sec = uleb(sec, uint64(len(decode)))
	sec = append(sec, decode...)
	m = section(m, 10, sec)

	// data section
	if len(data) > 0 {
		sec = []byte{0x01, 0x00, 0x41}
		sec = sleb(sec, dataBase)
		sec = append(sec, 0x0b)
		sec = vec(sec, data)
		m = section(m, 11, sec)
	}

	return m
}

// decodeBody params: 0 addr, 1 path_ptr, 2 path_len, 3 sheet_ptr, 4 sheet_len.
func (g guest) decodeBody(offsets map[string]uint32) []byte {
	b := []byte{0x00} // no locals

	if g.sheet != "" {
		b = append(b, 0x20, 0x04, 0x41)
		b = sleb(b, int64(len(g.sheet)))
		b = append(b, 0x47) // i32.ne
		b = notFound(b)
		for i := 0; i < len(g.sheet); i++ {
			b = append(b, 0x20, 0x03, 0x2d, 0x00) // local.get 3; i32.load8_u align=0
			b = uleb(b, uint64(i))
			b = append(b, 0x41)
			b = sleb(b, int64(g.sheet[i]))
			b = append(b, 0x47)
			b = notFound(b)
		}
	}

	for _, o := range g.ops {
		if o.kind == opTrap {
			b = append(b, 0x00) // unreachable
			continue
		}
		if o.addr != 0 {
			b = append(b, 0x41)
			b = sleb(b, int64(int32(o.addr)))
		} else {
			b = append(b, 0x20, 0x00)
		}
		switch o.kind {
		case opWidth:
			b = append(b, 0x41)
			b = sleb(b, int64(o.i))
			b = call(b, fnSetWidth)
		case opHeight:
			b = append(b, 0x41)
			b = sleb(b, int64(o.i))
			b = call(b, fnSetHeight)
		case opBeginRow:
			b = call(b, fnBeginRow)
		case opEmpty:
			b = call(b, fnPushEmpty)
		case opString, opReportError:
			b = append(b, 0x41)
			b = sleb(b, int64(offsets[o.s]))
			b = append(b, 0x41)
			b = sleb(b, int64(len(o.s)))
			if o.kind == opString {
				b = call(b, fnPushString)
			} else {
				b = call(b, fnReportError)
			}
		case opNumber:
			b = append(b, 0x44)
			b = binary.LittleEndian.AppendUint64(b, math.Float64bits(o.f))
			b = call(b, fnPushNumber)
		case opBool:
			b = append(b, 0x41)
			b = sleb(b, int64(o.i))
			b = call(b, fnPushBool)
		case opDatetime:
			b = append(b, 0x42)
			b = sleb(b, o.n)
			b = call(b, fnPushDatetime)
		case opEchoPath:
			b = append(b, 0x20, 0x01, 0x20, 0x02)
			b = call(b, fnPushString)
		case opEchoSheet:
			b = append(b, 0x20, 0x03, 0x20, 0x04)
			b = call(b, fnPushString)
		}
	}

	b = append(b, 0x41)
	b = sleb(b, int64(int32(g.status)))
	return append(b, 0x0b)
}

// notFound consumes an i32 condition: if set, return status 2.
func notFound(b []byte) []byte {
	return append(b, 0x04, 0x40, 0x41, 0x02, 0x0f, 0x0b)
}

func call(b []byte, fn int) []byte {
	b = append(b, 0x10)
	return uleb(b, uint64(fn))
}

func section(m []byte, id byte, content []byte) []byte {
	m = append(m, id)
	m = uleb(m, uint64(len(content)))
	return append(m, content...)
}

func vec(b, items []byte) []byte {
	b = uleb(b, uint64(len(items)))
	return append(b, items...)
}

func name(b []byte, s string) []byte {
	return vec(b, []byte(s))
}

func uleb(b []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}

func sleb(b []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		b = append(b, c)
		if done {
			return b
		}
	}
}
