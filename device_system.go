// device_system.go - the system device: halt, reset, memory expansion,
// palette hook, debug dump

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
)

// System device port offsets within its 16-byte slice (0x00-0x0f).
const (
	SystemExpansion = 0x02 // 16-bit pointer to an expansion record
	SystemMetadata  = 0x03 // informational; same byte as SystemExpansion's low byte, so a write runs the expansion record
	SystemWstPtr    = 0x04 // working stack pointer mirror
	SystemRstPtr    = 0x05 // return stack pointer mirror
	SystemPalette   = 0x08 // 6 bytes: four RGB colours, 4 bits/channel
	SystemDebug     = 0x0e // non-zero: dump stacks
	SystemHalt      = 0x0f // halt/exit code
)

// PaletteSink receives updated colour values whenever the palette
// ports are written; the screen device implements it so a palette
// poke is visible on the next redraw.
type PaletteSink interface {
	SetPalette(colors [4][3]byte)
}

// SystemDevice implements the 0x00-0x0f device slot.
type SystemDevice struct {
	m       *Machine
	palette PaletteSink
	debugOut io.Writer
}

// NewSystemDevice builds and attaches the system device to slot 0x0.
// palette may be nil if no screen device is present yet; it can be
// set later with AttachPalette.
func NewSystemDevice(m *Machine, palette PaletteSink, debugOut io.Writer) *SystemDevice {
	sd := &SystemDevice{m: m, palette: palette, debugOut: debugOut}
	m.AttachDevice(0x0, sd)
	m.MarkWritable(SystemExpansion + 1) // low byte write triggers the record
	for p := byte(SystemPalette); p < SystemPalette+6; p++ {
		m.MarkWritable(p)
	}
	m.MarkWritable(SystemDebug)
	m.MarkWritable(SystemHalt)
	m.MarkReadable(SystemWstPtr)
	m.MarkReadable(SystemRstPtr)
	return sd
}

// AttachPalette lets the screen device register itself once it
// exists, since construction order between system and screen devices
// is otherwise unconstrained.
func (sd *SystemDevice) AttachPalette(p PaletteSink) {
	sd.palette = p
}

func (sd *SystemDevice) DEI(m *Machine, port byte) byte {
	switch port {
	case SystemWstPtr:
		return m.wst.ptr
	case SystemRstPtr:
		return m.rst.ptr
	}
	return m.dev[port]
}

func (sd *SystemDevice) DEO(m *Machine, port byte, v byte) {
	switch {
	case port == SystemExpansion+1:
		sd.runExpansion()
	case port >= SystemPalette && port < SystemPalette+6:
		if sd.palette != nil {
			sd.palette.SetPalette(sd.readPalette())
		}
	case port == SystemDebug:
		if v != 0 && sd.debugOut != nil {
			sd.dumpStacks()
		}
	case port == SystemHalt:
		// dev[port] is already updated by Machine.deo; nothing further
		// to do. Halted()/Eval consult it directly.
	}
}

func (sd *SystemDevice) readPalette() [4][3]byte {
	var out [4][3]byte
	raw := sd.m.dev[SystemPalette : SystemPalette+6]
	// Bytes 0-2 hold R,G,B for colour 0 (high nibbles) and colour 1
	// (low nibbles); bytes 3-5 hold colours 2 and 3 the same way. Each
	// nibble is widened to a full byte (n*0x11).
	nib := func(b byte, hi bool) byte {
		if hi {
			return (b >> 4) * 0x11
		}
		return (b & 0x0f) * 0x11
	}
	out[0] = [3]byte{nib(raw[0], true), nib(raw[1], true), nib(raw[2], true)}
	out[1] = [3]byte{nib(raw[0], false), nib(raw[1], false), nib(raw[2], false)}
	out[2] = [3]byte{nib(raw[3], true), nib(raw[4], true), nib(raw[5], true)}
	out[3] = [3]byte{nib(raw[3], false), nib(raw[4], false), nib(raw[5], false)}
	return out
}

func (sd *SystemDevice) dumpStacks() {
	wdat, wptr := sd.m.WorkStack()
	rdat, rptr := sd.m.ReturnStack()
	fmt.Fprintf(sd.debugOut, "wst: %02x <%d>\n", wdat[:wptr], wptr)
	fmt.Fprintf(sd.debugOut, "rst: %02x <%d>\n", rdat[:rptr], rptr)
}

// expansion record opcodes, read from RAM at the pointer in
// SystemExpansion. The record is an opaque descriptor whose only
// observable effect is a memcpy or memset between pages.
const (
	expCopy = 0x00
	expFill = 0x01
)

// runExpansion parses a small record in RAM at the address held in
// dev[0x02..0x03] and performs a
// memcpy/memset between RAM pages. Record layout (10 bytes):
//
//	[0]   opcode (0=copy, 1=fill)
//	[1]   source page
//	[2:4] source offset (big-endian)
//	[4]   destination page
//	[5:7] destination offset (big-endian)
//	[7:9] length (big-endian)
//	[9]   fill byte (fill only; ignored for copy)
//
// Malformed records (opcode out of range, page out of range, or a span
// that would run off either page) are a fault.
func (sd *SystemDevice) runExpansion() {
	m := sd.m
	ptr := uint16(m.dev[SystemExpansion])<<8 | uint16(m.dev[SystemExpansion+1])
	ram := m.Ram()
	if int(ptr)+10 > len(ram) {
		m.fail(FaultExpansion, ptr, m.dev[SystemExpansion+1])
		return
	}
	rec := ram[ptr : ptr+10]
	op := rec[0]
	srcPage := int(rec[1])
	srcOff := uint16(rec[2])<<8 | uint16(rec[3])
	dstPage := int(rec[4])
	dstOff := uint16(rec[5])<<8 | uint16(rec[6])
	length := uint16(rec[7])<<8 | uint16(rec[8])
	fillByte := rec[9]

	src, err := m.RamPage(srcPage)
	if err != nil {
		m.fail(FaultExpansion, ptr, op)
		return
	}
	dst, err := m.RamPage(dstPage)
	if err != nil {
		m.fail(FaultExpansion, ptr, op)
		return
	}

	switch op {
	case expCopy:
		if int(srcOff)+int(length) > len(src) || int(dstOff)+int(length) > len(dst) {
			m.fail(FaultExpansion, ptr, op)
			return
		}
		copy(dst[dstOff:int(dstOff)+int(length)], src[srcOff:int(srcOff)+int(length)])
	case expFill:
		if int(dstOff)+int(length) > len(dst) {
			m.fail(FaultExpansion, ptr, op)
			return
		}
		for i := uint16(0); i < length; i++ {
			dst[dstOff+i] = fillByte
		}
	default:
		m.fail(FaultExpansion, ptr, op)
	}
}
