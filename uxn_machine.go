// uxn_machine.go - core Uxn machine state for the Varvara engine

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
uxn_machine.go holds the Uxn machine's addressable state: main RAM
(optionally expanded into further 64KiB pages via the system device),
the two 256-byte stacks, and the 256-byte device page. The executor
(uxn_execute.go, uxn_stack.go, uxn_vector.go) and the devices in this
package read and write these fields directly; boundary code outside
the core goes through the accessors defined here.

Boot zero-initialises everything and loads the ROM at PAGE_PROGRAM.
Reset comes in two flavours: a hard reset re-zeroes RAM and stacks (as
Boot does, minus the ROM reload), a soft reset only clears the device
page and preserves any pages above the first.
*/

package main

import (
	"fmt"
	"sync"
)

const (
	RAMPageSize  = 0x10000 // bytes per RAM page
	PagesDefault = 1       // pages present at boot
	PagesMax     = 16      // hard ceiling on system-device expansion

	PageProgram = 0x0100 // reset vector / ROM load address

	StackSize = 256 // bytes per stack

	DevPageSize = 256 // device port bytes
)

// Stack is a single-byte-pointer circular buffer. ptr is the index of
// the next free slot; dat[ptr-1] is the current top. ptr is a single
// byte, and the push/pop helpers (uxn_stack.go) fault rather than let
// it wrap past 0xff or below 0.
type Stack struct {
	dat [StackSize]byte
	ptr byte
}

// Machine is the complete state of one Uxn core: RAM, both stacks, the
// device page, and the halt flag mirror. It owns a single mutex that
// serialises calls to Eval; see host_loop.go for why two independent
// event sources (the screen vector and the console stdin pump) share
// one machine safely.
type Machine struct {
	mu sync.Mutex

	ram  [][RAMPageSize]byte
	wst  Stack
	rst  Stack
	dev  [DevPageSize]byte
	halt bool

	fault FaultKind
	fpc   uint16
	fopc  byte
	brk   bool // set by BRK; cleared at the top of every Eval

	devices [16]Device // indexed by the high nibble of the device port
	masks   deviceMasks
}

// Device is implemented by each of the sixteen device slots on the
// Varvara page. A slot left nil behaves as plain memory.
type Device interface {
	// DEI is called only for ports with their read-mask bit set; the
	// return value becomes the result of the DEI instruction.
	DEI(m *Machine, port byte) byte
	// DEO is called only for ports with their write-mask bit set,
	// after dev[port] has already been updated to v.
	DEO(m *Machine, port byte, v byte)
}

// NewMachine allocates a machine with one RAM page and no devices
// attached. Callers wire devices with AttachDevice before Boot.
func NewMachine() *Machine {
	m := &Machine{
		ram: make([][RAMPageSize]byte, PagesDefault, PagesMax),
	}
	return m
}

// AttachDevice installs a Device at the given device slot (0x0-0xf,
// i.e. ports slot*0x10 .. slot*0x10+0xf). There is no runtime
// (de)registration beyond this; the dispatch table is fixed once Boot
// has run.
func (m *Machine) AttachDevice(slot byte, d Device) {
	m.devices[slot&0x0f] = d
}

// Boot zero-initialises RAM, both stacks and the device page, then
// loads rom at PageProgram on page 0. It is the only way to reach a
// fully-defined machine state from scratch.
func (m *Machine) Boot(rom []byte) error {
	if len(rom) > RAMPageSize-PageProgram {
		return fmt.Errorf("uxn: rom is %d bytes, exceeds %d available", len(rom), RAMPageSize-PageProgram)
	}
	m.ram = m.ram[:PagesDefault]
	for p := range m.ram {
		m.ram[p] = [RAMPageSize]byte{}
	}
	m.wst = Stack{}
	m.rst = Stack{}
	m.dev = [DevPageSize]byte{}
	m.halt = false
	m.fault = FaultNone
	copy(m.ram[0][PageProgram:], rom)
	return nil
}

// HardReset re-zeroes RAM (all pages dropped back to one) and both
// stacks, preserving attached devices. SoftReset clears only the
// device page, leaving RAM (including expansion pages) untouched.
func (m *Machine) HardReset() {
	m.ram = m.ram[:PagesDefault]
	m.ram[0] = [RAMPageSize]byte{}
	m.wst = Stack{}
	m.rst = Stack{}
	m.dev = [DevPageSize]byte{}
	m.halt = false
	m.fault = FaultNone
}

func (m *Machine) SoftReset() {
	m.dev = [DevPageSize]byte{}
	m.halt = false
	m.fault = FaultNone
}

// Halted reports whether dev[0x0f] is non-zero; a non-zero value
// inhibits further evaluator entries.
func (m *Machine) Halted() bool {
	return m.dev[0x0f] != 0
}

// SetHalt sets the halt port directly, for host code or device
// callbacks that want to stop the machine. Eval checks the flag on
// entry and after every instruction, so a running Eval stops once the
// current instruction finishes.
func (m *Machine) SetHalt(code byte) {
	m.dev[0x0f] = code
}

// ExitCode returns the low seven bits of the halt port.
func (m *Machine) ExitCode() byte {
	return m.dev[0x0f] & 0x7f
}

// Ram returns the executable page (page 0) for direct access by
// boundary code (ROM loaders, debug tools). Expansion pages are only
// reachable through RamPage.
func (m *Machine) Ram() *[RAMPageSize]byte {
	return &m.ram[0]
}

// RamPage returns page p, expanding storage if necessary. Used by the
// system device's memory-expansion command.
func (m *Machine) RamPage(p int) (*[RAMPageSize]byte, error) {
	if p < 0 || p >= PagesMax {
		return nil, fmt.Errorf("uxn: page %d out of range [0,%d)", p, PagesMax)
	}
	for len(m.ram) <= p {
		m.ram = append(m.ram, [RAMPageSize]byte{})
	}
	return &m.ram[p], nil
}

// PageCount reports how many RAM pages are currently allocated.
func (m *Machine) PageCount() int {
	return len(m.ram)
}

// Dev returns a snapshot of the device page, mainly for tests and
// debug tooling; live reads/writes go through DEI/DEO (device_bus.go).
func (m *Machine) Dev() [DevPageSize]byte {
	return m.dev
}

// WorkStack and ReturnStack expose read-only views of the stacks for
// debug tooling (system device 0x0e) and tests.
func (m *Machine) WorkStack() (dat [StackSize]byte, ptr byte) {
	return m.wst.dat, m.wst.ptr
}

func (m *Machine) ReturnStack() (dat [StackSize]byte, ptr byte) {
	return m.rst.dat, m.rst.ptr
}
