package main

import "testing"

// recorder counts DEI/DEO calls so tests can tell whether the bus
// actually consulted the attached device or just touched dev[port].
type recorder struct {
	deiCalls, deoCalls int
	deiReturn          byte
}

func (r *recorder) DEI(m *Machine, port byte) byte {
	r.deiCalls++
	return r.deiReturn
}

func (r *recorder) DEO(m *Machine, port byte, v byte) {
	r.deoCalls++
}

// A read on a port with no read-mask bit set must return the last
// written byte directly, never reaching the attached device's DEI.
func TestDeiOfNonLivePortReturnsLastWrite(t *testing.T) {
	m := NewMachine()
	r := &recorder{deiReturn: 0xaa}
	m.AttachDevice(0x3, r)
	// 0x30 is not marked readable.
	m.deo(0x30, 0x55)
	if got := m.dei(0x30); got != 0x55 {
		t.Fatalf("dei = %#x, want 0x55 (last write, no device call)", got)
	}
	if r.deiCalls != 0 {
		t.Fatalf("deiCalls = %d, want 0", r.deiCalls)
	}
}

func TestDeiOfLivePortConsultsDevice(t *testing.T) {
	m := NewMachine()
	r := &recorder{deiReturn: 0xaa}
	m.AttachDevice(0x3, r)
	m.MarkReadable(0x30)
	m.deo(0x30, 0x55) // dev[0x30] now 0x55, irrelevant to a live read
	if got := m.dei(0x30); got != 0xaa {
		t.Fatalf("dei = %#x, want 0xaa (from device)", got)
	}
	if r.deiCalls != 1 {
		t.Fatalf("deiCalls = %d, want 1", r.deiCalls)
	}
}

func TestDeoAlwaysUpdatesDevPageBeforeCallback(t *testing.T) {
	m := NewMachine()
	r := &recorder{}
	m.AttachDevice(0x4, r)
	m.MarkWritable(0x40)
	m.deo(0x40, 0x99)
	if m.dev[0x40] != 0x99 {
		t.Fatalf("dev[0x40] = %#x, want 0x99", m.dev[0x40])
	}
	if r.deoCalls != 1 {
		t.Fatalf("deoCalls = %d, want 1", r.deoCalls)
	}
}

func TestDeoOfNonWritablePortSkipsDevice(t *testing.T) {
	m := NewMachine()
	r := &recorder{}
	m.AttachDevice(0x5, r)
	m.deo(0x50, 0x01)
	if r.deoCalls != 0 {
		t.Fatalf("deoCalls = %d, want 0", r.deoCalls)
	}
}

// pokeDevShort bypasses the write mask entirely: it must never invoke
// the attached device's DEO, even on a writable port.
func TestPokeDevShortBypassesDeoCallback(t *testing.T) {
	m := NewMachine()
	r := &recorder{}
	m.AttachDevice(0x9, r)
	m.MarkWritable(0x90)
	m.MarkWritable(0x91)
	m.pokeDevShort(0x90, 0x1234)
	if m.dev[0x90] != 0x12 || m.dev[0x91] != 0x34 {
		t.Fatalf("dev[0x90:92] = %02x %02x, want 12 34", m.dev[0x90], m.dev[0x91])
	}
	if r.deoCalls != 0 {
		t.Fatalf("deoCalls = %d, want 0 (pokeDevShort must not fire DEO)", r.deoCalls)
	}
}

func TestMaskIsPerPortNotPerSlot(t *testing.T) {
	m := NewMachine()
	m.MarkReadable(0x21)
	if m.masks.read.get(0x20) {
		t.Fatal("marking port 0x21 readable also marked 0x20")
	}
	if !m.masks.read.get(0x21) {
		t.Fatal("port 0x21 not marked readable")
	}
}
