package main

import "testing"

func TestControllerButtonDownSetsBit(t *testing.T) {
	m := NewMachine()
	NewControllerDevice(m)

	// Vector port is zero-initialized, so fireVector's Eval(0) returns
	// immediately without touching the executor; this only exercises
	// the button bit itself.
	m.ControllerButtonDown(ButtonUp)

	if m.dev[ControllerButton]&ButtonUp == 0 {
		t.Fatalf("button byte = %#x, want ButtonUp bit set", m.dev[ControllerButton])
	}
}

func TestControllerButtonUpClearsOnlyItsOwnBit(t *testing.T) {
	m := NewMachine()
	NewControllerDevice(m)
	m.ControllerButtonDown(ButtonUp)
	m.ControllerButtonDown(ButtonCtrl)

	m.ControllerButtonUp(ButtonUp)

	if m.dev[ControllerButton]&ButtonUp != 0 {
		t.Fatal("ButtonUp still set after ControllerButtonUp")
	}
	if m.dev[ControllerButton]&ButtonCtrl == 0 {
		t.Fatal("ControllerButtonUp(ButtonUp) cleared an unrelated bit")
	}
}

func TestControllerKeyPressSetsThenClearsKeyPort(t *testing.T) {
	m := NewMachine()
	NewControllerDevice(m)

	m.ControllerKeyPress('a')

	if m.dev[ControllerKey] != 0 {
		t.Fatalf("ControllerKey port = %#x after the call returned, want 0 (one-shot)", m.dev[ControllerKey])
	}
}

func TestControllerDEOIsANoOp(t *testing.T) {
	m := NewMachine()
	NewControllerDevice(m)
	m.MarkWritable(ControllerButton)

	m.deo(ControllerButton, 0xff)

	if m.dev[ControllerButton] != 0xff {
		t.Fatalf("dev page = %#x, want the raw DEO write of 0xff", m.dev[ControllerButton])
	}
}
