// device_controller.go - the controller device, Varvara's 0x80 page

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

// Controller device port offsets (0x80-0x8f).
const (
	ControllerVector = 0x80
	ControllerButton = 0x82
	ControllerKey    = 0x83
)

// Button bits: arrow keys plus ctrl/alt/shift/home as the four action
// buttons.
const (
	ButtonUp    = 0x10
	ButtonDown  = 0x20
	ButtonLeft  = 0x40
	ButtonRight = 0x80
	ButtonCtrl  = 0x01
	ButtonAlt   = 0x02
	ButtonShift = 0x04
	ButtonHome  = 0x08
)

// ControllerDevice implements the 0x80-0x8f device slot: one button
// byte and one last-pressed-key byte, fed by the host loop's keyboard
// event translator.
type ControllerDevice struct {
	m *Machine
}

func NewControllerDevice(m *Machine) *ControllerDevice {
	cd := &ControllerDevice{m: m}
	m.AttachDevice(0x8, cd)
	return cd
}

func (cd *ControllerDevice) DEI(m *Machine, port byte) byte { return m.dev[port] }
func (cd *ControllerDevice) DEO(m *Machine, port byte, v byte) {}

// ControllerButtonDown/Up update the button bitmask and fire the
// controller vector: the host enters the evaluator at this PC whenever
// the device's event fires.
func (m *Machine) ControllerButtonDown(bit byte) {
	m.dev[ControllerButton] |= bit
	m.fireVector(ControllerVector)
}

func (m *Machine) ControllerButtonUp(bit byte) {
	m.dev[ControllerButton] &^= bit
	m.fireVector(ControllerVector)
}

func (m *Machine) ControllerKeyPress(key byte) {
	m.dev[ControllerKey] = key
	m.fireVector(ControllerVector)
	m.dev[ControllerKey] = 0
}

// fireVector evaluates the machine at the 16-bit vector stored at the
// given port pair, ignoring the result. Callers that need Eval's
// bool should call Eval directly.
func (m *Machine) fireVector(port byte) {
	v := uint16(m.dev[port])<<8 | uint16(m.dev[port+1])
	m.Eval(v)
}
