// uxn_fault.go - fault kinds reported through the system device

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

// FaultKind identifies why an Eval call stopped early. Division by
// zero is deliberately absent: the result is defined as zero rather
// than a fault.
type FaultKind byte

const (
	FaultNone FaultKind = iota
	FaultUnderflow
	FaultOverflow
	FaultExpansion
)

func (k FaultKind) String() string {
	switch k {
	case FaultNone:
		return "none"
	case FaultUnderflow:
		return "stack underflow"
	case FaultOverflow:
		return "stack overflow"
	case FaultExpansion:
		return "malformed expansion record"
	default:
		return "unknown fault"
	}
}

// fail records a fault at the current PC/opcode. The caller (the
// executor's main loop) unwinds immediately without touching the
// stacks any further, so that post-mortem tooling can inspect them.
func (m *Machine) fail(kind FaultKind, pc uint16, opcode byte) {
	m.fault = kind
	m.fpc = pc
	m.fopc = opcode
}

// LastFault returns the most recent fault recorded by Eval, along with
// the PC and opcode of the offending instruction. FaultNone means the
// last Eval either hasn't run or returned cleanly.
func (m *Machine) LastFault() (kind FaultKind, pc uint16, opcode byte) {
	return m.fault, m.fpc, m.fopc
}
