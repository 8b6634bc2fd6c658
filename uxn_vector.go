// uxn_vector.go - the vector dispatcher: entry point into the executor

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
Eval is the only way into the executor's instruction loop. It holds
Machine's mutex for its whole duration, which is what makes the
"never re-entered from a device callback" invariant mechanical rather
than a documentation-only promise: a device DEI/DEO handler that tried
to call Eval itself would deadlock immediately rather than silently
corrupt shared state. Host code with multiple independent event
sources (host_loop.go's screen timer and stdin pump) is expected to
serialize through this lock, not avoid it.
*/

package main

// Eval runs the executor starting at pc until BRK, the halt flag, or a
// fault stops it. It returns true on a clean stop (BRK reached),
// false if pc was 0, the machine was already halted, or a fault
// occurred mid-run.
func (m *Machine) Eval(pc uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pc == 0 || m.Halted() {
		return false
	}

	m.brk = false
	m.fault = FaultNone

	for {
		wptr, rptr := m.wst.ptr, m.rst.ptr
		if !m.step(&pc) {
			// Undo any operand pops the faulting instruction made, so
			// both stacks read as they did before it ran.
			m.wst.ptr, m.rst.ptr = wptr, rptr
			return false
		}
		if m.brk {
			return true
		}
		if m.Halted() {
			return false
		}
	}
}
