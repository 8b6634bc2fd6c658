// console_term.go - raw terminal stdin pump for the console device

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
When the console device's standard input is the controlling terminal,
bytes need to reach the machine one at a time instead of line-buffered,
matching uxncli's own behaviour of putting the terminal in raw mode for
the lifetime of the rom. golang.org/x/term is the ecosystem's standard
way to do this; there is no reason to hand-roll termios syscalls.
*/

package main

import (
	"bufio"
	"io"
	"os"

	"golang.org/x/term"
)

// TermStdin puts stdin into raw mode (when it is a terminal) and pumps
// bytes one at a time to the console device until the reader closes
// or the machine halts.
type TermStdin struct {
	fd       int
	oldState *term.State
}

// NewTermStdin enters raw mode if stdin is a TTY; otherwise it is a
// no-op wrapper over the plain file, degrading gracefully when stdin
// isn't a real terminal (a pipe, a redirected file).
func NewTermStdin() (*TermStdin, error) {
	fd := int(os.Stdin.Fd())
	ts := &TermStdin{fd: fd}
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return nil, err
		}
		ts.oldState = old
	}
	return ts, nil
}

func (ts *TermStdin) Restore() {
	if ts.oldState != nil {
		_ = term.Restore(ts.fd, ts.oldState)
	}
}

// Pump reads stdin byte by byte and calls deliver for each one, until
// EOF or the done channel closes. deliver returning false (machine
// halted) stops the pump early.
func (ts *TermStdin) Pump(done <-chan struct{}, deliver func(b byte) bool) {
	r := bufio.NewReader(os.Stdin)
	buf := make([]byte, 1)
	for {
		select {
		case <-done:
			return
		default:
		}
		n, err := r.Read(buf)
		if n > 0 {
			if !deliver(buf[0]) {
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				return
			}
			return
		}
	}
}
