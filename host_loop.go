// host_loop.go - wires the machine to its device back-ends and drives
// the screen's refresh vector once per displayed frame.

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"io"
)

// HostLoop owns the machine and every device that talks to a real
// backend (screen, audio, stdin). It enters the machine through tick,
// ConsoleInput and the devices' fire* helpers, all of which go through
// Machine.Eval's single mutex, so the non-reentrancy guarantee in
// uxn_vector.go holds no matter which goroutine an event arrives on.
type HostLoop struct {
	m       *Machine
	screen  *ScreenDevice
	out     ScreenOutput
	mixer   *AudioMixer
	player  *OtoPlayer
	console *ConsoleDevice
	term    *TermStdin

	lastMouseX, lastMouseY int
}

// NewHostLoop builds a machine with every device attached, wiring the
// screen device's refresh vector and the console device's stdin to
// whatever ScreenOutput was supplied. out may be a headlessScreenOutput
// for non-interactive runs.
func NewHostLoop(out ScreenOutput, stdout, stderr io.Writer, fileDirA, fileDirB string) *HostLoop {
	m := NewMachine()

	sys := NewSystemDevice(m, nil, stderr)
	screen := NewScreenDevice(m, out)
	sys.AttachPalette(screen)

	console := NewConsoleDevice(m, stdout, stderr)
	NewControllerDevice(m)
	NewMouseDevice(m)
	NewDatetimeDevice(m)
	if fileDirA != "" {
		NewFileDevice(m, 0xa, fileDirA)
	}
	if fileDirB != "" {
		NewFileDevice(m, 0xb, fileDirB)
	}
	mixer := NewAudioMixer(m)

	hl := &HostLoop{m: m, screen: screen, out: out, mixer: mixer, console: console, lastMouseX: -1, lastMouseY: -1}

	if kb, ok := out.(interface{ SetKeyHandler(func(byte)) }); ok {
		kb.SetKeyHandler(func(b byte) { m.ConsoleInput(b, ConsoleTypeStd) })
	}
	if ts, ok := out.(interface{ SetTickHandler(func()) }); ok {
		ts.SetTickHandler(hl.tick)
	}
	if ms, ok := out.(interface {
		SetMouseHandler(func(x, y int, wheelX, wheelY float64))
	}); ok {
		ms.SetMouseHandler(hl.mouseTick)
	}
	if bs, ok := out.(interface {
		SetButtonHandler(func(bit byte, down bool))
	}); ok {
		bs.SetButtonHandler(func(bit byte, down bool) {
			if down {
				m.ControllerButtonDown(bit)
			} else {
				m.ControllerButtonUp(bit)
			}
		})
	}
	if mb, ok := out.(interface {
		SetMouseButtonHandler(func(bit byte, down bool))
	}); ok {
		mb.SetMouseButtonHandler(func(bit byte, down bool) {
			if down {
				m.MouseButtonDown(bit)
			} else {
				m.MouseButtonUp(bit)
			}
		})
	}
	if ck, ok := out.(interface{ SetControllerKeyHandler(func(byte)) }); ok {
		ck.SetControllerKeyHandler(m.ControllerKeyPress)
	}

	return hl
}

// Machine exposes the underlying machine for ROM loading and the
// console's argv delivery.
func (hl *HostLoop) Machine() *Machine { return hl.m }

// tick fires the screen device's refresh vector and presents the
// frame, called once per display Update.
func (hl *HostLoop) tick() {
	hl.m.Eval(hl.screen.Vector())
	hl.screen.Present()
}

// mouseTick forwards the host's cursor position and wheel delta into
// the mouse device, only firing the vector when something changed so
// an idle cursor doesn't spam Eval calls.
func (hl *HostLoop) mouseTick(x, y int, wheelX, wheelY float64) {
	if x != hl.lastMouseX || y != hl.lastMouseY {
		hl.lastMouseX, hl.lastMouseY = x, y
		hl.m.MouseMove(x, y)
	}
	if wheelX != 0 || wheelY != 0 {
		hl.m.MouseScrollEvent(int8(wheelX), int8(wheelY))
	}
}

// StartAudio wires the mixer into a PCM backend and begins playback.
func (hl *HostLoop) StartAudio(sampleRate int) error {
	player, err := NewOtoPlayer(sampleRate)
	if err != nil {
		return err
	}
	player.SetupPlayer(hl.mixer)
	player.Start()
	hl.player = player
	return nil
}

// StartStdin pumps raw stdin bytes into the console device until EOF.
// Call in its own goroutine; it returns when stdin closes.
func (hl *HostLoop) StartStdin() error {
	ts, err := NewTermStdin()
	if err != nil {
		return err
	}
	hl.term = ts
	defer ts.Restore()
	done := make(chan struct{})
	ts.Pump(done, func(b byte) bool {
		if hl.m.Halted() {
			return false
		}
		hl.m.ConsoleInput(b, ConsoleTypeStd)
		return true
	})
	return nil
}

// Close releases every resource the host loop opened.
func (hl *HostLoop) Close() {
	if hl.player != nil {
		hl.player.Close()
	}
	if hl.term != nil {
		hl.term.Restore()
	}
	hl.console.Close()
}
