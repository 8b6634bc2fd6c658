//go:build !windows

// device_console.go - the console device: byte I/O plus optional
// subprocess control
//
// Subprocess control relies on POSIX wait semantics; a windows build
// would need its own child-reaping strategy, so this file is
// restricted to !windows.

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"io"
	"os/exec"
	"syscall"
)

// Console device port offsets (0x10-0x1f).
const (
	ConsoleVector  = 0x10 // 16-bit input vector
	ConsoleRead    = 0x12 // last input byte
	ConsoleType    = 0x17 // input type tag for the current vector entry
	ConsoleWrite   = 0x18 // stdout byte, written immediately on DEO
	ConsoleError   = 0x19 // stderr byte, written immediately on DEO
	ConsoleCmdLive = 0x15 // subprocess: 0 not started, 1 running, 0xff dead
	ConsoleCmdExit = 0x16 // subprocess: exit code once dead
	ConsoleCmdAddr = 0x1c // 16-bit pointer to the shell command string
	ConsoleCmdMode = 0x1e // bit 0 feed stdin, bit 1 capture stdout, bit 2 capture stderr, bit 3 kill only
	ConsoleCmdExec = 0x1f // write (any value) to (re)spawn the subprocess
)

// Console input type tags, delivered alongside each byte at the
// console vector.
const (
	ConsoleTypeStd = 0x00
	ConsoleTypeArg = 0x02
	ConsoleTypeEOA = 0x03
	ConsoleTypeEnd = 0x04
)

// ConsoleDevice implements the 0x10-0x1f device slot: stdout/stderr
// byte output, plus optional subprocess plumbing (spawn a shell
// command, feed it stdin, capture its stdout/stderr, poll its exit
// status). Subprocess spawning is optional for a rom to use, but a
// complete console device still offers it.
type ConsoleDevice struct {
	m      *Machine
	stdout io.Writer
	stderr io.Writer

	mode  byte
	cmd   *exec.Cmd
	stdin io.WriteCloser
	live  byte
	exit  byte
}

// NewConsoleDevice attaches the console device to slot 0x1.
func NewConsoleDevice(m *Machine, stdout, stderr io.Writer) *ConsoleDevice {
	cd := &ConsoleDevice{m: m, stdout: stdout, stderr: stderr}
	m.AttachDevice(0x1, cd)
	m.MarkWritable(ConsoleWrite)
	m.MarkWritable(ConsoleError)
	m.MarkWritable(ConsoleCmdExec)
	m.MarkReadable(ConsoleCmdLive)
	m.MarkReadable(ConsoleCmdExit)
	return cd
}

func (cd *ConsoleDevice) DEI(m *Machine, port byte) byte {
	switch port {
	case ConsoleCmdLive, ConsoleCmdExit:
		cd.pollChild()
	}
	return m.dev[port]
}

func (cd *ConsoleDevice) DEO(m *Machine, port byte, v byte) {
	switch port {
	case ConsoleWrite:
		_, _ = cd.stdout.Write([]byte{v})
	case ConsoleError:
		_, _ = cd.stderr.Write([]byte{v})
	case ConsoleCmdExec:
		cd.startChild()
	}
}

// ConsoleInput delivers one byte of console input: it stores the byte
// and its type tag, then calls Eval at the console vector. Returns
// whatever Eval returns.
func (m *Machine) ConsoleInput(b byte, typ byte) bool {
	m.dev[ConsoleRead] = b
	m.dev[ConsoleType] = typ
	vector := uint16(m.dev[ConsoleVector])<<8 | uint16(m.dev[ConsoleVector+1])
	return m.Eval(vector)
}

// ConsoleListen delivers each argument byte-by-byte with arg/eoa/end
// tags, one argument at a time, the last one tagged end instead of
// eoa.
func (m *Machine) ConsoleListen(args []string) {
	for i, arg := range args {
		for _, c := range []byte(arg) {
			m.ConsoleInput(c, ConsoleTypeArg)
		}
		typ := byte(ConsoleTypeEOA)
		if i == len(args)-1 {
			typ = ConsoleTypeEnd
		}
		m.ConsoleInput('\n', typ)
	}
}

func (cd *ConsoleDevice) startChild() {
	cd.killChild()
	cd.mode = cd.m.dev[ConsoleCmdMode]
	if cd.mode&0x08 != 0 {
		cd.m.dev[ConsoleCmdLive] = 0
		cd.m.dev[ConsoleCmdExit] = 0
		return
	}

	addr := uint16(cd.m.dev[ConsoleCmdAddr])<<8 | uint16(cd.m.dev[ConsoleCmdAddr+1])
	command := readCString(cd.m.Ram(), addr)

	cmd := exec.Command("/bin/sh", "-c", command)
	if cd.mode&0x01 != 0 {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			cd.m.dev[ConsoleCmdLive], cd.m.dev[ConsoleCmdExit] = 0xff, 0xff
			return
		}
		cd.stdin = stdin
	}
	if cd.mode&0x02 != 0 {
		cmd.Stdout = cd.stdout
	}
	if cd.mode&0x04 != 0 {
		cmd.Stderr = cd.stderr
	}
	if err := cmd.Start(); err != nil {
		cd.m.dev[ConsoleCmdLive], cd.m.dev[ConsoleCmdExit] = 0xff, 0xff
		return
	}
	cd.cmd = cmd
	cd.m.dev[ConsoleCmdLive] = 0x01
	cd.m.dev[ConsoleCmdExit] = 0x00
}

func (cd *ConsoleDevice) pollChild() {
	if cd.cmd == nil || cd.cmd.Process == nil {
		return
	}
	var ws syscall.WaitStatus
	pid, err := syscall.Wait4(cd.cmd.Process.Pid, &ws, syscall.WNOHANG, nil)
	if err != nil || pid == 0 {
		cd.m.dev[ConsoleCmdLive] = 0x01
		cd.m.dev[ConsoleCmdExit] = 0x00
		return
	}
	cd.m.dev[ConsoleCmdLive] = 0xff
	cd.m.dev[ConsoleCmdExit] = byte(ws.ExitStatus())
	cd.cleanupChild()
}

func (cd *ConsoleDevice) killChild() {
	if cd.cmd == nil || cd.cmd.Process == nil {
		return
	}
	_ = cd.cmd.Process.Kill()
	_, _ = cd.cmd.Process.Wait()
	cd.m.dev[ConsoleCmdLive] = 0xff
	cd.cleanupChild()
}

func (cd *ConsoleDevice) cleanupChild() {
	if cd.stdin != nil {
		_ = cd.stdin.Close()
		cd.stdin = nil
	}
	cd.cmd = nil
}

func readCString(ram *[RAMPageSize]byte, addr uint16) string {
	end := addr
	for end < RAMPageSize-1 && ram[end] != 0 {
		end++
	}
	return string(ram[addr:end])
}

// Close releases the console device's subprocess, if any.
func (cd *ConsoleDevice) Close() {
	cd.killChild()
}
