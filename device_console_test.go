//go:build !windows

package main

import (
	"bytes"
	"testing"
)

// ConsoleListen must tag every argument byte as arg and follow each
// argument with a separator tagged eoa, except after the last argument,
// whose separator is tagged end.
func TestConsoleListenTagsLastArgumentAsEnd(t *testing.T) {
	m := NewMachine()
	if err := m.Boot(nil); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	var stdout, stderr bytes.Buffer
	NewConsoleDevice(m, &stdout, &stderr)

	// routine at 0x200: push the type tag of each delivery onto the
	// working stack.
	routine := []byte{
		0x80, ConsoleType, 0x16, // LIT ConsoleType; DEI -> pushes type tag
		0x00, // BRK
	}
	copy(m.Ram()[0x200:], routine)
	m.dev[ConsoleVector] = 0x02
	m.dev[ConsoleVector+1] = 0x00

	var lastType byte
	args := []string{"a", "bc"}
	for i, arg := range args {
		for _, c := range []byte(arg) {
			if !m.ConsoleInput(c, ConsoleTypeArg) {
				t.Fatalf("ConsoleInput(%q) returned false", c)
			}
			lastType = m.dev[ConsoleType]
		}
		typ := byte(ConsoleTypeEOA)
		if i == len(args)-1 {
			typ = ConsoleTypeEnd
		}
		if !m.ConsoleInput('\n', typ) {
			t.Fatal("ConsoleInput(separator) returned false")
		}
		lastType = m.dev[ConsoleType]
	}
	if lastType != ConsoleTypeEnd {
		t.Fatalf("final delivery tagged %#x, want ConsoleTypeEnd", lastType)
	}

	m.ConsoleListen(args)
	if m.dev[ConsoleType] != ConsoleTypeEnd {
		t.Fatalf("ConsoleListen's final delivery tagged %#x, want ConsoleTypeEnd", m.dev[ConsoleType])
	}
}

func TestConsoleWriteAndErrorGoToDistinctStreams(t *testing.T) {
	m := NewMachine()
	if err := m.Boot(nil); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	var stdout, stderr bytes.Buffer
	NewConsoleDevice(m, &stdout, &stderr)

	m.deo(ConsoleWrite, 'o')
	m.deo(ConsoleError, 'e')

	if stdout.String() != "o" {
		t.Fatalf("stdout = %q, want %q", stdout.String(), "o")
	}
	if stderr.String() != "e" {
		t.Fatalf("stderr = %q, want %q", stderr.String(), "e")
	}
}
