package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCString(ram *[RAMPageSize]byte, at uint16, s string) {
	copy(ram[at:], s)
	ram[at+uint16(len(s))] = 0
}

func TestFileDeviceWriteThenReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := NewMachine()
	if err := m.Boot(nil); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	fd := NewFileDevice(m, 0xa, dir)
	ram := m.Ram()

	writeCString(ram, 0x2000, "out.txt")
	m.dev[fd.base+fileName] = 0x20
	m.dev[fd.base+fileName+1] = 0x00

	payload := []byte("hello file")
	copy(ram[0x3000:], payload)
	m.dev[fd.base+fileWrite] = 0x30
	m.dev[fd.base+fileWrite+1] = 0x00
	m.dev[fd.base+fileLength] = byte(len(payload) >> 8)
	m.dev[fd.base+fileLength+1] = byte(len(payload))

	m.deo(fd.base+fileWrite+1, 0x00) // triggers doWrite

	n := uint16(m.dev[fd.base+fileSucc])<<8 | uint16(m.dev[fd.base+fileSucc+1])
	if int(n) != len(payload) {
		t.Fatalf("write reported %d bytes, want %d", n, len(payload))
	}
	onDisk, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(onDisk) != string(payload) {
		t.Fatalf("on-disk content = %q, want %q", onDisk, payload)
	}

	m.dev[fd.base+fileRead] = 0x40
	m.dev[fd.base+fileRead+1] = 0x00
	m.deo(fd.base+fileRead+1, 0x00) // triggers doRead

	n = uint16(m.dev[fd.base+fileSucc])<<8 | uint16(m.dev[fd.base+fileSucc+1])
	if int(n) != len(payload) {
		t.Fatalf("read reported %d bytes, want %d", n, len(payload))
	}
	if string(ram[0x4000:0x4000+len(payload)]) != string(payload) {
		t.Fatalf("read buffer = %q, want %q", ram[0x4000:0x4000+len(payload)], payload)
	}
}

func TestFileDeviceAppendMode(t *testing.T) {
	dir := t.TempDir()
	m := NewMachine()
	if err := m.Boot(nil); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	fd := NewFileDevice(m, 0xa, dir)
	ram := m.Ram()

	writeCString(ram, 0x2000, "log.txt")
	m.dev[fd.base+fileName] = 0x20
	m.dev[fd.base+fileName+1] = 0x00
	m.dev[fd.base+fileLength] = 0
	m.dev[fd.base+fileLength+1] = 3
	copy(ram[0x3000:], "abc")
	m.dev[fd.base+fileWrite] = 0x30
	m.dev[fd.base+fileWrite+1] = 0x00
	m.deo(fd.base+fileWrite+1, 0x00)

	m.dev[fd.base+fileAppend] = 1
	copy(ram[0x3000:], "def")
	m.deo(fd.base+fileWrite+1, 0x00)

	onDisk, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(onDisk) != "abcdef" {
		t.Fatalf("on-disk content = %q, want %q", onDisk, "abcdef")
	}
}

func TestFileDeviceRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	secret := t.TempDir()
	if err := os.WriteFile(filepath.Join(secret, "secret.txt"), []byte("nope"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewMachine()
	if err := m.Boot(nil); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	fd := NewFileDevice(m, 0xa, dir)
	ram := m.Ram()

	rel, err := filepath.Rel(dir, filepath.Join(secret, "secret.txt"))
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	writeCString(ram, 0x2000, rel)
	m.dev[fd.base+fileName] = 0x20
	m.dev[fd.base+fileName+1] = 0x00
	m.dev[fd.base+fileLength] = 0
	m.dev[fd.base+fileLength+1] = 4
	m.dev[fd.base+fileRead] = 0x40
	m.dev[fd.base+fileRead+1] = 0x00

	m.deo(fd.base+fileRead+1, 0x00)

	n := uint16(m.dev[fd.base+fileSucc])<<8 | uint16(m.dev[fd.base+fileSucc+1])
	if n != 0 {
		t.Fatalf("read past sandbox reported %d bytes transferred, want 0", n)
	}
}

func TestFileDeviceStatReportsExistenceAtBufferAddress(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "present.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewMachine()
	if err := m.Boot(nil); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	fd := NewFileDevice(m, 0xa, dir)
	ram := m.Ram()

	writeCString(ram, 0x2000, "present.txt")
	m.dev[fd.base+fileName] = 0x20
	m.dev[fd.base+fileName+1] = 0x00
	m.dev[fd.base+fileStat] = 0x50
	m.dev[fd.base+fileStat+1] = 0x00

	m.deo(fd.base+fileStat+1, 0x00) // triggers doStat

	if ram[0x5000] != 1 {
		t.Fatalf("stat buffer = %d, want 1 for an existing file", ram[0x5000])
	}

	writeCString(ram, 0x2000, "missing.txt")
	m.deo(fd.base+fileStat+1, 0x00)

	if ram[0x5000] != 0 {
		t.Fatalf("stat buffer = %d, want 0 for a missing file", ram[0x5000])
	}
}

func TestFileDeviceDelete(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewMachine()
	if err := m.Boot(nil); err != nil {
		t.Fatalf("Boot: %v", err)
	}
	fd := NewFileDevice(m, 0xa, dir)
	ram := m.Ram()
	writeCString(ram, 0x2000, "gone.txt")
	m.dev[fd.base+fileName] = 0x20
	m.dev[fd.base+fileName+1] = 0x00

	m.deo(fd.base+fileDelete, 0x01)

	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("file still exists after delete, err = %v", err)
	}
}
