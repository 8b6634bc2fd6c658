// main.go - entry point: parses the command line, boots a rom, and
// runs the machine until it halts.

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"time"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	rom, err := loadROM(cfg.romPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, err := NewEbitenScreenOutput()
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting display: %v\n", err)
		os.Exit(1)
	}

	hl := NewHostLoop(out, os.Stdout, os.Stderr, "", "")
	defer hl.Close()

	if err := hl.Machine().Boot(rom); err != nil {
		fmt.Fprintf(os.Stderr, "booting rom: %v\n", err)
		os.Exit(1)
	}

	if err := hl.StartAudio(audioSampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "starting audio: %v\n", err)
	}

	go func() {
		if err := hl.StartStdin(); err != nil {
			fmt.Fprintf(os.Stderr, "stdin: %v\n", err)
		}
	}()

	m := hl.Machine()
	m.Eval(PageProgram)
	m.ConsoleListen(cfg.args)

	for !m.Halted() {
		time.Sleep(16 * time.Millisecond)
	}
	os.Exit(int(m.ExitCode()))
}
