// rom.go - ROM loading and command line handling

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

/*
The CLI contract matches uxncli/uxnemu's own argument handling: a rom
path followed by any number of arguments that get fed to the console
device as argv, plus a -v flag that prints a version string and exits
without loading anything.
*/

package main

import (
	"flag"
	"fmt"
	"os"
)

const version = "uxnvm 1.0"

type cliConfig struct {
	romPath string
	args    []string
	verbose bool
}

func parseArgs(argv []string) (cliConfig, error) {
	fs := flag.NewFlagSet("uxnvm", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)
	v := fs.Bool("v", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(os.Stdout, "usage: uxnvm [-v] rom-file [args...]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		return cliConfig{}, err
	}
	if *v {
		fmt.Println(version)
		os.Exit(0)
	}
	rest := fs.Args()
	if len(rest) < 1 {
		fs.Usage()
		os.Exit(1)
	}
	return cliConfig{romPath: rest[0], args: rest[1:], verbose: *v}, nil
}

// loadROM reads a rom file into memory. Real Varvara roms start at
// PageProgram (0x0100); anything beyond RAMPageSize-PageProgram bytes
// cannot fit in the first page and is rejected by Machine.Boot itself.
func loadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom %s: %w", path, err)
	}
	return data, nil
}
