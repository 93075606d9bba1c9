// Package main provides the entry point for mips-emulator: it loads an
// assembled image and runs it, printing whatever the program writes to
// stdout via the syscall convention and exiting with the final value of
// register 1 ($at).
package main

import (
	"flag"
	"fmt"
	"os"

	env "github.com/xyproto/env/v2"

	"github.com/sarchlab/mimi/emu"
	"github.com/sarchlab/mimi/loader"
)

var trace = flag.Bool("trace", env.Bool("MIPS_EMULATOR_TRACE"), "dump every register after each step")

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: mips-emulator [-trace] <file.img>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	prog, err := loader.Load(flag.Arg(0), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mips-emulator: %v\n", err)
		os.Exit(1)
	}

	opts := []emu.Option{emu.WithStdout(os.Stdout)}
	if *trace {
		opts = append(opts, emu.WithTrace(os.Stderr))
	}
	e := emu.NewEmulator(opts...)
	e.LoadImage(prog.Image)

	if err := e.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "mips-emulator: %v\n", err)
		os.Exit(1)
	}

	os.Exit(int(e.RegFile().ReadReg(1)))
}
