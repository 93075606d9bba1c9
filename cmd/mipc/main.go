// Package main provides the entry point for mipc: it compiles a small
// "+"/"-" integer expression straight to an assembled image, chaining
// the compiler and assembler stages of the toolchain.
package main

import (
	"flag"
	"fmt"
	"os"

	env "github.com/xyproto/env/v2"

	"github.com/sarchlab/mimi/asm"
	"github.com/sarchlab/mimi/compiler"
)

var (
	bigEndian = flag.Bool("b", env.Bool("MIMI_BIG_ENDIAN"), "write the image in big-endian byte order")
	output    = flag.String("o", env.Str("MIMI_OUTPUT", "a.img"), "output image path")
	printAsm  = flag.Bool("S", false, "print the generated assembly instead of assembling it")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: mipc [-b] [-o out] [-S] <expression>\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	text, err := compiler.Compile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mipc: %v\n", err)
		os.Exit(1)
	}

	if *printAsm {
		fmt.Print(text)
		return
	}

	layout, err := asm.Assemble(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mipc: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mipc: failed to create %q: %v\n", *output, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := asm.Write(f, layout, *bigEndian); err != nil {
		fmt.Fprintf(os.Stderr, "mipc: %v\n", err)
		os.Exit(1)
	}
}
