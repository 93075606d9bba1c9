// Package main provides the entry point for mimi, the MIPS-subset
// assembler: it turns assembly source into an image the
// mips-emulator command can run.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	env "github.com/xyproto/env/v2"

	"github.com/sarchlab/mimi/asm"
)

var (
	bigEndian  = flag.Bool("b", env.Bool("MIMI_BIG_ENDIAN"), "write the image in big-endian byte order")
	output     = flag.String("o", env.Str("MIMI_OUTPUT", "a.img"), "output image path")
	printWords = flag.Bool("s", false, "also print each emitted word as 32 ASCII bits, in 4 groups of 8")
)

func init() {
	flag.BoolVar(bigEndian, "big-endian", *bigEndian, "alias for -b")
	flag.StringVar(output, "output", *output, "alias for -o")
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mimi: failed to read %q: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	layout, err := asm.Assemble(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mimi: %v\n", err)
		os.Exit(1)
	}

	if *printWords {
		printBits(layout.Image())
	}

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mimi: failed to create %q: %v\n", *output, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := asm.Write(f, layout, *bigEndian); err != nil {
		fmt.Fprintf(os.Stderr, "mimi: %v\n", err)
		os.Exit(1)
	}
}

// printBits renders each word as 32 ASCII bits in 4 groups of 8,
// matching the -s flag's debug output (§6.1).
func printBits(words []int32) {
	for _, word := range words {
		bits := fmt.Sprintf("%032b", uint32(word))
		groups := make([]string, 0, 4)
		for i := 0; i < 32; i += 8 {
			groups = append(groups, bits[i:i+8])
		}
		fmt.Println(strings.Join(groups, " "))
	}
}
