// Package asm implements the two-stage MIPS-subset assembler: parsing
// assembly source into insts.Instruction records, laying out sections
// and resolving labels into a symbol table, and emitting a flat image
// of 32-bit words ready for the emulator's loader.
package asm

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Assemble parses and lays out a complete assembly source file,
// returning the resolved Layout. This is the entry point cmd/mimi
// drives.
func Assemble(source string) (*Layout, error) {
	items, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return BuildLayout(items)
}

// Image renders a Layout to the flat word sequence a Write call or the
// emulator's in-memory loader expects: the 3-word header followed by
// the body.
func (l *Layout) Image() []int32 {
	img := make([]int32, 0, headerSize+len(l.Words))
	img = append(img, l.EntryPoint, l.StartText, l.StartData)
	img = append(img, l.Words...)
	return img
}

// Write serializes the layout's image as 32-bit words to w, in the
// requested byte order. bigEndian selects big-endian output; the
// default, and what the emulator's loader expects, is little-endian.
func Write(w io.Writer, l *Layout, bigEndian bool) error {
	order := binary.ByteOrder(binary.LittleEndian)
	if bigEndian {
		order = binary.BigEndian
	}

	for _, word := range l.Image() {
		if err := binary.Write(w, order, word); err != nil {
			return fmt.Errorf("writing image word: %w", err)
		}
	}
	return nil
}
