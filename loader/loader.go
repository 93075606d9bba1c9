// Package loader reads an assembled image off disk into the flat word
// slice emu.Memory.LoadImage expects.
package loader

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Program is an assembled image read from disk: the raw word sequence,
// header words included.
type Program struct {
	Image []int32
}

// Load reads the image at path and decodes it into 32-bit words using
// the given byte order. The file size must be a multiple of 4 bytes.
func Load(path string, bigEndian bool) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %q: %w", path, err)
	}
	return decode(data, bigEndian)
}

func decode(data []byte, bigEndian bool) (*Program, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("image size %d is not a multiple of 4 bytes", len(data))
	}

	order := binary.ByteOrder(binary.LittleEndian)
	if bigEndian {
		order = binary.BigEndian
	}

	words := make([]int32, len(data)/4)
	for i := range words {
		words[i] = int32(order.Uint32(data[i*4 : i*4+4]))
	}
	return &Program{Image: words}, nil
}

// EntryPoint returns the program's declared entry point (header word 0).
// It returns an error if the image is too short to carry a header.
func (p *Program) EntryPoint() (int32, error) {
	if len(p.Image) < 1 {
		return 0, fmt.Errorf("image has no header")
	}
	return p.Image[0], nil
}
