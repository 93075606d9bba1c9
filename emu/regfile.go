// Package emu provides functional MIPS-subset emulation.
package emu

import "github.com/sarchlab/mimi/insts"

// RegSP is the $sp ABI register index (§4.2's register-name table),
// the only register the emulator itself initializes at boot rather
// than leaving zeroed (see StackTop).
const RegSP = 29

// StackTop is the word index Emulator.LoadImage seeds $sp with: the
// top word of memory, leaving the region between the loaded image and
// the top of memory free for the compiler's push/pop stack discipline
// (§6.4) to grow into downward.
const StackTop = MemorySize - 1

// RegFile holds the MIPS-subset register state: 32 general-purpose
// registers (R[0] hardwired to zero), the HI/LO multiply/divide result
// registers, and the program counter.
type RegFile struct {
	// R holds the 34 registers: indices 0-31 are general purpose,
	// insts.RegHI and insts.RegLO hold 64-bit multiply/divide results.
	R [insts.NumRegs]int32

	// PC is the program counter, a word index into memory (not a byte
	// address): incrementing PC by 1 advances to the next instruction.
	PC int32
}

// ReadReg reads a register value. Register 0 always reads as 0.
func (r *RegFile) ReadReg(reg int32) int32 {
	if reg == insts.RegZero {
		return 0
	}
	return r.R[reg]
}

// WriteReg writes a value to a register. Writes to register 0 are
// silently discarded, matching the hardwired-zero convention.
func (r *RegFile) WriteReg(reg int32, value int32) {
	if reg == insts.RegZero {
		return
	}
	r.R[reg] = value
}

// HI reads the HI register (high word of mult/div results).
func (r *RegFile) HI() int32 { return r.R[insts.RegHI] }

// LO reads the LO register (low word of mult/div results).
func (r *RegFile) LO() int32 { return r.R[insts.RegLO] }

// SetHILO writes both halves of a multiply/divide result in one call.
func (r *RegFile) SetHILO(hi, lo int32) {
	r.R[insts.RegHI] = hi
	r.R[insts.RegLO] = lo
}

// Reset clears every register, including PC, to zero.
func (r *RegFile) Reset() {
	for i := range r.R {
		r.R[i] = 0
	}
	r.PC = 0
}
