package emu

// LoadStoreUnit implements the MIPS-subset lw/sw instructions. Memory
// is word-addressed (§3 "word-addressed memory I/O"): the byte offset
// carried by the instruction's immediate is divided by 4 before
// indexing, flooring non-multiple-of-4 offsets (§9).
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, memory: memory}
}

// Lw performs rt = mem[reg[rs] + floor(im/4)].
func (lsu *LoadStoreUnit) Lw(rt, rs, im int32) {
	addr := lsu.regFile.ReadReg(rs) + im>>2
	lsu.regFile.WriteReg(rt, lsu.memory.Read(addr))
}

// Sw performs mem[reg[rs] + floor(im/4)] = reg[rt].
func (lsu *LoadStoreUnit) Sw(rt, rs, im int32) {
	addr := lsu.regFile.ReadReg(rs) + im>>2
	lsu.memory.Write(addr, lsu.regFile.ReadReg(rt))
}
