package emu

// BranchUnit implements the MIPS-subset control-flow instructions:
// beq/bne (conditional, absolute word target already resolved by the
// assembler), j (absolute), and jr (register-indirect).
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Beq branches to target (an absolute word address) if reg[rs] == reg[rt];
// otherwise it advances PC by one word.
func (b *BranchUnit) Beq(rs, rt, target int32) {
	if b.regFile.ReadReg(rs) == b.regFile.ReadReg(rt) {
		b.regFile.PC = target
		return
	}
	b.regFile.PC++
}

// Bne branches to target if reg[rs] != reg[rt]; otherwise it advances
// PC by one word.
func (b *BranchUnit) Bne(rs, rt, target int32) {
	if b.regFile.ReadReg(rs) != b.regFile.ReadReg(rt) {
		b.regFile.PC = target
		return
	}
	b.regFile.PC++
}

// J performs an unconditional jump to an absolute word address.
func (b *BranchUnit) J(target int32) {
	b.regFile.PC = target
}

// Jr jumps to the address held in register rs.
func (b *BranchUnit) Jr(rs int32) {
	b.regFile.PC = b.regFile.ReadReg(rs)
}
