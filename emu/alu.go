package emu

// ALU implements the MIPS-subset arithmetic, logic, shift, and
// multiply/divide operations. All arithmetic wraps on 32-bit signed
// overflow, matching host two's-complement semantics (§8 "Two's-
// complement wrap").
type ALU struct {
	regFile *RegFile
}

// NewALU creates an ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// AddImm performs addi/addiu/lui: rt = rs + im. The three mnemonics
// share one encoding shape in this subset (§4.4 "lui ... same as addi
// in this subset").
func (a *ALU) AddImm(rt, rs, im int32) {
	a.regFile.WriteReg(rt, a.regFile.ReadReg(rs)+im)
}

// Addu performs rd = rs + rt.
func (a *ALU) Addu(rd, rs, rt int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)+a.regFile.ReadReg(rt))
}

// Subu performs rd = rs - rt.
func (a *ALU) Subu(rd, rs, rt int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)-a.regFile.ReadReg(rt))
}

// And performs rd = rs & rt.
func (a *ALU) And(rd, rs, rt int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)&a.regFile.ReadReg(rt))
}

// Or performs rd = rs | rt.
func (a *ALU) Or(rd, rs, rt int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs)|a.regFile.ReadReg(rt))
}

// Slt performs rd = 1 if rs < rt (signed) else 0.
func (a *ALU) Slt(rd, rs, rt int32) {
	if a.regFile.ReadReg(rs) < a.regFile.ReadReg(rt) {
		a.regFile.WriteReg(rd, 1)
	} else {
		a.regFile.WriteReg(rd, 0)
	}
}

// Sll performs rd = rt << sh (logical).
func (a *ALU) Sll(rd, rt, sh int32) {
	a.regFile.WriteReg(rd, int32(uint32(a.regFile.ReadReg(rt))<<uint32(sh)))
}

// Srl performs rd = rt >> sh (logical; §4.4 "arithmetic right-shift is
// out of scope").
func (a *ALU) Srl(rd, rt, sh int32) {
	a.regFile.WriteReg(rd, int32(uint32(a.regFile.ReadReg(rt))>>uint32(sh)))
}

// Mult computes the signed 64-bit product of rs*rt and writes the low
// word to LO and the high word to HI.
func (a *ALU) Mult(rs, rt int32) {
	product := int64(a.regFile.ReadReg(rs)) * int64(a.regFile.ReadReg(rt))
	a.regFile.SetHILO(int32(product>>32), int32(product))
}

// Multu computes the unsigned 64-bit product of rs*rt and writes the
// low word to LO and the high word to HI.
func (a *ALU) Multu(rs, rt int32) {
	product := uint64(uint32(a.regFile.ReadReg(rs))) * uint64(uint32(a.regFile.ReadReg(rt)))
	a.regFile.SetHILO(int32(product>>32), int32(product))
}

// Div computes the signed quotient of rs/rt into LO and the remainder
// into HI. Division by zero sets both to 0 rather than trapping the
// host process.
func (a *ALU) Div(rs, rt int32) {
	divisor := a.regFile.ReadReg(rt)
	if divisor == 0 {
		a.regFile.SetHILO(0, 0)
		return
	}
	dividend := a.regFile.ReadReg(rs)
	a.regFile.SetHILO(dividend%divisor, dividend/divisor)
}

// Divu computes the unsigned quotient of rs/rt into LO and the
// remainder into HI, with the same by-zero convention as Div.
func (a *ALU) Divu(rs, rt int32) {
	divisor := uint32(a.regFile.ReadReg(rt))
	if divisor == 0 {
		a.regFile.SetHILO(0, 0)
		return
	}
	dividend := uint32(a.regFile.ReadReg(rs))
	a.regFile.SetHILO(int32(dividend%divisor), int32(dividend/divisor))
}

// Mfhi performs rd = HI.
func (a *ALU) Mfhi(rd int32) {
	a.regFile.WriteReg(rd, a.regFile.HI())
}

// Mflo performs rd = LO.
func (a *ALU) Mflo(rd int32) {
	a.regFile.WriteReg(rd, a.regFile.LO())
}
