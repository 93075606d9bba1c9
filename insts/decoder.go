package insts

import "fmt"

// Encode packs a fully formed Instruction into its 32-bit word. Any
// Label operand is resolved through symtab first; a nil symtab is only
// valid when the instruction carries no labels. LabelDef and directive
// items do not encode to a word and return ok=false.
func Encode(inst Instruction, symtab map[string]int32) (word int32, ok bool, err error) {
	switch inst.Format {
	case FormatR:
		rs, err := resolve(inst.Rs, symtab)
		if err != nil {
			return 0, false, err
		}
		rt, err := resolve(inst.Rt, symtab)
		if err != nil {
			return 0, false, err
		}
		rd, err := resolve(inst.Rd, symtab)
		if err != nil {
			return 0, false, err
		}
		word := int32(uint32(inst.Op)&0x3f)<<26 |
			int32(uint32(rs)&0x1f)<<21 |
			int32(uint32(rt)&0x1f)<<16 |
			int32(uint32(rd)&0x1f)<<11 |
			int32(uint32(inst.Sh)&0x1f)<<6 |
			int32(uint32(inst.Fc) & 0x3f)
		return word, true, nil

	case FormatI:
		rs, err := resolve(inst.Rs, symtab)
		if err != nil {
			return 0, false, err
		}
		rt, err := resolve(inst.Rt, symtab)
		if err != nil {
			return 0, false, err
		}
		im, err := resolve(inst.Im, symtab)
		if err != nil {
			return 0, false, err
		}
		word := int32(uint32(inst.Op)&0x3f)<<26 |
			int32(uint32(rs)&0x1f)<<21 |
			int32(uint32(rt)&0x1f)<<16 |
			int32(uint32(im) & 0xffff)
		return word, true, nil

	case FormatJ:
		ad, err := resolve(inst.Ad, symtab)
		if err != nil {
			return 0, false, err
		}
		word := int32(uint32(inst.Op)&0x3f)<<26 | int32(uint32(ad)&0x3ffffff)
		return word, true, nil

	default:
		return 0, false, nil
	}
}

// resolve turns an Operand into its concrete 32-bit value, looking up
// labels in symtab. Register operands return the register index.
func resolve(op Operand, symtab map[string]int32) (int32, error) {
	switch op.Kind {
	case KindRegister:
		return op.Reg, nil
	case KindConstant:
		return op.Value, nil
	case KindLabel:
		if symtab == nil {
			return 0, fmt.Errorf("unresolved label %q: no symbol table supplied", op.Label)
		}
		v, ok := symtab[op.Label]
		if !ok {
			return 0, fmt.Errorf("undefined label %q", op.Label)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("malformed operand")
	}
}

// Decode unpacks a 32-bit instruction word into its R/I/J record. The
// result never carries a Label operand: decoded operands are always
// Register or Constant.
func Decode(word int32) (Instruction, error) {
	w := uint32(word)
	op := Opcode((w >> 26) & 0x3f)

	if op == OpSpecial {
		return decodeR(w, op), nil
	}
	if op == OpJ {
		return decodeJ(w, op), nil
	}
	return decodeI(w, op), nil
}

func decodeR(w uint32, op Opcode) Instruction {
	rs := int32((w >> 21) & 0x1f)
	rt := int32((w >> 16) & 0x1f)
	rd := int32((w >> 11) & 0x1f)
	sh := int32((w >> 6) & 0x1f)
	fc := int32(w & 0x3f)
	return Instruction{
		Format: FormatR,
		Op:     op,
		Rs:     Reg(rs),
		Rt:     Reg(rt),
		Rd:     Reg(rd),
		Sh:     sh,
		Fc:     fc,
	}
}

func decodeI(w uint32, op Opcode) Instruction {
	rs := int32((w >> 21) & 0x1f)
	rt := int32((w >> 16) & 0x1f)
	im := int32(w & 0xffff)
	if im&0x8000 != 0 {
		im |= ^int32(0xffff) // sign-extend bit 15 through bit 31
	}
	return Instruction{
		Format: FormatI,
		Op:     op,
		Rs:     Reg(rs),
		Rt:     Reg(rt),
		Im:     Const(im),
	}
}

func decodeJ(w uint32, op Opcode) Instruction {
	ad := int32(w & 0x3ffffff)
	return Instruction{
		Format: FormatJ,
		Op:     op,
		Ad:     Const(ad),
	}
}
