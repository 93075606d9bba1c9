package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/mimi/insts"
)

// parser is a small recursive-descent parser over the token stream
// produced by lexer.tokenize. It has no lookahead beyond one token and
// mirrors the original_source assembler's per-mnemonic parse functions,
// adapted to emit insts.Instruction values directly instead of an
// intermediate AST.
type parser struct {
	toks []token
	pos  int
	lex  *lexer
}

// Parse lexes and parses assembly source into the flat instruction/
// directive/label-definition stream that layout.go turns into an
// image. Errors are reported as "Line: <n> <remainder>" (§7).
func Parse(source string) ([]insts.Instruction, error) {
	lx := newLexer(source)
	toks, err := lx.tokenize()
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks, lex: lx}
	var items []insts.Instruction
	for p.cur().kind != tokEOF {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (p *parser) cur() token  { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) errf(line int) error {
	return fmt.Errorf("Line: %d %s", line, p.lex.lineText(line))
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.cur()
	if t.kind != kind {
		// Report the line of the item being parsed: the mismatched
		// token may already sit on a later line (or be EOF).
		line := t.line
		if p.pos > 0 {
			line = p.toks[p.pos-1].line
		}
		return token{}, p.errf(line)
	}
	return p.next(), nil
}

func (p *parser) expectComma() error {
	_, err := p.expect(tokComma)
	return err
}

func (p *parser) parseItem() (insts.Instruction, error) {
	t := p.cur()

	switch t.kind {
	case tokLabelDef:
		p.next()
		return insts.Instruction{Format: insts.FormatLabelDef, Name: t.text}, nil
	case tokDirective:
		return p.parseDirective()
	case tokIdent:
		return p.parseMnemonic()
	default:
		return insts.Instruction{}, p.errf(t.line)
	}
}

func (p *parser) parseDirective() (insts.Instruction, error) {
	t := p.next()
	switch strings.ToLower(t.text) {
	case "text":
		return insts.Instruction{Format: insts.FormatDirective, Directive: insts.DirText}, nil
	case "data":
		return insts.Instruction{Format: insts.FormatDirective, Directive: insts.DirData}, nil
	case "word":
		words, err := p.parseWordList(t.line)
		if err != nil {
			return insts.Instruction{}, err
		}
		return insts.Instruction{Format: insts.FormatDirective, Directive: insts.DirWord, Words: words}, nil
	case "space":
		n, err := p.expect(tokInt)
		if err != nil {
			return insts.Instruction{}, err
		}
		return insts.Instruction{Format: insts.FormatDirective, Directive: insts.DirSpace, SpaceLen: n.ival}, nil
	case "globl":
		names, err := p.parseIdentList(t.line)
		if err != nil {
			return insts.Instruction{}, err
		}
		return insts.Instruction{Format: insts.FormatDirective, Directive: insts.DirGlobl, Globls: names}, nil
	default:
		return insts.Instruction{}, p.errf(t.line)
	}
}

func (p *parser) parseWordList(line int) ([]int32, error) {
	var words []int32
	for {
		t, err := p.expect(tokInt)
		if err != nil {
			return nil, err
		}
		words = append(words, t.ival)
		if p.cur().kind != tokComma {
			break
		}
		p.next()
	}
	return words, nil
}

func (p *parser) parseIdentList(line int) ([]string, error) {
	var names []string
	for {
		t, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		names = append(names, t.text)
		if p.cur().kind != tokComma {
			break
		}
		p.next()
	}
	return names, nil
}

// regOperand resolves a $-prefixed register token into an
// insts.Reg operand, accepting both ABI names ($t0) and bare indices
// ($8).
func (p *parser) regOperand() (insts.Operand, error) {
	t, err := p.expect(tokReg)
	if err != nil {
		return insts.Operand{}, err
	}
	if idx, ok := registerNames[strings.ToLower(t.text)]; ok {
		return insts.Reg(idx), nil
	}
	if n, convErr := strconv.Atoi(t.text); convErr == nil {
		return insts.Reg(int32(n)), nil
	}
	return insts.Operand{}, p.errf(t.line)
}

// targetOperand resolves a jump/branch target, which is either a
// label reference or a literal word address.
func (p *parser) targetOperand() (insts.Operand, error) {
	t := p.cur()
	switch t.kind {
	case tokIdent:
		p.next()
		return insts.Lbl(t.text), nil
	case tokInt:
		p.next()
		return insts.Const(t.ival), nil
	default:
		return insts.Operand{}, p.errf(t.line)
	}
}

func (p *parser) immOperand() (insts.Operand, error) {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.next()
		return insts.Const(t.ival), nil
	case tokIdent:
		p.next()
		return insts.Lbl(t.text), nil
	default:
		return insts.Operand{}, p.errf(t.line)
	}
}

func (p *parser) parseMnemonic() (insts.Instruction, error) {
	t := p.next()
	mnemonic := strings.ToLower(t.text)

	switch mnemonic {
	case "addu", "subu", "and", "or", "slt":
		return p.parseRRR(mnemonic, t.line)
	case "sll", "srl":
		return p.parseShift(mnemonic, t.line)
	case "mult", "multu", "div", "divu":
		return p.parseRR(mnemonic, t.line)
	case "mfhi", "mflo":
		return p.parseR1(mnemonic, t.line)
	case "jr":
		rs, err := p.regOperand()
		if err != nil {
			return insts.Instruction{}, err
		}
		return insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: insts.FcJr, Rs: rs}, nil
	case "syscall":
		return insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: insts.FcSyscall}, nil
	case "addi", "addiu", "lui":
		return p.parseAddi(mnemonic, t.line)
	case "beq", "bne":
		return p.parseBranch(mnemonic, t.line)
	case "lw", "sw":
		return p.parseMem(mnemonic, t.line)
	case "j":
		ad, err := p.targetOperand()
		if err != nil {
			return insts.Instruction{}, err
		}
		return insts.Instruction{Format: insts.FormatJ, Op: insts.OpJ, Ad: ad}, nil
	default:
		return insts.Instruction{}, p.errf(t.line)
	}
}

func (p *parser) parseRRR(mnemonic string, line int) (insts.Instruction, error) {
	rd, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	rs, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	rt, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}

	var fc int32
	switch mnemonic {
	case "addu":
		fc = insts.FcAddu
	case "subu":
		fc = insts.FcSubu
	case "and":
		fc = insts.FcAnd
	case "or":
		fc = insts.FcOr
	case "slt":
		fc = insts.FcSlt
	}
	return insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: fc, Rd: rd, Rs: rs, Rt: rt}, nil
}

func (p *parser) parseShift(mnemonic string, line int) (insts.Instruction, error) {
	rd, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	rt, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	sh, err := p.expect(tokInt)
	if err != nil {
		return insts.Instruction{}, err
	}

	fc := insts.FcSll
	if mnemonic == "srl" {
		fc = insts.FcSrl
	}
	return insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: fc, Rd: rd, Rt: rt, Sh: sh.ival}, nil
}

func (p *parser) parseRR(mnemonic string, line int) (insts.Instruction, error) {
	rs, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	rt, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}

	var fc int32
	switch mnemonic {
	case "mult":
		fc = insts.FcMult
	case "multu":
		fc = insts.FcMultu
	case "div":
		fc = insts.FcDiv
	case "divu":
		fc = insts.FcDivu
	}
	return insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: fc, Rs: rs, Rt: rt}, nil
}

func (p *parser) parseR1(mnemonic string, line int) (insts.Instruction, error) {
	rd, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	fc := insts.FcMfhi
	if mnemonic == "mflo" {
		fc = insts.FcMflo
	}
	return insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: fc, Rd: rd}, nil
}

// parseAddi handles the "rt, rs, im" I-format shape shared by
// addi/addiu/lui (§4.2: lui is "rt, rs, im" like addi, not a
// two-operand upper-immediate load).
func (p *parser) parseAddi(mnemonic string, line int) (insts.Instruction, error) {
	rt, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	rs, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	im, err := p.immOperand()
	if err != nil {
		return insts.Instruction{}, err
	}

	op := insts.OpAddi
	switch mnemonic {
	case "addiu":
		op = insts.OpAddiu
	case "lui":
		op = insts.OpLui
	}
	return insts.Instruction{Format: insts.FormatI, Op: op, Rt: rt, Rs: rs, Im: im}, nil
}

func (p *parser) parseBranch(mnemonic string, line int) (insts.Instruction, error) {
	rs, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	rt, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	target, err := p.targetOperand()
	if err != nil {
		return insts.Instruction{}, err
	}

	op := insts.OpBeq
	if mnemonic == "bne" {
		op = insts.OpBne
	}
	return insts.Instruction{Format: insts.FormatI, Op: op, Rs: rs, Rt: rt, Im: target}, nil
}

// parseMem handles "lw $rt, im($rs)" / "sw $rt, im($rs)" syntax (§4.2).
func (p *parser) parseMem(mnemonic string, line int) (insts.Instruction, error) {
	rt, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if err := p.expectComma(); err != nil {
		return insts.Instruction{}, err
	}
	im, err := p.expect(tokInt)
	if err != nil {
		return insts.Instruction{}, err
	}
	if _, err := p.expect(tokLParen); err != nil {
		return insts.Instruction{}, err
	}
	rs, err := p.regOperand()
	if err != nil {
		return insts.Instruction{}, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return insts.Instruction{}, err
	}

	op := insts.OpLw
	if mnemonic == "sw" {
		op = insts.OpSw
	}
	return insts.Instruction{Format: insts.FormatI, Op: op, Rt: rt, Rs: rs, Im: insts.Const(im.ival)}, nil
}
