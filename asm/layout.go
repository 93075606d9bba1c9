package asm

import (
	"fmt"

	"github.com/sarchlab/mimi/insts"
)

// headerSize is the word count of the file header (§3): entry_point,
// start_text, start_data.
const headerSize = 3

// Layout is the result of section layout and symbol resolution: the
// three header words plus the fully encoded body, ready to write to an
// image.
type Layout struct {
	EntryPoint int32
	StartText  int32
	StartData  int32
	Symtab     map[string]int32
	Words      []int32
}

// BuildLayout runs the assembler's section-layout and symbol-resolution
// pass over a parsed item stream (§4.3). start_data is start_text plus
// the total instruction-word count across every .text-tagged segment;
// words are then laid out and labels resolved by walking the whole
// item stream once in source order, text and data directives
// interleaved exactly as written. For the common case of a single
// .text segment followed by a single .data segment this matches the
// header value exactly; the "last segment wins" framing for multiple
// .text/.data segments only matters for that pathological case, which
// is a deliberately preserved oddity rather than a behavior to nail
// down further.
func BuildLayout(items []insts.Instruction) (*Layout, error) {
	startText := int32(headerSize)
	startData := startText + textWordCount(items)

	symtab, words, pending, err := layoutWords(items, startText)
	if err != nil {
		return nil, err
	}

	for _, p := range pending {
		word, ok, err := insts.Encode(p.inst, symtab)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("unresolved operand in instruction at word %d", p.pos)
		}
		words[p.pos] = word
	}

	return &Layout{
		EntryPoint: startText,
		StartText:  startText,
		StartData:  startData,
		Symtab:     symtab,
		Words:      words,
	}, nil
}

// textWordCount sums the emitted instruction word count across every
// .text-tagged segment in the source (§4.3 Pass 1's start_data
// formula), not just the most recent one. A program with no leading
// .text directive is implicitly in the text segment.
func textWordCount(items []insts.Instruction) int32 {
	var total int32
	inText := true

	for _, it := range items {
		if it.Format == insts.FormatDirective {
			switch it.Directive {
			case insts.DirText:
				inText = true
			case insts.DirData:
				inText = false
			}
			continue
		}
		if inText && it.IsEmitting() {
			total++
		}
	}
	return total
}

type pendingEncode struct {
	pos  int
	inst insts.Instruction
}

// layoutWords walks the item stream once, in source order, assigning
// every label definition its word address and emitting literal words
// for .word/.space directives immediately. R/I/J instructions cannot be
// encoded yet because later labels may still be unresolved, so their
// word slots are left as placeholders and returned in pending for a
// second pass once the whole symbol table is known.
func layoutWords(items []insts.Instruction, startText int32) (map[string]int32, []int32, []pendingEncode, error) {
	symtab := make(map[string]int32)
	var words []int32
	var pending []pendingEncode
	addr := startText

	for _, it := range items {
		switch it.Format {
		case insts.FormatLabelDef:
			if _, exists := symtab[it.Name]; exists {
				return nil, nil, nil, fmt.Errorf("duplicate label %q", it.Name)
			}
			symtab[it.Name] = addr

		case insts.FormatDirective:
			switch it.Directive {
			case insts.DirSpace:
				n := it.SpaceLen / 4
				for i := int32(0); i < n; i++ {
					words = append(words, 0)
				}
				addr += n
			case insts.DirWord:
				words = append(words, it.Words...)
				addr += int32(len(it.Words))
			case insts.DirText, insts.DirData, insts.DirGlobl:
				// section markers and export lists carry no words
			}

		case insts.FormatR, insts.FormatI, insts.FormatJ:
			pending = append(pending, pendingEncode{pos: len(words), inst: it})
			words = append(words, 0)
			addr++
		}
	}

	return symtab, words, pending, nil
}
