// Package compiler translates a small "+"/"-" integer expression
// language into the assembly text the asm package accepts. It exists
// to give the toolchain an end-to-end "source expression to printed
// result" path (§6.4) alongside hand-written assembly.
package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// term is a single signed operand of the expression, e.g. "+2" or "-5".
type term struct {
	value int32
}

// Compile lexes expr as a sum of signed integer literals and emits
// MIPS-subset assembly text that pushes each term onto the stack,
// pops and accumulates them, and prints the result via the standard
// single-syscall convention.
func Compile(expr string) (string, error) {
	terms, err := lexTerms(expr)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(".text\n")
	b.WriteString(".globl main\n")
	b.WriteString("main:\n")

	for _, t := range terms {
		fmt.Fprintf(&b, "\taddi $t0, $zero, %d\n", t.value)
		b.WriteString("\taddi $sp, $sp, -4\n")
		b.WriteString("\tsw $t0, 0($sp)\n")
	}

	b.WriteString("\taddi $t0, $zero, 0\n")
	for range terms {
		b.WriteString("\tlw $t1, 0($sp)\n")
		b.WriteString("\taddi $sp, $sp, 4\n")
		b.WriteString("\taddu $t0, $t0, $t1\n")
	}

	b.WriteString("\tor $a0, $zero, $t0\n")
	b.WriteString("\taddiu $v0, $zero, 1\n") // ori has no dedicated opcode in this subset; addiu is its stand-in
	b.WriteString("\tsyscall\n")
	b.WriteString("\tjr $ra\n")

	return b.String(), nil
}

// lexTerms splits expr into its signed integer terms. The grammar is
// deliberately tiny: digits, optional leading '-', and '+'/'-' joining
// subsequent terms. Whitespace is ignored.
func lexTerms(expr string) ([]term, error) {
	expr = strings.ReplaceAll(expr, " ", "")
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	var terms []term
	sign := int32(1)
	i := 0
	sawDigitSinceSign := false

	for i < len(expr) {
		c := expr[i]
		switch {
		case c == '+':
			if !sawDigitSinceSign {
				return nil, fmt.Errorf("unexpected %q at position %d", c, i)
			}
			sign = 1
			sawDigitSinceSign = false
			i++
		case c == '-':
			if !sawDigitSinceSign && len(terms) > 0 {
				return nil, fmt.Errorf("unexpected %q at position %d", c, i)
			}
			sign = -1
			sawDigitSinceSign = false
			i++
		case c >= '0' && c <= '9':
			start := i
			for i < len(expr) && expr[i] >= '0' && expr[i] <= '9' {
				i++
			}
			n, err := strconv.Atoi(expr[start:i])
			if err != nil {
				return nil, fmt.Errorf("invalid integer literal %q: %w", expr[start:i], err)
			}
			terms = append(terms, term{value: sign * int32(n)})
			sawDigitSinceSign = true
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
		}
	}

	if !sawDigitSinceSign {
		return nil, fmt.Errorf("expression %q ends with a dangling operator", expr)
	}

	return terms, nil
}
