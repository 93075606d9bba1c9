// Package emu provides a functional emulator for the MIPS-subset ISA
// this toolchain assembles: CPU state, execution units, and a
// fetch-decode-execute loop driven by the insts package's decoder.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/mimi/insts"
)

// StepResult represents the outcome of executing a single instruction.
type StepResult struct {
	// Exited is true once the canonical clean-exit condition (PC==0
	// after a step) has been reached.
	Exited bool

	// Err is set on a decode error; the run must stop.
	Err error
}

// Emulator ties together the register file, memory, and execution
// units into the §4.4 fetch-decode-execute loop.
type Emulator struct {
	regFile *RegFile
	memory  *Memory

	alu            *ALU
	branchUnit     *BranchUnit
	lsu            *LoadStoreUnit
	syscallHandler SyscallHandler

	stdout  io.Writer
	history string

	instructionCount uint64

	trace bool
	traceW io.Writer
}

// Option configures an Emulator at construction time.
type Option func(*Emulator)

// WithStdout overrides the writer that syscall $v0==1 prints to.
func WithStdout(w io.Writer) Option {
	return func(e *Emulator) { e.stdout = w }
}

// WithSyscallHandler overrides the default syscall handler.
func WithSyscallHandler(h SyscallHandler) Option {
	return func(e *Emulator) { e.syscallHandler = h }
}

// WithTrace enables per-step instruction tracing, writing
// "pc: <32-bit binary>" lines to w.
func WithTrace(w io.Writer) Option {
	return func(e *Emulator) {
		e.trace = true
		e.traceW = w
	}
}

// NewEmulator creates an Emulator with zeroed registers and memory.
func NewEmulator(opts ...Option) *Emulator {
	regFile := &RegFile{}
	memory := NewMemory()

	e := &Emulator{
		regFile: regFile,
		memory:  memory,
		stdout:  os.Stdout,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.alu = NewALU(regFile)
	e.branchUnit = NewBranchUnit(regFile)
	e.lsu = NewLoadStoreUnit(regFile, memory)
	if e.syscallHandler == nil {
		e.syscallHandler = NewDefaultSyscallHandler(regFile, e.stdout, &e.history)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile { return e.regFile }

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory { return e.memory }

// StdoutHistory returns everything printed by syscall $v0==1 so far.
func (e *Emulator) StdoutHistory() string { return e.history }

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

// LoadImage loads an assembled image into memory and sets PC to the
// image's entry point (word 0), per §4.4 "Boot". $sp is seeded with
// StackTop: the register file otherwise boots all-zero, which would
// make the compiler's first stack push (§6.4) address a negative,
// out-of-range word.
func (e *Emulator) LoadImage(image []int32) {
	e.memory.LoadImage(image)
	e.regFile.PC = e.memory.Read(0)
	e.regFile.WriteReg(RegSP, StackTop)
}

// Reset clears memory and registers, matching §5's "reset between runs
// via explicit clear operations".
func (e *Emulator) Reset() {
	e.memory.Clear()
	e.regFile.Reset()
	e.instructionCount = 0
	e.history = ""
}

// Step executes a single instruction and reports whether the run
// should continue.
func (e *Emulator) Step() StepResult {
	word := e.memory.Read(e.regFile.PC)

	inst, err := insts.Decode(word)
	if err != nil {
		return StepResult{Err: fmt.Errorf("decode error at pc=%d: %w", e.regFile.PC, err)}
	}

	if e.trace {
		fmt.Fprintf(e.traceW, "%d: %032b\n", e.regFile.PC, uint32(word))
	}

	if err := e.execute(inst); err != nil {
		return StepResult{Err: err}
	}

	if e.trace {
		e.DumpRegisters(e.traceW)
	}

	e.instructionCount++

	if e.regFile.PC == 0 {
		return StepResult{Exited: true}
	}
	return StepResult{}
}

// Run executes instructions until the canonical exit condition (PC==0
// after a step) or a decode error. It returns the final error, if any.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Exited {
			return nil
		}
	}
}

// DumpRegisters writes every register as "$<n>: 0x<hex> | <dec>" lines,
// for step-by-step tracing.
func (e *Emulator) DumpRegisters(w io.Writer) {
	for i := 0; i < insts.NumRegs; i++ {
		v := e.regFile.R[i]
		fmt.Fprintf(w, "$%d: %#x | %d\n", i, uint32(v), v)
	}
}

// execute dispatches and runs a single decoded instruction, updating
// PC. Non-control-flow instructions advance PC by one word; branches
// and jumps set PC themselves.
func (e *Emulator) execute(inst insts.Instruction) error {
	switch inst.Format {
	case insts.FormatI:
		return e.executeI(inst)
	case insts.FormatJ:
		e.branchUnit.J(inst.Ad.Value)
		return nil
	case insts.FormatR:
		return e.executeR(inst)
	default:
		return fmt.Errorf("unrecognized instruction at pc=%d", e.regFile.PC)
	}
}

func (e *Emulator) executeI(inst insts.Instruction) error {
	switch inst.Op {
	case insts.OpAddi, insts.OpAddiu, insts.OpLui:
		e.alu.AddImm(inst.Rt.Reg, inst.Rs.Reg, inst.Im.Value)
		e.regFile.PC++
	case insts.OpBeq:
		e.branchUnit.Beq(inst.Rs.Reg, inst.Rt.Reg, inst.Im.Value)
	case insts.OpBne:
		e.branchUnit.Bne(inst.Rs.Reg, inst.Rt.Reg, inst.Im.Value)
	case insts.OpLw:
		e.lsu.Lw(inst.Rt.Reg, inst.Rs.Reg, inst.Im.Value)
		e.regFile.PC++
	case insts.OpSw:
		e.lsu.Sw(inst.Rt.Reg, inst.Rs.Reg, inst.Im.Value)
		e.regFile.PC++
	default:
		return fmt.Errorf("unrecognized opcode %#x at pc=%d", inst.Op, e.regFile.PC)
	}
	return nil
}

func (e *Emulator) executeR(inst insts.Instruction) error {
	switch inst.Fc {
	case insts.FcJr:
		e.branchUnit.Jr(inst.Rs.Reg)
	case insts.FcSyscall:
		e.syscallHandler.Handle()
		e.regFile.PC++
	case insts.FcAddu:
		e.alu.Addu(inst.Rd.Reg, inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcSubu:
		e.alu.Subu(inst.Rd.Reg, inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcAnd:
		e.alu.And(inst.Rd.Reg, inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcOr:
		e.alu.Or(inst.Rd.Reg, inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcSlt:
		e.alu.Slt(inst.Rd.Reg, inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcSll:
		e.alu.Sll(inst.Rd.Reg, inst.Rt.Reg, inst.Sh)
		e.regFile.PC++
	case insts.FcSrl:
		e.alu.Srl(inst.Rd.Reg, inst.Rt.Reg, inst.Sh)
		e.regFile.PC++
	case insts.FcMult:
		e.alu.Mult(inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcMultu:
		e.alu.Multu(inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcDiv:
		e.alu.Div(inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcDivu:
		e.alu.Divu(inst.Rs.Reg, inst.Rt.Reg)
		e.regFile.PC++
	case insts.FcMfhi:
		e.alu.Mfhi(inst.Rd.Reg)
		e.regFile.PC++
	case insts.FcMflo:
		e.alu.Mflo(inst.Rd.Reg)
		e.regFile.PC++
	default:
		return fmt.Errorf("unrecognized function code %#x at pc=%d", inst.Fc, e.regFile.PC)
	}
	return nil
}
