package emu_test

import (
	"bytes"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mimi/emu"
	"github.com/sarchlab/mimi/insts"
)

// encode is a tiny test helper around insts.Encode for instructions
// that carry no labels.
func encode(inst insts.Instruction) int32 {
	word, ok, err := insts.Encode(inst, nil)
	Expect(err).NotTo(HaveOccurred())
	Expect(ok).To(BeTrue())
	return word
}

// image builds a minimal 3-word-header image (§3 "File header") around
// a sequence of already-encoded text words, with no data section.
func image(words ...int32) []int32 {
	img := []int32{3, 3, 3 + int32(len(words))}
	return append(img, words...)
}

var _ = Describe("Emulator", func() {
	var (
		e         *emu.Emulator
		stdoutBuf *bytes.Buffer
	)

	BeforeEach(func() {
		stdoutBuf = &bytes.Buffer{}
		e = emu.NewEmulator(emu.WithStdout(stdoutBuf))
	})

	Describe("NewEmulator", func() {
		It("creates an emulator with initialized components", func() {
			Expect(e).NotTo(BeNil())
			Expect(e.RegFile()).NotTo(BeNil())
			Expect(e.Memory()).NotTo(BeNil())
		})
	})

	Describe("LoadImage", func() {
		It("sets PC to the image's entry point", func() {
			e.LoadImage(image())
			Expect(e.RegFile().PC).To(Equal(int32(3)))
		})

		It("seeds $sp with a positive, in-range stack top", func() {
			e.LoadImage(image())
			Expect(e.RegFile().ReadReg(emu.RegSP)).To(Equal(int32(emu.StackTop)))
		})
	})

	Describe("scenario: compiler stack discipline push/pop", func() {
		It("does not underflow memory on the first push", func() {
			// addi $sp, $sp, -4; sw $t0, 0($sp); lw $t1, 0($sp); jr $ra
			img := image(
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(29), Rs: insts.Reg(29), Im: insts.Const(-4)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpSw, Rt: insts.Reg(8), Rs: insts.Reg(29), Im: insts.Const(0)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpLw, Rt: insts.Reg(9), Rs: insts.Reg(29), Im: insts.Const(0)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)
			Expect(e.Run()).NotTo(HaveOccurred())
		})
	})

	Describe("scenario: addi $a0,$0,2; addi $a0,$a0,3; ori-as-addiu $v0,$0,1; syscall; jr $ra", func() {
		It("prints 5", func() {
			img := image(
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(4), Rs: insts.Reg(0), Im: insts.Const(2)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(4), Rs: insts.Reg(4), Im: insts.Const(3)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddiu, Rt: insts.Reg(2), Rs: insts.Reg(0), Im: insts.Const(1)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: insts.FcSyscall}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)

			Expect(e.Run()).NotTo(HaveOccurred())
			Expect(stdoutBuf.String()).To(Equal("5"))
		})
	})

	Describe("scenario: forward jump over a negative literal", func() {
		It("prints -34", func() {
			// j L; addi $a0,$0,34; L: addi $a0,$0,-34; addi $v0,$0,1; syscall; jr $ra
			jWord := encode(insts.Instruction{Format: insts.FormatJ, Op: insts.OpJ, Ad: insts.Const(5)})
			img := image(
				jWord,
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(4), Rs: insts.Reg(0), Im: insts.Const(34)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(4), Rs: insts.Reg(0), Im: insts.Const(-34)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(2), Rs: insts.Reg(0), Im: insts.Const(1)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: insts.FcSyscall}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)

			Expect(e.Run()).NotTo(HaveOccurred())
			Expect(stdoutBuf.String()).To(Equal("-34"))
		})
	})

	Describe("scenario: loop printing 0..9", func() {
		It("prints 0123456789", func() {
			// $t0 = counter, $t1 = limit(10), $v0=1 for syscall.
			// 3: addi $t0,$0,0
			// 4: addi $t1,$0,10
			// 5: L: slt $t2,$t0,$t1
			// 6: beq  $t2,$0, END(12)
			// 7: addi $v0,$0,1
			// 8: addu $a0,$0,$t0   (plain register move)
			// 9: syscall
			// 10: addi $t0,$t0,1
			// 11: beq  $0,$0, L(5)  (unconditional loop back instead of a separate j)
			// 12: END: jr $ra
			const (
				t0 = 8
				t1 = 9
				t2 = 10
			)
			loopStart := int32(5)
			endAddr := int32(12)
			img := image(
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(t0), Rs: insts.Reg(0), Im: insts.Const(0)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(t1), Rs: insts.Reg(0), Im: insts.Const(10)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rd: insts.Reg(t2), Rs: insts.Reg(t0), Rt: insts.Reg(t1), Fc: insts.FcSlt}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpBeq, Rs: insts.Reg(t2), Rt: insts.Reg(0), Im: insts.Const(endAddr)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(2), Rs: insts.Reg(0), Im: insts.Const(1)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rd: insts.Reg(4), Rs: insts.Reg(0), Rt: insts.Reg(t0), Fc: insts.FcAddu}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: insts.FcSyscall}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(t0), Rs: insts.Reg(t0), Im: insts.Const(1)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpBeq, Rs: insts.Reg(0), Rt: insts.Reg(0), Im: insts.Const(loopStart)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)

			Expect(e.Run()).NotTo(HaveOccurred())
			Expect(stdoutBuf.String()).To(Equal("0123456789"))
		})
	})

	Describe("scenario: multu then mflo", func() {
		It("prints 20", func() {
			img := image(
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(8), Rs: insts.Reg(0), Im: insts.Const(4)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(9), Rs: insts.Reg(0), Im: insts.Const(5)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(8), Rt: insts.Reg(9), Fc: insts.FcMultu}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rd: insts.Reg(4), Fc: insts.FcMflo}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(2), Rs: insts.Reg(0), Im: insts.Const(1)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: insts.FcSyscall}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)

			Expect(e.Run()).NotTo(HaveOccurred())
			Expect(stdoutBuf.String()).To(Equal("20"))
		})
	})

	Describe("invariant: register zero", func() {
		It("always reads as 0, even after a write", func() {
			img := image(
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(0), Rs: insts.Reg(0), Im: insts.Const(99)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)

			Expect(e.Step().Err).NotTo(HaveOccurred())
			Expect(e.RegFile().ReadReg(0)).To(Equal(int32(0)))
		})
	})

	Describe("invariant: addu wraps like host two's-complement arithmetic", func() {
		It("wraps MaxInt32 + 1 to MinInt32", func() {
			img := image(
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rd: insts.Reg(4), Rs: insts.Reg(8), Rt: insts.Reg(9), Fc: insts.FcAddu}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)
			e.RegFile().WriteReg(8, math.MaxInt32)
			e.RegFile().WriteReg(9, 1)

			Expect(e.Step().Err).NotTo(HaveOccurred())
			Expect(e.RegFile().ReadReg(4)).To(Equal(int32(math.MinInt32)))
		})
	})

	Describe("decode error", func() {
		It("reports the offending pc for an unrecognized opcode", func() {
			img := image(int32(0x3F << 26)) // opcode 0x3f is not in the supported subset
			e.LoadImage(img)

			result := e.Step()
			Expect(result.Err).To(HaveOccurred())
			Expect(result.Err.Error()).To(ContainSubstring("pc=3"))
		})
	})

	Describe("Reset", func() {
		It("clears registers, memory, and stdout history", func() {
			img := image(
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(4), Rs: insts.Reg(0), Im: insts.Const(2)}),
				encode(insts.Instruction{Format: insts.FormatI, Op: insts.OpAddi, Rt: insts.Reg(2), Rs: insts.Reg(0), Im: insts.Const(1)}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Fc: insts.FcSyscall}),
				encode(insts.Instruction{Format: insts.FormatR, Op: insts.OpSpecial, Rs: insts.Reg(31), Fc: insts.FcJr}),
			)
			e.LoadImage(img)
			Expect(e.Run()).NotTo(HaveOccurred())
			Expect(e.StdoutHistory()).To(Equal("2"))

			e.Reset()

			Expect(e.RegFile().PC).To(Equal(int32(0)))
			Expect(e.Memory().Read(3)).To(Equal(int32(0)))
			Expect(e.StdoutHistory()).To(BeEmpty())
		})
	})
})
