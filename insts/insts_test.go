package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mimi/insts"
)

var _ = Describe("Instruction", func() {
	It("reports IsEmitting true only for R/I/J formats", func() {
		Expect(insts.Instruction{Format: insts.FormatR}.IsEmitting()).To(BeTrue())
		Expect(insts.Instruction{Format: insts.FormatI}.IsEmitting()).To(BeTrue())
		Expect(insts.Instruction{Format: insts.FormatJ}.IsEmitting()).To(BeTrue())
		Expect(insts.Instruction{Format: insts.FormatLabelDef}.IsEmitting()).To(BeFalse())
		Expect(insts.Instruction{Format: insts.FormatDirective}.IsEmitting()).To(BeFalse())
	})
})

var _ = Describe("Operand constructors", func() {
	It("builds a register operand", func() {
		op := insts.Reg(8)
		Expect(op.Kind).To(Equal(insts.KindRegister))
		Expect(op.Reg).To(Equal(int32(8)))
	})

	It("builds a label operand", func() {
		op := insts.Lbl("loop")
		Expect(op.Kind).To(Equal(insts.KindLabel))
		Expect(op.Label).To(Equal("loop"))
	})

	It("builds a constant operand", func() {
		op := insts.Const(-34)
		Expect(op.Kind).To(Equal(insts.KindConstant))
		Expect(op.Value).To(Equal(int32(-34)))
	})
})
