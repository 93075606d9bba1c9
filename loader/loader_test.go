package loader_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mimi/asm"
	"github.com/sarchlab/mimi/loader"
)

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	writeImage := func(bigEndian bool) string {
		layout, err := asm.Assemble(".text\naddi $a0, $zero, 2\njr $ra\n")
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(dir, "prog.bin")
		f, err := os.Create(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()
		Expect(asm.Write(f, layout, bigEndian)).To(Succeed())
		return path
	}

	It("round-trips a little-endian image", func() {
		path := writeImage(false)

		prog, err := loader.Load(path, false)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Image[0]).To(Equal(int32(3)))

		entry, err := prog.EntryPoint()
		Expect(err).NotTo(HaveOccurred())
		Expect(entry).To(Equal(int32(3)))
	})

	It("round-trips a big-endian image", func() {
		path := writeImage(true)

		prog, err := loader.Load(path, true)
		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Image[0]).To(Equal(int32(3)))
	})

	It("rejects a file whose size is not a multiple of 4", func() {
		path := filepath.Join(dir, "bad.bin")
		Expect(os.WriteFile(path, []byte{1, 2, 3}, 0o644)).To(Succeed())

		_, err := loader.Load(path, false)
		Expect(err).To(HaveOccurred())
	})

	It("reports a wrapped error for a missing file", func() {
		_, err := loader.Load(filepath.Join(dir, "missing.bin"), false)
		Expect(err).To(HaveOccurred())
	})
})
