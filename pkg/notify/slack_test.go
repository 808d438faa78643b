package notify

import (
	"strings"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("truncate", func() {
	It("leaves short text untouched", func() {
		Expect(truncate("fine as is", 200)).To(Equal("fine as is"))
	})

	It("trims to the rune limit", func() {
		Expect(truncate("abcdef", 4)).To(Equal("abcd"))
	})

	It("never splits a multi-byte character", func() {
		text := strings.Repeat("ü", 50)

		out := truncate(text, 10)
		Expect(utf8.ValidString(out)).To(BeTrue())
		Expect(out).To(Equal(strings.Repeat("ü", 10)))
	})
})
