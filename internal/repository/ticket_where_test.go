package repository

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ticket filter clause", func() {
	ptr := func(s string) *string { return &s }

	DescribeTable("matches wildcards in search text literally",
		func(term, pattern string) {
			Expect(containsPattern(term)).To(Equal(pattern))
		},
		Entry("percent", "50%", `%50\%%`),
		Entry("underscore", "a_b", `%a\_b%`),
		Entry("backslash", `c:\tmp`, `%c:\\tmp%`),
		Entry("plain text is lowered and trimmed", "  Printer ", "%printer%"),
	)

	It("declares the escape character on every LIKE", func() {
		where, args := buildTicketWhere(TicketFilter{SearchTerm: ptr("50%"), TitleTerm: ptr("x_y")})
		Expect(where).To(ContainSubstring(`LOWER(t.title) LIKE $1 ESCAPE '\' OR LOWER(t.description) LIKE $1 ESCAPE '\'`))
		Expect(where).To(ContainSubstring(`LOWER(t.title) LIKE $2 ESCAPE '\'`))
		Expect(args).To(Equal([]any{`%50\%%`, `%x\_y%`}))
	})

	It("skips blank search text", func() {
		where, args := buildTicketWhere(TicketFilter{SearchTerm: ptr("   ")})
		Expect(where).To(Equal("t.deleted_at IS NULL"))
		Expect(args).To(BeEmpty())
	})
})
