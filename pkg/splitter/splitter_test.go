package splitter_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/namihq/knowledgebase/pkg/splitter"
)

func TestSplitter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Splitter Suite")
}

var _ = Describe("Recursive", func() {
	Describe("NewRecursive", func() {
		It("rejects a non-positive chunk size", func() {
			_, err := splitter.NewRecursive(0, 0)
			Expect(err).To(MatchError(splitter.ErrInvalidConfig))
		})

		It("rejects overlap equal to chunk size", func() {
			_, err := splitter.NewRecursive(100, 100)
			Expect(err).To(MatchError(splitter.ErrInvalidConfig))
		})

		It("rejects overlap larger than chunk size", func() {
			_, err := splitter.NewRecursive(100, 150)
			Expect(err).To(MatchError(splitter.ErrInvalidConfig))
		})

		It("accepts zero overlap", func() {
			s, err := splitter.NewRecursive(100, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Overlap()).To(BeZero())
		})
	})

	Describe("Split", func() {
		It("errors on empty input", func() {
			s, err := splitter.NewRecursive(100, 20)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Split("")
			Expect(err).To(MatchError(splitter.ErrEmptyInput))
		})

		It("errors on whitespace-only input", func() {
			s, err := splitter.NewRecursive(100, 20)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Split("  \n\t  ")
			Expect(err).To(MatchError(splitter.ErrEmptyInput))
		})

		It("returns a single trimmed chunk when the text fits", func() {
			s, err := splitter.NewRecursive(100, 20)
			Expect(err).NotTo(HaveOccurred())

			chunks, err := s.Split("  a short report  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(Equal([]string{"a short report"}))
		})

		It("never produces a chunk larger than the chunk size", func() {
			s, err := splitter.NewRecursive(100, 20)
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("some words in a long running sentence ", 50)
			chunks, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).NotTo(BeEmpty())
			for _, c := range chunks {
				Expect(len(c)).To(BeNumerically("<=", 100))
				Expect(strings.TrimSpace(c)).To(Equal(c))
				Expect(c).NotTo(BeEmpty())
			}
		})

		It("is deterministic", func() {
			s, err := splitter.NewRecursive(120, 30)
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("alpha beta gamma delta epsilon ", 40)
			first, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			second, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})

		It("hard-cuts a single long word with the sliding window formula", func() {
			// ceil((L-O)/(S-O)) chunks for boundary-free text.
			const size, overlap = 100, 20
			s, err := splitter.NewRecursive(size, overlap)
			Expect(err).NotTo(HaveOccurred())

			for _, length := range []int{101, 180, 250, 500, 1000} {
				text := strings.Repeat("x", length)
				chunks, err := s.Split(text)
				Expect(err).NotTo(HaveOccurred())

				want := (length - overlap + (size - overlap) - 1) / (size - overlap)
				Expect(chunks).To(HaveLen(want), "length %d", length)
			}
		})

		It("keeps hard cuts on rune boundaries without dropping bytes", func() {
			// Three-byte runes misalign every cut point at these settings.
			s, err := splitter.NewRecursive(10, 0)
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("界", 20)
			chunks, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(chunks)).To(BeNumerically(">", 1))

			for _, c := range chunks {
				Expect(utf8.ValidString(c)).To(BeTrue())
			}
			// Zero overlap means the chunks concatenate back to the input.
			Expect(strings.Join(chunks, "")).To(Equal(text))
		})

		It("carries overlap between hard-cut chunks", func() {
			s, err := splitter.NewRecursive(100, 20)
			Expect(err).NotTo(HaveOccurred())

			text := ""
			for i := 0; i < 30; i++ {
				text += strings.Repeat(string(rune('a'+i%26)), 10)
			}
			chunks, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(chunks)).To(BeNumerically(">", 1))

			for i := 1; i < len(chunks); i++ {
				tail := chunks[i-1][len(chunks[i-1])-20:]
				Expect(chunks[i]).To(HavePrefix(tail))
			}
		})

		It("prefers paragraph boundaries over word boundaries", func() {
			s, err := splitter.NewRecursive(60, 0)
			Expect(err).NotTo(HaveOccurred())

			para1 := strings.Repeat("one ", 10)  // 40 bytes
			para2 := strings.Repeat("two ", 10)  // 40 bytes
			chunks, err := s.Split(para1 + "\n\n" + para2)
			Expect(err).NotTo(HaveOccurred())

			// Each paragraph fits on its own but not together, so the
			// split lands on the paragraph break.
			Expect(chunks).To(HaveLen(2))
			Expect(chunks[0]).To(ContainSubstring("one"))
			Expect(chunks[0]).NotTo(ContainSubstring("two"))
			Expect(chunks[1]).To(ContainSubstring("two"))
			Expect(chunks[1]).NotTo(ContainSubstring("one"))
		})

		It("splits markdown sections at heading breaks first", func() {
			s, err := splitter.NewRecursive(80, 0)
			Expect(err).NotTo(HaveOccurred())

			section1 := "Intro " + strings.Repeat("alpha ", 8)
			section2 := "Methods " + strings.Repeat("beta ", 8)
			text := section1 + "\n## " + section2

			chunks, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(chunks)).To(BeNumerically(">=", 2))
			Expect(chunks[0]).To(ContainSubstring("alpha"))
			Expect(chunks[0]).NotTo(ContainSubstring("beta"))
		})

		It("drops whitespace-only pieces", func() {
			s, err := splitter.NewRecursive(50, 10)
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("word ", 8) + "\n\n   \n\n" + strings.Repeat("tail ", 8)
			chunks, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			for _, c := range chunks {
				Expect(strings.TrimSpace(c)).NotTo(BeEmpty())
			}
		})

		It("splits a 1500 byte report into two chunks at the default settings", func() {
			s, err := splitter.NewRecursive(1000, 200)
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("lorem ipsum dolor sit amet ", 56)[:1500]
			chunks, err := s.Split(text)
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(HaveLen(2))
		})
	})
})
