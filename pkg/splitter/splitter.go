// Package splitter breaks report text into bounded, overlapping chunks.
//
// Splitting is layered: the text is cut at the coarsest boundary that
// applies (markdown headings, then paragraphs, lines, words) and only
// falls back to finer boundaries for pieces that would exceed the chunk
// size on their own. Adjacent chunks share a configurable overlap so
// context survives chunk boundaries.
package splitter

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyInput is returned when the input text is empty after trimming.
	ErrEmptyInput = errors.New("input text is empty")

	// ErrInvalidConfig is returned for a non-positive chunk size or an
	// overlap that is not smaller than the chunk size.
	ErrInvalidConfig = errors.New("invalid splitter configuration")
)

// defaultSeparators is the boundary cascade, coarsest first. The final
// empty separator means "split anywhere", which hard-cuts pieces that
// carry no finer boundary.
var defaultSeparators = []string{"\n## ", "\n### ", "\n\n", "\n", " ", ""}

// Recursive splits text recursively along a separator cascade.
type Recursive struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewRecursive creates a splitter producing chunks of at most chunkSize
// bytes with the given overlap carried between consecutive chunks.
func NewRecursive(chunkSize, overlap int) (*Recursive, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidConfig
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidConfig
	}

	return &Recursive{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}, nil
}

// ChunkSize returns the configured maximum chunk size.
func (r *Recursive) ChunkSize() int { return r.chunkSize }

// Overlap returns the configured overlap between consecutive chunks.
func (r *Recursive) Overlap() int { return r.overlap }

// Split breaks text into an ordered sequence of non-empty chunks.
// Splitting the same text with the same configuration always yields the
// same sequence. Whitespace-only candidate chunks are dropped.
func (r *Recursive) Split(text string) ([]string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}

	if len(trimmed) <= r.chunkSize {
		return []string{trimmed}, nil
	}

	raw := r.split(text, r.separators)

	chunks := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c != "" {
			chunks = append(chunks, c)
		}
	}

	return chunks, nil
}

// split recursively cuts text at the coarsest separator present in it,
// merging the resulting pieces back up to the chunk size and recursing
// into any piece that is still too large.
func (r *Recursive) split(text string, seps []string) []string {
	sep, rest := r.pickSeparator(text, seps)

	if sep == "" {
		return r.window(text)
	}

	splits := strings.Split(text, sep)

	var out []string
	var good []string
	for _, s := range splits {
		if len(s) <= r.chunkSize {
			good = append(good, s)
			continue
		}

		// Flush accumulated small pieces before descending into the
		// oversized one so chunk order follows document order.
		if len(good) > 0 {
			out = append(out, r.merge(good, sep)...)
			good = nil
		}
		out = append(out, r.split(s, rest)...)
	}
	if len(good) > 0 {
		out = append(out, r.merge(good, sep)...)
	}

	return out
}

// pickSeparator returns the first separator in seps that occurs in text,
// along with the finer separators remaining after it.
func (r *Recursive) pickSeparator(text string, seps []string) (string, []string) {
	for i, s := range seps {
		if s == "" {
			return "", nil
		}
		if strings.Contains(text, s) {
			return s, seps[i+1:]
		}
	}
	return "", nil
}

// merge greedily joins pieces with sep until adding the next piece would
// exceed the chunk size, then starts the next chunk with the trailing
// overlap of the previous one.
func (r *Recursive) merge(splits []string, sep string) []string {
	sepLen := len(sep)

	var docs []string
	var current []string
	total := 0

	for _, s := range splits {
		l := len(s)

		if len(current) > 0 && total+l+sepLen > r.chunkSize {
			doc := strings.TrimSpace(strings.Join(current, sep))
			if doc != "" {
				docs = append(docs, doc)
			}

			// Drop leading pieces until what remains fits inside the
			// overlap budget and leaves room for the incoming piece.
			for total > r.overlap || (total+l+sepLen > r.chunkSize && total > 0) {
				drop := len(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}

		if len(current) > 0 {
			total += sepLen
		}
		total += l
		current = append(current, s)
	}

	if len(current) > 0 {
		doc := strings.TrimSpace(strings.Join(current, sep))
		if doc != "" {
			docs = append(docs, doc)
		}
	}

	return docs
}

// window hard-cuts text that carries no finer boundary, stepping by
// chunkSize-overlap so consecutive cuts share the configured overlap.
// Cut points and window starts are kept on rune boundaries.
func (r *Recursive) window(text string) []string {
	step := r.chunkSize - r.overlap

	var docs []string
	start := 0
	for start < len(text) {
		end := start + r.chunkSize
		if end >= len(text) {
			docs = append(docs, text[start:])
			break
		}

		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}
		docs = append(docs, text[start:end])

		// The next window starts overlap bytes before the cut, nudged
		// forward to a rune boundary.
		next := end - r.overlap
		if next <= start {
			next = start + step
		}
		for next < len(text) && !utf8.RuneStart(text[next]) {
			next++
		}
		start = next
	}

	return docs
}
