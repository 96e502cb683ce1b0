package corpus

import (
	"errors"
	"strings"
)

// ErrEmpty is returned when a corpus would contain no lines.
var ErrEmpty = errors.New("corpus has no lines")

// Corpus is the immutable, zero-indexed line sequence of one loaded
// document. It is fixed for the lifetime of an editing session.
type Corpus struct {
	lines []string
}

// New builds a corpus from already-decoded, newline-normalized lines.
// Leading and trailing blank lines are stripped; interior blank lines
// are kept (paragraph separators).
func New(lines []string) (*Corpus, error) {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	if start == end {
		return nil, ErrEmpty
	}

	trimmed := make([]string, end-start)
	copy(trimmed, lines[start:end])
	return &Corpus{lines: trimmed}, nil
}

// FromText splits normalized text into a corpus. Carriage returns and a
// leading BOM are removed first.
func FromText(text string) (*Corpus, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\uFEFF", "")
	return New(strings.Split(text, "\n"))
}

// Len returns the number of lines.
func (c *Corpus) Len() int {
	return len(c.lines)
}

// Line returns line i. Out-of-range indexes return the empty string.
func (c *Corpus) Line(i int) string {
	if i < 0 || i >= len(c.lines) {
		return ""
	}
	return c.lines[i]
}

// Slice returns a copy of the inclusive line range [start, end],
// clamped to the corpus bounds.
func (c *Corpus) Slice(start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end >= len(c.lines) {
		end = len(c.lines) - 1
	}
	if start > end {
		return nil
	}
	out := make([]string, end-start+1)
	copy(out, c.lines[start:end+1])
	return out
}

// Lines returns a copy of all lines.
func (c *Corpus) Lines() []string {
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}
