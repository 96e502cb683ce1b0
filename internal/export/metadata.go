package export

import (
	"strings"
	"unicode/utf8"

	"github.com/rcalder/inkbind/internal/corpus"
)

// Metadata is passed through untouched to the packaging collaborator.
type Metadata struct {
	Title     string   `json:"title"`
	Author    string   `json:"author"`
	Subjects  []string `json:"subjects"`
	PageCount int      `json:"page_count"`
	Language  string   `json:"language"`

	// Optional cover image; a placeholder is generated when empty.
	Cover    []byte `json:"-"`
	CoverExt string `json:"-"`
}

const charsPerPage = 800

// EstimatePages computes the page-count estimate: total non-blank
// trimmed characters at 800 per page, minimum one page.
func EstimatePages(c *corpus.Corpus) int {
	if c == nil {
		return 1
	}
	total := 0
	for i := 0; i < c.Len(); i++ {
		line := strings.TrimSpace(c.Line(i))
		total += utf8.RuneCountInString(line)
	}
	if total <= 0 {
		return 1
	}
	return (total + charsPerPage - 1) / charsPerPage
}
