package toc

import (
	"fmt"
	"strings"

	"github.com/rcalder/inkbind/internal/corpus"
	"github.com/rcalder/inkbind/internal/rules"
)

// FallbackTitle names the synthesized whole-document item used when no
// line matches any rule.
const FallbackTitle = "正文"

// Collection is the live TOC state of one editing session. It owns its
// items exclusively; every mutation re-derives ranges before returning,
// so the collection is always range-complete. Not safe for concurrent
// use without external synchronization.
type Collection struct {
	corpus *corpus.Corpus
	items  []*Item
}

// NewCollection creates an empty collection over a corpus.
func NewCollection(c *corpus.Corpus) *Collection {
	return &Collection{corpus: c}
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// Items returns the flat item list in range order. Callers must not
// retain the slice across mutations.
func (c *Collection) Items() []*Item {
	out := make([]*Item, len(c.items))
	copy(out, c.items)
	return out
}

// Item returns the item at flat index i, or nil if out of range.
func (c *Collection) Item(i int) *Item {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	return c.items[i]
}

// Forest builds the nested hierarchy from the current items.
func (c *Collection) Forest() []*Node {
	return BuildForest(c.items)
}

// Reparse re-runs classification over every corpus line and replaces
// the item list. When no line matches any rule, a single item spanning
// the whole corpus is synthesized at the deepest configured level so
// the collection is never empty.
func (c *Collection) Reparse(levels []rules.CompiledLevel, maxHeadingLen int) {
	total := c.corpus.Len()

	var detected []*Item
	for i := 0; i < total; i++ {
		out := rules.Classify(c.corpus.Line(i), levels, maxHeadingLen)
		if !out.Accepted {
			continue
		}
		detected = append(detected, &Item{
			Title:     out.Match.Title,
			StartLine: i,
			EndLine:   i,
			Level:     out.Match.Level,
			LevelName: out.Match.LevelName,
		})
	}

	if len(detected) == 0 {
		level, name := 1, "章节"
		if n := len(levels); n > 0 {
			level, name = levels[n-1].Index, levels[n-1].Name
		}
		detected = []*Item{{
			Title:     FallbackTitle,
			StartLine: 0,
			EndLine:   total - 1,
			Level:     level,
			LevelName: name,
		}}
	}

	c.items = AssignRanges(detected, total)
}

// Insert adds an item starting at startLine. The end boundary is set to
// the corpus end transiently and then re-derived for the whole
// collection.
func (c *Collection) Insert(startLine, level int, levelName, title string) (*Item, error) {
	total := c.corpus.Len()
	if startLine < 0 || startLine >= total {
		return nil, &ValidationError{Reason: fmt.Sprintf("start line %d out of range [0, %d)", startLine, total)}
	}
	if level < 1 {
		return nil, &ValidationError{Reason: "level must be >= 1"}
	}

	item := &Item{
		Title:     normalizeTitle(title, c.defaultTitle(level, levelName)),
		StartLine: startLine,
		EndLine:   total - 1,
		Level:     level,
		LevelName: levelName,
	}
	c.items = append(c.items, item)
	c.items = AssignRanges(c.items, total)
	return item, nil
}

// Delete removes the item at flat index i. The last remaining item
// cannot be deleted.
func (c *Collection) Delete(i int) error {
	if i < 0 || i >= len(c.items) {
		return &ValidationError{Reason: fmt.Sprintf("index %d out of range", i)}
	}
	if len(c.items) <= 1 {
		return &ValidationError{Reason: "at least one item required"}
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.items = AssignRanges(c.items, c.corpus.Len())
	return nil
}

// Rename sets the title of the item at flat index i, falling back to a
// generated placeholder when the new title is blank.
func (c *Collection) Rename(i int, title string) error {
	item := c.Item(i)
	if item == nil {
		return &ValidationError{Reason: fmt.Sprintf("index %d out of range", i)}
	}
	item.Title = normalizeTitle(title, c.defaultTitle(item.Level, item.LevelName))
	return nil
}

// SwapAdjacent exchanges only the titles of the items at i and i+dir.
// Positions and ranges stay put. The swap is rejected when the neighbor
// is out of bounds or at a different level.
func (c *Collection) SwapAdjacent(i, dir int) error {
	j := i + dir
	if i < 0 || i >= len(c.items) || j < 0 || j >= len(c.items) {
		return &ValidationError{Reason: "no adjacent item"}
	}
	if c.items[i].Level != c.items[j].Level {
		return &ValidationError{Reason: "adjacent item is at a different level"}
	}
	c.items[i].Title, c.items[j].Title = c.items[j].Title, c.items[i].Title
	return nil
}

// defaultTitle generates a placeholder like 章3 for the next item of a
// level.
func (c *Collection) defaultTitle(level int, levelName string) string {
	n := 0
	for _, item := range c.items {
		if item.Level == level {
			n++
		}
	}
	if levelName == "" {
		levelName = fmt.Sprintf("L%d", level)
	}
	return fmt.Sprintf("%s%d", levelName, n+1)
}

func normalizeTitle(title, fallback string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return fallback
}
