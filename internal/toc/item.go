// Package toc holds the live table-of-contents state of an editing
// session: the flat item list, derived line ranges, and the hierarchy
// built from them.
package toc

import (
	"sort"
)

// Item is one table-of-contents entry. StartLine/EndLine are inclusive
// zero-based corpus indexes; EndLine is derived by AssignRanges and must
// be recomputed after any structural change.
type Item struct {
	Title     string `json:"title"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Level     int    `json:"level"`
	LevelName string `json:"level_name"`
}

// ValidationError reports a TOC operation that was rejected; prior
// state is retained.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// sortItems orders items by (start line, level). The level tie-break
// puts the coarser item first when two items share a start line.
func sortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].StartLine != items[j].StartLine {
			return items[i].StartLine < items[j].StartLine
		}
		return items[i].Level < items[j].Level
	})
}

// AssignRanges sorts items and sets each item's EndLine to one line
// before the smallest start line, across items of ANY level, strictly
// greater than its own; the last start line extends to the corpus end.
// The sweep is deliberately global rather than per-branch: a coarse
// item's range stops at its first nested child, so non-leaf ranges
// cover only the heading region. Export relies on that and slices body
// text from content-level items only.
func AssignRanges(items []*Item, totalLines int) []*Item {
	if len(items) == 0 {
		return items
	}
	sortItems(items)

	for i, item := range items {
		end := totalLines - 1
		for j := i + 1; j < len(items); j++ {
			if items[j].StartLine > item.StartLine {
				end = items[j].StartLine - 1
				break
			}
		}
		if end < item.StartLine {
			end = item.StartLine
		}
		item.EndLine = end
	}
	return items
}
