// Package export assembles the nested section/document tree handed to
// the packaging collaborator, plus the flat spine of content documents.
package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/rcalder/inkbind/internal/corpus"
	"github.com/rcalder/inkbind/internal/toc"
)

// Document is one content-bearing chapter: a title plus escaped body
// paragraphs and a stable internal file name.
type Document struct {
	Title      string   `json:"title"`
	FileName   string   `json:"file_name"`
	Paragraphs []string `json:"paragraphs"`
}

// Node is one entry of the navigation tree: either a content document
// (Doc set, no children) or a section wrapping further entries.
type Node struct {
	Title    string    `json:"title"`
	Doc      *Document `json:"doc,omitempty"`
	Children []*Node   `json:"children,omitempty"`
}

// Book is the assembled export tree. TOC is the nested navigation;
// Spine is the flat ordered document list used as the linear fallback
// reading order.
type Book struct {
	TOC   []*Node
	Spine []*Document
}

// Assemble builds a Book from the corpus and the current items. Items
// at the deepest present level carry body text; shallower items are
// navigation containers. Sections with no descendant documents are
// dropped, and if the whole walk yields nothing the flat document list
// is exposed directly so export never returns an empty structure.
func Assemble(c *corpus.Corpus, items []*toc.Item) (*Book, error) {
	if c == nil || c.Len() == 0 {
		return nil, corpus.ErrEmpty
	}
	if len(items) == 0 {
		items = []*toc.Item{{
			Title:     toc.FallbackTitle,
			StartLine: 0,
			EndLine:   c.Len() - 1,
			Level:     1,
			LevelName: "章节",
		}}
	}

	contentLevel := 0
	for _, item := range items {
		if item.Level > contentLevel {
			contentLevel = item.Level
		}
	}

	forest := toc.BuildForest(items)

	var spine []*Document
	docs := make(map[*toc.Item]*Document)
	var collect func(nodes []*toc.Node)
	collect = func(nodes []*toc.Node) {
		for _, n := range nodes {
			if n.Item.Level == contentLevel {
				doc := buildDocument(c, n.Item, len(spine)+1)
				docs[n.Item] = doc
				spine = append(spine, doc)
			}
			collect(n.Children)
		}
	}
	collect(forest)

	var tocNodes []*Node
	for _, root := range forest {
		tocNodes = append(tocNodes, mapNode(root, contentLevel, docs)...)
	}
	if len(tocNodes) == 0 {
		for _, doc := range spine {
			tocNodes = append(tocNodes, &Node{Title: doc.Title, Doc: doc})
		}
	}

	return &Book{TOC: tocNodes, Spine: spine}, nil
}

// mapNode converts one hierarchy node bottom-up. A content-level node
// maps to its document; a shallower node contributes a section only
// when it has descendant documents.
func mapNode(n *toc.Node, contentLevel int, docs map[*toc.Item]*Document) []*Node {
	if n.Item.Level == contentLevel {
		if doc, ok := docs[n.Item]; ok {
			return []*Node{{Title: doc.Title, Doc: doc}}
		}
		return nil
	}

	var children []*Node
	for _, child := range n.Children {
		children = append(children, mapNode(child, contentLevel, docs)...)
	}
	if len(children) == 0 {
		return nil
	}
	return []*Node{{Title: n.Item.Title, Children: children}}
}

// buildDocument slices the item's line range, drops blank lines, and
// escapes each remaining line as one body paragraph.
func buildDocument(c *corpus.Corpus, item *toc.Item, seq int) *Document {
	var paragraphs []string
	for _, line := range c.Slice(item.StartLine, item.EndLine) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paragraphs = append(paragraphs, html.EscapeString(line))
	}
	return &Document{
		Title:      item.Title,
		FileName:   fmt.Sprintf("chapter_%03d.xhtml", seq),
		Paragraphs: paragraphs,
	}
}
