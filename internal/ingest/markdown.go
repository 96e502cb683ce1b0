package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownLoader flattens a Markdown document into lines using the
// goldmark AST: each heading and each block's text become corpus lines,
// with blank separators between blocks so paragraph boundaries survive.
type MarkdownLoader struct{}

func (l *MarkdownLoader) Load(r io.Reader) ([]string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var lines []string
	emit := func(block string) {
		block = strings.TrimSpace(block)
		if block == "" {
			return
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		for _, line := range strings.Split(block, "\n") {
			lines = append(lines, strings.TrimSpace(line))
		}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			emit(string(node.Text(src)))
		default:
			emit(blockText(n, src))
		}
	}
	return lines, nil
}

// blockText gets the text content of a goldmark AST block node.
func blockText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines.Len() > 0 {
			for i := 0; i < lines.Len(); i++ {
				line := lines.At(i)
				buf.Write(line.Value(src))
			}
			return strings.TrimSpace(buf.String())
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(blockText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
