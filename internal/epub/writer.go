// Package epub renders an assembled export tree into an EPUB container.
package epub

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	goepub "github.com/go-shiori/go-epub"
	"github.com/google/uuid"

	"github.com/rcalder/inkbind/internal/export"
)

const defaultTitle = "未命名作品"

const defaultCSS = `body { line-height: 1.6; margin: 0 6%; }
p { text-indent: 2em; margin: 0.5em 0; }
h1 { text-align: center; margin: 1em 0; }`

// Write builds the EPUB and saves it to path.
func Write(book *export.Book, meta export.Metadata, path string) error {
	e, err := build(book, meta)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := e.Write(path); err != nil {
		return fmt.Errorf("write epub: %w", err)
	}
	return nil
}

// WriteTo builds the EPUB and streams it to w.
func WriteTo(book *export.Book, meta export.Metadata, w io.Writer) error {
	e, err := build(book, meta)
	if err != nil {
		return err
	}
	if _, err := e.WriteTo(w); err != nil {
		return fmt.Errorf("write epub: %w", err)
	}
	return nil
}

func build(book *export.Book, meta export.Metadata) (*goepub.Epub, error) {
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = defaultTitle
	}

	e, err := goepub.NewEpub(title)
	if err != nil {
		return nil, fmt.Errorf("new epub: %w", err)
	}
	e.SetIdentifier(uuid.NewString())

	lang := strings.TrimSpace(meta.Language)
	if lang == "" {
		lang = "zh"
	}
	e.SetLang(lang)

	if author := strings.TrimSpace(meta.Author); author != "" {
		e.SetAuthor(author)
	}
	if desc := describe(meta); desc != "" {
		e.SetDescription(desc)
	}

	cssPath, err := addCSS(e)
	if err != nil {
		return nil, err
	}
	if err := addCover(e, meta, title, cssPath); err != nil {
		return nil, err
	}

	for i, node := range book.TOC {
		if err := addNode(e, node, "", cssPath, i); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// addNode writes one export tree node. Sections become a title page
// document so the nested navigation entry has a target; their children
// nest beneath it.
func addNode(e *goepub.Epub, node *export.Node, parent, cssPath string, seq int) error {
	var body, filename string
	if node.Doc != nil {
		body = documentHTML(node.Doc)
		filename = node.Doc.FileName
	} else {
		body = fmt.Sprintf("<h1>%s</h1>", html.EscapeString(node.Title))
		filename = fmt.Sprintf("section_%03d.xhtml", seq+1)
	}

	var added string
	var err error
	if parent == "" {
		added, err = e.AddSection(body, node.Title, filename, cssPath)
	} else {
		added, err = e.AddSubSection(parent, body, node.Title, filename, cssPath)
	}
	if err != nil {
		return fmt.Errorf("add section %q: %w", node.Title, err)
	}

	for i, child := range node.Children {
		if err := addNode(e, child, added, cssPath, i); err != nil {
			return err
		}
	}
	return nil
}

func documentHTML(doc *export.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(doc.Title))
	if len(doc.Paragraphs) == 0 {
		b.WriteString("<p></p>")
		return b.String()
	}
	for i, p := range doc.Paragraphs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "<p>%s</p>", p)
	}
	return b.String()
}

// describe folds the passthrough metadata the container format has no
// dedicated field for into the description entry.
func describe(meta export.Metadata) string {
	var parts []string
	var subjects []string
	for _, s := range meta.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	if len(subjects) > 0 {
		parts = append(parts, strings.Join(subjects, " / "))
	}
	if meta.PageCount > 0 {
		parts = append(parts, fmt.Sprintf("约 %d 页", meta.PageCount))
	}
	return strings.Join(parts, " · ")
}

func addCSS(e *goepub.Epub) (string, error) {
	tmp, err := os.CreateTemp("", "inkbind-*.css")
	if err != nil {
		return "", fmt.Errorf("create temp css: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(defaultCSS); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp css: %w", err)
	}
	tmp.Close()

	cssPath, err := e.AddCSS(tmpPath, "main.css")
	if err != nil {
		return "", fmt.Errorf("add css: %w", err)
	}
	return cssPath, nil
}

// addCover uses the supplied image when present, otherwise a generated
// SVG placeholder bearing the title.
func addCover(e *goepub.Epub, meta export.Metadata, title, cssPath string) error {
	data := meta.Cover
	ext := strings.ToLower(meta.CoverExt)
	if len(data) == 0 {
		data = placeholderCover(title)
		ext = ".svg"
	}
	if ext == "" {
		ext = ".jpg"
	}

	tmp, err := os.CreateTemp("", "inkbind-cover-*"+ext)
	if err != nil {
		return fmt.Errorf("create temp cover: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp cover: %w", err)
	}
	tmp.Close()

	imgPath, err := e.AddImage(tmpPath, "cover"+ext)
	if err != nil {
		return fmt.Errorf("add cover image: %w", err)
	}
	if err := e.SetCover(imgPath, cssPath); err != nil {
		return fmt.Errorf("set cover: %w", err)
	}
	return nil
}
