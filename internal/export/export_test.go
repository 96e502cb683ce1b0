package export

import (
	"errors"
	"strings"
	"testing"

	"github.com/rcalder/inkbind/internal/corpus"
	"github.com/rcalder/inkbind/internal/rules"
	"github.com/rcalder/inkbind/internal/toc"
)

func buildCollection(t *testing.T, lines ...string) (*corpus.Corpus, *toc.Collection) {
	t.Helper()
	c, err := corpus.New(lines)
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	levels, err := rules.Compile(rules.DefaultLevels())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	col := toc.NewCollection(c)
	col.Reparse(levels, 0)
	return c, col
}

func TestAssemble_SectionWrapsDocument(t *testing.T) {
	c, col := buildCollection(t,
		"第一卷 风起",
		"第一章 出门",
		"走了很远。",
	)
	book, err := Assemble(c, col.Items())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	if len(book.TOC) != 1 {
		t.Fatalf("expected 1 top-level section, got %d", len(book.TOC))
	}
	section := book.TOC[0]
	if section.Doc != nil {
		t.Fatal("top-level entry should be a section, not a document")
	}
	if section.Title != "第一卷 风起" {
		t.Errorf("section title: got %q", section.Title)
	}
	if len(section.Children) != 1 || section.Children[0].Doc == nil {
		t.Fatalf("section should wrap exactly one content document")
	}
	if len(book.Spine) != 1 {
		t.Fatalf("expected 1 spine document, got %d", len(book.Spine))
	}
	if book.Spine[0] != section.Children[0].Doc {
		t.Error("spine and TOC should share the same document")
	}
}

func TestAssemble_DeleteLeafFallsBackToFlatList(t *testing.T) {
	// One root (level 1) and one leaf (level 2). With both present the
	// leaf is the content level; after deleting the leaf the root
	// becomes the content level itself, so export still yields a
	// document and no section.
	c, col := buildCollection(t,
		"第一卷 风起",
		"第一章 出门",
		"走了很远。",
	)

	if err := col.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	book, err := Assemble(c, col.Items())
	if err != nil {
		t.Fatalf("assemble after delete: %v", err)
	}
	if len(book.Spine) != 1 {
		t.Fatalf("expected 1 document, got %d", len(book.Spine))
	}
	for _, n := range book.TOC {
		if n.Doc == nil {
			t.Error("expected flat document entries, found a section")
		}
	}
}

func TestAssemble_EmptySectionContributesNothing(t *testing.T) {
	// Second volume has no chapters, so it is dropped from the TOC.
	items := []*toc.Item{
		{Title: "卷一", StartLine: 0, EndLine: 0, Level: 1, LevelName: "卷"},
		{Title: "章一", StartLine: 1, EndLine: 2, Level: 2, LevelName: "章"},
		{Title: "空卷", StartLine: 3, EndLine: 3, Level: 1, LevelName: "卷"},
	}
	c, err := corpus.New([]string{"卷一", "章一", "正文", "空卷"})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}

	book, err := Assemble(c, items)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(book.TOC) != 1 {
		t.Fatalf("expected 1 section (empty one dropped), got %d", len(book.TOC))
	}
	if book.TOC[0].Title != "卷一" {
		t.Errorf("surviving section: got %q", book.TOC[0].Title)
	}
}

func TestAssemble_NoItemsSynthesizesFullSpan(t *testing.T) {
	c, err := corpus.New([]string{"只有", "正文"})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	book, err := Assemble(c, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if len(book.Spine) != 1 {
		t.Fatalf("expected 1 synthesized document, got %d", len(book.Spine))
	}
	if got := len(book.Spine[0].Paragraphs); got != 2 {
		t.Errorf("expected 2 paragraphs, got %d", got)
	}
}

func TestAssemble_EmptyCorpus(t *testing.T) {
	if _, err := Assemble(nil, nil); !errors.Is(err, corpus.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestAssemble_ParagraphsEscapedAndBlankDropped(t *testing.T) {
	items := []*toc.Item{
		{Title: "A <> B", StartLine: 0, EndLine: 3, Level: 1, LevelName: "章"},
	}
	c, err := corpus.New([]string{"标题行", "a < b & c", "   ", "尾行"})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	book, err := Assemble(c, items)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	doc := book.Spine[0]
	if len(doc.Paragraphs) != 3 {
		t.Fatalf("expected blank line dropped, got %d paragraphs", len(doc.Paragraphs))
	}
	if !strings.Contains(doc.Paragraphs[1], "a &lt; b &amp; c") {
		t.Errorf("expected escaped markup, got %q", doc.Paragraphs[1])
	}
	if doc.Title != "A <> B" {
		t.Errorf("document titles are not escaped here, got %q", doc.Title)
	}
}

func TestAssemble_SpineOrderFollowsStartLines(t *testing.T) {
	items := []*toc.Item{
		{Title: "后", StartLine: 4, EndLine: 5, Level: 2, LevelName: "章"},
		{Title: "前", StartLine: 0, EndLine: 3, Level: 2, LevelName: "章"},
	}
	c, err := corpus.New([]string{"a", "b", "c", "d", "e", "f"})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	book, err := Assemble(c, items)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if book.Spine[0].Title != "前" || book.Spine[1].Title != "后" {
		t.Errorf("spine out of order: %q, %q", book.Spine[0].Title, book.Spine[1].Title)
	}
	if book.Spine[0].FileName != "chapter_001.xhtml" {
		t.Errorf("unexpected file name %q", book.Spine[0].FileName)
	}
}

func TestEstimatePages(t *testing.T) {
	c, err := corpus.New([]string{strings.Repeat("字", 800), strings.Repeat("字", 10)})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	if got := EstimatePages(c); got != 2 {
		t.Errorf("810 chars: expected 2 pages, got %d", got)
	}

	small, err := corpus.New([]string{"短"})
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	if got := EstimatePages(small); got != 1 {
		t.Errorf("minimum is one page, got %d", got)
	}
	if got := EstimatePages(nil); got != 1 {
		t.Errorf("nil corpus: expected 1, got %d", got)
	}
}
