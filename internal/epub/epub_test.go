package epub

import (
	"strings"
	"testing"
	"time"

	"github.com/rcalder/inkbind/internal/export"
)

func TestDocumentHTML(t *testing.T) {
	doc := &export.Document{
		Title:      "第1章 <试>",
		Paragraphs: []string{"第一段", "第二段"},
	}
	got := documentHTML(doc)
	if !strings.HasPrefix(got, "<h1>第1章 &lt;试&gt;</h1>") {
		t.Errorf("heading not escaped: %q", got)
	}
	if !strings.Contains(got, "<p>第一段</p>\n<p>第二段</p>") {
		t.Errorf("paragraphs missing: %q", got)
	}
}

func TestDocumentHTML_EmptyBody(t *testing.T) {
	got := documentHTML(&export.Document{Title: "空章"})
	if !strings.Contains(got, "<p></p>") {
		t.Errorf("empty document needs a placeholder paragraph, got %q", got)
	}
}

func TestPlaceholderCover(t *testing.T) {
	svg := string(placeholderCover("书 & 名"))
	if !strings.Contains(svg, "书 &amp; 名") {
		t.Errorf("title not escaped into cover: %q", svg)
	}
	if !strings.Contains(svg, "<svg") {
		t.Error("expected svg markup")
	}

	blank := string(placeholderCover("   "))
	if !strings.Contains(blank, defaultTitle) {
		t.Error("blank title should use the default work title")
	}
}

func TestDescribe(t *testing.T) {
	meta := export.Metadata{
		Subjects:  []string{"小说", " ", "长篇"},
		PageCount: 42,
	}
	got := describe(meta)
	if !strings.Contains(got, "小说 / 长篇") {
		t.Errorf("subjects missing: %q", got)
	}
	if !strings.Contains(got, "42") {
		t.Errorf("page count missing: %q", got)
	}
	if describe(export.Metadata{}) != "" {
		t.Error("empty metadata should describe to nothing")
	}
}

func TestBuildStats(t *testing.T) {
	s := NewBuildStats(time.Hour)
	if snap := s.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	for _, ms := range []int64{10, 20, 30, 40} {
		s.Record(time.Duration(ms) * time.Millisecond)
	}
	snap := s.Snapshot()
	if snap.Count != 4 {
		t.Fatalf("expected 4 samples, got %d", snap.Count)
	}
	if snap.MinMs != 10 || snap.MaxMs != 40 {
		t.Errorf("min/max wrong: %+v", snap)
	}
	if snap.AvgMs != 25 {
		t.Errorf("expected avg 25, got %v", snap.AvgMs)
	}
	if snap.P50Ms != 25 {
		t.Errorf("expected p50 25, got %v", snap.P50Ms)
	}
}
