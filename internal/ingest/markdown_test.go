package ingest

import (
	"strings"
	"testing"
)

func TestMarkdownLoader_HeadingsAndParagraphsBecomeLines(t *testing.T) {
	input := "# 第一章 出发\n\n清晨的风。\n路上无人。\n\n## 第一节 渡口\n\n船来了。\n"
	l := &MarkdownLoader{}
	lines, err := l.Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var nonBlank []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			nonBlank = append(nonBlank, line)
		}
	}
	want := []string{"第一章 出发", "清晨的风。", "路上无人。", "第一节 渡口", "船来了。"}
	if len(nonBlank) != len(want) {
		t.Fatalf("expected %d content lines, got %d: %v", len(want), len(nonBlank), nonBlank)
	}
	for i, w := range want {
		if nonBlank[i] != w {
			t.Errorf("line %d: expected %q, got %q", i, w, nonBlank[i])
		}
	}
}

func TestMarkdownLoader_BlankSeparatorsBetweenBlocks(t *testing.T) {
	input := "# A\n\npara one\n\npara two\n"
	l := &MarkdownLoader{}
	lines, err := l.Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
		}
	}
	if blanks != 2 {
		t.Errorf("expected 2 blank separators, got %d in %v", blanks, lines)
	}
}

func TestHTMLLoader_HeadingsAndBlocks(t *testing.T) {
	input := `<html><head><title>x</title><style>p{}</style></head>
<body><h1>第一章</h1><p>甲。</p><p>乙。</p><script>bad()</script></body></html>`
	l := &HTMLLoader{}
	lines, err := l.Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(lines, "|")
	for _, want := range []string{"第一章", "甲。", "乙。"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in output, got %v", want, lines)
		}
	}
	if strings.Contains(joined, "bad()") {
		t.Errorf("script content leaked into corpus: %v", lines)
	}
	if strings.Contains(joined, "p{}") {
		t.Errorf("style content leaked into corpus: %v", lines)
	}
}
