package corpus

import (
	"errors"
	"testing"
)

func TestNew_StripsLeadingTrailingBlanks(t *testing.T) {
	c, err := New([]string{"", "  ", "first", "", "last", "\t", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 lines, got %d", c.Len())
	}
	if c.Line(0) != "first" {
		t.Errorf("line 0: expected %q, got %q", "first", c.Line(0))
	}
	// Interior blank lines survive.
	if c.Line(1) != "" {
		t.Errorf("line 1: expected blank, got %q", c.Line(1))
	}
	if c.Line(2) != "last" {
		t.Errorf("line 2: expected %q, got %q", "last", c.Line(2))
	}
}

func TestNew_EmptyInput(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty for nil input, got %v", err)
	}
	if _, err := New([]string{"", "   ", "\t"}); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty for all-blank input, got %v", err)
	}
}

func TestFromText_NormalizesNewlinesAndBOM(t *testing.T) {
	c, err := FromText("\uFEFF第一章\r\n正文\r尾行")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"第一章", "正文", "尾行"}
	if c.Len() != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), c.Len())
	}
	for i, w := range want {
		if c.Line(i) != w {
			t.Errorf("line %d: expected %q, got %q", i, w, c.Line(i))
		}
	}
}

func TestSlice_ClampsToBounds(t *testing.T) {
	c, err := New([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := c.Slice(-5, 10)
	if len(got) != 3 {
		t.Fatalf("expected full slice of 3, got %d", len(got))
	}
	got = c.Slice(1, 1)
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("expected [b], got %v", got)
	}
	if got := c.Slice(2, 1); got != nil {
		t.Errorf("expected nil for inverted range, got %v", got)
	}
}

func TestLine_OutOfRange(t *testing.T) {
	c, _ := New([]string{"only"})
	if c.Line(-1) != "" || c.Line(1) != "" {
		t.Error("out-of-range lines should be empty")
	}
}
