package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/rcalder/inkbind/internal/export"
	"github.com/rcalder/inkbind/internal/rules"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readySession(t *testing.T, text string) *Session {
	t.Helper()
	sess := &Session{
		ID:        "s1",
		Filename:  "book.txt",
		Title:     "book",
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	sess.SetFileData([]byte(text))

	w := NewWorker(discardLogger(), 0)
	w.Process(context.Background(), sess)
	if sess.Snapshot().Status != StatusReady {
		t.Fatalf("expected ready session, got %+v", sess.Snapshot())
	}
	return sess
}

func TestWorker_LoadsAndClassifies(t *testing.T) {
	sess := readySession(t, "第一章 出门\n走路。\n第二章 回家\n睡觉。\n")

	snap := sess.Snapshot()
	if snap.TotalLines != 4 {
		t.Errorf("expected 4 lines, got %d", snap.TotalLines)
	}
	if snap.ItemCount != 2 {
		t.Errorf("expected 2 items, got %d", snap.ItemCount)
	}

	forest, items, err := sess.TOC()
	if err != nil {
		t.Fatalf("toc: %v", err)
	}
	if len(forest) != 2 || len(items) != 2 {
		t.Errorf("expected 2 roots and 2 items, got %d/%d", len(forest), len(items))
	}
}

func TestWorker_UnsupportedExtension(t *testing.T) {
	sess := &Session{ID: "s2", Filename: "book.xyz", Status: StatusQueued}
	sess.SetFileData([]byte("x"))

	w := NewWorker(discardLogger(), 0)
	w.Process(context.Background(), sess)
	if sess.Snapshot().Status != StatusFailed {
		t.Errorf("expected failed session, got %v", sess.Snapshot().Status)
	}
}

func TestWorker_EmptyUpload(t *testing.T) {
	sess := &Session{ID: "s3", Filename: "book.txt", Status: StatusQueued}
	sess.SetFileData(nil)

	w := NewWorker(discardLogger(), 0)
	w.Process(context.Background(), sess)
	if sess.Snapshot().Status != StatusFailed {
		t.Errorf("expected failed session, got %v", sess.Snapshot().Status)
	}
}

func TestSession_NotReadyOperations(t *testing.T) {
	sess := &Session{ID: "s4", Filename: "book.txt", Status: StatusQueued}

	if _, _, err := sess.TOC(); !errors.Is(err, ErrNotReady) {
		t.Errorf("TOC: expected ErrNotReady, got %v", err)
	}
	if err := sess.DeleteItem(0); !errors.Is(err, ErrNotReady) {
		t.Errorf("DeleteItem: expected ErrNotReady, got %v", err)
	}
	if _, err := sess.Export(&export.Metadata{}); !errors.Is(err, ErrNotReady) {
		t.Errorf("Export: expected ErrNotReady, got %v", err)
	}
}

func TestSession_ReparseBadRulesKeepsState(t *testing.T) {
	sess := readySession(t, "第一章 出门\n走路。\n")
	before := sess.Snapshot().ItemCount

	err := sess.Reparse([]rules.Level{{Name: "坏", Rules: []string{`^([`}}})
	var perr *rules.PatternError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PatternError, got %v", err)
	}
	if sess.Snapshot().ItemCount != before {
		t.Error("failed reparse must retain previous items")
	}
}

func TestSession_ClassifyLine(t *testing.T) {
	sess := readySession(t, "第一章 出门\n走路。\n")

	out, line, err := sess.ClassifyLine(0)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if !out.Accepted || out.Match.Level != 2 {
		t.Errorf("expected chapter match, got %+v", out)
	}
	if line != "第一章 出门" {
		t.Errorf("expected line text back, got %q", line)
	}

	out, _, err = sess.ClassifyLine(1)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if out.Accepted || out.Reason != rules.ReasonNoMatch {
		t.Errorf("expected no-match outcome, got %+v", out)
	}

	if _, _, err := sess.ClassifyLine(99); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestSession_ExportFillsMetadata(t *testing.T) {
	sess := readySession(t, "第一章 出门\n走路。\n")

	meta := export.Metadata{}
	book, err := sess.Export(&meta)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if meta.Title != "book" {
		t.Errorf("expected title fallback to session title, got %q", meta.Title)
	}
	if meta.PageCount < 1 {
		t.Errorf("expected computed page count, got %d", meta.PageCount)
	}
	if len(book.Spine) != 1 {
		t.Errorf("expected 1 content document, got %d", len(book.Spine))
	}
}

func TestSessionStore_TTLCleanup(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)
	sess := &Session{ID: "old", UpdatedAt: time.Now().Add(-time.Minute)}
	store.Put(sess)
	fresh := &Session{ID: "fresh", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()
	if store.Get("old") != nil {
		t.Error("expired session should be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("fresh session should survive")
	}
}
