package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/rcalder/inkbind/internal/corpus"
	"github.com/rcalder/inkbind/internal/ingest"
	"github.com/rcalder/inkbind/internal/rules"
	"github.com/rcalder/inkbind/internal/toc"
)

// Worker loads one uploaded document into a ready session: decode to a
// line corpus, compile the rule levels, run the initial classification.
type Worker struct {
	log           *slog.Logger
	maxHeadingLen int
}

func NewWorker(log *slog.Logger, maxHeadingLen int) *Worker {
	return &Worker{log: log, maxHeadingLen: maxHeadingLen}
}

// Process runs the full load pipeline for a session.
func (w *Worker) Process(ctx context.Context, sess *Session) {
	log := w.log.With("session_id", sess.ID, "filename", sess.Filename)

	// Phase 1: Decode into a line corpus.
	sess.SetStatus(StatusDecoding, "decoding")
	loader, err := ingest.ForFile(sess.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		sess.AddError(err.Error())
		sess.SetStatus(StatusFailed, "decoding")
		return
	}

	sess.mu.Lock()
	data := sess.fileData
	levels := sess.levels
	sess.mu.Unlock()

	lines, err := loader.Load(bytes.NewReader(data))
	if err != nil {
		log.Error("load failed", "error", err)
		sess.AddError(fmt.Sprintf("load: %s", err))
		sess.SetStatus(StatusFailed, "decoding")
		return
	}

	c, err := corpus.New(lines)
	if err != nil {
		log.Error("empty corpus", "error", err)
		sess.AddError(err.Error())
		sess.SetStatus(StatusFailed, "decoding")
		return
	}

	if ctx.Err() != nil {
		sess.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 2: Compile rules and classify every line.
	sess.SetStatus(StatusClassifying, "classifying")
	if len(levels) == 0 {
		levels = rules.DefaultLevels()
		sess.SetLevels(levels, w.maxHeadingLen)
	}
	compiled, err := rules.Compile(levels)
	if err != nil {
		log.Error("rule compile failed", "error", err)
		sess.AddError(fmt.Sprintf("rules: %s", err))
		sess.SetStatus(StatusFailed, "classifying")
		return
	}

	col := toc.NewCollection(c)
	col.Reparse(compiled, w.maxHeadingLen)

	sess.setLoaded(c, compiled, col)
	log.Info("session ready", "lines", c.Len(), "items", col.Len())
}
