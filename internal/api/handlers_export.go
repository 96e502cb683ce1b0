package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rcalder/inkbind/internal/epub"
	"github.com/rcalder/inkbind/internal/export"
)

// handleExport assembles the export tree and streams the packaged EPUB.
// The request is a multipart form: a "metadata" JSON field plus an
// optional "cover" image file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	meta := export.Metadata{Language: s.cfg.DefaultLanguage}
	if raw := r.FormValue("metadata"); strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			jsonError(w, "invalid metadata JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if meta.Language == "" {
			meta.Language = s.cfg.DefaultLanguage
		}
	}

	if cover, header, err := r.FormFile("cover"); err == nil {
		data, err := io.ReadAll(io.LimitReader(cover, s.cfg.MaxUploadBytes))
		cover.Close()
		if err != nil {
			jsonError(w, "failed to read cover", http.StatusBadRequest)
			return
		}
		meta.Cover = data
		meta.CoverExt = strings.ToLower(filepath.Ext(header.Filename))
	}

	book, err := sess.Export(&meta)
	if err != nil {
		writeOpError(w, err)
		return
	}

	// Build into a buffer so failures still get a JSON error response.
	start := time.Now()
	var buf bytes.Buffer
	if err := epub.WriteTo(book, meta, &buf); err != nil {
		s.log.Error("epub build failed", "session_id", sess.ID, "error", err)
		jsonError(w, "epub build failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.buildStats.Record(time.Since(start))

	filename := meta.Title
	if filename == "" {
		filename = "output"
	}
	w.Header().Set("Content-Type", "application/epub+zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s.epub`, urlEscape(filename)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := io.Copy(w, &buf); err != nil {
		s.log.Warn("epub download interrupted", "session_id", sess.ID, "error", err)
	}
}

func (s *Server) handleExportStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"builds":      s.buildStats.Snapshot(),
	})
}

// urlEscape percent-encodes a filename for the RFC 5987 header form.
func urlEscape(name string) string {
	var b strings.Builder
	for _, r := range []byte(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteByte(r)
		default:
			fmt.Fprintf(&b, "%%%02X", r)
		}
	}
	return b.String()
}
