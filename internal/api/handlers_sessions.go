package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rcalder/inkbind/internal/corpus"
	"github.com/rcalder/inkbind/internal/ingest"
	"github.com/rcalder/inkbind/internal/pipeline"
	"github.com/rcalder/inkbind/internal/rules"
	"github.com/rcalder/inkbind/internal/toc"
)

// apiLevel is the wire form of one rule level: rules either as a list
// or as an editor block, one rule per line.
type apiLevel struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules,omitempty"`
	Block string   `json:"block,omitempty"`
}

func (l apiLevel) toLevel() rules.Level {
	rs := l.Rules
	if len(rs) == 0 && l.Block != "" {
		rs = rules.ParseRuleBlock(l.Block)
	}
	return rules.Level{Name: l.Name, Rules: rs}
}

func parseLevels(raw string) ([]rules.Level, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var apiLevels []apiLevel
	if err := json.Unmarshal([]byte(raw), &apiLevels); err != nil {
		return nil, fmt.Errorf("invalid levels JSON: %w", err)
	}
	levels := make([]rules.Level, 0, len(apiLevels))
	for _, al := range apiLevels {
		levels = append(levels, al.toLevel())
	}
	return levels, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !ingest.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	levels, err := parseLevels(r.FormValue("levels"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Surface rule mistakes at save time, before queueing.
	if len(levels) > 0 {
		if _, err := rules.Compile(levels); err != nil {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = ingest.TitleFromFilename(filename)
	}

	now := time.Now()
	sess := &pipeline.Session{
		ID:        uuid.NewString(),
		Filename:  filename,
		Title:     title,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess.SetFileData(data)
	sess.SetLevels(levels, s.cfg.MaxHeadingLen)

	if err := s.orchestrator.Submit(sess); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"session_id": sess.ID,
		"status":     sess.Status,
		"poll_url":   fmt.Sprintf("/api/sessions/%s", sess.ID),
	})
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, sess.Snapshot())
}

// session resolves the {sessionID} URL parameter, writing a 404 and
// returning nil when unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *pipeline.Session {
	id := chi.URLParam(r, "sessionID")
	sess := s.orchestrator.GetSession(id)
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil
	}
	return sess
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeOpError maps core error types onto HTTP statuses.
func writeOpError(w http.ResponseWriter, err error) {
	var verr *toc.ValidationError
	var rverr *rules.ValidationError
	var perr *rules.PatternError
	switch {
	case errors.Is(err, pipeline.ErrNotReady):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, corpus.ErrEmpty):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &verr), errors.As(err, &rverr), errors.As(err, &perr):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
