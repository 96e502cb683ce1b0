package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rcalder/inkbind/internal/rules"
)

func (s *Server) handleGetTOC(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	forest, items, err := sess.TOC()
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"tree":  forest,
		"items": items,
	})
}

func (s *Server) handleReparse(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		Levels []apiLevel `json:"levels"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Levels) == 0 {
		jsonError(w, "at least one level is required", http.StatusBadRequest)
		return
	}

	levels := make([]rules.Level, 0, len(req.Levels))
	for _, al := range req.Levels {
		levels = append(levels, al.toLevel())
	}
	if err := sess.Reparse(levels); err != nil {
		writeOpError(w, err)
		return
	}

	forest, items, err := sess.TOC()
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"tree":  forest,
		"items": items,
	})
}

func (s *Server) handleClassifyLine(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		LineNo int `json:"line_no"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	out, line, err := sess.ClassifyLine(req.LineNo)
	if err != nil {
		writeOpError(w, err)
		return
	}

	resp := map[string]any{
		"line_no":  req.LineNo,
		"line":     line,
		"accepted": out.Accepted,
		"reason":   out.Reason,
	}
	if out.Match != nil {
		resp["level"] = out.Match.Level
		resp["level_name"] = out.Match.LevelName
		resp["title"] = out.Match.Title
		resp["rule"] = out.Match.Rule.Raw
	}
	writeJSON(w, resp)
}

func (s *Server) handleInsertItem(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	var req struct {
		StartLine int    `json:"start_line"`
		Level     int    `json:"level"`
		Title     string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := sess.InsertItem(req.StartLine, req.Level, req.Title)
	if err != nil {
		writeOpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	idx, ok := itemIndex(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteItem(idx); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"deleted": idx})
}

func (s *Server) handleRenameItem(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	idx, ok := itemIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := sess.RenameItem(idx, req.Title); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"renamed": idx})
}

func (s *Server) handleSwapItem(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	idx, ok := itemIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	dir := 0
	switch req.Direction {
	case "up":
		dir = -1
	case "down":
		dir = 1
	default:
		jsonError(w, `direction must be "up" or "down"`, http.StatusBadRequest)
		return
	}
	if err := sess.SwapItem(idx, dir); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"swapped": idx, "direction": req.Direction})
}

func itemIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	idx, err := strconv.Atoi(raw)
	if err != nil {
		jsonError(w, "invalid item index: "+raw, http.StatusBadRequest)
		return 0, false
	}
	return idx, true
}
