// Package pipeline runs background ingestion and owns the per-session
// editing state.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rcalder/inkbind/internal/corpus"
	"github.com/rcalder/inkbind/internal/export"
	"github.com/rcalder/inkbind/internal/rules"
	"github.com/rcalder/inkbind/internal/toc"
)

// Status represents the state of a session's ingestion.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDecoding    Status = "decoding"
	StatusClassifying Status = "classifying"
	StatusReady       Status = "ready"
	StatusFailed      Status = "failed"
)

// ErrNotReady is returned for TOC operations on a session whose corpus
// has not finished loading.
var ErrNotReady = errors.New("session is not ready")

// Session is one editing session: an immutable corpus plus the live TOC
// collection. All access to the collection funnels through the session
// mutex, giving the single-writer discipline the core requires.
type Session struct {
	mu sync.Mutex

	ID       string `json:"session_id"`
	Filename string `json:"filename"`
	Title    string `json:"title"`

	Status Status `json:"status"`
	Phase  string `json:"phase"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData      []byte
	levels        []rules.Level
	maxHeadingLen int

	compiled   []rules.CompiledLevel
	corpus     *corpus.Corpus
	collection *toc.Collection
	errors     []string
}

// SetStatus updates session status atomically.
func (s *Session) SetStatus(status Status, phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = status
	s.Phase = phase
	s.UpdatedAt = time.Now()
}

// AddError records an ingestion error.
func (s *Session) AddError(err string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, err)
	s.UpdatedAt = time.Now()
}

// SetFileData sets the raw upload bytes for background loading.
func (s *Session) SetFileData(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileData = data
}

// SetLevels sets the rule levels used for the initial parse.
func (s *Session) SetLevels(levels []rules.Level, maxHeadingLen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = levels
	s.maxHeadingLen = maxHeadingLen
}

// setLoaded installs the fully materialized corpus and collection; the
// session becomes ready and the upload bytes are released.
func (s *Session) setLoaded(c *corpus.Corpus, compiled []rules.CompiledLevel, col *toc.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = c
	s.compiled = compiled
	s.collection = col
	s.fileData = nil
	s.Status = StatusReady
	s.Phase = "ready"
	s.UpdatedAt = time.Now()
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID         string   `json:"session_id"`
	Filename   string   `json:"filename"`
	Title      string   `json:"title"`
	Status     Status   `json:"status"`
	Phase      string   `json:"phase"`
	TotalLines int      `json:"total_lines"`
	ItemCount  int      `json:"item_count"`
	Errors     []string `json:"errors"`
}

// Snapshot returns a JSON-safe copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	errs := s.errors
	if errs == nil {
		errs = []string{}
	}
	snap := Snapshot{
		ID:       s.ID,
		Filename: s.Filename,
		Title:    s.Title,
		Status:   s.Status,
		Phase:    s.Phase,
		Errors:   errs,
	}
	if s.corpus != nil {
		snap.TotalLines = s.corpus.Len()
	}
	if s.collection != nil {
		snap.ItemCount = s.collection.Len()
	}
	return snap
}

func (s *Session) readyLocked() error {
	if s.Status != StatusReady || s.collection == nil {
		return ErrNotReady
	}
	return nil
}

// TOC returns the current nested forest and flat item list.
func (s *Session) TOC() ([]*toc.Node, []*toc.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, nil, err
	}
	return s.collection.Forest(), s.collection.Items(), nil
}

// Levels returns the current rule level definitions.
func (s *Session) Levels() []rules.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]rules.Level, len(s.levels))
	copy(out, s.levels)
	return out
}

// Reparse replaces the rule levels and re-classifies every corpus line.
// On a compile error the previous rules and items are retained.
func (s *Session) Reparse(levels []rules.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	compiled, err := rules.Compile(levels)
	if err != nil {
		return err
	}
	s.levels = levels
	s.compiled = compiled
	s.collection.Reparse(compiled, s.maxHeadingLen)
	s.UpdatedAt = time.Now()
	return nil
}

// InsertItem adds a TOC item at startLine using the named level.
func (s *Session) InsertItem(startLine, level int, title string) (*toc.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	name := ""
	for _, cl := range s.compiled {
		if cl.Index == level {
			name = cl.Name
			break
		}
	}
	if name == "" {
		return nil, &toc.ValidationError{Reason: fmt.Sprintf("no configured level %d", level)}
	}
	item, err := s.collection.Insert(startLine, level, name, title)
	if err != nil {
		return nil, err
	}
	s.UpdatedAt = time.Now()
	return item, nil
}

// DeleteItem removes the item at flat index i.
func (s *Session) DeleteItem(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if err := s.collection.Delete(i); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	return nil
}

// RenameItem retitles the item at flat index i.
func (s *Session) RenameItem(i int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if err := s.collection.Rename(i, title); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	return nil
}

// SwapItem swaps titles with the same-level neighbor at i+dir.
func (s *Session) SwapItem(i, dir int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return err
	}
	if err := s.collection.SwapAdjacent(i, dir); err != nil {
		return err
	}
	s.UpdatedAt = time.Now()
	return nil
}

// ClassifyLine runs the rule engine against a single corpus line and
// returns the outcome together with the line text — the rule-testing
// operation of the editor.
func (s *Session) ClassifyLine(lineNo int) (rules.Outcome, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return rules.Outcome{}, "", err
	}
	if lineNo < 0 || lineNo >= s.corpus.Len() {
		return rules.Outcome{}, "", &toc.ValidationError{
			Reason: fmt.Sprintf("line %d out of range [0, %d)", lineNo, s.corpus.Len()),
		}
	}
	line := s.corpus.Line(lineNo)
	return rules.Classify(line, s.compiled, s.maxHeadingLen), line, nil
}

// Export assembles the export tree. Blank metadata fields are filled
// from session state: the title from the upload name and the page count
// from the corpus estimate.
func (s *Session) Export(meta *export.Metadata) (*export.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.readyLocked(); err != nil {
		return nil, err
	}
	if meta.Title == "" {
		meta.Title = s.Title
	}
	if meta.PageCount <= 0 {
		meta.PageCount = export.EstimatePages(s.corpus)
	}
	return export.Assemble(s.corpus, s.collection.Items())
}
