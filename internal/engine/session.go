package engine

import (
	"strings"
	"sync"

	"linguadrill/internal/models"
)

// Mark is the validation verdict for one answer field.
type Mark string

const (
	MarkUnset     Mark = "unset"
	MarkCorrect   Mark = "correct"
	MarkIncorrect Mark = "incorrect"
)

// SubmitErrorMessage is shown when an asynchronous outcome commit fails. The
// typed answer and its mark are never rolled back; only the banner appears.
const SubmitErrorMessage = "Failed to save statistics. Please try again."

// Backend is the contract the engine needs from a statistics store. Outcome
// submissions are fire-and-forget from the session's point of view; failures
// surface through the notifier.
type Backend interface {
	SubmitOutcome(itemID string, correct bool) error
	ResetStatistics(itemID string) error
}

// FocusTarget names the field that should receive input focus next, a
// presentation concern delegated to the caller.
type FocusTarget struct {
	ItemID string `json:"itemId"`
	Field  string `json:"field"`
}

// SessionConfig carries the collaborators of a practice session.
type SessionConfig struct {
	Items         []models.PracticeItem
	Backend       Backend
	GetStatistics func(id string) models.Statistics
	Filter        func(item models.PracticeItem) bool
	Refetch       func()

	// OnResetSuccess fires after a confirmed statistics reset completes.
	OnResetSuccess func()
}

// Session drives one practice page: it owns the per-item input text and
// validation marks, gates duplicate attempts, commits outcomes to the
// statistics backend and exposes the sorted/filtered item view.
//
// Each page session constructs its own instance; there is no shared state
// between sessions.
type Session struct {
	mu sync.Mutex

	itemsByID map[string]models.PracticeItem
	inputs    map[string]map[string]string
	marks     map[string]map[string]Mark

	view      *View
	debouncer *Debouncer
	notifier  *Notifier
	dialog    *ResetDialog
	backend   Backend

	// runAsync dispatches fire-and-forget statistics calls. Tests replace it
	// with an inline runner for determinism.
	runAsync func(func())
}

// NewSession creates a practice session over the given items.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		itemsByID: make(map[string]models.PracticeItem, len(cfg.Items)),
		inputs:    make(map[string]map[string]string),
		marks:     make(map[string]map[string]Mark),
		debouncer: NewDebouncer(),
		notifier:  NewNotifier(),
		backend:   cfg.Backend,
		runAsync:  func(f func()) { go f() },
	}

	for _, item := range cfg.Items {
		s.itemsByID[item.ID] = item
	}

	s.view = NewView(ViewConfig{
		Items:         cfg.Items,
		GetStatistics: cfg.GetStatistics,
		Filter:        cfg.Filter,
		Refetch:       cfg.Refetch,
	})

	s.dialog = NewResetDialog(s.resetStatistics, cfg.OnResetSuccess)

	return s
}

// resetStatistics is the dialog's reset hook.
func (s *Session) resetStatistics(itemID string) error {
	return s.backend.ResetStatistics(itemID)
}

// SetInput stores the current text of a field and resets its mark: an edit
// invalidates any prior verdict.
func (s *Session) SetInput(itemID, field, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return
	}
	if _, ok := item.Field(field); !ok {
		return
	}

	if s.inputs[itemID] == nil {
		s.inputs[itemID] = make(map[string]string)
	}
	s.inputs[itemID][field] = text

	if s.marks[itemID] == nil {
		s.marks[itemID] = make(map[string]Mark)
	}
	s.marks[itemID][field] = MarkUnset
}

// Validate checks the current input of a field against its canonical answer
// and returns the resulting mark. Empty input and debounced duplicates are
// no-ops that leave the existing mark untouched.
//
// A single-answer item commits its outcome immediately. A multi-field item
// commits one aggregate outcome the moment all of its fields are filled and
// marked, with correct meaning every field was correct.
func (s *Session) Validate(itemID, field string) Mark {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return MarkUnset
	}
	answerField, ok := item.Field(field)
	if !ok {
		return MarkUnset
	}

	input := s.inputs[itemID][field]
	if strings.TrimSpace(input) == "" {
		return s.markFor(itemID, field)
	}

	if !s.debouncer.ShouldValidate(itemID, field) {
		return s.markFor(itemID, field)
	}

	mark := MarkIncorrect
	if ValidateAnswer(input, answerField.Answer) {
		mark = MarkCorrect
	}
	s.setMark(itemID, field, mark)

	if len(item.Fields) == 1 {
		s.submitOutcome(itemID, mark == MarkCorrect)
		return mark
	}

	if allCorrect, complete := s.aggregateVerdict(item); complete {
		s.submitOutcome(itemID, allCorrect)
	}
	return mark
}

// aggregateVerdict reports whether every field of the item is filled and
// marked, and whether every mark is correct.
func (s *Session) aggregateVerdict(item models.PracticeItem) (allCorrect, complete bool) {
	allCorrect = true
	for _, f := range item.Fields {
		if strings.TrimSpace(s.inputs[item.ID][f.Name]) == "" {
			return false, false
		}
		switch s.markFor(item.ID, f.Name) {
		case MarkUnset:
			return false, false
		case MarkIncorrect:
			allCorrect = false
		}
	}
	return allCorrect, true
}

// submitOutcome commits one outcome asynchronously. The caller's input and
// marks are never rolled back on failure; the error surfaces as a banner.
func (s *Session) submitOutcome(itemID string, correct bool) {
	s.runAsync(func() {
		s.notifier.RunGuarded(func() error {
			return s.backend.SubmitOutcome(itemID, correct)
		}, SubmitErrorMessage)
	})
}

// ClearInput clears one field, or every field of the item when field is
// empty, resetting marks. It returns the field that should regain focus.
func (s *Session) ClearInput(itemID, field string) (FocusTarget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return FocusTarget{}, false
	}

	if field == "" {
		delete(s.inputs, itemID)
		delete(s.marks, itemID)
		if len(item.Fields) == 0 {
			return FocusTarget{}, false
		}
		return FocusTarget{ItemID: itemID, Field: item.Fields[0].Name}, true
	}

	if _, ok := item.Field(field); !ok {
		return FocusTarget{}, false
	}
	if s.inputs[itemID] != nil {
		delete(s.inputs[itemID], field)
	}
	if s.marks[itemID] != nil {
		delete(s.marks[itemID], field)
	}
	return FocusTarget{ItemID: itemID, Field: field}, true
}

// ShowAnswer fills every field of the item with its canonical answer and
// marks them correct. Revealing an answer is not an attempt: no outcome is
// submitted.
func (s *Session) ShowAnswer(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return
	}

	if s.inputs[itemID] == nil {
		s.inputs[itemID] = make(map[string]string)
	}
	for _, f := range item.Fields {
		s.inputs[itemID][f.Name] = f.Answer
		s.setMark(itemID, f.Name, MarkCorrect)
	}
}

// HandleEnter validates the current field and returns the next field that
// should receive focus: the item's next field, or the first field of the
// next visible item.
func (s *Session) HandleEnter(itemID, field string) (Mark, FocusTarget, bool) {
	mark := s.Validate(itemID, field)

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return mark, FocusTarget{}, false
	}

	for i, f := range item.Fields {
		if f.Name == field && i+1 < len(item.Fields) {
			return mark, FocusTarget{ItemID: itemID, Field: item.Fields[i+1].Name}, true
		}
	}

	visible := s.view.Visible()
	for i, v := range visible {
		if v.ID == itemID && i+1 < len(visible) {
			next := visible[i+1]
			if len(next.Fields) > 0 {
				return mark, FocusTarget{ItemID: next.ID, Field: next.Fields[0].Name}, true
			}
		}
	}
	return mark, FocusTarget{}, false
}

// Input returns the current text of a field.
func (s *Session) Input(itemID, field string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs[itemID][field]
}

// MarkFor returns the current validation mark of a field.
func (s *Session) MarkFor(itemID, field string) Mark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markFor(itemID, field)
}

func (s *Session) markFor(itemID, field string) Mark {
	if m, ok := s.marks[itemID][field]; ok {
		return m
	}
	return MarkUnset
}

func (s *Session) setMark(itemID, field string, mark Mark) {
	if s.marks[itemID] == nil {
		s.marks[itemID] = make(map[string]Mark)
	}
	s.marks[itemID][field] = mark
}

// VisibleItems returns the current sorted, filtered, windowed item list.
func (s *Session) VisibleItems() []models.PracticeItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Visible()
}

// SortOption returns the current sort option.
func (s *Session) SortOption() SortOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.SortOption()
}

// DisplayCount returns the current display window.
func (s *Session) DisplayCount() DisplayCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.DisplayCount()
}

// SetSortOption changes the ordering and captures fresh snapshots.
func (s *Session) SetSortOption(opt SortOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.SetSortOption(opt)
}

// SetDisplayCount changes how many items are shown.
func (s *Session) SetDisplayCount(count DisplayCount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.SetDisplayCount(count)
}

// Refresh recaptures the view snapshots from the live statistics source.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Refresh()
}

// OpenResetDialog opens the reset confirmation dialog for an item. Unknown
// ids leave the dialog closed.
func (s *Session) OpenResetDialog(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[itemID]
	if !ok {
		return
	}
	s.dialog.OpenFor(item)
}

// ConfirmReset runs the confirmed reset asynchronously.
func (s *Session) ConfirmReset() {
	s.runAsync(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.dialog.Confirm()
	})
}

// CloseResetDialog closes the dialog and discards any selection or error.
func (s *Session) CloseResetDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog.Close()
}

// DialogState returns the reset dialog snapshot.
func (s *Session) DialogState() ResetDialogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialog.State()
}

// ErrorMessage returns the transient statistics error, or empty when none is
// visible.
func (s *Session) ErrorMessage() string {
	if err := s.notifier.Error(); err != nil {
		return err.Message
	}
	return ""
}

// ClearErrorMessage dismisses the transient statistics error.
func (s *Session) ClearErrorMessage() {
	s.notifier.ClearError()
}
