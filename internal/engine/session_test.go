package engine

import (
	"errors"
	"testing"
	"time"

	"linguadrill/internal/models"
)

type outcome struct {
	itemID  string
	correct bool
}

type fakeBackend struct {
	submissions []outcome
	submitErr   error
	resets      []string
	resetErr    error
}

func (b *fakeBackend) SubmitOutcome(itemID string, correct bool) error {
	if b.submitErr != nil {
		return b.submitErr
	}
	b.submissions = append(b.submissions, outcome{itemID: itemID, correct: correct})
	return nil
}

func (b *fakeBackend) ResetStatistics(itemID string) error {
	if b.resetErr != nil {
		return b.resetErr
	}
	b.resets = append(b.resets, itemID)
	return nil
}

// newTestSession builds a session with an inline async runner and a manual
// clock so attempt commits are deterministic.
func newTestSession(items []models.PracticeItem, backend *fakeBackend) (*Session, *fakeClock) {
	s := NewSession(SessionConfig{
		Items:   items,
		Backend: backend,
	})
	s.runAsync = func(f func()) { f() }

	clock := newFakeClock()
	s.debouncer.now = clock.now
	return s, clock
}

func verbItem(id, translation, answer string) models.PracticeItem {
	return models.PracticeItem{
		ID:          id,
		Translation: translation,
		Category:    "verb",
		Fields: []models.AnswerField{
			{Name: models.SingleAnswerFieldName, Answer: answer},
		},
	}
}

func adjectiveItem(id, translation string) models.PracticeItem {
	return models.PracticeItem{
		ID:          id,
		Translation: translation,
		Category:    "adjective",
		Fields: []models.AnswerField{
			{Name: "masculineSingular", Answer: "bello"},
			{Name: "masculinePlural", Answer: "belli"},
			{Name: "feminineSingular", Answer: "bella"},
			{Name: "femininePlural", Answer: "belle"},
		},
	}
}

func TestValidateSingleFieldSubmitsImmediately(t *testing.T) {
	backend := &fakeBackend{}
	s, _ := newTestSession([]models.PracticeItem{verbItem("v1", "to eat", "mangiare")}, backend)

	s.SetInput("v1", models.SingleAnswerFieldName, " MANGIARE ")
	mark := s.Validate("v1", models.SingleAnswerFieldName)

	if mark != MarkCorrect {
		t.Errorf("Validate() = %v, want %v", mark, MarkCorrect)
	}
	if len(backend.submissions) != 1 {
		t.Fatalf("got %d submissions, want 1", len(backend.submissions))
	}
	if got := backend.submissions[0]; got.itemID != "v1" || !got.correct {
		t.Errorf("submission = %+v, want {v1 true}", got)
	}
}

func TestValidateIncorrectAnswer(t *testing.T) {
	backend := &fakeBackend{}
	s, _ := newTestSession([]models.PracticeItem{verbItem("v1", "to eat", "mangiare")}, backend)

	s.SetInput("v1", models.SingleAnswerFieldName, "bere")
	mark := s.Validate("v1", models.SingleAnswerFieldName)

	if mark != MarkIncorrect {
		t.Errorf("Validate() = %v, want %v", mark, MarkIncorrect)
	}
	if len(backend.submissions) != 1 || backend.submissions[0].correct {
		t.Errorf("submissions = %+v, want one incorrect outcome", backend.submissions)
	}
}

func TestValidateEmptyInputIsIgnored(t *testing.T) {
	backend := &fakeBackend{}
	s, _ := newTestSession([]models.PracticeItem{verbItem("v1", "to eat", "mangiare")}, backend)

	s.SetInput("v1", models.SingleAnswerFieldName, "   ")
	mark := s.Validate("v1", models.SingleAnswerFieldName)

	if mark != MarkUnset {
		t.Errorf("Validate() = %v, want %v", mark, MarkUnset)
	}
	if len(backend.submissions) != 0 {
		t.Errorf("got %d submissions, want 0 for empty input", len(backend.submissions))
	}
}

func TestEditResetsMark(t *testing.T) {
	backend := &fakeBackend{}
	s, _ := newTestSession([]models.PracticeItem{verbItem("v1", "to eat", "mangiare")}, backend)

	s.SetInput("v1", models.SingleAnswerFieldName, "mangiare")
	s.Validate("v1", models.SingleAnswerFieldName)
	if got := s.MarkFor("v1", models.SingleAnswerFieldName); got != MarkCorrect {
		t.Fatalf("MarkFor() = %v, want %v", got, MarkCorrect)
	}

	s.SetInput("v1", models.SingleAnswerFieldName, "mangiar")
	if got := s.MarkFor("v1", models.SingleAnswerFieldName); got != MarkUnset {
		t.Errorf("MarkFor() after edit = %v, want %v", got, MarkUnset)
	}
}

func TestDebouncedValidationSubmitsOnce(t *testing.T) {
	backend := &fakeBackend{}
	s, clock := newTestSession([]models.PracticeItem{verbItem("v1", "to eat", "mangiare")}, backend)

	s.SetInput("v1", models.SingleAnswerFieldName, "mangiare")

	// An Enter handler and a blur handler double-firing for one answer.
	s.Validate("v1", models.SingleAnswerFieldName)
	clock.advance(30 * time.Millisecond)
	s.Validate("v1", models.SingleAnswerFieldName)

	if len(backend.submissions) != 1 {
		t.Fatalf("got %d submissions within the window, want 1", len(backend.submissions))
	}

	clock.advance(100 * time.Millisecond)
	s.Validate("v1", models.SingleAnswerFieldName)

	if len(backend.submissions) != 2 {
		t.Errorf("got %d submissions after the window elapsed, want 2", len(backend.submissions))
	}
}

func TestMultiFieldAggregateSubmission(t *testing.T) {
	backend := &fakeBackend{}
	s, clock := newTestSession([]models.PracticeItem{adjectiveItem("a1", "beautiful")}, backend)

	answers := map[string]string{
		"masculineSingular": "bello",
		"masculinePlural":   "belli",
		"feminineSingular":  "bella",
		"femininePlural":    "belly", // wrong
	}

	fields := []string{"masculineSingular", "masculinePlural", "feminineSingular", "femininePlural"}
	for i, field := range fields {
		s.SetInput("a1", field, answers[field])
		s.Validate("a1", field)
		clock.advance(150 * time.Millisecond)

		if i < len(fields)-1 && len(backend.submissions) != 0 {
			t.Fatalf("got %d submissions after %d fields, want 0 until all are validated", len(backend.submissions), i+1)
		}
	}

	if len(backend.submissions) != 1 {
		t.Fatalf("got %d submissions, want exactly 1 aggregate outcome", len(backend.submissions))
	}
	if got := backend.submissions[0]; got.itemID != "a1" || got.correct {
		t.Errorf("submission = %+v, want {a1 false}: one wrong field fails the aggregate", got)
	}
}

func TestMultiFieldAllCorrectAggregate(t *testing.T) {
	backend := &fakeBackend{}
	s, clock := newTestSession([]models.PracticeItem{adjectiveItem("a1", "beautiful")}, backend)

	item := adjectiveItem("a1", "beautiful")
	for _, f := range item.Fields {
		s.SetInput("a1", f.Name, f.Answer)
		s.Validate("a1", f.Name)
		clock.advance(150 * time.Millisecond)
	}

	if len(backend.submissions) != 1 || !backend.submissions[0].correct {
		t.Errorf("submissions = %+v, want one correct aggregate outcome", backend.submissions)
	}
}

func TestShowAnswerDoesNotSubmit(t *testing.T) {
	backend := &fakeBackend{}
	s, _ := newTestSession([]models.PracticeItem{adjectiveItem("a1", "beautiful")}, backend)

	s.ShowAnswer("a1")

	item := adjectiveItem("a1", "beautiful")
	for _, f := range item.Fields {
		if got := s.Input("a1", f.Name); got != f.Answer {
			t.Errorf("Input(%q) = %q, want the canonical answer %q", f.Name, got, f.Answer)
		}
		if got := s.MarkFor("a1", f.Name); got != MarkCorrect {
			t.Errorf("MarkFor(%q) = %v, want %v", f.Name, got, MarkCorrect)
		}
	}
	if len(backend.submissions) != 0 {
		t.Errorf("got %d submissions, want 0: revealing an answer is not an attempt", len(backend.submissions))
	}
}

func TestSubmitFailureShowsBannerAndKeepsMark(t *testing.T) {
	backend := &fakeBackend{submitErr: errors.New("network down")}
	s, _ := newTestSession([]models.PracticeItem{verbItem("v1", "to eat", "mangiare")}, backend)

	s.SetInput("v1", models.SingleAnswerFieldName, "mangiare")
	mark := s.Validate("v1", models.SingleAnswerFieldName)

	if mark != MarkCorrect {
		t.Errorf("Validate() = %v, want %v: local state is never rolled back", mark, MarkCorrect)
	}
	if got := s.ErrorMessage(); got != SubmitErrorMessage {
		t.Errorf("ErrorMessage() = %q, want %q", got, SubmitErrorMessage)
	}
	if got := s.Input("v1", models.SingleAnswerFieldName); got != "mangiare" {
		t.Errorf("Input() = %q, want the typed answer preserved", got)
	}
}

func TestClearInput(t *testing.T) {
	backend := &fakeBackend{}
	s, clock := newTestSession([]models.PracticeItem{adjectiveItem("a1", "beautiful")}, backend)

	s.SetInput("a1", "masculineSingular", "bello")
	s.Validate("a1", "masculineSingular")
	clock.advance(150 * time.Millisecond)
	s.SetInput("a1", "feminineSingular", "bella")

	t.Run("single field", func(t *testing.T) {
		focus, ok := s.ClearInput("a1", "masculineSingular")
		if !ok || focus != (FocusTarget{ItemID: "a1", Field: "masculineSingular"}) {
			t.Errorf("ClearInput() focus = %+v, ok = %v", focus, ok)
		}
		if got := s.Input("a1", "masculineSingular"); got != "" {
			t.Errorf("Input() = %q, want empty", got)
		}
		if got := s.MarkFor("a1", "masculineSingular"); got != MarkUnset {
			t.Errorf("MarkFor() = %v, want %v", got, MarkUnset)
		}
		if got := s.Input("a1", "feminineSingular"); got != "bella" {
			t.Errorf("Input() = %q, want other fields untouched", got)
		}
	})

	t.Run("all fields", func(t *testing.T) {
		focus, ok := s.ClearInput("a1", "")
		if !ok || focus != (FocusTarget{ItemID: "a1", Field: "masculineSingular"}) {
			t.Errorf("ClearInput() focus = %+v, ok = %v, want the item's first field", focus, ok)
		}
		if got := s.Input("a1", "feminineSingular"); got != "" {
			t.Errorf("Input() = %q, want empty after clear-all", got)
		}
	})
}

func TestHandleEnterAdvancesFocus(t *testing.T) {
	backend := &fakeBackend{}
	items := []models.PracticeItem{
		adjectiveItem("a1", "beautiful"),
		verbItem("v1", "to eat", "mangiare"),
	}
	s, clock := newTestSession(items, backend)

	s.SetInput("a1", "masculineSingular", "bello")
	_, focus, ok := s.HandleEnter("a1", "masculineSingular")
	if !ok || focus != (FocusTarget{ItemID: "a1", Field: "masculinePlural"}) {
		t.Errorf("HandleEnter() focus = %+v, want the item's next field", focus)
	}
	clock.advance(150 * time.Millisecond)

	s.SetInput("a1", "femininePlural", "belle")
	_, focus, ok = s.HandleEnter("a1", "femininePlural")
	if !ok || focus != (FocusTarget{ItemID: "v1", Field: models.SingleAnswerFieldName}) {
		t.Errorf("HandleEnter() focus = %+v, want the next visible item's first field", focus)
	}
	clock.advance(150 * time.Millisecond)

	s.SetInput("v1", models.SingleAnswerFieldName, "mangiare")
	_, _, ok = s.HandleEnter("v1", models.SingleAnswerFieldName)
	if ok {
		t.Error("HandleEnter() on the last visible field should report no next target")
	}
}

func TestSessionResetWorkflow(t *testing.T) {
	backend := &fakeBackend{}
	refreshed := 0
	s := NewSession(SessionConfig{
		Items:          []models.PracticeItem{verbItem("v1", "to eat", "mangiare")},
		Backend:        backend,
		OnResetSuccess: func() { refreshed++ },
	})
	s.runAsync = func(f func()) { f() }

	s.OpenResetDialog("unknown")
	if s.DialogState().Open {
		t.Fatal("dialog must stay closed for an unknown item id")
	}

	s.OpenResetDialog("v1")
	if state := s.DialogState(); !state.Open || state.ItemLabel != "to eat" {
		t.Fatalf("DialogState() = %+v, want open with the item's label", state)
	}

	s.ConfirmReset()
	if s.DialogState().Open {
		t.Error("dialog should close after a successful reset")
	}
	if len(backend.resets) != 1 || backend.resets[0] != "v1" {
		t.Errorf("resets = %v, want [v1]", backend.resets)
	}
	if refreshed != 1 {
		t.Errorf("OnResetSuccess fired %d times, want 1", refreshed)
	}
}
