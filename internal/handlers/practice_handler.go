package handlers

import (
	"encoding/json"
	"net/http"
	"sync"

	"linguadrill/internal/engine"
	"linguadrill/internal/service"
)

// PracticeHandler exposes the practice session engine over JSON. Each
// authenticated user gets one in-memory session, created lazily and
// kept for the life of the process.
type PracticeHandler struct {
	practiceService *service.PracticeService

	mu       sync.Mutex
	sessions map[string]*engine.Session
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{
		practiceService: practiceService,
		sessions:        make(map[string]*engine.Session),
	}
}

func (h *PracticeHandler) session(r *http.Request) (*engine.Session, error) {
	user := GetUserFromContext(r.Context())

	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[user.ID]; ok {
		return session, nil
	}
	session, err := h.practiceService.NewSession(user.ID)
	if err != nil {
		return nil, err
	}
	h.sessions[user.ID] = session
	return session, nil
}

// DropSession discards a user's in-memory session, forcing the next
// request to rebuild it from the database.
func (h *PracticeHandler) DropSession(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, userID)
}

type fieldRequest struct {
	ItemID string `json:"itemId"`
	Field  string `json:"field"`
	Text   string `json:"text,omitempty"`
}

type itemRequest struct {
	ItemID string `json:"itemId"`
}

// Items returns all items with the user's aggregate statistics
func (h *PracticeHandler) Items(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	items, stats, err := h.practiceService.ItemsWithStats(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load items", "practice items", err)
		return
	}
	respondJSON(w, http.StatusOK, newItemStatsViews(items, stats))
}

// View returns the current render state of the session
func (h *PracticeHandler) View(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice view", err)
		return
	}
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Input stores the user's typed text for one field
func (h *PracticeHandler) Input(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice input", err)
		return
	}

	session.SetInput(req.ItemID, req.Field, req.Text)
	respondJSON(w, http.StatusOK, map[string]engine.Mark{"mark": session.MarkFor(req.ItemID, req.Field)})
}

// Validate checks one field's input against the canonical answer
func (h *PracticeHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice validate", err)
		return
	}

	mark := session.Validate(req.ItemID, req.Field)
	respondJSON(w, http.StatusOK, map[string]engine.Mark{"mark": mark})
}

// Enter validates the field and reports where focus should move next
func (h *PracticeHandler) Enter(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice enter", err)
		return
	}

	mark, next, ok := session.HandleEnter(req.ItemID, req.Field)
	response := struct {
		Mark engine.Mark         `json:"mark"`
		Next *engine.FocusTarget `json:"next,omitempty"`
	}{Mark: mark}
	if ok {
		response.Next = &next
	}
	respondJSON(w, http.StatusOK, response)
}

// Clear empties one field, or all of an item's fields when field is omitted
func (h *PracticeHandler) Clear(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice clear", err)
		return
	}

	focus, ok := session.ClearInput(req.ItemID, req.Field)
	response := struct {
		Focus *engine.FocusTarget `json:"focus,omitempty"`
	}{}
	if ok {
		response.Focus = &focus
	}
	respondJSON(w, http.StatusOK, response)
}

// Answer fills in the canonical answers for an item without recording
// an outcome
func (h *PracticeHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice answer", err)
		return
	}

	session.ShowAnswer(req.ItemID)
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Sort changes the sort option and recaptures the view snapshot
func (h *PracticeHandler) Sort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sort string `json:"sort"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice sort", err)
		return
	}

	session.SetSortOption(engine.ParseSortOption(req.Sort))
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Count changes how many items are shown without recapturing
func (h *PracticeHandler) Count(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice count", err)
		return
	}

	session.SetDisplayCount(engine.ParseDisplayCount(req.Count))
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// Refresh recaptures the sort and filter snapshots
func (h *PracticeHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice refresh", err)
		return
	}

	session.Refresh()
	respondJSON(w, http.StatusOK, newSessionView(session))
}

// ResetOpen opens the reset confirmation dialog for an item
func (h *PracticeHandler) ResetOpen(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice reset", err)
		return
	}

	session.OpenResetDialog(req.ItemID)
	respondJSON(w, http.StatusOK, session.DialogState())
}

// ResetConfirm performs the pending statistics reset
func (h *PracticeHandler) ResetConfirm(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice reset", err)
		return
	}

	session.ConfirmReset()
	respondJSON(w, http.StatusOK, session.DialogState())
}

// ResetClose dismisses the reset dialog
func (h *PracticeHandler) ResetClose(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice reset", err)
		return
	}

	session.CloseResetDialog()
	respondJSON(w, http.StatusOK, session.DialogState())
}

// ClearError dismisses the transient error banner
func (h *PracticeHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	session, err := h.session(r)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load session", "practice error", err)
		return
	}

	session.ClearErrorMessage()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
