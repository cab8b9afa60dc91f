package handlers

import (
	"encoding/json"
	"net/http"

	"linguadrill/internal/models"
	"linguadrill/internal/repository"
	"linguadrill/internal/validation"
)

// ItemsHandler handles CRUD for practice items
type ItemsHandler struct {
	itemRepo        *repository.ItemRepository
	practiceHandler *PracticeHandler
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(itemRepo *repository.ItemRepository, practiceHandler *PracticeHandler) *ItemsHandler {
	return &ItemsHandler{itemRepo: itemRepo, practiceHandler: practiceHandler}
}

type itemPayload struct {
	Translation string               `json:"translation"`
	Category    string               `json:"category"`
	Fields      []models.AnswerField `json:"fields"`
}

func (p itemPayload) fieldNames() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}

// List returns every item including canonical answers
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemRepo.GetAllItems()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load items", "list items", err)
		return
	}
	if items == nil {
		items = []models.PracticeItem{}
	}
	respondJSON(w, http.StatusOK, items)
}

// Create adds a new item
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if err := validation.ValidateItem(req.Translation, req.fieldNames()); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	item := &models.PracticeItem{
		Translation: req.Translation,
		Category:    req.Category,
		Fields:      req.Fields,
	}
	if err := h.itemRepo.CreateItem(item); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create item", "create item", err)
		return
	}

	h.dropSessionFor(r)
	respondJSON(w, http.StatusCreated, item)
}

// Update replaces an item's content and answer fields
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req itemPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if err := validation.ValidateItem(req.Translation, req.fieldNames()); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	existing, err := h.itemRepo.GetItemByID(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load item", "update item", err)
		return
	}
	if existing == nil {
		respondWithError(w, http.StatusNotFound, "Item not found", "", nil)
		return
	}

	item := &models.PracticeItem{
		ID:          id,
		Translation: req.Translation,
		Category:    req.Category,
		Fields:      req.Fields,
	}
	if err := h.itemRepo.UpdateItem(item); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update item", "update item", err)
		return
	}

	h.dropSessionFor(r)
	respondJSON(w, http.StatusOK, item)
}

// Delete removes an item and its statistics
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.itemRepo.DeleteItem(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete item", "delete item", err)
		return
	}

	h.dropSessionFor(r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// dropSessionFor invalidates the caller's cached session so item edits
// become visible on the next request.
func (h *ItemsHandler) dropSessionFor(r *http.Request) {
	if user := GetUserFromContext(r.Context()); user != nil {
		h.practiceHandler.DropSession(user.ID)
	}
}
