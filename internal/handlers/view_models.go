package handlers

import (
	"linguadrill/internal/engine"
	"linguadrill/internal/models"
)

// FieldView is one answer field as rendered to the client. Inside a
// session view the canonical answer is withheld.
type FieldView struct {
	Name   string      `json:"name"`
	Prompt string      `json:"prompt"`
	Input  string      `json:"input"`
	Mark   engine.Mark `json:"mark"`
}

// ItemView is one practice item as rendered inside a session view
type ItemView struct {
	ID          string      `json:"id"`
	Translation string      `json:"translation"`
	Category    string      `json:"category,omitempty"`
	Fields      []FieldView `json:"fields"`
}

// SessionView is the full render state of a practice session
type SessionView struct {
	Items        []ItemView             `json:"items"`
	SortOption   engine.SortOption      `json:"sortOption"`
	DisplayCount int                    `json:"displayCount"`
	ResetDialog  engine.ResetDialogState `json:"resetDialog"`
	Error        string                 `json:"error,omitempty"`
}

// ItemStatsView is one item with its aggregates, for the initial fetch
type ItemStatsView struct {
	ID          string             `json:"id"`
	Translation string             `json:"translation"`
	Category    string             `json:"category,omitempty"`
	Fields      []FieldView        `json:"fields"`
	Statistics  models.Statistics  `json:"statistics"`
}

func newSessionView(session *engine.Session) SessionView {
	visible := session.VisibleItems()
	view := SessionView{
		Items:        make([]ItemView, 0, len(visible)),
		SortOption:   session.SortOption(),
		DisplayCount: int(session.DisplayCount()),
		ResetDialog:  session.DialogState(),
		Error:        session.ErrorMessage(),
	}

	for _, item := range visible {
		itemView := ItemView{
			ID:          item.ID,
			Translation: item.Translation,
			Category:    item.Category,
			Fields:      make([]FieldView, 0, len(item.Fields)),
		}
		for _, field := range item.Fields {
			itemView.Fields = append(itemView.Fields, FieldView{
				Name:   field.Name,
				Prompt: field.Prompt,
				Input:  session.Input(item.ID, field.Name),
				Mark:   session.MarkFor(item.ID, field.Name),
			})
		}
		view.Items = append(view.Items, itemView)
	}

	return view
}

func newItemStatsViews(items []models.PracticeItem, stats map[string]models.Statistics) []ItemStatsView {
	views := make([]ItemStatsView, 0, len(items))
	for _, item := range items {
		view := ItemStatsView{
			ID:          item.ID,
			Translation: item.Translation,
			Category:    item.Category,
			Fields:      make([]FieldView, 0, len(item.Fields)),
			Statistics:  stats[item.ID],
		}
		for _, field := range item.Fields {
			view.Fields = append(view.Fields, FieldView{
				Name:   field.Name,
				Prompt: field.Prompt,
				Mark:   engine.MarkUnset,
			})
		}
		views = append(views, view)
	}
	return views
}
