package models

import "time"

// PracticeItem is one drillable vocabulary entry: a verb with a single
// answer, or an adjective with several inflected forms. Items are read-only
// during a practice session.
type PracticeItem struct {
	ID          string        `json:"id"`
	Translation string        `json:"translation"`
	Category    string        `json:"category,omitempty"`
	Fields      []AnswerField `json:"fields"`
	CreatedAt   time.Time     `json:"created_at"`
}

// AnswerField is one named answer slot of an item, e.g. "masculineSingular".
// Single-answer items carry exactly one field named "answer".
type AnswerField struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
}

// SingleAnswerFieldName is the conventional field name for items with one
// answer slot.
const SingleAnswerFieldName = "answer"

// Field returns the named answer field and whether it exists.
func (i PracticeItem) Field(name string) (AnswerField, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return AnswerField{}, false
}
