package engine

import (
	"log"

	"linguadrill/internal/models"
)

// ResetErrorMessage is shown inside the dialog when a reset call fails. The
// dialog stays open so the user can retry.
const ResetErrorMessage = "Failed to reset statistics. Please try again."

// ResetDialogState is the read-only snapshot of the dialog exposed to the
// presentation layer.
type ResetDialogState struct {
	Open      bool   `json:"open"`
	ItemID    string `json:"itemId"`
	ItemLabel string `json:"itemLabel"`
	Error     string `json:"error"`
	Resetting bool   `json:"resetting"`
}

// ResetDialog coordinates the confirm-then-reset workflow for one item's
// statistics: Closed -> Open -> Resetting -> Closed or open-with-error.
type ResetDialog struct {
	state     ResetDialogState
	reset     func(itemID string) error
	onSuccess func()
}

// NewResetDialog creates a closed dialog. onSuccess may be nil.
func NewResetDialog(reset func(itemID string) error, onSuccess func()) *ResetDialog {
	return &ResetDialog{
		reset:     reset,
		onSuccess: onSuccess,
	}
}

// OpenFor opens the dialog for the given item and clears any previous error.
func (d *ResetDialog) OpenFor(item models.PracticeItem) {
	d.state = ResetDialogState{
		Open:      true,
		ItemID:    item.ID,
		ItemLabel: item.Translation,
	}
}

// Confirm runs the reset for the selected item. On success the dialog closes
// and the success callback fires; on failure the dialog stays open with an
// inline error. Confirming with no item selected is a no-op.
func (d *ResetDialog) Confirm() {
	if d.state.ItemID == "" {
		return
	}

	d.state.Resetting = true
	defer func() { d.state.Resetting = false }()

	if err := d.reset(d.state.ItemID); err != nil {
		log.Printf("Failed to reset statistics for item %s: %v", d.state.ItemID, err)
		d.state.Error = ResetErrorMessage
		return
	}

	d.Close()
	if d.onSuccess != nil {
		d.onSuccess()
	}
}

// Close returns the dialog to its initial closed state.
func (d *ResetDialog) Close() {
	d.state = ResetDialogState{}
}

// State returns the current dialog snapshot.
func (d *ResetDialog) State() ResetDialogState {
	return d.state
}
