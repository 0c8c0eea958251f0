package sweep

import "errors"

var (
	// ErrCaretNotFound is returned when no menu affordance became visible
	// within the caret retry budget.
	ErrCaretNotFound = errors.New("caret button not found")

	// ErrMenuItemNotFound is returned when the opened menu never showed a
	// delete entry within the retry budget.
	ErrMenuItemNotFound = errors.New("delete menu item not found")

	// ErrConfirmNotFound is returned when the confirmation button never
	// became visible within the retry budget.
	ErrConfirmNotFound = errors.New("confirm button not found")
)
