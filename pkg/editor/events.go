// Package editor implements the workflow definition editor core: a dual-view
// (structured/text) editing state machine and the save coordinator that flushes
// it to the persistence API.
package editor

// SaveReason classifies the event that produced a save request. Suppression is
// a pure function of the reason: requests caused by internal, non-content
// events never reach the persistence API.
type SaveReason string

const (
	// ReasonContent marks a request caused by actual content, e.g. the host
	// closing the editor over unsaved edits or the user hitting save.
	ReasonContent SaveReason = "content"

	// ReasonViewToggle marks a request caused by switching between the
	// structured and text views. Toggling is not a content change.
	ReasonViewToggle SaveReason = "view-toggle"

	// ReasonNoOpClose marks a request caused by closing the editor with
	// nothing worth saving.
	ReasonNoOpClose SaveReason = "no-op-close"
)

// Suppressed reports whether a save request with this reason must be ignored.
func (r SaveReason) Suppressed() bool {
	return r == ReasonViewToggle || r == ReasonNoOpClose
}
