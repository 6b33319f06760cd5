package editor

import (
	"log/slog"

	"github.com/flowpad/flowpad/pkg/codec"
	"github.com/flowpad/flowpad/pkg/persistence"
	"github.com/flowpad/flowpad/pkg/services"
)

// NotificationKind classifies a save failure for presentation.
type NotificationKind string

const (
	// NotifyDecode means the text buffer could not be decoded into a
	// definition. The buffer is left untouched for the user to fix.
	NotifyDecode NotificationKind = "decode"

	// NotifyValidation means the definition was rejected as invalid, either
	// locally or by the API.
	NotifyValidation NotificationKind = "validation"

	// NotifyConflict means the stored definition changed under us and the
	// save was refused.
	NotifyConflict NotificationKind = "conflict"

	// NotifyTransport means the save could not reach the API at all.
	NotifyTransport NotificationKind = "transport"
)

// Notification describes a save failure surfaced to the user.
type Notification struct {
	Kind    NotificationKind
	Message string
	Err     error
}

// Notifier receives save failure notifications. Implementations must not
// block: notifications are emitted from the save path.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// slogNotifier logs notifications through a structured logger. It is the
// default sink when no Notifier is configured.
type slogNotifier struct {
	logger *slog.Logger
}

func (s *slogNotifier) Notify(n Notification) {
	s.logger.Warn("Save failed", "kind", string(n.Kind), "message", n.Message, "error", n.Err)
}

// classify maps a save error to its notification kind.
func classify(err error) NotificationKind {
	switch {
	case codec.IsDecodeError(err):
		return NotifyDecode
	case services.IsValidationError(err):
		return NotifyValidation
	case persistence.IsVersionConflict(err):
		return NotifyConflict
	default:
		return NotifyTransport
	}
}
