package editor

// ViewMode identifies which editing surface is active.
type ViewMode string

const (
	// ViewStructured manipulates the graph as typed objects.
	ViewStructured ViewMode = "structured"

	// ViewText manipulates the same document as a serialized text blob.
	ViewText ViewMode = "text"
)

// ActiveSource tracks which view currently owns unsynchronized edits. While
// Dirty is set the text buffer holds the user's unsaved edits and must not be
// overwritten by a re-derived mirror of the definition store; otherwise the
// buffer is a read-only mirror kept in sync with the store.
type ActiveSource struct {
	Mode   ViewMode
	Buffer string
	Dirty  bool
}

// sourceEvent is a state transition input for reduceSource.
type sourceEvent interface {
	isSourceEvent()
}

// toggleView flips between the structured and text views. The buffer and the
// dirty flag survive the flip so toggling away and back does not lose unsaved
// text.
type toggleView struct{}

// editText records a keystroke-level change to the text buffer. The definition
// store is not touched until an explicit save.
type editText struct {
	text string
}

// storeChanged mirrors a replaced definition store into the buffer, unless the
// text view holds unsaved edits.
type storeChanged struct {
	encoded string
}

// saveApplied records a confirmed persist: the buffer becomes the saved
// document's encoding and dirtiness clears. The view stays where it is.
type saveApplied struct {
	encoded string
}

// newDocument resets to a fresh, never-persisted definition: clean buffer,
// structured view.
type newDocument struct {
	encoded string
}

func (toggleView) isSourceEvent()   {}
func (editText) isSourceEvent()     {}
func (storeChanged) isSourceEvent() {}
func (saveApplied) isSourceEvent()  {}
func (newDocument) isSourceEvent()  {}

// reduceSource computes the next ActiveSource from an event. All "don't
// overwrite unsaved text" rules live here, not in the effects that raise the
// events.
func reduceSource(s ActiveSource, ev sourceEvent) ActiveSource {
	switch ev := ev.(type) {
	case toggleView:
		if s.Mode == ViewText {
			s.Mode = ViewStructured
		} else {
			s.Mode = ViewText
		}

		return s

	case editText:
		s.Buffer = ev.text
		s.Dirty = true

		return s

	case storeChanged:
		if s.Mode == ViewText && s.Dirty {
			return s
		}

		s.Buffer = ev.encoded
		s.Dirty = false

		return s

	case saveApplied:
		s.Buffer = ev.encoded
		s.Dirty = false

		return s

	case newDocument:
		return ActiveSource{
			Mode:   ViewStructured,
			Buffer: ev.encoded,
			Dirty:  false,
		}

	default:
		return s
	}
}
