package editor

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/flowpad/flowpad/pkg/codec"
	"github.com/flowpad/flowpad/pkg/log"
	"github.com/flowpad/flowpad/pkg/models"
)

// PersistenceAPI is the slice of the definition API the coordinator saves
// through. *client.Client satisfies it.
type PersistenceAPI interface {
	Create(ctx context.Context, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error)
	Update(ctx context.Context, id string, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error)
}

// StructuredEditor is the structured view's save hook. TrySave persists the
// structured component's current state and reports whether a persist was
// actually performed.
type StructuredEditor interface {
	TrySave(ctx context.Context) (bool, error)
}

// Coordinator owns the definition store and the view state, and routes save
// requests to the persistence API. All exported methods are safe for
// concurrent use.
//
// A Coordinator persists at most one save at a time: a save requested while
// another is in flight is a no-op rather than a queued duplicate. After Close,
// every method is a no-op and store updates are dropped silently.
type Coordinator struct {
	api        PersistenceAPI
	notifier   Notifier
	logger     *slog.Logger
	structured StructuredEditor

	mu         sync.Mutex
	def        *models.WorkflowDefinition
	source     ActiveSource
	lastSynced string
	busy       bool
	closed     bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithNotifier routes save failure notifications to n instead of the default
// logging notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithLogger sets the coordinator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a coordinator holding a fresh, never-persisted
// definition.
func NewCoordinator(api PersistenceAPI, opts ...Option) *Coordinator {
	c := &Coordinator{
		api:    api,
		logger: log.WithComponent("editor"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.notifier == nil {
		c.notifier = &slogNotifier{logger: c.logger}
	}

	c.resetLocked(freshDefinition())

	return c
}

// SetStructuredEditor registers the structured view's save hook. When unset,
// structured-view saves persist the coordinator's own store state.
func (c *Coordinator) SetStructuredEditor(se StructuredEditor) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.structured = se
}

// NewDocument discards the current store and starts a fresh, never-persisted
// definition in the structured view.
func (c *Coordinator) NewDocument() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.resetLocked(freshDefinition())
}

// StoreChanged replaces the definition store with def, mirroring it into the
// text buffer unless the text view holds unsaved edits. Updates arriving after
// Close are dropped silently.
func (c *Coordinator) StoreChanged(def *models.WorkflowDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || def == nil {
		return
	}

	c.def = def.Clone()
	c.def.Graph.Normalize()

	encoded := c.encodeLocked(c.def)
	c.lastSynced = encoded
	c.source = reduceSource(c.source, storeChanged{encoded: encoded})
}

// ToggleView flips between the structured and text views. Unsaved text
// survives the flip. Toggling is never a reason to persist.
func (c *Coordinator) ToggleView() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.source = reduceSource(c.source, toggleView{})
}

// EditText records a change to the text buffer. The definition store is not
// touched until the next successful save.
func (c *Coordinator) EditText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.source = reduceSource(c.source, editText{text: text})
}

// Save persists the current content. It is shorthand for a content-reason
// save request.
func (c *Coordinator) Save(ctx context.Context) (bool, error) {
	return c.RequestSave(ctx, ReasonContent)
}

// RequestSave routes one save request. It reports whether a persist was
// performed: suppressed reasons, no-op text saves, closed coordinators, and
// overlapping saves all return (false, nil).
func (c *Coordinator) RequestSave(ctx context.Context, reason SaveReason) (bool, error) {
	if reason.Suppressed() {
		return false, nil
	}

	c.mu.Lock()

	if c.closed || c.busy {
		c.mu.Unlock()

		return false, nil
	}

	c.busy = true
	mode := c.source.Mode
	buffer := c.source.Buffer
	dirty := c.source.Dirty

	c.mu.Unlock()

	var (
		saved bool
		err   error
	)

	if mode == ViewText {
		saved, err = c.saveText(ctx, buffer, dirty)
	} else {
		saved, err = c.saveStructured(ctx)
	}

	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()

	return saved, err
}

// Close shuts the coordinator down. Subsequent store updates and save
// requests are dropped silently.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
}

// Definition returns a copy of the current definition store.
func (c *Coordinator) Definition() *models.WorkflowDefinition {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.def.Clone()
}

// TextBuffer returns the text view's current contents.
func (c *Coordinator) TextBuffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.source.Buffer
}

// IsTextViewActive reports whether the text view is the active surface.
func (c *Coordinator) IsTextViewActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.source.Mode == ViewText
}

// IsDirty reports whether the text buffer holds unsaved edits.
func (c *Coordinator) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.source.Dirty
}

func (c *Coordinator) saveText(ctx context.Context, buffer string, dirty bool) (bool, error) {
	c.mu.Lock()
	// An empty or unchanged buffer is nothing to save, dirty or not.
	unchanged := !dirty || strings.TrimSpace(buffer) == "" || buffer == c.lastSynced
	cur := c.def
	c.mu.Unlock()

	if unchanged {
		return false, nil
	}

	decoded, err := codec.Decode(buffer)
	if err != nil {
		c.notify(err)

		return false, err
	}

	// The text form never carries authority over identity: the store's ID and
	// version decide create-vs-update and conflict detection.
	decoded.ID = cur.ID
	decoded.Version = cur.Version
	decoded.CreatedAt = cur.CreatedAt

	return c.persist(ctx, decoded)
}

func (c *Coordinator) saveStructured(ctx context.Context) (bool, error) {
	c.mu.Lock()
	se := c.structured
	cur := c.def
	c.mu.Unlock()

	if se != nil {
		return se.TrySave(ctx)
	}

	return c.persist(ctx, cur)
}

// persist performs the create-or-update call and applies the confirmed result
// back into the store. Callers pass a definition they no longer mutate.
func (c *Coordinator) persist(ctx context.Context, def *models.WorkflowDefinition) (bool, error) {
	payload := def.Clone()
	payload.Graph.Normalize()

	var (
		saved *models.WorkflowDefinition
		err   error
	)

	if payload.IsPersisted() {
		saved, err = c.api.Update(ctx, payload.ID, payload)
	} else {
		saved, err = c.api.Create(ctx, payload)
	}

	if err != nil {
		c.notify(err)

		return false, err
	}

	c.applySaved(saved)

	return true, nil
}

// applySaved installs a confirmed persist result. Results arriving after
// Close are dropped silently: the store keeps its final pre-close state.
func (c *Coordinator) applySaved(saved *models.WorkflowDefinition) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.def = saved.Clone()
	c.def.Graph.Normalize()

	encoded := c.encodeLocked(c.def)
	c.lastSynced = encoded
	c.source = reduceSource(c.source, saveApplied{encoded: encoded})
}

func (c *Coordinator) resetLocked(def *models.WorkflowDefinition) {
	c.def = def

	encoded := c.encodeLocked(def)
	c.lastSynced = encoded
	c.source = reduceSource(c.source, newDocument{encoded: encoded})
}

func (c *Coordinator) encodeLocked(def *models.WorkflowDefinition) string {
	encoded, err := codec.Encode(def)
	if err != nil {
		c.logger.Error("Failed to encode definition", "error", err)

		return ""
	}

	return encoded
}

func (c *Coordinator) notify(err error) {
	c.notifier.Notify(Notification{
		Kind:    classify(err),
		Message: err.Error(),
		Err:     err,
	})
}

func freshDefinition() *models.WorkflowDefinition {
	def := &models.WorkflowDefinition{}
	def.Graph.Normalize()

	return def
}
