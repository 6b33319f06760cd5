package editor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowpad/flowpad/pkg/codec"
	"github.com/flowpad/flowpad/pkg/mocks"
	"github.com/flowpad/flowpad/pkg/models"
	"github.com/flowpad/flowpad/pkg/persistence"
)

func testDefinition(id string, version int64) *models.WorkflowDefinition {
	def := &models.WorkflowDefinition{
		ID:      id,
		Name:    "order-flow",
		Version: version,
		Graph: models.Graph{
			Nodes: map[string]*models.NodeSpec{
				"fetch": {Type: "httprequest", Config: map[string]any{"url": "https://example.com/orders"}},
				"log":   {Type: "log"},
			},
			Connections: []*models.Connection{
				{From: "fetch:success", To: "log:input"},
			},
		},
	}

	if id != "" {
		def.CreatedAt = time.Now().UTC()
		def.UpdatedAt = time.Now().UTC()
	}

	return def
}

func captureNotifications(t *testing.T) (*[]Notification, Option) {
	t.Helper()

	captured := make([]Notification, 0)

	return &captured, WithNotifier(NotifierFunc(func(n Notification) {
		captured = append(captured, n)
	}))
}

func TestSaveSuppressedReasonsNeverTouchAPI(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	coord := NewCoordinator(api)

	coord.ToggleView()
	coord.EditText(`{"name": "draft", "graph": {"nodes": {}, "connections": []}}`)

	for _, reason := range []SaveReason{ReasonViewToggle, ReasonNoOpClose} {
		saved, err := coord.RequestSave(t.Context(), reason)
		require.NoError(t, err)
		assert.False(t, saved)
	}

	assert.True(t, coord.IsDirty())
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveCreatesWhenDefinitionHasNoID(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	stored := testDefinition("def-1", 1)

	api.On("Create", mock.Anything, mock.MatchedBy(func(def *models.WorkflowDefinition) bool {
		return def.ID == "" && def.Name == "order-flow"
	})).Return(stored, nil).Once()

	coord := NewCoordinator(api)
	coord.ToggleView()

	text, err := codec.Encode(testDefinition("", 0))
	require.NoError(t, err)
	coord.EditText(text)

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.True(t, saved)

	def := coord.Definition()
	assert.Equal(t, "def-1", def.ID)
	assert.Equal(t, int64(1), def.Version)
	assert.False(t, coord.IsDirty())

	api.AssertExpectations(t)
	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveUpdatesWhenDefinitionHasID(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	updated := testDefinition("def-1", 2)

	api.On("Update", mock.Anything, "def-1", mock.MatchedBy(func(def *models.WorkflowDefinition) bool {
		return def.ID == "def-1" && def.Version == 1
	})).Return(updated, nil).Once()

	coord := NewCoordinator(api)
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.ToggleView()

	edited := testDefinition("def-1", 1)
	edited.Description = "now with a description"
	text, err := codec.Encode(edited)
	require.NoError(t, err)
	coord.EditText(text)

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, int64(2), coord.Definition().Version)

	api.AssertExpectations(t)
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTextIdentityComesFromStoreNotBuffer(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}

	api.On("Update", mock.Anything, "def-1", mock.MatchedBy(func(def *models.WorkflowDefinition) bool {
		return def.ID == "def-1" && def.Version == 3
	})).Return(testDefinition("def-1", 4), nil).Once()

	coord := NewCoordinator(api)
	coord.StoreChanged(testDefinition("def-1", 3))
	coord.ToggleView()

	// The typed text claims a different identity; the store wins.
	impostor := testDefinition("someone-else", 9)
	text, err := codec.Encode(impostor)
	require.NoError(t, err)
	coord.EditText(text)

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.True(t, saved)

	api.AssertExpectations(t)
}

func TestUnchangedTextBufferIsANoOpSave(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	coord := NewCoordinator(api)
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.ToggleView()

	// Re-entering the same mirror text is not a content change.
	coord.EditText(coord.TextBuffer())

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.False(t, saved)

	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestEmptyTextBufferSaveIsANoOp(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	notifications, opt := captureNotifications(t)

	coord := NewCoordinator(api, opt)
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.ToggleView()

	// Clearing the whole buffer marks it dirty, but there is nothing to save.
	for _, buffer := range []string{"", "  \n\t"} {
		coord.EditText(buffer)

		saved, err := coord.Save(t.Context())
		require.NoError(t, err)
		assert.False(t, saved)
	}

	assert.Empty(t, *notifications)
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveDecodeFailureKeepsBufferAndNotifies(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	notifications, opt := captureNotifications(t)

	coord := NewCoordinator(api, opt)
	coord.ToggleView()
	coord.EditText(`{"name": "broken"`)

	saved, err := coord.Save(t.Context())
	require.Error(t, err)
	assert.False(t, saved)
	assert.True(t, codec.IsDecodeError(err))

	assert.Equal(t, `{"name": "broken"`, coord.TextBuffer())
	assert.True(t, coord.IsDirty())

	require.Len(t, *notifications, 1)
	assert.Equal(t, NotifyDecode, (*notifications)[0].Kind)

	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveConflictLeavesLocalStateUntouched(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	notifications, opt := captureNotifications(t)

	conflict := persistence.NewDefinitionError("Update", "def-1", persistence.ErrVersionConflict)
	api.On("Update", mock.Anything, "def-1", mock.Anything).Return(nil, conflict).Once()

	coord := NewCoordinator(api, opt)
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.ToggleView()

	edited := testDefinition("def-1", 1)
	edited.Description = "local edit"
	text, err := codec.Encode(edited)
	require.NoError(t, err)
	coord.EditText(text)

	saved, err := coord.Save(t.Context())
	require.Error(t, err)
	assert.False(t, saved)
	assert.True(t, persistence.IsVersionConflict(err))

	// The local document is not auto-merged or rolled back.
	assert.Equal(t, text, coord.TextBuffer())
	assert.True(t, coord.IsDirty())
	assert.Equal(t, int64(1), coord.Definition().Version)

	require.Len(t, *notifications, 1)
	assert.Equal(t, NotifyConflict, (*notifications)[0].Kind)
}

func TestSaveWhileBusyIsANoOp(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	coord := NewCoordinator(api)
	coord.ToggleView()
	coord.EditText(`{"name": "draft", "graph": {"nodes": {}, "connections": []}}`)

	coord.mu.Lock()
	coord.busy = true
	coord.mu.Unlock()

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.False(t, saved)

	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveAfterCloseIsANoOp(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	coord := NewCoordinator(api)
	coord.ToggleView()
	coord.EditText(`{"name": "draft", "graph": {"nodes": {}, "connections": []}}`)
	coord.Close()

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.False(t, saved)

	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaveResultArrivingAfterCloseIsDroppedSilently(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	coord := NewCoordinator(api)

	api.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			// The editor closes while the save is still in flight.
			coord.Close()
		}).
		Return(testDefinition("def-1", 1), nil).Once()

	coord.ToggleView()
	text, err := codec.Encode(testDefinition("", 0))
	require.NoError(t, err)
	coord.EditText(text)

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.True(t, saved)

	// The confirmed result never replaces the closed editor's state.
	assert.Empty(t, coord.Definition().ID)
	assert.Equal(t, text, coord.TextBuffer())
}

func TestStoreChangedAfterCloseIsDropped(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.Close()

	coord.StoreChanged(testDefinition("def-2", 7))

	assert.Equal(t, "def-1", coord.Definition().ID)
}

func TestStoreChangedDoesNotClobberDirtyTextBuffer(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.ToggleView()
	coord.EditText(`{"name": "half-typed`)

	coord.StoreChanged(testDefinition("def-1", 2))

	assert.Equal(t, `{"name": "half-typed`, coord.TextBuffer())
	assert.True(t, coord.IsDirty())
}

func TestStoreChangedRefreshesCleanTextBuffer(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.ToggleView()

	next := testDefinition("def-1", 2)
	next.Description = "updated elsewhere"
	coord.StoreChanged(next)

	expected, err := codec.Encode(coord.Definition())
	require.NoError(t, err)
	assert.Equal(t, expected, coord.TextBuffer())
	assert.False(t, coord.IsDirty())
}

func TestToggleViewPreservesUnsavedText(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	coord.ToggleView()
	require.True(t, coord.IsTextViewActive())

	coord.EditText(`{"name": "half-typed`)
	coord.ToggleView()
	coord.ToggleView()

	assert.True(t, coord.IsTextViewActive())
	assert.Equal(t, `{"name": "half-typed`, coord.TextBuffer())
	assert.True(t, coord.IsDirty())
}

func TestSaveAppliedKeepsActiveView(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	api.On("Create", mock.Anything, mock.Anything).Return(testDefinition("def-1", 1), nil).Once()

	coord := NewCoordinator(api)
	coord.ToggleView()

	text, err := codec.Encode(testDefinition("", 0))
	require.NoError(t, err)
	coord.EditText(text)

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	require.True(t, saved)

	assert.True(t, coord.IsTextViewActive())
}

func TestNewDocumentResetsToStructuredView(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	coord.StoreChanged(testDefinition("def-1", 1))
	coord.ToggleView()
	coord.EditText(`{"name": "abandoned edit"`)

	coord.NewDocument()

	assert.False(t, coord.IsTextViewActive())
	assert.False(t, coord.IsDirty())
	assert.Empty(t, coord.Definition().ID)
	assert.False(t, coord.Definition().IsPersisted())
}

func TestNewTextModeDocumentSavesAsCreate(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	api.On("Create", mock.Anything, mock.MatchedBy(func(def *models.WorkflowDefinition) bool {
		return def.ID == "" && def.Name == "typed-from-scratch"
	})).Return(testDefinition("def-9", 1), nil).Once()

	coord := NewCoordinator(api)
	coord.NewDocument()
	coord.ToggleView()
	coord.EditText(`{
  "name": "typed-from-scratch",
  "graph": {
    "nodes": {"only": {"type": "log"}},
    "connections": []
  }
}`)

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, "def-9", coord.Definition().ID)

	api.AssertExpectations(t)
}

func TestContextCancellationSurfacesAsError(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	api.On("Create", mock.Anything, mock.Anything).Return(nil, context.Canceled).Once()

	notifications, opt := captureNotifications(t)
	coord := NewCoordinator(api, opt)
	coord.ToggleView()

	text, err := codec.Encode(testDefinition("", 0))
	require.NoError(t, err)
	coord.EditText(text)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	saved, err := coord.Save(ctx)
	require.Error(t, err)
	assert.False(t, saved)
	assert.True(t, coord.IsDirty())

	require.Len(t, *notifications, 1)
	assert.Equal(t, NotifyTransport, (*notifications)[0].Kind)
}
