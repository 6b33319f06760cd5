package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowpad/flowpad/pkg/mocks"
	"github.com/flowpad/flowpad/pkg/models"
	"github.com/flowpad/flowpad/pkg/persistence"
)

func TestGraphEditorEditsFlowIntoStore(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	ge := NewGraphEditor(coord)

	ge.Rename("order-flow")
	ge.AddNode("fetch", &models.NodeSpec{Type: "httprequest"})
	ge.AddNode("log", &models.NodeSpec{Type: "log"})
	ge.Connect("fetch:success", "log:input")

	def := coord.Definition()
	assert.Equal(t, "order-flow", def.Name)
	assert.Len(t, def.Graph.Nodes, 2)
	require.Len(t, def.Graph.Connections, 1)
	assert.Equal(t, "fetch:success", def.Graph.Connections[0].From)
}

func TestGraphEditorRemoveNodeDropsItsConnections(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	ge := NewGraphEditor(coord)

	ge.AddNode("fetch", &models.NodeSpec{Type: "httprequest"})
	ge.AddNode("log", &models.NodeSpec{Type: "log"})
	ge.AddNode("notify", &models.NodeSpec{Type: "log"})
	ge.Connect("fetch:success", "log:input")
	ge.Connect("fetch:error", "notify:input")
	ge.Connect("log:output", "notify:input")

	ge.RemoveNode("log")

	def := coord.Definition()
	assert.NotContains(t, def.Graph.Nodes, "log")
	require.Len(t, def.Graph.Connections, 1)
	assert.Equal(t, "fetch:error", def.Graph.Connections[0].From)
}

func TestGraphEditorDisconnectPreservesOtherConnections(t *testing.T) {
	coord := NewCoordinator(&mocks.MockPersistenceAPI{})
	ge := NewGraphEditor(coord)

	ge.Connect("a:out", "b:in")
	ge.Connect("a:out", "c:in")
	ge.Disconnect("a:out", "b:in")

	def := coord.Definition()
	require.Len(t, def.Graph.Connections, 1)
	assert.Equal(t, "c:in", def.Graph.Connections[0].To)
}

func TestGraphEditorTrySaveWithoutEditsIsANoOp(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	coord := NewCoordinator(api)
	ge := NewGraphEditor(coord)

	saved, err := ge.TrySave(t.Context())
	require.NoError(t, err)
	assert.False(t, saved)

	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestStructuredSaveRoutesThroughGraphEditor(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	api.On("Create", mock.Anything, mock.MatchedBy(func(def *models.WorkflowDefinition) bool {
		return def.Name == "order-flow" && def.ID == ""
	})).Return(testDefinition("def-1", 1), nil).Once()

	coord := NewCoordinator(api)
	ge := NewGraphEditor(coord)

	ge.Rename("order-flow")
	ge.AddNode("fetch", &models.NodeSpec{Type: "httprequest"})

	saved, err := coord.Save(t.Context())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, "def-1", coord.Definition().ID)

	// No edits since the save: nothing further to persist.
	saved, err = coord.Save(t.Context())
	require.NoError(t, err)
	assert.False(t, saved)

	api.AssertExpectations(t)
}

func TestGraphEditorFailedSaveKeepsEditsPending(t *testing.T) {
	api := &mocks.MockPersistenceAPI{}
	conflict := persistence.NewDefinitionError("Update", "def-1", persistence.ErrVersionConflict)

	api.On("Update", mock.Anything, "def-1", mock.Anything).Return(nil, conflict).Once()
	api.On("Update", mock.Anything, "def-1", mock.Anything).Return(testDefinition("def-1", 3), nil).Once()

	coord := NewCoordinator(api)
	coord.StoreChanged(testDefinition("def-1", 1))
	ge := NewGraphEditor(coord)

	ge.SetDescription("second writer beat us here")

	saved, err := ge.TrySave(t.Context())
	require.Error(t, err)
	assert.False(t, saved)

	saved, err = ge.TrySave(t.Context())
	require.NoError(t, err)
	assert.True(t, saved)

	api.AssertExpectations(t)
}
