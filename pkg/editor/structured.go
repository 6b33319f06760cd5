package editor

import (
	"context"
	"strings"
	"sync"

	"github.com/flowpad/flowpad/pkg/models"
)

// GraphEditor is the structured view's editing component. It edits the
// coordinator's definition store as typed graph objects and persists through
// the coordinator's save path, tracking whether edits exist since the last
// successful save so untouched documents never hit the API.
type GraphEditor struct {
	coord *Coordinator

	mu      sync.Mutex
	pending bool
}

// NewGraphEditor creates a graph editor bound to coord and registers it as
// the coordinator's structured save hook.
func NewGraphEditor(coord *Coordinator) *GraphEditor {
	ge := &GraphEditor{coord: coord}
	coord.SetStructuredEditor(ge)

	return ge
}

// Rename sets the definition's name.
func (g *GraphEditor) Rename(name string) {
	g.apply(func(def *models.WorkflowDefinition) {
		def.Name = name
	})
}

// SetDescription sets the definition's description.
func (g *GraphEditor) SetDescription(description string) {
	g.apply(func(def *models.WorkflowDefinition) {
		def.Description = description
	})
}

// AddNode inserts or replaces a node instance.
func (g *GraphEditor) AddNode(id string, spec *models.NodeSpec) {
	g.apply(func(def *models.WorkflowDefinition) {
		def.Graph.Nodes[id] = spec
	})
}

// RemoveNode deletes a node and every connection touching one of its ports.
func (g *GraphEditor) RemoveNode(id string) {
	g.apply(func(def *models.WorkflowDefinition) {
		delete(def.Graph.Nodes, id)

		kept := def.Graph.Connections[:0]

		for _, conn := range def.Graph.Connections {
			if touchesNode(conn, id) {
				continue
			}

			kept = append(kept, conn)
		}

		def.Graph.Connections = kept
	})
}

// Connect appends a connection between two ports, preserving authored order.
func (g *GraphEditor) Connect(from, to string) {
	g.apply(func(def *models.WorkflowDefinition) {
		def.Graph.Connections = append(def.Graph.Connections, &models.Connection{
			From: from,
			To:   to,
		})
	})
}

// Disconnect removes every connection from one port to another.
func (g *GraphEditor) Disconnect(from, to string) {
	g.apply(func(def *models.WorkflowDefinition) {
		kept := def.Graph.Connections[:0]

		for _, conn := range def.Graph.Connections {
			if conn.From == from && conn.To == to {
				continue
			}

			kept = append(kept, conn)
		}

		def.Graph.Connections = kept
	})
}

// TrySave persists the structured state if there are edits since the last
// successful save. It reports whether a persist was performed.
func (g *GraphEditor) TrySave(ctx context.Context) (bool, error) {
	g.mu.Lock()
	pending := g.pending
	g.mu.Unlock()

	if !pending {
		return false, nil
	}

	saved, err := g.coord.persist(ctx, g.coord.Definition())
	if err != nil {
		return false, err
	}

	if saved {
		g.mu.Lock()
		g.pending = false
		g.mu.Unlock()
	}

	return saved, nil
}

func (g *GraphEditor) apply(mutate func(def *models.WorkflowDefinition)) {
	def := g.coord.Definition()
	mutate(def)
	g.coord.StoreChanged(def)

	g.mu.Lock()
	g.pending = true
	g.mu.Unlock()
}

func touchesNode(conn *models.Connection, nodeID string) bool {
	prefix := nodeID + ":"

	return strings.HasPrefix(conn.From, prefix) || strings.HasPrefix(conn.To, prefix)
}
