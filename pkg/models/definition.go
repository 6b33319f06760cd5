// Package models defines the core domain models for graph-structured workflow definitions.
package models

import "time"

// WorkflowDefinition is the persisted document describing a node graph plus metadata.
// ID and Version are server-assigned: both are zero until the first successful persist,
// and Version is incremented by the persistence layer on every subsequent save.
type WorkflowDefinition struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"                  validate:"required,min=1"`
	Description string    `json:"description,omitempty"`
	Graph       Graph     `json:"graph"`
	Version     int64     `json:"version,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Graph holds the node instances and the ordered connections between them.
type Graph struct {
	Nodes       map[string]*NodeSpec `json:"nodes"`
	Connections []*Connection        `json:"connections"`
}

// NodeSpec is a node instance. Config is opaque to the editor core; its shape
// is owned by the node type's own implementation.
type NodeSpec struct {
	Type   string         `json:"type"   validate:"required"`
	Config map[string]any `json:"config,omitempty"`
}

// Connection links two ports. Port references use the "{node_id}:{port_name}" form.
// Ordering is preserved as authored.
type Connection struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
}

// Normalize replaces nil node maps and connection slices with empty ones so a
// definition always carries at least an empty graph.
func (g *Graph) Normalize() {
	if g.Nodes == nil {
		g.Nodes = make(map[string]*NodeSpec)
	}

	if g.Connections == nil {
		g.Connections = make([]*Connection, 0)
	}
}

// IsPersisted reports whether the definition has been saved at least once.
// Presence of the server-assigned ID is the sole signal distinguishing create
// from update.
func (d *WorkflowDefinition) IsPersisted() bool {
	return d.ID != ""
}

// Clone returns a deep copy. Node configs are copied one level deep, which is
// enough for the editor: config values are treated as opaque and never mutated
// in place.
func (d *WorkflowDefinition) Clone() *WorkflowDefinition {
	if d == nil {
		return nil
	}

	out := *d
	out.Graph = Graph{
		Nodes:       make(map[string]*NodeSpec, len(d.Graph.Nodes)),
		Connections: make([]*Connection, 0, len(d.Graph.Connections)),
	}

	for id, node := range d.Graph.Nodes {
		if node == nil {
			continue
		}

		spec := &NodeSpec{Type: node.Type}
		if node.Config != nil {
			spec.Config = make(map[string]any, len(node.Config))
			for k, v := range node.Config {
				spec.Config[k] = v
			}
		}

		out.Graph.Nodes[id] = spec
	}

	for _, conn := range d.Graph.Connections {
		if conn == nil {
			continue
		}

		c := *conn
		out.Graph.Connections = append(out.Graph.Connections, &c)
	}

	return &out
}
