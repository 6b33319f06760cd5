// Package codec converts workflow definitions to and from their serialized
// text form, the representation shown in the editor's text view and sent over
// the persistence API.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowpad/flowpad/pkg/models"
)

// textDocument is the loose wire shape accepted on decode. Besides the
// canonical nested graph it accepts the legacy layout with top-level
// nodes/connections siblings.
type textDocument struct {
	ID          string                      `json:"id"`
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Version     int64                       `json:"version"`
	Graph       *models.Graph               `json:"graph"`
	Nodes       map[string]*models.NodeSpec `json:"nodes"`
	Connections []*models.Connection        `json:"connections"`
}

// Encode serializes a definition to pretty-printed JSON. Encoding is
// deterministic (object keys sorted, two-space indent) and idempotent under a
// decode/encode round trip. Server-assigned fields are emitted only when set.
func Encode(def *models.WorkflowDefinition) (string, error) {
	out := def.Clone()
	out.Graph.Normalize()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal definition: %w", err)
	}

	return string(data), nil
}

// Decode parses serialized text into a definition. It rejects text that is
// not well-formed JSON, has no non-empty name, or carries neither a graph
// object nor legacy nodes/connections siblings. Legacy siblings are
// normalized into the nested graph; absent collections default to empty.
func Decode(text string) (*models.WorkflowDefinition, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &DecodeError{Kind: DecodeUnparsable, Detail: "empty document"}
	}

	var doc textDocument

	err := json.Unmarshal([]byte(text), &doc)
	if err != nil {
		return nil, &DecodeError{Kind: DecodeUnparsable, Err: err}
	}

	if strings.TrimSpace(doc.Name) == "" {
		return nil, &DecodeError{Kind: DecodeMissingName, Detail: "definition name is required"}
	}

	if doc.Graph == nil && doc.Nodes == nil && doc.Connections == nil {
		return nil, &DecodeError{Kind: DecodeMissingGraph, Detail: "definition has no graph"}
	}

	def := &models.WorkflowDefinition{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Version:     doc.Version,
	}

	if doc.Graph != nil {
		def.Graph = *doc.Graph
	} else {
		def.Graph = models.Graph{
			Nodes:       doc.Nodes,
			Connections: doc.Connections,
		}
	}

	def.Graph.Normalize()

	if err := validateShape(def); err != nil {
		return nil, err
	}

	return def, nil
}
