// Package web provides HTTP request and response types for the definition API.
package web

import "github.com/flowpad/flowpad/pkg/models"

// SaveDefinitionRequest is the request body for creating or replacing a
// definition. Version carries the version the client last observed; it is
// ignored on create.
type SaveDefinitionRequest struct {
	Name        string       `json:"name"              validate:"required,min=1"`
	Description string       `json:"description"`
	Graph       models.Graph `json:"graph"`
	Version     int64        `json:"version,omitempty"`
}

// ListDefinitionsResponse is the response body for listing definitions.
type ListDefinitionsResponse struct {
	Definitions []*models.WorkflowDefinition `json:"definitions"`
}

func (r *SaveDefinitionRequest) toModel() *models.WorkflowDefinition {
	def := &models.WorkflowDefinition{
		Name:        r.Name,
		Description: r.Description,
		Graph:       r.Graph,
		Version:     r.Version,
	}
	def.Graph.Normalize()

	return def
}
