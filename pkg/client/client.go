// Package client provides the HTTP client for the definition API. It is the
// concrete persistence binding used by an editor hosted away from the backend:
// HTTP 409 responses surface as version conflicts, 400 as validation errors,
// anything else as a generic transport failure.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/moogar0880/problems"

	"github.com/flowpad/flowpad/pkg/models"
	"github.com/flowpad/flowpad/pkg/persistence"
	"github.com/flowpad/flowpad/pkg/services"
)

// ErrDefinitionNotFound is returned for HTTP 404 responses.
var ErrDefinitionNotFound = persistence.ErrDefinitionNotFound

// Client talks to the definition API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL. No local timeout is
// imposed; callers control cancellation through the context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

type saveDefinitionPayload struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Graph       models.Graph `json:"graph"`
	Version     int64        `json:"version,omitempty"`
}

type listDefinitionsPayload struct {
	Definitions []*models.WorkflowDefinition `json:"definitions"`
}

// Create persists a never-before-saved definition and returns the stored
// value carrying the server-assigned ID and initial version.
func (c *Client) Create(ctx context.Context, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	return c.save(ctx, http.MethodPost, c.baseURL+"/definitions", def, http.StatusCreated)
}

// Update replaces the definition with the given ID. The definition's Version
// must be the one last observed; a stale version surfaces as
// persistence.ErrVersionConflict.
func (c *Client) Update(ctx context.Context, id string, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	return c.save(ctx, http.MethodPut, c.baseURL+"/definitions/"+id, def, http.StatusOK)
}

// Get fetches a single definition by ID.
func (c *Client) Get(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/definitions/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("definition API unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(resp)
	}

	var def models.WorkflowDefinition

	err = json.NewDecoder(resp.Body).Decode(&def)
	if err != nil {
		return nil, fmt.Errorf("failed to decode definition response: %w", err)
	}

	return &def, nil
}

// List fetches all definitions.
func (c *Client) List(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/definitions", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("definition API unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromResponse(resp)
	}

	var payload listDefinitionsPayload

	err = json.NewDecoder(resp.Body).Decode(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}

	return payload.Definitions, nil
}

func (c *Client) save(ctx context.Context, method, url string, def *models.WorkflowDefinition, wantStatus int) (*models.WorkflowDefinition, error) {
	payload := saveDefinitionPayload{
		Name:        def.Name,
		Description: def.Description,
		Graph:       def.Graph,
		Version:     def.Version,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal definition: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("definition API unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != wantStatus {
		return nil, c.errorFromResponse(resp)
	}

	var saved models.WorkflowDefinition

	err = json.NewDecoder(resp.Body).Decode(&saved)
	if err != nil {
		return nil, fmt.Errorf("failed to decode definition response: %w", err)
	}

	return &saved, nil
}

// errorFromResponse maps the API's RFC 7807 error responses onto the shared
// error taxonomy.
func (c *Client) errorFromResponse(resp *http.Response) error {
	detail := resp.Status

	var problem problems.Problem

	body, err := io.ReadAll(resp.Body)
	if err == nil && json.Unmarshal(body, &problem) == nil && problem.Detail != "" {
		detail = problem.Detail
	}

	switch resp.StatusCode {
	case http.StatusConflict:
		return persistence.NewDefinitionError("Save", "", persistence.ErrVersionConflict)
	case http.StatusBadRequest:
		return services.NewValidationError("Save", "REMOTE_VALIDATION", detail, services.ErrInvalidDefinition)
	case http.StatusNotFound:
		return ErrDefinitionNotFound
	default:
		return fmt.Errorf("definition API returned %d: %s", resp.StatusCode, detail)
	}
}
