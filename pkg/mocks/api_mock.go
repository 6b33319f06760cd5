package mocks

import (
	"context"

	"github.com/flowpad/flowpad/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockPersistenceAPI is a mock implementation of editor.PersistenceAPI interface.
type MockPersistenceAPI struct {
	mock.Mock
}

func (m *MockPersistenceAPI) Create(ctx context.Context, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, def)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}

func (m *MockPersistenceAPI) Update(ctx context.Context, id string, def *models.WorkflowDefinition) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, id, def)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}
