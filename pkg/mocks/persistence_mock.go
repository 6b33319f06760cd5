package mocks

import (
	"context"

	"github.com/flowpad/flowpad/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockDefinitionRepository is a mock implementation of persistence.DefinitionRepository interface.
type MockDefinitionRepository struct {
	mock.Mock
}

func (m *MockDefinitionRepository) GetAll(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.WorkflowDefinition), args.Error(1)
}

func (m *MockDefinitionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.WorkflowDefinition), args.Error(1)
}

func (m *MockDefinitionRepository) Save(ctx context.Context, def *models.WorkflowDefinition) error {
	args := m.Called(ctx, def)

	return args.Error(0)
}

func (m *MockDefinitionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}
