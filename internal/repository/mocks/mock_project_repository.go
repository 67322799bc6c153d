package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"archecho/internal/model"
	"archecho/internal/repository"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id string) (*repository.RawProject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.RawProject), args.Error(1)
}

func (m *MockProjectRepository) GetAll(ctx context.Context) ([]repository.RawProject, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.RawProject), args.Error(1)
}

func (m *MockProjectRepository) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProjectRepository) CreateFiles(ctx context.Context, files []model.ProjectFile) error {
	args := m.Called(ctx, files)
	return args.Error(0)
}

func (m *MockProjectRepository) UnionDesignConcepts(ctx context.Context, id string, concepts []string) error {
	args := m.Called(ctx, id, concepts)
	return args.Error(0)
}
