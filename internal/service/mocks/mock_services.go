package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"archecho/internal/model"
	"archecho/internal/service"
	"archecho/internal/storage"
)

type MockDiscoveryService struct {
	mock.Mock
}

func (m *MockDiscoveryService) Query(ctx context.Context, filters model.QueryFilters) []model.Project {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Project)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) GetWithFiles(ctx context.Context, id string) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

type MockConceptService struct {
	mock.Mock
}

func (m *MockConceptService) AnalyzeObject(ctx context.Context, projectID, storagePath string) ([]string, error) {
	args := m.Called(ctx, projectID, storagePath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) Run(ctx context.Context, objects []storage.ObjectInfo) (*service.LinkReport, error) {
	args := m.Called(ctx, objects)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LinkReport), args.Error(1)
}

func (m *MockLinkService) Upload(ctx context.Context, r io.Reader, filename, contentType string, size int64) (*service.LinkReport, error) {
	args := m.Called(ctx, r, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LinkReport), args.Error(1)
}
