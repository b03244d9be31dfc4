package mocks

import (
	"context"

	"contractapi/internal/model"
	"contractapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockExtractionRepository struct {
	mock.Mock
}

func (m *MockExtractionRepository) Create(ctx context.Context, e *model.Extraction) (*model.Extraction, error) {
	args := m.Called(ctx, e)
	if f, ok := args.Get(0).(func(context.Context, *model.Extraction) *model.Extraction); ok {
		return f(ctx, e), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Extraction), args.Error(1)
}

func (m *MockExtractionRepository) FindByID(ctx context.Context, id string) (*model.Extraction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Extraction), args.Error(1)
}

func (m *MockExtractionRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Extraction], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Extraction]), args.Error(1)
}

func (m *MockExtractionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
