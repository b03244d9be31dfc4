package mocks

import (
	"context"

	"contractapi/internal/model"
	"contractapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockContractService struct {
	mock.Mock
}

func (m *MockContractService) Process(ctx context.Context, req model.UploadRequest) *model.PipelineResult {
	args := m.Called(ctx, req)
	return args.Get(0).(*model.PipelineResult)
}

func (m *MockContractService) List(ctx context.Context, limit, offset int) (*service.ExtractionListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExtractionListResult), args.Error(1)
}

func (m *MockContractService) Get(ctx context.Context, id string) (*model.Extraction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Extraction), args.Error(1)
}

func (m *MockContractService) FileURL(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockContractService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
