package mocks

import (
	"context"

	"contractapi/internal/textextract"

	"github.com/stretchr/testify/mock"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractText(ctx context.Context, data []byte) (textextract.Text, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(textextract.Text), args.Error(1)
}
