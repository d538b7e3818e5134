package mocks

import (
	"context"

	"arxivimg/internal/arxiv"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) FetchFigure(ctx context.Context, pageURL string, index int) (*arxiv.Image, error) {
	args := m.Called(ctx, pageURL, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*arxiv.Image), args.Error(1)
}
