package mocks

import (
	"context"

	"arxivimg/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) FetchImage(ctx context.Context, pageURL string, index int) (*service.FetchResult, error) {
	args := m.Called(ctx, pageURL, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockImageService) ListFetches(ctx context.Context, limit, offset int) (*service.FetchListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchListResult), args.Error(1)
}

func (m *MockImageService) GetFetch(ctx context.Context, id string) (*service.FetchDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchDetail), args.Error(1)
}

func (m *MockImageService) DeleteFetch(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
