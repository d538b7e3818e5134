package mocks

import (
	"context"

	"arxivimg/internal/model"
	"arxivimg/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockFetchRepository struct {
	mock.Mock
}

func (m *MockFetchRepository) Create(ctx context.Context, f *model.Fetch) (*model.Fetch, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fetch), args.Error(1)
}

func (m *MockFetchRepository) FindByID(ctx context.Context, id string) (*model.Fetch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Fetch), args.Error(1)
}

func (m *MockFetchRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Fetch], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Fetch]), args.Error(1)
}

func (m *MockFetchRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
