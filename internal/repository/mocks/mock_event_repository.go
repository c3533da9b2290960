package mocks

import (
	"context"

	"docrepo/internal/model"
	"docrepo/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Append(ctx context.Context, ev *model.DocumentEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockEventRepository) ListByDocument(ctx context.Context, documentID int64, pq repository.PageQuery) (*repository.PageResult[model.DocumentEvent], error) {
	args := m.Called(ctx, documentID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.DocumentEvent]), args.Error(1)
}

func (m *MockEventRepository) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
