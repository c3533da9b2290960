package mocks

import (
	"context"

	"docrepo/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, title, author, content string, tags []string) (*model.Document, error) {
	args := m.Called(ctx, title, author, content, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Get(ctx context.Context, id int64) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) GetMetadata(ctx context.Context, id int64) (*model.DocumentMetadata, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentMetadata), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, id int64, upd model.DocumentUpdate) (*model.Document, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) DeleteReturning(ctx context.Context, id int64) (*model.DocumentMetadata, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.DocumentMetadata), args.Bool(1), args.Error(2)
}

func (m *MockDocumentRepository) List(ctx context.Context) ([]model.DocumentMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentMetadata), args.Error(1)
}

func (m *MockDocumentRepository) Search(ctx context.Context, query string) ([]model.DocumentMetadata, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentMetadata), args.Error(1)
}

func (m *MockDocumentRepository) PingContext(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
