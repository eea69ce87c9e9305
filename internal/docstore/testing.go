//go:build !production

package docstore

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockClient Client 的 mock
type MockClient struct {
	mock.Mock
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Get(ctx context.Context, room string) (Document, error) {
	args := m.Called(ctx, room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockClient) Update(ctx context.Context, room string, patch Patch) error {
	args := m.Called(ctx, room, patch)
	return args.Error(0)
}

func (m *MockClient) Remove(ctx context.Context, room, path string) error {
	args := m.Called(ctx, room, path)
	return args.Error(0)
}

func (m *MockClient) Subscribe(ctx context.Context, room string) (<-chan Event, error) {
	args := m.Called(ctx, room)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan Event), args.Error(1)
}

func (m *MockClient) OnDisconnect(ctx context.Context, room, path string) error {
	args := m.Called(ctx, room, path)
	return args.Error(0)
}

func (m *MockClient) CancelDisconnect(ctx context.Context, room, path string) error {
	args := m.Called(ctx, room, path)
	return args.Error(0)
}
