package mocks

import (
	"context"

	"binary-metadata/core/metadata"

	"github.com/stretchr/testify/mock"
)

// Processor is a mock implementation of metadata.Processor
type Processor struct {
	mock.Mock
}

func (m *Processor) ReadMetadata(ctx context.Context, blob *metadata.Blob, keys []string, ignorePrefix bool) (map[string]any, error) {
	args := m.Called(ctx, blob, keys, ignorePrefix)
	if values, ok := args.Get(0).(map[string]any); ok {
		return values, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Processor) WriteMetadata(ctx context.Context, blob *metadata.Blob, values map[string]string, ignorePrefix bool) (*metadata.Blob, error) {
	args := m.Called(ctx, blob, values, ignorePrefix)
	if out, ok := args.Get(0).(*metadata.Blob); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// Session is a mock implementation of metadata.Session
type Session struct {
	mock.Mock
}

func (m *Session) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *Session) Save(ctx context.Context, rec metadata.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}
