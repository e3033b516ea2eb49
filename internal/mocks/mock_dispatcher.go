package mocks

import (
	"context"

	"github.com/mislam/topinspect/domain"
)

// MockDispatcher implements domain.Dispatcher interface for testing. Unlike
// the production dispatcher it runs tasks synchronously so tests can assert
// on their side effects without sleeping.
type MockDispatcher struct {
	DispatchFunc func(name string, fn func(ctx context.Context) error)

	// Dispatched records task names in dispatch order.
	Dispatched []string
}

// NewMockDispatcher creates a new MockDispatcher with default behaviors
func NewMockDispatcher() *MockDispatcher {
	return &MockDispatcher{}
}

// Dispatch runs the task inline
func (m *MockDispatcher) Dispatch(name string, fn func(ctx context.Context) error) {
	m.Dispatched = append(m.Dispatched, name)
	if m.DispatchFunc != nil {
		m.DispatchFunc(name, fn)
		return
	}
	// Default behavior: run synchronously, ignore the error like production
	_ = fn(context.Background())
}

// Compile-time interface compliance verification
var _ domain.Dispatcher = (*MockDispatcher)(nil)
