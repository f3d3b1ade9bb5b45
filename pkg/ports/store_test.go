package ports_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/clevrprog/pkg/ports"
	"github.com/stretchr/testify/assert"
)

// MockCache is a map-backed ResultCache for exercising the contract itself.
type MockCache struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", ports.ErrCacheMiss
	}
	return v, nil
}

func (m *MockCache) Put(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func TestMockCache_Contract(t *testing.T) {
	ports.RunResultCacheContract(t, NewMockCache())
}

func TestObserverFunc(t *testing.T) {
	var got time.Duration
	var obs ports.Observer = ports.ObserverFunc(func(elapsed time.Duration, err error) {
		got = elapsed
	})
	obs.ObserveLine(3*time.Millisecond, nil)
	assert.Equal(t, 3*time.Millisecond, got)
}
