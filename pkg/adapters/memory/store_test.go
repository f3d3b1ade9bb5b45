package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aretw0/clevrprog/pkg/adapters/memory"
	"github.com/aretw0/clevrprog/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunResultCacheContract(t, store)
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("line-%d", i)
			_ = store.Put(ctx, key, "value")
			_, _ = store.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, store.Len())
}
