package file_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/pkg/adapters/file"
	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/ports"
)

func TestStore_Contract(t *testing.T) {
	ports.RunResultCacheContract(t, file.New(t.TempDir()))
}

func TestStore_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, file.New(dir).Put(ctx, "abc123", "(count:<e,i> scene:e)"))

	reopened := file.New(dir)
	got, err := reopened.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "(count:<e,i> scene:e)", got)

	n, err := reopened.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_RejectsUnsafeKeys(t *testing.T) {
	s := file.New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "a/b", "a b"} {
		assert.Error(t, s.Put(ctx, key, "x"), key)
		_, err := s.Get(ctx, key)
		assert.Error(t, err, key)
	}
}

func TestStore_WithPipeline(t *testing.T) {
	s := file.New(t.TempDir())
	p, err := clevrprog.New(catalog.Default(), clevrprog.WithCache(s))
	require.NoError(t, err)

	out, err := p.Process("(count scene)")
	require.NoError(t, err)

	cached, err := s.Get(context.Background(), p.CacheKey("(count scene)"))
	require.NoError(t, err)
	assert.Equal(t, out, cached)
}
