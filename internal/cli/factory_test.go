package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/clevrprog"
	"github.com/aretw0/clevrprog/internal/config"
	"github.com/aretw0/clevrprog/internal/logging"
	"github.com/aretw0/clevrprog/pkg/adapters/file"
	"github.com/aretw0/clevrprog/pkg/adapters/memory"
	"github.com/aretw0/clevrprog/pkg/adapters/redis"
	"github.com/aretw0/clevrprog/pkg/catalog"
	"github.com/aretw0/clevrprog/pkg/corpus"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	_, err = c.Lookup("filter_color")
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "mini.ont")
	require.NoError(t, os.WriteFile(path, []byte("scene:e\ncount:<e,i>\n"), 0o644))
	c, err = LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.ont"))
	assert.Error(t, err)
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("None", func(t *testing.T) {
		c, closeFn, err := NewCache(ctx, config.CacheConfig{Backend: config.CacheNone}, logger)
		require.NoError(t, err)
		assert.Nil(t, c)
		assert.NoError(t, closeFn())
	})

	t.Run("Memory", func(t *testing.T) {
		c, _, err := NewCache(ctx, config.CacheConfig{Backend: config.CacheMemory}, logger)
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, c)
	})

	t.Run("File", func(t *testing.T) {
		dir := t.TempDir()
		c, _, err := NewCache(ctx, config.CacheConfig{Backend: config.CacheFile, Dir: dir}, logger)
		require.NoError(t, err)
		require.IsType(t, &file.Store{}, c)
		assert.Equal(t, dir, c.(*file.Store).Dir)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c, closeFn, err := NewCache(ctx, config.CacheConfig{Backend: config.CacheRedis, RedisAddr: mr.Addr()}, logger)
		require.NoError(t, err)
		assert.IsType(t, &redis.Store{}, c)
		assert.NoError(t, closeFn())
	})

	t.Run("Redis Unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		_, _, err := NewCache(ctx, config.CacheConfig{Backend: config.CacheRedis, RedisAddr: addr}, logger)
		assert.Error(t, err)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, _, err := NewCache(ctx, config.CacheConfig{Backend: "etcd"}, logger)
		assert.Error(t, err)
	})
}

func TestNewPipeline_FromConfig(t *testing.T) {
	types, err := LoadCatalog("")
	require.NoError(t, err)

	cfg := config.Default()
	p, err := NewPipeline(cfg, types, logging.NewNop())
	require.NoError(t, err)
	out, err := p.Process("(query_shape (unique (filter_shape (filter_color scene red) cube)))")
	require.NoError(t, err)
	assert.Equal(t, "(query_shape:<e,s> (unique:<e,e> (filter_color:<e,<c,e>> (filter_shape:<e,<s,e>> scene:e cube:s) red:c)))", out)

	cfg.FactorAttrs = true
	p, err = NewPipeline(cfg, types, logging.NewNop())
	require.NoError(t, err)
	out, err = p.Process("(query_shape (unique (filter_color scene red)))")
	require.NoError(t, err)
	assert.Equal(t, "(query:<a,<e,v>> shape:a (unique:<e,e> (filter:<a,<e,<v,e>>> color:a scene:e red:c)))", out)
}

func TestNewPipeline_DefaultMatchesLibrary(t *testing.T) {
	types := catalog.New(map[string]string{
		"count":           "<e,i>",
		"scene":           "e",
		"filter_color":    "<e,<c,e>>",
		"filter_by_color": "<e,<c,e>>",
		"red":             "c",
		"blue":            "c",
	})
	line := "(count (filter_by_color (filter_color scene red) blue))"

	fromConfig, err := NewPipeline(config.Default(), types, logging.NewNop())
	require.NoError(t, err)
	library, err := clevrprog.New(types)
	require.NoError(t, err)

	want := "(count:<e,i> (filter_color:<e,<c,e>> (filter_by_color:<e,<c,e>> scene:e blue:c) red:c))"
	for name, p := range map[string]*clevrprog.Pipeline{"config": fromConfig, "library": library} {
		out, err := p.Process(line)
		require.NoError(t, err, name)
		assert.Equal(t, want, out, name)
	}
	assert.Equal(t, library.CacheKey(line), fromConfig.CacheKey(line))
}

func TestNewDriver(t *testing.T) {
	cfg := config.Default()
	cfg.OnError = "skip"
	cfg.Workers = 3

	d, err := NewDriver(cfg, nil, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, corpus.OnErrorSkip, d.OnError)
	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, 3, d.Workers)

	cfg.OnError = "retry"
	_, err = NewDriver(cfg, nil, logging.NewNop())
	assert.Error(t, err)
}

func TestOpenInputOutput(t *testing.T) {
	r, closer, err := OpenInput("-")
	require.NoError(t, err)
	assert.Equal(t, os.Stdin, r)
	assert.NoError(t, closer.Close())

	path := filepath.Join(t.TempDir(), "out.txt")
	w, closer, err := CreateOutput(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, closer.Close())

	r, closer, err = OpenInput(path)
	require.NoError(t, err)
	defer closer.Close()
	buf := make([]byte, 5)
	_, err = r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
}
