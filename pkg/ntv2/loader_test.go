package ntv2

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource wraps a Source and counts how many times files are opened.
type countingSource struct {
	inner Source
	opens atomic.Int64
}

func (s *countingSource) Resolve(path string) (string, error) {
	return s.inner.Resolve(path)
}

func (s *countingSource) Open(ctx context.Context, resolved string) (io.ReadCloser, error) {
	s.opens.Add(1)
	return s.inner.Open(ctx, resolved)
}

func TestGetOrLoadSharesOneInstance(t *testing.T) {
	dir := t.TempDir()
	path := writeSingleGrid(t, dir, "shared.gsb")
	source := &countingSource{inner: &FileSource{}}
	loader := NewLoader(Options{Source: source})

	const callers = 8
	grids := make([]*Grid, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := loader.GetOrLoad(context.Background(), path)
			assert.NoError(t, err)
			grids[i] = g
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		require.Same(t, grids[0], grids[i], "all callers must share one grid instance")
	}
	require.EqualValues(t, 1, source.opens.Load(), "the file must be read at most once")

	stats := loader.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, callers-1, stats.Hits)
}

func TestGetOrLoadDistinctKeys(t *testing.T) {
	dir := t.TempDir()
	first := writeSingleGrid(t, dir, "first.gsb")
	second := writeSingleGrid(t, dir, "second.gsb")
	loader := NewLoader(DefaultOptions())

	a, err := loader.GetOrLoad(context.Background(), first)
	require.NoError(t, err)
	b, err := loader.GetOrLoad(context.Background(), second)
	require.NoError(t, err)
	require.NotSame(t, a, b)
	assert.Equal(t, 2, loader.Stats().Entries)
}

func TestFailedLoadIsNotCached(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(DefaultOptions())
	missing := dir + "/late.gsb"

	_, err := loader.GetOrLoad(context.Background(), missing)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)

	// The file appears afterwards; the next call must retry, not replay the failure.
	writeSingleGrid(t, dir, "late.gsb")
	g, err := loader.GetOrLoad(context.Background(), missing)
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestLoadErrorCarriesPathAndCause(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "truncated.gsb", []byte("NUM_OREC"))
	loader := NewLoader(DefaultOptions())

	_, err := loader.GetOrLoad(context.Background(), path)
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Path, "truncated.gsb")
	assert.Error(t, loadErr.Unwrap())
}

func TestEvictForcesReload(t *testing.T) {
	dir := t.TempDir()
	path := writeSingleGrid(t, dir, "evicted.gsb")
	source := &countingSource{inner: &FileSource{}}
	loader := NewLoader(Options{Source: source})

	_, err := loader.GetOrLoad(context.Background(), path)
	require.NoError(t, err)
	loader.Evict(path)
	_, err = loader.GetOrLoad(context.Background(), path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.opens.Load())
}

func TestRelativePathsShareCacheEntry(t *testing.T) {
	dir := t.TempDir()
	writeSingleGrid(t, dir, "rel.gsb")
	source := &countingSource{inner: &FileSource{Dir: dir}}
	loader := NewLoader(Options{Source: source})

	a, err := loader.GetOrLoad(context.Background(), "rel.gsb")
	require.NoError(t, err)
	b, err := loader.GetOrLoad(context.Background(), "./rel.gsb")
	require.NoError(t, err)
	require.Same(t, a, b, "both spellings resolve to one cache key")
	assert.EqualValues(t, 1, source.opens.Load())
}
