package ntv2

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Geomatys/ntv2/internal/grid"
)

// Loader loads datum-shift grid files through a process-wide cache keyed by
// resolved path. A grid file is read at most once; concurrent first requests
// for the same file serialize through a per-key lock while loads of different
// files proceed in parallel. Load failures are never cached, so the next
// request retries from scratch.
type Loader struct {
	opts  Options
	types *grid.TypeTable

	mu      sync.RWMutex
	entries map[string]*Grid
	locks   map[string]*sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLoader creates a loader with its own cache.
func NewLoader(opts Options) *Loader {
	opts = opts.withDefaults()
	types := grid.DefaultTypes()
	if len(opts.Keywords) > 0 {
		extra := make(map[string]grid.DataType, len(opts.Keywords))
		for key, ft := range opts.Keywords {
			switch ft {
			case IntegerField:
				extra[key] = grid.TypeInteger
			case DoubleField:
				extra[key] = grid.TypeDouble
			default:
				extra[key] = grid.TypeString
			}
		}
		types = types.Extend(extra)
	}
	return &Loader{
		opts:    opts,
		types:   types,
		entries: make(map[string]*Grid),
		locks:   make(map[string]*sync.Mutex),
	}
}

// LoadError is the error returned for any failed load: format violations,
// truncation and I/O failures all surface under the offending file's
// resolved path, with the cause preserved for errors.Is / errors.As.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load datum shift grid file %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// GetOrLoad returns the cached grid for the given path, loading it on first
// request. The returned grid is shared: all callers for the same resolved
// path observe the same immutable instance.
func (l *Loader) GetOrLoad(ctx context.Context, path string) (*Grid, error) {
	key, err := l.opts.Source.Resolve(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	// Wait-free peek before taking any lock.
	l.mu.RLock()
	g := l.entries[key]
	l.mu.RUnlock()
	if g != nil {
		l.hits.Add(1)
		return g, nil
	}
	// Serialize first loads of this key only; other keys stay unblocked.
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()
	l.mu.RLock()
	g = l.entries[key]
	l.mu.RUnlock()
	if g != nil {
		l.hits.Add(1)
		return g, nil
	}
	l.misses.Add(1)
	g, err = l.load(ctx, key)
	if err != nil {
		return nil, &LoadError{Path: key, Err: err}
	}
	l.mu.Lock()
	l.shareDataLocked(g)
	l.entries[key] = g
	l.mu.Unlock()
	return g, nil
}

func (l *Loader) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}

func (l *Loader) load(ctx context.Context, key string) (*Grid, error) {
	src, err := l.opts.Source.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	reader, err := grid.NewLoader(src, key, l.opts.VersionHint, l.types)
	if err != nil {
		return nil, err
	}
	root, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	reader.Report(l.opts.Logger)
	return wrapGrid(root), nil
}

// shareDataLocked replaces the new tree's backing arrays with those of
// already-cached grids when the contents are identical, so files carrying
// the same cell data share one copy in memory. Caller holds l.mu.
func (l *Loader) shareDataLocked(loaded *Grid) {
	for _, cached := range l.entries {
		for _, fresh := range loaded.all {
			for _, existing := range cached.all {
				fresh.g.ShareDataWith(existing.g)
			}
		}
	}
}

// CacheStats holds cache performance counters.
type CacheStats struct {
	Entries int   // Grids currently cached
	Hits    int64 // Requests served from cache
	Misses  int64 // Requests that loaded a file
}

// Stats returns a snapshot of the cache counters.
func (l *Loader) Stats() CacheStats {
	l.mu.RLock()
	entries := len(l.entries)
	l.mu.RUnlock()
	return CacheStats{
		Entries: entries,
		Hits:    l.hits.Load(),
		Misses:  l.misses.Load(),
	}
}

// Evict removes one grid from the cache, forcing the next request for that
// path to reload the file.
func (l *Loader) Evict(path string) {
	key, err := l.opts.Source.Resolve(path)
	if err != nil {
		return
	}
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}
