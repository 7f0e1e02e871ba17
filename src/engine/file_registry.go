package engine

import (
	"sync"
)

/*

Serializes the temp-write + rename sequence per destination path.
Every writer of a key uses the same {key}.json.tmp sibling, so two writers must not
be inside that window at the same time. Entries are reference counted and dropped
when the last holder releases them.

*/

type managedPath struct {
	mu       sync.Mutex
	refCount int
}

// PathRegistry hands out per-path write locks.
type PathRegistry struct {
	mu    sync.Mutex
	paths map[string]*managedPath
}

func NewPathRegistry() *PathRegistry {
	return &PathRegistry{
		paths: make(map[string]*managedPath),
	}
}

// Lock blocks until the caller holds the write lock for path.
func (pr *PathRegistry) Lock(path string) {
	pr.mu.Lock()
	mp, exists := pr.paths[path]
	if !exists {
		mp = &managedPath{}
		pr.paths[path] = mp
	}
	mp.refCount++
	pr.mu.Unlock()

	mp.mu.Lock()
}

// Unlock releases the write lock for path.
func (pr *PathRegistry) Unlock(path string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	mp, exists := pr.paths[path]
	if !exists {
		return
	}
	mp.mu.Unlock()

	mp.refCount--
	if mp.refCount <= 0 {
		delete(pr.paths, path)
	}
}

// Held returns the number of paths currently locked or waited on.
func (pr *PathRegistry) Held() int {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return len(pr.paths)
}
