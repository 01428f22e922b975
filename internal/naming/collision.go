package naming

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver tracks destination directory names claimed by input
// archives and resolves duplicates by appending "_N" suffixes (App, App_2,
// App_3, …). Names compare case-insensitively because the default macOS
// filesystem does. All methods are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	root     string
	owners   map[string]string // folded name → input path that owns it
	counters map[string]int    // folded base name → next suffix to try
}

// reserved marks names claimed by something other than an input, e.g. a
// directory left over from a previous run.
const reserved = "\x00reserved"

// NewCollisionResolver creates a resolver that allocates under root.
func NewCollisionResolver(root string) *CollisionResolver {
	return &CollisionResolver{
		root:     root,
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Reserve marks name as taken so that no input is allocated to it.
func (cr *CollisionResolver) Reserve(name string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	key := fold(name)
	if _, exists := cr.owners[key]; !exists {
		cr.owners[key] = reserved
	}
}

// Resolve returns the destination directory for input. If name is
// unclaimed (or already owned by input) it is used as-is; otherwise the
// first free "<name>_N" with N ≥ 2 is allocated. The same input always
// gets the same directory back.
func (cr *CollisionResolver) Resolve(input, name string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := fold(name)
	owner, exists := cr.owners[key]
	if !exists || owner == input {
		cr.owners[key] = input
		return filepath.Join(cr.root, name)
	}

	counter := cr.counters[key]
	if counter < 2 {
		counter = 2
	}
	for {
		candidate := fmt.Sprintf("%s_%d", name, counter)
		cKey := fold(candidate)
		cOwner, cExists := cr.owners[cKey]
		if !cExists || cOwner == input {
			cr.counters[key] = counter + 1
			cr.owners[cKey] = input
			return filepath.Join(cr.root, candidate)
		}
		counter++
	}
}

func fold(name string) string {
	return strings.ToLower(name)
}
