package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Dataset)
	registryMu sync.RWMutex
)

// Register adds a dataset to the registry.
// Panics if a dataset with the same key is already registered.
func Register(ds Dataset) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := ds.Info().Key
	if key == "" {
		panic("dataset registered without a key")
	}
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("dataset already registered: %s", key))
	}
	registry[key] = ds
}

// Get returns a dataset by key.
// Returns false if not found.
func Get(key string) (Dataset, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	ds, ok := registry[key]
	return ds, ok
}

// All returns all registered datasets.
// Sorted by group then by key for consistent ordering.
func All() []Dataset {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Dataset, 0, len(registry))
	for _, ds := range registry {
		result = append(result, ds)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Info(), result[j].Info()
		if a.Group != b.Group {
			return a.Group < b.Group
		}
		return a.Key < b.Key
	})

	return result
}

// Groups returns all unique group names.
// Sorted alphabetically.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, ds := range registry {
		seen[ds.Info().Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}

	sort.Strings(groups)
	return groups
}

// DatasetCount returns the number of registered datasets.
func DatasetCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered datasets.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Dataset)
}
