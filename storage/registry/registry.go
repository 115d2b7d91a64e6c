// Package registry lets binaries pick a storage.State backend by name.
//
// In Go, "plugins" are linked at build time: a backend registers itself via
// init(), and is enabled in a binary by importing the backend package (often
// as a blank import).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/pflag"

	"xdao.co/wfledger/storage"
)

// Backend can open a storage.State implementation.
type Backend struct {
	Name        string
	Description string

	// RegisterFlags adds backend-specific flags to fs.
	// It must be safe to call exactly once per flag set.
	RegisterFlags func(fs *pflag.FlagSet)

	// Open constructs the State using values parsed into flags registered by
	// RegisterFlags. It returns an optional close function.
	Open func() (storage.State, func() error, error)
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
)

// Register registers a backend.
func Register(b Backend) error {
	if b.Name == "" {
		return fmt.Errorf("registry: backend name is required")
	}
	if b.RegisterFlags == nil {
		return fmt.Errorf("registry: backend %q missing RegisterFlags", b.Name)
	}
	if b.Open == nil {
		return fmt.Errorf("registry: backend %q missing Open", b.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := backends[b.Name]; exists {
		return fmt.Errorf("registry: backend %q already registered", b.Name)
	}
	backends[b.Name] = b
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(b Backend) {
	if err := Register(b); err != nil {
		panic(err)
	}
}

// List returns registered backends sorted by name.
func List() []Backend {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Backend, 0, len(backends))
	for _, b := range backends {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns registered backend names, sorted.
func Names() []string {
	bs := List()
	n := make([]string, 0, len(bs))
	for _, b := range bs {
		n = append(n, b.Name)
	}
	return n
}

// RegisterFlags registers flags for all backends.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, b := range List() {
		b.RegisterFlags(fs)
	}
}

// Open opens the named backend.
func Open(name string) (storage.State, func() error, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("unknown state backend %q", name)
	}
	return b.Open()
}
