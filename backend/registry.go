package backend

import (
	"sort"
	"sync"

	"github.com/Nazariglez/nae"
)

// Factory creates a new backend instance.
type Factory func() Backend

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for Default (first available wins).
	backendPriority = []string{BackendWGPU, BackendEbiten, BackendSoftware}
)

// Register registers a backend factory with the given name. It is called
// from init() in backend packages:
//
//	import _ "github.com/Nazariglez/nae/backend/software"
//
// Register panics if factory is nil. A second registration under the same
// name replaces the first.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("backend: Register factory is nil")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a new backend instance by name, or nil.
func Get(name string) Backend {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend based on priority, falling
// back to any registered one. It returns nil if nothing is registered.
func Default() Backend {
	for _, name := range backendPriority {
		if b := Get(name); b != nil {
			return b
		}
	}
	for _, name := range Available() {
		if b := Get(name); b != nil {
			return b
		}
	}
	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() Backend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// InitDefault initializes the first backend, in priority order, whose
// Init succeeds.
func InitDefault() (Backend, error) {
	names := append([]string(nil), backendPriority...)
	for _, name := range Available() {
		if !contains(names, name) {
			names = append(names, name)
		}
	}
	var lastErr error = ErrBackendNotAvailable
	for _, name := range names {
		b := Get(name)
		if b == nil {
			continue
		}
		if err := b.Init(); err != nil {
			nae.Logger().Warn("backend init failed", "backend", name, "err", err)
			lastErr = err
			continue
		}
		nae.Logger().Info("backend initialised", "backend", name)
		return b, nil
	}
	return nil, lastErr
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
