package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/gogpu/sketch"
)

// Factory creates a new backend instance.
type Factory func(opts Options) (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	// GPU first, CPU raster as the fallback.
	backendPriority = []string{NameWGPU, NameRaster}
)

// Well-known backend names.
const (
	NameRaster = "raster"
	NameWGPU   = "wgpu"
	NameTrace  = "trace"
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	if factory == nil {
		panic("backend: Register factory is nil")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the sorted names of registered backends.
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

// New creates the named backend.
func New(name string, opts Options) (Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (forgotten import?)", ErrBackendNotAvailable, name)
	}
	b, err := factory(opts.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	sketch.Logger().Info("backend: selected", slog.String("name", name))
	return b, nil
}

// Default creates the best available backend based on priority: wgpu,
// then raster. If none can be created, the error wraps
// sketch.ErrMissingSurfaceOrContext together with each backend's failure.
func Default(opts Options) (Backend, error) {
	errs := []error{sketch.ErrMissingSurfaceOrContext}
	for _, name := range backendPriority {
		if !IsRegistered(name) {
			continue
		}
		b, err := New(name, opts)
		if err == nil {
			return b, nil
		}
		sketch.Logger().Warn("backend: unavailable", slog.String("name", name), slog.Any("err", err))
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}
