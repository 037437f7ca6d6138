// Package resample scales images for the watermark and preview paths.
// Backends register by name; the default is Lanczos via imaging.
package resample

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"sync"
)

// DefaultName is used when no backend is configured.
const DefaultName = "lanczos"

// ErrUnknownResampler is returned by New for a name nothing registered.
var ErrUnknownResampler = errors.New("unknown resampler")

// Resampler scales img to exactly width x height.
type Resampler interface {
	Resize(img image.Image, width, height int) *image.NRGBA
	Name() string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Resampler)
)

// Register makes a backend available to New. Registering the same name
// twice replaces the earlier constructor.
func Register(name string, ctor func() Resampler) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// New returns the backend registered under name. An empty name selects
// DefaultName.
func New(name string) (Resampler, error) {
	if name == "" {
		name = DefaultName
	}

	registryMu.RLock()
	ctor, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownResampler, name, Names())
	}
	return ctor(), nil
}

// Default returns the Lanczos backend.
func Default() Resampler {
	r, err := New(DefaultName)
	if err != nil {
		panic(err)
	}
	return r
}

// Names lists registered backends in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
