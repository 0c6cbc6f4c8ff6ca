// Package codec encodes the settings block stored in index snapshots.
//
// Snapshots record the codec name next to the bytes it produced, so a snapshot
// written with one codec still loads after the default changes. Custom codecs
// must be registered before snapshots written with them can be loaded.
package codec

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDuplicateName is returned when registering a codec under a taken name.
var ErrDuplicateName = errors.New("codec: duplicate name")

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

var (
	mu       sync.RWMutex
	registry = map[string]Codec{}
)

// Register makes c available to ByName. Names are limited to 255 bytes.
func Register(c Codec) error {
	name := c.Name()
	if name == "" || len(name) > 255 {
		return fmt.Errorf("codec: invalid name %q", name)
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := builtin(name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	if _, ok := registry[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	registry[name] = c
	return nil
}

// ByName returns a built-in or registered codec by its stable name.
func ByName(name string) (Codec, bool) {
	if c, ok := builtin(name); ok {
		return c, true
	}
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[name]
	return c, ok
}

func builtin(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
