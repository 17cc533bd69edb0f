package types

// DefaultMap is a map wrapper that materializes missing entries with a
// user-supplied default function, removing the need for existence checks at
// every call site.
type DefaultMap[K comparable, V any] struct {
	data        map[K]V  // underlying key-value storage
	defaultFunc func() V // produces the value stored for missing keys
}

// NewDefaultMap creates an empty DefaultMap with the given default function.
func NewDefaultMap[K comparable, V any](defaultFunc func() V) DefaultMap[K, V] {
	return DefaultMap[K, V]{
		data:        make(map[K]V),
		defaultFunc: defaultFunc,
	}
}

// Get returns the value for key, creating and storing a default value first
// if the key is absent.
func (d *DefaultMap[K, V]) Get(key K) V {
	val, ok := d.data[key]
	if ok {
		return val
	}

	val = d.defaultFunc()
	d.data[key] = val
	return val
}

// Set assigns val to key.
func (d *DefaultMap[K, V]) Set(key K, val V) {
	d.data[key] = val
}

// ToMap exposes the underlying map for iteration or bulk operations.
func (d *DefaultMap[K, V]) ToMap() map[K]V {
	return d.data
}
