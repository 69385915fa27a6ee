package localmap

// Key identifies one stored value of type T. Distinct Key pointers address
// distinct slots regardless of their names.
type Key[T any] struct {
	name string
}

// NewKey returns a new Key for values of type T. The name appears in
// diagnostics only and does not need to be unique.
func NewKey[T any](name string) *Key[T] {
	return &Key[T]{name: name}
}

func (k *Key[T]) String() string { return k.name }

// Map is a heterogeneous value store. The zero value is an empty map.
type Map struct {
	values map[any]any
}

// Len returns the number of stored values.
func (m *Map) Len() int { return len(m.values) }

// Get returns the value stored under key.
func Get[T any](m *Map, key *Key[T]) (T, bool) {
	v, ok := m.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Set stores value under key, replacing any previous value.
func Set[T any](m *Map, key *Key[T], value T) {
	if m.values == nil {
		m.values = make(map[any]any)
	}
	m.values[key] = value
}

// Delete removes the value stored under key, if any.
func Delete[T any](m *Map, key *Key[T]) {
	delete(m.values, key)
}

// GetOrInit returns the value stored under key, storing and returning
// init's result if the slot is empty.
func GetOrInit[T any](m *Map, key *Key[T], init func() T) T {
	if v, ok := Get(m, key); ok {
		return v
	}
	v := init()
	Set(m, key, v)
	return v
}
