package fundot

// MapEntry is one key/value binding of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Map stores bindings in buckets selected by Value.Hash and resolved by
// Value.Equal. Iteration order is unspecified.
type Map struct {
	buckets map[uint64][]MapEntry
	size    int
}

func newMap() *Map {
	return &Map{buckets: make(map[uint64][]MapEntry)}
}

// NewMapOf builds a map from entries in order; a later entry replaces the
// value of an earlier one with an equal key.
func NewMapOf(entries ...MapEntry) *Map {
	m := newMap()
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Set binds key to value. When an equal key is already bound, its value is
// replaced and the first key is kept. Set is for construction only; a Map
// must not change once it is held by a Value.
func (m *Map) Set(key, value Value) {
	h := key.Hash()
	bucket := m.buckets[h]
	for i := range bucket {
		if bucket[i].Key.Equal(key) {
			bucket[i].Value = value
			return
		}
	}
	m.buckets[h] = append(bucket, MapEntry{Key: key, Value: value})
	m.size++
}

func (m *Map) Get(key Value) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	for _, e := range m.buckets[key.Hash()] {
		if e.Key.Equal(key) {
			return e.Value, true
		}
	}
	return Value{}, false
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.size
}

// Range calls fn for each binding until fn returns false.
func (m *Map) Range(fn func(key, value Value) bool) {
	if m == nil {
		return
	}
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			if !fn(e.Key, e.Value) {
				return
			}
		}
	}
}

func (m *Map) Entries() []MapEntry {
	out := make([]MapEntry, 0, m.Len())
	m.Range(func(key, value Value) bool {
		out = append(out, MapEntry{Key: key, Value: value})
		return true
	})
	return out
}

func (m *Map) equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	same := true
	m.Range(func(key, value Value) bool {
		got, ok := other.Get(key)
		if !ok || !got.Equal(value) {
			same = false
		}
		return same
	})
	return same
}
