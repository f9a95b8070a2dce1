package model

// BestHitMapping maps a query's effective id to its top hit's effective id.
// Keys iterate in insertion order; re-setting a key keeps its first position.
type BestHitMapping struct {
	keys  []string
	index map[string]string
}

func NewBestHitMapping() *BestHitMapping {
	return &BestHitMapping{index: make(map[string]string)}
}

// MappingOf builds a mapping from alternating key, value arguments.
// Handy for tests and small fixtures; panics on an odd argument count.
func MappingOf(kv ...string) *BestHitMapping {
	if len(kv)%2 != 0 {
		panic("MappingOf: odd number of arguments")
	}
	m := NewBestHitMapping()
	for i := 0; i < len(kv); i += 2 {
		m.Set(kv[i], kv[i+1])
	}
	return m
}

// Set stores hit for query and reports whether query was already present.
func (m *BestHitMapping) Set(query, hit string) (replaced bool) {
	if _, ok := m.index[query]; ok {
		m.index[query] = hit
		return true
	}
	m.keys = append(m.keys, query)
	m.index[query] = hit
	return false
}

// Lookup returns the best hit for query, if any.
func (m *BestHitMapping) Lookup(query string) (string, bool) {
	if m == nil {
		return "", false
	}
	hit, ok := m.index[query]
	return hit, ok
}

func (m *BestHitMapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in iteration order.
func (m *BestHitMapping) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in key order until fn returns false.
func (m *BestHitMapping) Each(fn func(query, hit string) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.index[k]) {
			return
		}
	}
}
