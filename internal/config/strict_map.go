package config

import (
	"fmt"
	"sort"
	"strings"
)

// strictMap stores values under their full, namespace-qualified ID and also
// under the short ID after the last dot. Full IDs must be unique. A short ID
// claimed by two namespaces becomes ambiguous and can no longer be looked up.
type strictMap[V any] struct {
	name      string
	items     map[string]V
	shorts    map[string]string
	ambiguous map[string][]string
}

func newStrictMap[V any](name string) strictMap[V] {
	return strictMap[V]{
		name:      name,
		items:     make(map[string]V),
		shorts:    make(map[string]string),
		ambiguous: make(map[string][]string),
	}
}

func shortName(key string) (string, bool) {
	i := strings.LastIndex(key, ".")
	if i < 0 {
		return "", false
	}
	return key[i+1:], true
}

func (m *strictMap[V]) put(key string, value V) error {
	if _, exists := m.items[key]; exists {
		return fmt.Errorf("%s already contains value for %s", m.name, key)
	}
	m.items[key] = value

	short, ok := shortName(key)
	if !ok {
		return nil
	}
	if owners, amb := m.ambiguous[short]; amb {
		m.ambiguous[short] = append(owners, key)
		return nil
	}
	if owner, exists := m.shorts[short]; exists {
		delete(m.shorts, short)
		m.ambiguous[short] = []string{owner, key}
		return nil
	}
	m.shorts[short] = key
	return nil
}

func (m *strictMap[V]) get(key string) (V, error) {
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	var zero V
	if owners, amb := m.ambiguous[key]; amb {
		return zero, fmt.Errorf("%s is ambiguous in %s (candidates: %s); use the full name including the namespace",
			key, m.name, strings.Join(owners, ", "))
	}
	if full, ok := m.shorts[key]; ok {
		return m.items[full], nil
	}
	return zero, fmt.Errorf("%w: %s does not contain value for %s", ErrNotFound, m.name, key)
}

func (m *strictMap[V]) has(key string) bool {
	_, err := m.get(key)
	return err == nil
}

func (m *strictMap[V]) keys() []string {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
