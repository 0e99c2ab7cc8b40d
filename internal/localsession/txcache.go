package localsession

import "github.com/specialistvlad/gobatis/internal/cache"

// txCache stages the writes a session makes to one namespace cache. Nothing
// reaches the shared cache before commit, so other sessions never see
// results of uncommitted work.
type txCache struct {
	delegate      cache.Cache
	clearOnCommit bool
	entries       map[string]any
}

type txCacheManager struct {
	caches map[cache.Cache]*txCache
}

func newTxCacheManager() *txCacheManager {
	return &txCacheManager{caches: make(map[cache.Cache]*txCache)}
}

func (m *txCacheManager) of(c cache.Cache) *txCache {
	tc, ok := m.caches[c]
	if !ok {
		tc = &txCache{delegate: c, entries: make(map[string]any)}
		m.caches[c] = tc
	}
	return tc
}

// get misses once the cache is marked for clearing in this session.
func (m *txCacheManager) get(c cache.Cache, key string) (any, bool) {
	tc := m.of(c)
	if tc.clearOnCommit {
		return nil, false
	}
	return tc.delegate.Get(key)
}

func (m *txCacheManager) put(c cache.Cache, key string, value any) {
	m.of(c).entries[key] = value
}

func (m *txCacheManager) clear(c cache.Cache) {
	tc := m.of(c)
	tc.clearOnCommit = true
	clear(tc.entries)
}

func (m *txCacheManager) commit() {
	for _, tc := range m.caches {
		if tc.clearOnCommit {
			tc.delegate.Clear()
		}
		for k, v := range tc.entries {
			tc.delegate.Put(k, v)
		}
	}
	m.reset()
}

func (m *txCacheManager) rollback() {
	m.reset()
}

func (m *txCacheManager) reset() {
	clear(m.caches)
}
