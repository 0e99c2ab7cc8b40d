// Package cache provides the caches statements read through: the namespace
// (second-level) cache shared by every session, and the per-session local
// cache.
package cache

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"
)

// Cache stores query results under string keys.
type Cache interface {
	// ID is the namespace the cache belongs to.
	ID() string
	Get(key string) (any, bool)
	Put(key string, value any)
	Remove(key string)
	Clear()
	Size() int
}

// Perpetual is a Cache that never evicts. It is goroutine-safe.
type Perpetual struct {
	id    string
	mu    sync.RWMutex
	items map[string]any
}

// NewPerpetual creates an empty cache for the given namespace.
func NewPerpetual(id string) *Perpetual {
	return &Perpetual{
		id:    id,
		items: make(map[string]any),
	}
}

func (c *Perpetual) ID() string { return c.id }

func (c *Perpetual) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *Perpetual) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Perpetual) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *Perpetual) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]any)
}

func (c *Perpetual) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// NewKey builds the key a query result is cached under: the statement ID,
// the SQL text and every argument in its %#v form. Arguments are keyed on
// the value the driver would bind, so pointers and driver.Valuers key on
// what they refer to, not on their address.
func NewKey(statementID, sql string, args []any) string {
	var b strings.Builder
	b.WriteString(statementID)
	b.WriteString("|")
	b.WriteString(sql)
	for _, arg := range args {
		fmt.Fprintf(&b, "|%#v", keyValue(arg))
	}
	return b.String()
}

func keyValue(arg any) any {
	v, err := driver.DefaultParameterConverter.ConvertValue(arg)
	if err != nil {
		return arg
	}
	return v
}
