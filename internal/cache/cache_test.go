package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerpetual_PutGetRemoveClear(t *testing.T) {
	c := NewPerpetual("users")
	assert.Equal(t, "users", c.ID())

	_, ok := c.Get("k")
	assert.False(t, ok)

	c.Put("k", 1)
	c.Put("j", 2)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Size())

	c.Remove("k")
	_, ok = c.Get("k")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestPerpetual_ConcurrentAccess(t *testing.T) {
	c := NewPerpetual("users")
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			c.Put(key, i)
			c.Get(key)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, c.Size())
}

func TestNewKey_DistinguishesArguments(t *testing.T) {
	a := NewKey("users.find", "select 1", []any{int64(1)})
	b := NewKey("users.find", "select 1", []any{"1"})
	c := NewKey("users.find", "select 1", []any{int64(1)})

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
}

func TestNewKey_KeysOnReferencedValue(t *testing.T) {
	id := int64(1)
	first := NewKey("users.find", "select ?", []any{&id})
	id = 2
	second := NewKey("users.find", "select ?", []any{&id})

	assert.NotEqual(t, first, second)
	assert.Equal(t, NewKey("users.find", "select ?", []any{int64(2)}), second)

	var missing *int64
	assert.Equal(t, NewKey("users.find", "select ?", []any{nil}), NewKey("users.find", "select ?", []any{missing}))
}
