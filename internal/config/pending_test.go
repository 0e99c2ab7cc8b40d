package config

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTask resolves once ready() returns true.
type fakeTask struct {
	name     string
	ready    func() bool
	fail     error
	resolved int
	order    *[]string
}

func (f *fakeTask) ResolvePending() error {
	if f.fail != nil {
		return f.fail
	}
	if !f.ready() {
		return &IncompleteElementError{Element: f.name, Reference: "later"}
	}
	f.resolved++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	return nil
}

func (f *fakeTask) Describe() string { return f.name }

func TestResolvePending_ChainsUntilNoProgress(t *testing.T) {
	cfg := newConfig(t)
	var order []string

	// c depends on b, b depends on a; queued in reverse.
	a := &fakeTask{name: "a", ready: func() bool { return true }, order: &order}
	b := &fakeTask{name: "b", ready: func() bool { return a.resolved > 0 }, order: &order}
	c := &fakeTask{name: "c", ready: func() bool { return b.resolved > 0 }, order: &order}
	cfg.AddPending(PendingStatement, c, nil)
	cfg.AddPending(PendingStatement, b, nil)
	cfg.AddPending(PendingStatement, a, nil)

	require.NoError(t, cfg.ResolvePending(context.Background(), true))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, cfg.PendingCount())
	assert.Equal(t, 1, c.resolved)
}

func TestResolvePending_OrdersByKind(t *testing.T) {
	cfg := newConfig(t)
	var order []string
	always := func() bool { return true }

	cfg.AddPending(PendingMethod, &fakeTask{name: "method", ready: always, order: &order}, nil)
	cfg.AddPending(PendingResultMap, &fakeTask{name: "resultMap", ready: always, order: &order}, nil)
	cfg.AddPending(PendingCacheRef, &fakeTask{name: "cacheRef", ready: always, order: &order}, nil)

	require.NoError(t, cfg.ResolvePending(context.Background(), false))
	assert.Equal(t, []string{"cacheRef", "resultMap", "method"}, order)
}

func TestResolvePending_NonFinalKeepsIncomplete(t *testing.T) {
	cfg := newConfig(t)
	ready := false
	task := &fakeTask{name: "late", ready: func() bool { return ready }}
	cfg.AddPending(PendingResultMap, task, nil)

	require.NoError(t, cfg.ResolvePending(context.Background(), false))
	assert.Equal(t, 1, cfg.PendingCount())

	ready = true
	require.NoError(t, cfg.ResolvePending(context.Background(), true))
	assert.Equal(t, 0, cfg.PendingCount())
}

func TestResolvePending_FinalReportsLeftovers(t *testing.T) {
	cfg := newConfig(t)
	cfg.AddPending(PendingCacheRef, &fakeTask{name: "orders", ready: func() bool { return false }}, nil)

	err := cfg.ResolvePending(context.Background(), true)
	require.Error(t, err)

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.ErrorIs(t, err, ErrIncompleteElement)
	assert.Contains(t, err.Error(), "configuration has unresolved elements:\n- cache-ref orders: orders refers to 'later'")
}

func TestResolvePending_HardErrorAborts(t *testing.T) {
	cfg := newConfig(t)
	boom := errors.New("boom")
	cfg.AddPending(PendingStatement, &fakeTask{name: "bad", fail: boom}, nil)
	cfg.AddPending(PendingStatement, &fakeTask{name: "later", ready: func() bool { return true }}, nil)

	err := cfg.ResolvePending(context.Background(), true)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "resolving statement bad")
	assert.Equal(t, 1, cfg.PendingCount(), "unvisited tasks stay queued")
}
