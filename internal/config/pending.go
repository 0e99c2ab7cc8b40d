package config

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/gobatis/internal/ctxlog"
)

// PendingResolution is one deferred build step. ResolvePending returns an
// error matching ErrIncompleteElement while its references are missing.
type PendingResolution interface {
	ResolvePending() error
	// Describe names the element for logs and errors.
	Describe() string
}

// PendingKind orders the pending queue: cache references are retried before
// result maps, and result maps before the statements that use them.
type PendingKind int

const (
	PendingCacheRef PendingKind = iota
	PendingResultMap
	PendingStatement
	PendingMethod
)

var pendingKindNames = []string{"cache-ref", "result-map", "statement", "method"}

func (k PendingKind) String() string {
	if int(k) < 0 || int(k) >= len(pendingKindNames) {
		return fmt.Sprintf("PendingKind(%d)", int(k))
	}
	return pendingKindNames[k]
}

type pendingTask struct {
	kind PendingKind
	task PendingResolution
	// lastErr is the most recent incomplete error, reported if the task is
	// still pending after the final pass.
	lastErr error
}

// AddPending queues a deferred build step.
func (c *Configuration) AddPending(kind PendingKind, task PendingResolution, cause error) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	c.pending = append(c.pending, &pendingTask{kind: kind, task: task, lastErr: cause})
}

// PendingCount returns the number of queued steps.
func (c *Configuration) PendingCount() int {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	return len(c.pending)
}

// ResolvePending replays the queue until a pass resolves nothing new. Steps
// that are still incomplete stay queued, unless final is set, in which case
// they are reported as an *UnresolvedError. Any other error aborts at once
// and leaves the unfinished steps queued.
func (c *Configuration) ResolvePending(ctx context.Context, final bool) error {
	logger := ctxlog.FromContext(ctx)

	c.pendingMu.Lock()
	queue := c.pending
	c.pending = nil
	c.pendingMu.Unlock()

	sort.SliceStable(queue, func(i, j int) bool { return queue[i].kind < queue[j].kind })

	for pass := 1; len(queue) > 0; pass++ {
		var remaining []*pendingTask
		for i, t := range queue {
			err := t.task.ResolvePending()
			switch {
			case err == nil:
				logger.Debug("Resolved pending element.", "kind", t.kind, "element", t.task.Describe(), "pass", pass)
			case errors.Is(err, ErrIncompleteElement):
				t.lastErr = err
				remaining = append(remaining, t)
			default:
				c.requeue(append(remaining, queue[i+1:]...))
				return fmt.Errorf("resolving %s %s: %w", t.kind, t.task.Describe(), err)
			}
		}
		if len(remaining) == len(queue) {
			queue = remaining
			break
		}
		queue = remaining
	}

	if len(queue) == 0 {
		return nil
	}

	if !final {
		logger.Debug("Pending elements deferred to a later pass.", "count", len(queue))
		c.requeue(queue)
		return nil
	}

	errs := make([]error, 0, len(queue))
	for _, t := range queue {
		errs = append(errs, fmt.Errorf("%s %s: %w", t.kind, t.task.Describe(), t.lastErr))
	}
	c.requeue(queue)
	return &UnresolvedError{Errors: errs}
}

func (c *Configuration) requeue(tasks []*pendingTask) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	c.pending = append(tasks, c.pending...)
}
