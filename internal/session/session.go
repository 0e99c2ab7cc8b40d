// Package session defines how mapped statements are run: a Session executes
// statements inside one unit of work and a SessionFactory opens sessions
// against a configuration. The database/sql implementation lives in
// localsession.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/settings"
)

var (
	// ErrTooManyResults is matched by *TooManyResultsError.
	ErrTooManyResults = errors.New("too many results")
	// ErrSessionClosed is returned by every operation after Close.
	ErrSessionClosed = errors.New("session is closed")
)

// TooManyResultsError is returned by SelectOne when more than one row matched.
type TooManyResultsError struct {
	StatementID string
	Count       int
}

func (e *TooManyResultsError) Error() string {
	return fmt.Sprintf("expected one result (or nil) to be returned by %s, but found: %d", e.StatementID, e.Count)
}

func (e *TooManyResultsError) Is(target error) bool {
	return target == ErrTooManyResults
}

// BatchResult reports one group of batched updates that shared the same SQL.
type BatchResult struct {
	StatementID  string
	SQL          string
	Args         [][]any
	UpdateCounts []int64
}

// Session runs mapped statements by ID. Arguments are passed to the driver
// positionally. A session is not safe for concurrent use.
//
// Selects return one value per row: a pointer to a new struct for struct
// result types, the map itself for map result types, and the converted first
// column for scalar result types.
type Session interface {
	SelectOne(ctx context.Context, statement string, args ...any) (any, error)
	SelectList(ctx context.Context, statement string, args ...any) ([]any, error)
	Insert(ctx context.Context, statement string, args ...any) (int64, error)
	Update(ctx context.Context, statement string, args ...any) (int64, error)
	Delete(ctx context.Context, statement string, args ...any) (int64, error)
	// FlushStatements runs queued batch updates.
	FlushStatements(ctx context.Context) ([]BatchResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// ClearCache empties the session's local cache.
	ClearCache()
	Close(ctx context.Context) error
	Configuration() *config.Configuration
}

// SessionFactory opens sessions.
type SessionFactory interface {
	OpenSession(ctx context.Context, opts ...Option) (Session, error)
	Configuration() *config.Configuration
}

// Options control how a session is opened.
type Options struct {
	ExecutorType settings.ExecutorType
	// AutoCommit runs every statement outside of a transaction.
	AutoCommit bool
}

type Option func(*Options)

func WithExecutorType(t settings.ExecutorType) Option {
	return func(o *Options) {
		o.ExecutorType = t
	}
}

func WithAutoCommit(autoCommit bool) Option {
	return func(o *Options) {
		o.AutoCommit = autoCommit
	}
}

// NewOptions applies opts on top of the configured default executor.
func NewOptions(defaultExecutor settings.ExecutorType, opts ...Option) Options {
	o := Options{ExecutorType: defaultExecutor}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
