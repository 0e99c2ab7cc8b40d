package localsession

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/specialistvlad/gobatis/internal/cache"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/specialistvlad/gobatis/internal/settings"
)

// Session is the database/sql session. Unless opened with auto-commit it
// begins a transaction on the first statement and keeps it until Commit,
// Rollback or Close.
type Session struct {
	cfg        *config.Configuration
	db         *sql.DB
	autoCommit bool
	exec       executor
	tx         *sql.Tx

	localCache *cache.Perpetual
	txCaches   *txCacheManager

	dirty  bool
	closed bool
}

var _ session.Session = (*Session)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

func (s *Session) conn(ctx context.Context) (querier, error) {
	if s.autoCommit {
		return s.db, nil
	}
	if s.tx == nil {
		// The transaction outlives the context of the call that began it.
		tx, err := s.db.BeginTx(context.WithoutCancel(ctx), nil)
		if err != nil {
			return nil, fmt.Errorf("beginning transaction: %w", err)
		}
		s.tx = tx
	}
	return s.tx, nil
}

func (s *Session) statement(id string) (*mapping.MappedStatement, error) {
	if s.closed {
		return nil, session.ErrSessionClosed
	}
	ms, err := s.cfg.MappedStatement(id)
	if err != nil {
		return nil, fmt.Errorf("mapped statement: %w", err)
	}
	return ms, nil
}

func (s *Session) secondLevel(ms *mapping.MappedStatement) bool {
	return s.cfg.Settings.CacheEnabled && ms.Cache != nil
}

func (s *Session) SelectOne(ctx context.Context, statement string, args ...any) (any, error) {
	list, err := s.SelectList(ctx, statement, args...)
	if err != nil {
		return nil, err
	}
	switch len(list) {
	case 0:
		return nil, nil
	case 1:
		return list[0], nil
	default:
		return nil, &session.TooManyResultsError{StatementID: statement, Count: len(list)}
	}
}

// SelectList reads through the namespace cache, then the local cache, then
// the database.
func (s *Session) SelectList(ctx context.Context, statement string, args ...any) ([]any, error) {
	ms, err := s.statement(statement)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)
	key := cache.NewKey(ms.ID, ms.SQL, args)

	useSecondLevel := s.secondLevel(ms) && ms.UseCache
	if s.secondLevel(ms) && ms.FlushCache {
		s.txCaches.clear(ms.Cache)
	}
	if useSecondLevel {
		if v, ok := s.txCaches.get(ms.Cache, key); ok {
			logger.Debug("Namespace cache hit.", "statement", ms.ID, "cache", ms.Cache.ID())
			return copyResults(v.([]any)), nil
		}
	}

	list, err := s.queryLocal(ctx, ms, key, args)
	if err != nil {
		return nil, err
	}
	if useSecondLevel {
		s.txCaches.put(ms.Cache, key, copyResults(list))
	}
	return slices.Clone(list), nil
}

func (s *Session) queryLocal(ctx context.Context, ms *mapping.MappedStatement, key string, args []any) ([]any, error) {
	logger := ctxlog.FromContext(ctx)
	if ms.FlushCache {
		s.localCache.Clear()
	}
	if v, ok := s.localCache.Get(key); ok {
		logger.Debug("Local cache hit.", "statement", ms.ID)
		return v.([]any), nil
	}

	logger.Debug("Executing query.", "statement", ms.ID, "sql", ms.SQL, "args", len(args))
	handler := newResultHandler(ctx, s.cfg, ms)
	var list []any
	err := s.exec.query(ctx, ms, args, func(rows *sql.Rows) error {
		var err error
		list, err = handler.handleRows(rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.localCache.Put(key, list)
	if s.cfg.Settings.LocalCacheScope == settings.LocalCacheStatement {
		s.localCache.Clear()
	}
	return list, nil
}

func (s *Session) Insert(ctx context.Context, statement string, args ...any) (int64, error) {
	return s.Update(ctx, statement, args...)
}

// Update runs an insert, update or delete and returns the affected row
// count. A batch session returns 0 until the update is flushed.
func (s *Session) Update(ctx context.Context, statement string, args ...any) (int64, error) {
	ms, err := s.statement(statement)
	if err != nil {
		return 0, err
	}
	s.dirty = true
	s.localCache.Clear()
	if s.secondLevel(ms) && ms.FlushCache {
		s.txCaches.clear(ms.Cache)
	}
	ctxlog.FromContext(ctx).Debug("Executing update.", "statement", ms.ID, "sql", ms.SQL, "args", len(args))
	return s.exec.update(ctx, ms, args)
}

func (s *Session) Delete(ctx context.Context, statement string, args ...any) (int64, error) {
	return s.Update(ctx, statement, args...)
}

func (s *Session) FlushStatements(ctx context.Context) ([]session.BatchResult, error) {
	if s.closed {
		return nil, session.ErrSessionClosed
	}
	return s.exec.flush(ctx, false)
}

// Commit flushes batched updates, commits the transaction and publishes the
// results staged for the namespace caches.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return session.ErrSessionClosed
	}
	if _, err := s.exec.flush(ctx, false); err != nil {
		return err
	}
	if s.tx != nil {
		tx := s.tx
		s.tx = nil
		if err := tx.Commit(); err != nil {
			s.txCaches.rollback()
			return fmt.Errorf("committing transaction: %w", err)
		}
	}
	s.localCache.Clear()
	s.txCaches.commit()
	s.dirty = false
	ctxlog.FromContext(ctx).Debug("Session committed.")
	return nil
}

// Rollback drops batched updates, rolls the transaction back and discards
// the results staged for the namespace caches.
func (s *Session) Rollback(ctx context.Context) error {
	if s.closed {
		return session.ErrSessionClosed
	}
	return s.rollback(ctx)
}

func (s *Session) rollback(ctx context.Context) error {
	_, flushErr := s.exec.flush(ctx, true)
	s.localCache.Clear()
	s.txCaches.rollback()
	s.dirty = false
	if s.tx != nil {
		tx := s.tx
		s.tx = nil
		if err := tx.Rollback(); err != nil {
			return fmt.Errorf("rolling back transaction: %w", err)
		}
	}
	ctxlog.FromContext(ctx).Debug("Session rolled back.")
	return flushErr
}

func (s *Session) ClearCache() {
	s.localCache.Clear()
}

// Close rolls back uncommitted work. Results read without pending writes
// are still published to the namespace caches.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	var err error
	if !s.autoCommit && s.dirty {
		err = s.rollback(ctx)
	} else {
		s.txCaches.commit()
		if s.tx != nil {
			err = s.tx.Rollback()
			s.tx = nil
		}
	}
	s.exec.close()
	s.localCache.Clear()
	s.closed = true
	return err
}

func (s *Session) Configuration() *config.Configuration { return s.cfg }
