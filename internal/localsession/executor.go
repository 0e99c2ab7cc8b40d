package localsession

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/specialistvlad/gobatis/internal/settings"
)

type connFunc func(ctx context.Context) (querier, error)

// executor runs statements on the session's connection.
type executor interface {
	update(ctx context.Context, ms *mapping.MappedStatement, args []any) (int64, error)
	// query calls handle with the open rows and closes them afterwards.
	query(ctx context.Context, ms *mapping.MappedStatement, args []any, handle func(*sql.Rows) error) error
	// flush runs or, on rollback, drops pending work.
	flush(ctx context.Context, rollback bool) ([]session.BatchResult, error)
	close()
}

func newExecutor(t settings.ExecutorType, conn connFunc) executor {
	switch t {
	case settings.ExecutorReuse:
		return &reuseExecutor{conn: conn, stmts: make(map[string]*sql.Stmt)}
	case settings.ExecutorBatch:
		return &batchExecutor{conn: conn}
	default:
		return &simpleExecutor{conn: conn}
	}
}

// withTimeout bounds ctx by the statement timeout, if any.
func withTimeout(ctx context.Context, ms *mapping.MappedStatement) (context.Context, context.CancelFunc) {
	if ms.Timeout > 0 {
		return context.WithTimeout(ctx, ms.Timeout)
	}
	return ctx, func() {}
}

func readRows(rows *sql.Rows, handle func(*sql.Rows) error) error {
	defer rows.Close()
	if err := handle(rows); err != nil {
		return err
	}
	return rows.Err()
}

func rowsAffected(ms *mapping.MappedStatement, res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("statement %s: rows affected: %w", ms.ID, err)
	}
	return n, nil
}

// simpleExecutor sends every statement to the connection as is.
type simpleExecutor struct {
	conn connFunc
}

func (e *simpleExecutor) update(ctx context.Context, ms *mapping.MappedStatement, args []any) (int64, error) {
	q, err := e.conn(ctx)
	if err != nil {
		return 0, err
	}
	ctx, cancel := withTimeout(ctx, ms)
	defer cancel()
	res, err := q.ExecContext(ctx, ms.SQL, args...)
	if err != nil {
		return 0, fmt.Errorf("executing %s: %w", ms.ID, err)
	}
	return rowsAffected(ms, res)
}

func (e *simpleExecutor) query(ctx context.Context, ms *mapping.MappedStatement, args []any, handle func(*sql.Rows) error) error {
	q, err := e.conn(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, ms)
	defer cancel()
	rows, err := q.QueryContext(ctx, ms.SQL, args...)
	if err != nil {
		return fmt.Errorf("querying %s: %w", ms.ID, err)
	}
	return readRows(rows, handle)
}

func (e *simpleExecutor) flush(context.Context, bool) ([]session.BatchResult, error) {
	return nil, nil
}

func (e *simpleExecutor) close() {}

// reuseExecutor prepares each distinct SQL text once and reuses the
// statement until the transaction ends.
type reuseExecutor struct {
	conn     connFunc
	stmts    map[string]*sql.Stmt
	prepared int
}

func (e *reuseExecutor) prepare(ctx context.Context, ms *mapping.MappedStatement) (*sql.Stmt, error) {
	if st, ok := e.stmts[ms.SQL]; ok {
		return st, nil
	}
	q, err := e.conn(ctx)
	if err != nil {
		return nil, err
	}
	st, err := q.PrepareContext(ctx, ms.SQL)
	if err != nil {
		return nil, fmt.Errorf("preparing %s: %w", ms.ID, err)
	}
	e.stmts[ms.SQL] = st
	e.prepared++
	return st, nil
}

func (e *reuseExecutor) update(ctx context.Context, ms *mapping.MappedStatement, args []any) (int64, error) {
	st, err := e.prepare(ctx, ms)
	if err != nil {
		return 0, err
	}
	ctx, cancel := withTimeout(ctx, ms)
	defer cancel()
	res, err := st.ExecContext(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("executing %s: %w", ms.ID, err)
	}
	return rowsAffected(ms, res)
}

func (e *reuseExecutor) query(ctx context.Context, ms *mapping.MappedStatement, args []any, handle func(*sql.Rows) error) error {
	st, err := e.prepare(ctx, ms)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, ms)
	defer cancel()
	rows, err := st.QueryContext(ctx, args...)
	if err != nil {
		return fmt.Errorf("querying %s: %w", ms.ID, err)
	}
	return readRows(rows, handle)
}

// flush closes the prepared statements; they belong to the transaction
// that is about to end.
func (e *reuseExecutor) flush(context.Context, bool) ([]session.BatchResult, error) {
	e.close()
	return nil, nil
}

func (e *reuseExecutor) close() {
	for sqlText, st := range e.stmts {
		_ = st.Close()
		delete(e.stmts, sqlText)
	}
}

// batchExecutor queues updates until flush. Consecutive updates of the same
// statement share one prepared statement. Queries flush the queue first so
// they observe the queued writes.
type batchExecutor struct {
	conn  connFunc
	queue []*batchEntry
}

type batchEntry struct {
	ms   *mapping.MappedStatement
	args [][]any
}

func (e *batchExecutor) update(_ context.Context, ms *mapping.MappedStatement, args []any) (int64, error) {
	if n := len(e.queue); n > 0 && e.queue[n-1].ms == ms {
		e.queue[n-1].args = append(e.queue[n-1].args, args)
		return 0, nil
	}
	e.queue = append(e.queue, &batchEntry{ms: ms, args: [][]any{args}})
	return 0, nil
}

func (e *batchExecutor) query(ctx context.Context, ms *mapping.MappedStatement, args []any, handle func(*sql.Rows) error) error {
	if _, err := e.flush(ctx, false); err != nil {
		return err
	}
	return (&simpleExecutor{conn: e.conn}).query(ctx, ms, args, handle)
}

func (e *batchExecutor) flush(ctx context.Context, rollback bool) ([]session.BatchResult, error) {
	queue := e.queue
	e.queue = nil
	if rollback || len(queue) == 0 {
		return nil, nil
	}

	q, err := e.conn(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]session.BatchResult, 0, len(queue))
	for _, entry := range queue {
		result, err := e.execute(ctx, q, entry)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *batchExecutor) execute(ctx context.Context, q querier, entry *batchEntry) (session.BatchResult, error) {
	ms := entry.ms
	result := session.BatchResult{StatementID: ms.ID, SQL: ms.SQL, Args: entry.args}

	st, err := q.PrepareContext(ctx, ms.SQL)
	if err != nil {
		return result, fmt.Errorf("preparing batch %s: %w", ms.ID, err)
	}
	defer st.Close()

	for i, args := range entry.args {
		execCtx, cancel := withTimeout(ctx, ms)
		res, err := st.ExecContext(execCtx, args...)
		cancel()
		if err != nil {
			return result, fmt.Errorf("executing batch %s (entry %d): %w", ms.ID, i, err)
		}
		n, err := rowsAffected(ms, res)
		if err != nil {
			return result, err
		}
		result.UpdateCounts = append(result.UpdateCounts, n)
	}
	return result, nil
}

func (e *batchExecutor) close() {
	e.queue = nil
}
