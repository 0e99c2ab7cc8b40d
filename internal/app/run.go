package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/mapping"
)

// Run executes the configured statement and prints its results. When the
// inspect server is enabled it is started first; without a statement Run
// then serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HTTPPort > 0 {
		a.startInspectServer(ctx)
		defer a.closeInspectServer(ctx)
	}

	if a.config.Statement == "" {
		if a.httpServer == nil {
			a.logger.Warn("No statement to run.")
			return nil
		}
		a.logger.Info("No statement to run, serving until shutdown.")
		<-ctx.Done()
		return nil
	}

	if err := a.RunStatement(ctx, a.config.Statement, parseArgs(a.config.Args)...); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// RunStatement runs one mapped statement in its own session and writes the
// rows, or the affected row count, to the output. The session is committed
// on success.
func (a *App) RunStatement(ctx context.Context, id string, args ...any) (err error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.sessions == nil {
		return errors.New("no environment selected")
	}
	ms, err := a.cfg.MappedStatement(id)
	if err != nil {
		return err
	}

	sess, err := a.sessions.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, sess.Close(ctx))
	}()

	a.logger.Info("Running statement.", "statement", ms.ID, "command", ms.CommandType, "args", len(args))

	switch ms.CommandType {
	case mapping.CommandSelect:
		results, err := sess.SelectList(ctx, ms.ID, args...)
		if err != nil {
			return err
		}
		if err := a.printResults(results); err != nil {
			return err
		}
		a.logger.Info("Statement finished.", "statement", ms.ID, "rows", len(results))
	case mapping.CommandInsert, mapping.CommandUpdate, mapping.CommandDelete:
		var n int64
		switch ms.CommandType {
		case mapping.CommandInsert:
			n, err = sess.Insert(ctx, ms.ID, args...)
		case mapping.CommandDelete:
			n, err = sess.Delete(ctx, ms.ID, args...)
		default:
			n, err = sess.Update(ctx, ms.ID, args...)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(a.outW, "%d row(s) affected\n", n)
		a.logger.Info("Statement finished.", "statement", ms.ID, "affected", n)
	default:
		return fmt.Errorf("statement %s has unsupported command type %s", ms.ID, ms.CommandType)
	}

	return sess.Commit(ctx)
}
