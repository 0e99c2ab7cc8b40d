// Package localsession runs mapped statements through database/sql. It
// implements session.Session and session.SessionFactory.
package localsession

import (
	"context"
	"errors"

	"github.com/specialistvlad/gobatis/internal/cache"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/session"
)

// SessionFactory opens sessions against the configuration's environment.
type SessionFactory struct {
	cfg *config.Configuration
}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewSessionFactory fails when the configuration has no open environment.
func NewSessionFactory(cfg *config.Configuration) (*SessionFactory, error) {
	if cfg.Environment == nil || cfg.Environment.DB == nil {
		return nil, errors.New("configuration has no environment to open sessions on")
	}
	return &SessionFactory{cfg: cfg}, nil
}

func (f *SessionFactory) Configuration() *config.Configuration { return f.cfg }

// OpenSession opens a session. The executor defaults to the configured
// default executor type.
func (f *SessionFactory) OpenSession(ctx context.Context, opts ...session.Option) (session.Session, error) {
	o := session.NewOptions(f.cfg.Settings.DefaultExecutorType, opts...)
	ctxlog.FromContext(ctx).Debug("Opening session.", "environment", f.cfg.Environment.ID, "executor", o.ExecutorType, "auto_commit", o.AutoCommit)

	s := &Session{
		cfg:        f.cfg,
		db:         f.cfg.Environment.DB,
		autoCommit: o.AutoCommit,
		localCache: cache.NewPerpetual("local"),
		txCaches:   newTxCacheManager(),
	}
	s.exec = newExecutor(o.ExecutorType, s.conn)
	return s, nil
}
