// Package datasource creates the *sql.DB an environment runs against.
//
// A Factory is configured from the string properties of an environment's
// data_source block and then asked for its DataSource. Factories are looked up
// by alias (SQLITE, UNPOOLED, POOLED) or by fully-qualified type name, and
// instantiated with New.
package datasource

import (
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/specialistvlad/gobatis/internal/typealias"
)

// Factory builds a data source from configuration properties.
type Factory interface {
	SetProperties(props map[string]string) error
	DataSource() (*sql.DB, error)
}

var factoryType = reflect.TypeFor[Factory]()

func init() {
	typealias.Register(
		reflect.TypeFor[UnpooledFactory](),
		reflect.TypeFor[PooledFactory](),
		reflect.TypeFor[SQLiteFactory](),
	)
}

// Aliases lists the built-in factories under the aliases configurations use.
func Aliases() map[string]reflect.Type {
	return map[string]reflect.Type{
		"UNPOOLED": reflect.TypeFor[UnpooledFactory](),
		"POOLED":   reflect.TypeFor[PooledFactory](),
		"SQLITE":   reflect.TypeFor[SQLiteFactory](),
	}
}

// New instantiates the factory type t. Both T and *T are accepted as long as
// *T implements Factory.
func New(t reflect.Type) (Factory, error) {
	if t == nil {
		return nil, fmt.Errorf("data source factory type is nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if !reflect.PointerTo(t).Implements(factoryType) {
		return nil, fmt.Errorf("type %s does not implement datasource.Factory", typealias.QualifiedName(t))
	}
	return reflect.New(t).Interface().(Factory), nil
}

// UnpooledFactory opens a data source for any registered database/sql driver.
//
// Properties: driver (required), dsn (required).
type UnpooledFactory struct {
	Driver string
	DSN    string

	once sync.Once
	db   *sql.DB
	err  error
}

func (f *UnpooledFactory) SetProperties(props map[string]string) error {
	f.Driver = strings.TrimSpace(props["driver"])
	f.DSN = strings.TrimSpace(props["dsn"])
	if f.Driver == "" {
		return fmt.Errorf("data source property 'driver' is required")
	}
	if f.DSN == "" {
		return fmt.Errorf("data source property 'dsn' is required")
	}
	return nil
}

// DataSource opens the database on first call and returns the same handle
// afterwards.
func (f *UnpooledFactory) DataSource() (*sql.DB, error) {
	f.once.Do(func() {
		f.db, f.err = open(f.Driver, f.DSN)
	})
	return f.db, f.err
}

// PooledFactory is an UnpooledFactory with connection pool limits.
//
// Extra properties: max_open_conns, max_idle_conns, conn_max_lifetime
// (a time.Duration string).
type PooledFactory struct {
	UnpooledFactory
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (f *PooledFactory) SetProperties(props map[string]string) error {
	if err := f.UnpooledFactory.SetProperties(props); err != nil {
		return err
	}
	var err error
	if f.MaxOpenConns, err = intProperty(props, "max_open_conns"); err != nil {
		return err
	}
	if f.MaxIdleConns, err = intProperty(props, "max_idle_conns"); err != nil {
		return err
	}
	if v := strings.TrimSpace(props["conn_max_lifetime"]); v != "" {
		if f.ConnMaxLifetime, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("data source property 'conn_max_lifetime': %w", err)
		}
	}
	return nil
}

func (f *PooledFactory) DataSource() (*sql.DB, error) {
	db, err := f.UnpooledFactory.DataSource()
	if err != nil {
		return nil, err
	}
	if f.MaxOpenConns > 0 {
		db.SetMaxOpenConns(f.MaxOpenConns)
	}
	if f.MaxIdleConns > 0 {
		db.SetMaxIdleConns(f.MaxIdleConns)
	}
	if f.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(f.ConnMaxLifetime)
	}
	return db, nil
}

func open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	return db, nil
}

func intProperty(props map[string]string, key string) (int, error) {
	v := strings.TrimSpace(props[key])
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("data source property '%s': %w", key, err)
	}
	return n, nil
}
