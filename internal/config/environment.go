package config

import (
	"database/sql"
	"fmt"

	"github.com/specialistvlad/gobatis/internal/datasource"
)

// Environment binds an ID to the data source sessions run against.
type Environment struct {
	ID      string
	Factory datasource.Factory
	DB      *sql.DB
}

// NewEnvironment opens the factory's data source.
func NewEnvironment(id string, factory datasource.Factory) (*Environment, error) {
	if id == "" {
		return nil, fmt.Errorf("environment id is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("environment '%s' has no data source factory", id)
	}
	db, err := factory.DataSource()
	if err != nil {
		return nil, fmt.Errorf("environment '%s': %w", id, err)
	}
	return &Environment{ID: id, Factory: factory, DB: db}, nil
}

// EnvironmentFromDB wraps an already open database, mostly for tests and
// embedding applications that manage their own pool.
func EnvironmentFromDB(id string, db *sql.DB) *Environment {
	return &Environment{ID: id, DB: db}
}

// Close closes the environment's database.
func (e *Environment) Close() error {
	if e == nil || e.DB == nil {
		return nil
	}
	return e.DB.Close()
}
