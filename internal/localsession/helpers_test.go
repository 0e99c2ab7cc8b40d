package localsession

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	"github.com/specialistvlad/gobatis/internal/builder"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/specialistvlad/gobatis/internal/testutil"
	"github.com/stretchr/testify/require"
)

type Address struct {
	City string
}

type Person struct {
	ID        int64
	Name      string
	CreatedAt string
	Address   *Address
}

type Employee struct {
	Person
	Salary float64
}

var schema = []string{
	`CREATE TABLE people (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		city TEXT,
		salary REAL,
		created_at TEXT
	)`,
	`INSERT INTO people (id, name, kind, city, salary, created_at) VALUES
		(1, 'Ada', 'emp', 'London', 100.5, '2024-01-01'),
		(2, 'Linus', 'guest', 'Helsinki', NULL, '2024-02-01'),
		(3, 'Grace', 'emp', NULL, 200, '2024-03-01')`,
}

type fixture struct {
	cfg     *config.Configuration
	db      *sql.DB
	factory *SessionFactory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewSQLiteDB(t, schema...)
	cfg, err := config.New()
	require.NoError(t, err)
	cfg.Environment = config.EnvironmentFromDB("test", db)

	a := builder.NewAssistant(cfg, mapping.FileSource("people.hcl"))
	require.NoError(t, a.SetNamespace("people"))
	_, err = a.UseNewCache()
	require.NoError(t, err)

	_, err = a.AddResultMap("addressMap", reflect.TypeFor[Address](), "", nil,
		[]mapping.ResultMapping{{Property: "City", Column: "city"}}, nil)
	require.NoError(t, err)
	_, err = a.AddResultMap("personMap", reflect.TypeFor[Person](), "",
		&mapping.Discriminator{Column: "kind", Cases: map[string]string{"emp": "employeeMap"}},
		[]mapping.ResultMapping{
			{Property: "ID", Column: "id", IsID: true},
			{Property: "Name", Column: "name"},
			{Property: "Address", NestedResultMapID: "addressMap"},
		}, nil)
	require.NoError(t, err)
	_, err = a.AddResultMap("employeeMap", reflect.TypeFor[Employee](), "personMap", nil,
		[]mapping.ResultMapping{{Property: "Salary", Column: "salary"}}, nil)
	require.NoError(t, err)

	personType := reflect.TypeFor[Person]()
	specs := []builder.StatementSpec{
		{ID: "findAll", CommandType: mapping.CommandSelect, SQL: "SELECT id, name, created_at FROM people ORDER BY id", ResultType: personType},
		{ID: "findByID", CommandType: mapping.CommandSelect, SQL: "SELECT id, name, created_at FROM people WHERE id = ?", ResultType: personType},
		{ID: "findUnknown", CommandType: mapping.CommandSelect, SQL: "SELECT id, name, kind FROM people WHERE id = 1", ResultType: personType},
		{ID: "count", CommandType: mapping.CommandSelect, SQL: "SELECT count(*) FROM people", ResultType: reflect.TypeFor[int64]()},
		{ID: "findRows", CommandType: mapping.CommandSelect, SQL: "SELECT id, name FROM people ORDER BY id", ResultType: reflect.TypeFor[map[string]any]()},
		{ID: "findDetailed", CommandType: mapping.CommandSelect, SQL: "SELECT id, name, kind, city, salary FROM people ORDER BY id", ResultMap: "personMap"},
		{ID: "findNoMap", CommandType: mapping.CommandSelect, SQL: "SELECT id FROM people"},
		{ID: "insert", CommandType: mapping.CommandInsert, SQL: "INSERT INTO people (id, name, kind) VALUES (?, ?, ?)"},
		{ID: "rename", CommandType: mapping.CommandUpdate, SQL: "UPDATE people SET name = ? WHERE id = ?"},
	}
	for _, spec := range specs {
		_, err := a.AddMappedStatement(spec)
		require.NoError(t, err, spec.ID)
	}

	factory, err := NewSessionFactory(cfg)
	require.NoError(t, err)
	return &fixture{cfg: cfg, db: db, factory: factory}
}

func (f *fixture) open(t *testing.T, opts ...session.Option) *Session {
	t.Helper()
	s, err := f.factory.OpenSession(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s.(*Session)
}

func (f *fixture) countPeople(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow("SELECT count(*) FROM people").Scan(&n))
	return n
}
