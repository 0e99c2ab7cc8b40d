package builder

import (
	"context"
	"reflect"
	"testing"

	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type User struct {
	ID   int64
	Name string
}

type Admin struct {
	User
	Level int
}

func newAssistant(t *testing.T, cfg *config.Configuration, namespace string) *Assistant {
	t.Helper()
	a := NewAssistant(cfg, mapping.FileSource(namespace+".hcl"))
	require.NoError(t, a.SetNamespace(namespace))
	return a
}

func newConfig(t *testing.T) *config.Configuration {
	t.Helper()
	cfg, err := config.New()
	require.NoError(t, err)
	return cfg
}

func TestSetNamespace(t *testing.T) {
	a := NewAssistant(newConfig(t), mapping.FileSource("users.hcl"))

	assert.Error(t, a.SetNamespace(""))
	require.NoError(t, a.SetNamespace("users"))
	require.NoError(t, a.SetNamespace("users"))

	err := a.SetNamespace("orders")
	assert.ErrorContains(t, err, "expected 'users' but found 'orders'")
}

func TestApplyNamespace(t *testing.T) {
	a := newAssistant(t, newConfig(t), "users")

	testCases := []struct {
		name      string
		base      string
		reference bool
		want      string
		wantErr   bool
	}{
		{"empty", "", false, "", false},
		{"declaration", "findAll", false, "users.findAll", false},
		{"already qualified", "users.findAll", false, "users.findAll", false},
		{"foreign dotted declaration", "orders.findAll", false, "", true},
		{"local reference", "userMap", true, "users.userMap", false},
		{"foreign reference", "orders.orderMap", true, "orders.orderMap", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := a.ApplyNamespace(tc.base, tc.reference)
			if tc.wantErr {
				assert.ErrorContains(t, err, "dots are not allowed")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUseCacheRef_ForwardReference(t *testing.T) {
	cfg := newConfig(t)
	orders := newAssistant(t, cfg, "orders")

	_, err := orders.UseCacheRef("users")
	require.ErrorIs(t, err, config.ErrIncompleteElement)

	_, err = orders.AddMappedStatement(StatementSpec{ID: "findAll", CommandType: mapping.CommandSelect, SQL: "SELECT 1"})
	require.ErrorIs(t, err, config.ErrIncompleteElement, "statements wait for the cache-ref")

	users := newAssistant(t, cfg, "users")
	usersCache, err := users.UseNewCache()
	require.NoError(t, err)

	got, err := NewCacheRefResolver(orders, "users").Resolve()
	require.NoError(t, err)
	assert.Same(t, usersCache, got)

	ms, err := orders.AddMappedStatement(StatementSpec{ID: "findAll", CommandType: mapping.CommandSelect, SQL: "SELECT 1"})
	require.NoError(t, err)
	assert.Same(t, usersCache, ms.Cache)

	ref, ok := cfg.CacheRef("orders")
	assert.True(t, ok)
	assert.Equal(t, "users", ref)
}

func TestAddResultMap_Extends(t *testing.T) {
	cfg := newConfig(t)
	a := newAssistant(t, cfg, "users")
	adminType := reflect.TypeFor[Admin]()

	childMappings := []mapping.ResultMapping{
		{Property: "Level", Column: "admin_level"},
		{Property: "Name", Column: "admin_name"},
	}

	_, err := a.AddResultMap("adminMap", adminType, "userMap", nil, childMappings, nil)
	require.ErrorIs(t, err, config.ErrIncompleteElement)
	assert.False(t, cfg.HasResultMap("users.adminMap"))

	_, err = a.AddResultMap("userMap", reflect.TypeFor[User](), "", nil, []mapping.ResultMapping{
		{Property: "ID", Column: "id", IsID: true},
		{Property: "Name", Column: "name"},
	}, nil)
	require.NoError(t, err)

	rm, err := NewResultMapResolver(a, "adminMap", adminType, "userMap", nil, childMappings, nil).Resolve()
	require.NoError(t, err)

	assert.Equal(t, "users.adminMap", rm.ID)
	assert.Equal(t, []mapping.ResultMapping{
		{Property: "Level", Column: "admin_level"},
		{Property: "Name", Column: "admin_name"},
		{Property: "ID", Column: "id", IsID: true},
	}, rm.Mappings)
	assert.Len(t, rm.IDMappings(), 1)
	assert.False(t, rm.IsColumnMapped("name"), "overridden parent column is dropped")
}

func TestAddResultMap_InheritsParentType(t *testing.T) {
	cfg := newConfig(t)
	a := newAssistant(t, cfg, "users")
	_, err := a.AddResultMap("base", reflect.TypeFor[User](), "", nil, nil, nil)
	require.NoError(t, err)

	rm, err := a.AddResultMap("child", nil, "base", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[User](), rm.Type)

	_, err = a.AddResultMap("orphan", nil, "", nil, nil, nil)
	assert.ErrorContains(t, err, "has no type")
}

func TestAddResultMap_QualifiesReferences(t *testing.T) {
	a := newAssistant(t, newConfig(t), "users")

	rm, err := a.AddResultMap("userMap", reflect.TypeFor[User](), "",
		&mapping.Discriminator{Column: "kind", Cases: map[string]string{"admin": "adminMap", "guest": "guests.guestMap"}},
		[]mapping.ResultMapping{{Property: "Owner", NestedResultMapID: "ownerMap"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "users.ownerMap", rm.Mappings[0].NestedResultMapID)
	assert.Equal(t, map[string]string{"admin": "users.adminMap", "guest": "guests.guestMap"}, rm.Discriminator.Cases)
}

func TestAddMappedStatement(t *testing.T) {
	cfg := newConfig(t)
	a := newAssistant(t, cfg, "users")
	_, err := a.UseNewCache()
	require.NoError(t, err)

	t.Run("select defaults and inline result map", func(t *testing.T) {
		ms, err := a.AddMappedStatement(StatementSpec{
			ID:          "findAll",
			CommandType: mapping.CommandSelect,
			SQL:         "  SELECT * FROM users ",
			ResultType:  reflect.TypeFor[User](),
		})
		require.NoError(t, err)
		assert.Equal(t, "users.findAll", ms.ID)
		assert.Equal(t, "SELECT * FROM users", ms.SQL)
		assert.True(t, ms.UseCache)
		assert.False(t, ms.FlushCache)
		require.NotNil(t, ms.ResultMap())
		assert.Equal(t, "users.findAll-Inline", ms.ResultMap().ID)
		assert.False(t, cfg.HasResultMap("users.findAll-Inline"), "inline maps are not registered")
	})

	t.Run("update defaults", func(t *testing.T) {
		ms, err := a.AddMappedStatement(StatementSpec{ID: "rename", CommandType: mapping.CommandUpdate, SQL: "UPDATE users SET name = ?"})
		require.NoError(t, err)
		assert.False(t, ms.UseCache)
		assert.True(t, ms.FlushCache)
		assert.Nil(t, ms.ResultMap())
	})

	t.Run("missing result map is incomplete", func(t *testing.T) {
		spec := StatementSpec{ID: "findAdmins", CommandType: mapping.CommandSelect, SQL: "SELECT 1", ResultMap: "adminMap"}
		_, err := a.AddMappedStatement(spec)
		require.ErrorIs(t, err, config.ErrIncompleteElement)

		cfg.AddPending(config.PendingStatement, NewStatementResolver(a, spec), err)
		require.NoError(t, cfg.ResolvePending(context.Background(), false))
		assert.Equal(t, 1, cfg.PendingCount())

		_, err = a.AddResultMap("adminMap", reflect.TypeFor[Admin](), "", nil, nil, nil)
		require.NoError(t, err)
		require.NoError(t, cfg.ResolvePending(context.Background(), true))

		ms, err := cfg.MappedStatement("users.findAdmins")
		require.NoError(t, err)
		assert.Equal(t, "users.adminMap", ms.ResultMap().ID)
	})

	t.Run("empty sql", func(t *testing.T) {
		_, err := a.AddMappedStatement(StatementSpec{ID: "blank", CommandType: mapping.CommandSelect})
		assert.ErrorContains(t, err, "has no SQL")
	})
}
