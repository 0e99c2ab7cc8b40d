package config

import (
	"reflect"
	"testing"

	"github.com/specialistvlad/gobatis/internal/cache"
	"github.com/specialistvlad/gobatis/internal/datasource"
	"github.com/specialistvlad/gobatis/internal/mapping"
	"github.com/specialistvlad/gobatis/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T) *Configuration {
	t.Helper()
	cfg, err := New()
	require.NoError(t, err)
	return cfg
}

func TestNew_RegistersDataSourceAliases(t *testing.T) {
	cfg := newConfig(t)

	got, err := cfg.Aliases.Resolve("sqlite")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[datasource.SQLiteFactory](), got)
	assert.Equal(t, settings.Defaults(), cfg.Settings)
}

func TestNew_WithSettings(t *testing.T) {
	s := settings.Defaults()
	s.AutoMappingBehavior = settings.AutoMappingFull
	cfg, err := New(WithSettings(s))
	require.NoError(t, err)
	assert.Equal(t, settings.AutoMappingFull, cfg.Settings.AutoMappingBehavior)
}

func TestMappedStatements_FullAndShortIDs(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, cfg.AddMappedStatement(&mapping.MappedStatement{ID: "users.findAll"}))
	require.NoError(t, cfg.AddMappedStatement(&mapping.MappedStatement{ID: "users.findByID"}))
	require.NoError(t, cfg.AddMappedStatement(&mapping.MappedStatement{ID: "orders.findAll"}))

	ms, err := cfg.MappedStatement("findByID")
	require.NoError(t, err)
	assert.Equal(t, "users.findByID", ms.ID)

	ms, err = cfg.MappedStatement("orders.findAll")
	require.NoError(t, err)
	assert.Equal(t, "orders.findAll", ms.ID)

	_, err = cfg.MappedStatement("findAll")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "findAll is ambiguous in mapped statements collection")
	assert.False(t, cfg.HasStatement("findAll"))

	_, err = cfg.MappedStatement("users.missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ids := make([]string, 0)
	for _, s := range cfg.MappedStatements() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"orders.findAll", "users.findAll", "users.findByID"}, ids)
}

func TestAddMappedStatement_DuplicateFails(t *testing.T) {
	cfg := newConfig(t)
	require.NoError(t, cfg.AddMappedStatement(&mapping.MappedStatement{ID: "users.findAll"}))
	err := cfg.AddMappedStatement(&mapping.MappedStatement{ID: "users.findAll"})
	assert.ErrorContains(t, err, "mapped statements collection already contains value for users.findAll")
}

func TestResultMapsAndCaches(t *testing.T) {
	cfg := newConfig(t)

	require.NoError(t, cfg.AddResultMap(mapping.NewResultMap("users.userMap", nil, nil, nil, nil)))
	assert.True(t, cfg.HasResultMap("users.userMap"))
	assert.True(t, cfg.HasResultMap("userMap"))
	assert.Equal(t, []string{"users.userMap"}, cfg.ResultMapIDs())

	require.NoError(t, cfg.AddCache(cache.NewPerpetual("users")))
	assert.True(t, cfg.HasCache("users"))
	assert.Error(t, cfg.AddCache(cache.NewPerpetual("users")))
	assert.Equal(t, []string{"users"}, cfg.CacheIDs())

	cfg.AddCacheRef("orders", "users")
	ref, ok := cfg.CacheRef("orders")
	assert.True(t, ok)
	assert.Equal(t, "users", ref)
}

func TestLoadedResources(t *testing.T) {
	cfg := newConfig(t)
	cfg.AddLoadedResource("b.hcl")
	cfg.AddLoadedResource("a.hcl")
	assert.True(t, cfg.IsResourceLoaded("a.hcl"))
	assert.False(t, cfg.IsResourceLoaded("c.hcl"))
	assert.Equal(t, []string{"a.hcl", "b.hcl"}, cfg.LoadedResources())
}

func TestEnvironment(t *testing.T) {
	_, err := NewEnvironment("", &datasource.SQLiteFactory{})
	assert.Error(t, err)
	_, err = NewEnvironment("dev", nil)
	assert.Error(t, err)

	f := &datasource.SQLiteFactory{}
	require.NoError(t, f.SetProperties(nil))
	env, err := NewEnvironment("dev", f)
	require.NoError(t, err)
	assert.NotNil(t, env.DB)
	require.NoError(t, env.Close())

	var nilEnv *Environment
	assert.NoError(t, nilEnv.Close())
}
