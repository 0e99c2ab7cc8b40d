package localsession

import (
	"context"
	"testing"

	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/specialistvlad/gobatis/internal/settings"
	"github.com/specialistvlad/gobatis/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionFactory_RequiresEnvironment(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)
	_, err = NewSessionFactory(cfg)
	assert.Error(t, err)
}

func TestSelectList_AutoMapping(t *testing.T) {
	f := newFixture(t)
	f.cfg.Settings.CacheEnabled = false
	ctx := context.Background()

	t.Run("partial maps matching columns", func(t *testing.T) {
		list, err := f.open(t).SelectList(ctx, "people.findAll")
		require.NoError(t, err)
		require.Len(t, list, 3)
		ada := list[0].(*Person)
		assert.Equal(t, int64(1), ada.ID)
		assert.Equal(t, "Ada", ada.Name)
		assert.Empty(t, ada.CreatedAt, "created_at needs underscore mapping")
	})

	t.Run("underscore to camel case", func(t *testing.T) {
		f.cfg.Settings.MapUnderscoreToCamelCase = true
		t.Cleanup(func() { f.cfg.Settings.MapUnderscoreToCamelCase = false })

		list, err := f.open(t).SelectList(ctx, "findAll")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", list[0].(*Person).CreatedAt)
	})

	t.Run("none maps nothing without explicit mappings", func(t *testing.T) {
		f.cfg.Settings.AutoMappingBehavior = settings.AutoMappingNone
		t.Cleanup(func() { f.cfg.Settings.AutoMappingBehavior = settings.AutoMappingPartial })

		list, err := f.open(t).SelectList(ctx, "findAll")
		require.NoError(t, err)
		assert.Equal(t, &Person{}, list[0])
	})
}

func TestSelectList_ResultMapWithDiscriminatorAndAssociation(t *testing.T) {
	f := newFixture(t)

	list, err := f.open(t).SelectList(context.Background(), "people.findDetailed")
	require.NoError(t, err)
	require.Len(t, list, 3)

	ada, ok := list[0].(*Employee)
	require.True(t, ok, "emp rows use the employee map, got %T", list[0])
	assert.Equal(t, "Ada", ada.Name)
	assert.Equal(t, 100.5, ada.Salary)
	require.NotNil(t, ada.Address)
	assert.Equal(t, "London", ada.Address.City)

	linus, ok := list[1].(*Person)
	require.True(t, ok)
	assert.Equal(t, &Person{ID: 2, Name: "Linus", Address: &Address{City: "Helsinki"}}, linus)

	grace := list[2].(*Employee)
	assert.Nil(t, grace.Address, "an association without values stays nil")
	assert.Equal(t, float64(200), grace.Salary)
}

func TestSelectList_ScalarAndMapResults(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	count, err := s.SelectOne(ctx, "people.count")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	rows, err := s.SelectList(ctx, "people.findRows")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(1), "name": "Ada"}, rows[0])

	_, err = s.SelectList(ctx, "people.findNoMap")
	assert.ErrorContains(t, err, "no result map was found for statement people.findNoMap")
}

func TestSelectOne(t *testing.T) {
	f := newFixture(t)
	s := f.open(t)
	ctx := context.Background()

	one, err := s.SelectOne(ctx, "people.findByID", 2)
	require.NoError(t, err)
	assert.Equal(t, "Linus", one.(*Person).Name)

	none, err := s.SelectOne(ctx, "people.findByID", 42)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = s.SelectOne(ctx, "people.findAll")
	assert.ErrorIs(t, err, session.ErrTooManyResults)
}

func TestSelect_UnknownColumnBehavior(t *testing.T) {
	f := newFixture(t)
	f.cfg.Settings.CacheEnabled = false

	t.Run("none", func(t *testing.T) {
		_, err := f.open(t).SelectList(context.Background(), "people.findUnknown")
		assert.NoError(t, err)
	})

	t.Run("warning", func(t *testing.T) {
		f.cfg.Settings.AutoMappingUnknownColumnBehavior = settings.UnknownColumnWarning
		t.Cleanup(func() { f.cfg.Settings.AutoMappingUnknownColumnBehavior = settings.UnknownColumnNone })

		ctx, logs := testutil.NewLogContext()
		list, err := f.open(t).SelectList(ctx, "people.findUnknown")
		require.NoError(t, err)
		assert.Equal(t, "Ada", list[0].(*Person).Name)
		assert.Contains(t, logs.String(), "columnName=kind,propertyName=kind,propertyType=nil")
	})

	t.Run("failing", func(t *testing.T) {
		f.cfg.Settings.AutoMappingUnknownColumnBehavior = settings.UnknownColumnFailing
		t.Cleanup(func() { f.cfg.Settings.AutoMappingUnknownColumnBehavior = settings.UnknownColumnNone })

		_, err := f.open(t).SelectList(context.Background(), "people.findUnknown")
		require.ErrorIs(t, err, settings.ErrUnknownColumn)
		assert.Contains(t, err.Error(), "Unknown column is detected on 'people.findUnknown' auto-mapping.")
	})
}

func TestLocalCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("session scope reuses results until an update", func(t *testing.T) {
		s := f.open(t)
		first, err := s.SelectList(ctx, "people.findByID", 1)
		require.NoError(t, err)
		second, err := s.SelectList(ctx, "people.findByID", 1)
		require.NoError(t, err)
		assert.Same(t, first[0], second[0])

		_, err = s.Update(ctx, "people.rename", "Ada L.", 1)
		require.NoError(t, err)
		third, err := s.SelectList(ctx, "people.findByID", 1)
		require.NoError(t, err)
		assert.NotSame(t, first[0], third[0])
		assert.Equal(t, "Ada L.", third[0].(*Person).Name)

		s.ClearCache()
		fourth, err := s.SelectList(ctx, "people.findByID", 1)
		require.NoError(t, err)
		assert.NotSame(t, third[0], fourth[0])
	})

	t.Run("statement scope does not reuse", func(t *testing.T) {
		f.cfg.Settings.LocalCacheScope = settings.LocalCacheStatement
		f.cfg.Settings.CacheEnabled = false
		t.Cleanup(func() {
			f.cfg.Settings.LocalCacheScope = settings.LocalCacheSession
			f.cfg.Settings.CacheEnabled = true
		})

		s := f.open(t)
		first, err := s.SelectList(ctx, "people.findByID", 2)
		require.NoError(t, err)
		second, err := s.SelectList(ctx, "people.findByID", 2)
		require.NoError(t, err)
		assert.NotSame(t, first[0], second[0])
	})
}

func TestSecondLevelCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reader := f.open(t)
	first, err := reader.SelectList(ctx, "people.findByID", 3)
	require.NoError(t, err)

	uncommitted := f.open(t)
	notShared, err := uncommitted.SelectList(ctx, "people.findByID", 3)
	require.NoError(t, err)
	assert.NotSame(t, first[0], notShared[0], "results are published on commit")
	require.NoError(t, uncommitted.Close(ctx))

	require.NoError(t, reader.Commit(ctx))
	require.NoError(t, reader.Close(ctx))

	shared, err := f.open(t).SelectList(ctx, "people.findByID", 3)
	require.NoError(t, err)
	assert.NotSame(t, first[0], shared[0], "the namespace cache hands out copies")
	assert.Equal(t, first[0], shared[0])

	writer := f.open(t)
	_, err = writer.Update(ctx, "people.rename", "Grace H.", 3)
	require.NoError(t, err)
	require.NoError(t, writer.Commit(ctx))
	require.NoError(t, writer.Close(ctx))

	fresh, err := f.open(t).SelectList(ctx, "people.findByID", 3)
	require.NoError(t, err)
	assert.Equal(t, "Grace H.", fresh[0].(*Person).Name)
}

func TestSecondLevelCache_CallerMutationsAreNotShared(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reader := f.open(t)
	list, err := reader.SelectList(ctx, "people.findByID", 1)
	require.NoError(t, err)
	require.NoError(t, reader.Commit(ctx))
	list[0].(*Person).Name = "Changed"

	again, err := f.open(t).SelectList(ctx, "people.findByID", 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", again[0].(*Person).Name)
	again[0].(*Person).Name = "Changed again"

	third, err := f.open(t).SelectList(ctx, "people.findByID", 1)
	require.NoError(t, err)
	assert.Equal(t, "Ada", third[0].(*Person).Name)
}

func TestSelectList_PointerArgumentsKeyOnValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.open(t)

	id := int64(1)
	first, err := s.SelectList(ctx, "people.findByID", &id)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Ada", first[0].(*Person).Name)

	id = 2
	second, err := s.SelectList(ctx, "people.findByID", &id)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Linus", second[0].(*Person).Name)

	require.NoError(t, s.Commit(ctx))
	shared, err := f.open(t).SelectList(ctx, "people.findByID", &id)
	require.NoError(t, err)
	assert.Equal(t, "Linus", shared[0].(*Person).Name)
}

func TestCommitAndRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.open(t)
	n, err := s.Insert(ctx, "people.insert", 4, "Barbara", "guest")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, s.Rollback(ctx))
	assert.Equal(t, 3, f.countPeople(t))

	_, err = s.Insert(ctx, "people.insert", 4, "Barbara", "guest")
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx))
	assert.Equal(t, 4, f.countPeople(t))

	n, err = s.Delete(ctx, "people.rename", "x", 999)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.open(t)

	_, err := s.Insert(ctx, "people.insert", 5, "Ken", "guest")
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))
	require.NoError(t, s.Close(ctx))
	assert.Equal(t, 3, f.countPeople(t), "close rolls back uncommitted work")

	_, err = s.SelectList(ctx, "people.findAll")
	assert.ErrorIs(t, err, session.ErrSessionClosed)
	assert.ErrorIs(t, s.Commit(ctx), session.ErrSessionClosed)
}

func TestAutoCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := f.open(t, session.WithAutoCommit(true))

	_, err := s.Insert(ctx, "people.insert", 6, "Dennis", "guest")
	require.NoError(t, err)
	assert.Nil(t, s.tx)
	assert.Equal(t, 4, f.countPeople(t))
}

func TestUnknownStatement(t *testing.T) {
	f := newFixture(t)
	_, err := f.open(t).SelectList(context.Background(), "people.missing")
	assert.ErrorIs(t, err, config.ErrNotFound)
}
