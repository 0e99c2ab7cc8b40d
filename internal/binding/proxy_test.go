package binding

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSession answers every select with the number of calls so far.
type countingSession struct {
	calls atomic.Int64
}

func (s *countingSession) SelectOne(context.Context, string, ...any) (any, error) {
	return s.calls.Add(1), nil
}

func (s *countingSession) SelectList(context.Context, string, ...any) ([]any, error) {
	return []any{s.calls.Add(1)}, nil
}

func (s *countingSession) Insert(context.Context, string, ...any) (int64, error) { return 0, nil }
func (s *countingSession) Update(context.Context, string, ...any) (int64, error) { return 0, nil }
func (s *countingSession) Delete(context.Context, string, ...any) (int64, error) { return 0, nil }
func (s *countingSession) FlushStatements(context.Context) ([]session.BatchResult, error) {
	return nil, nil
}
func (s *countingSession) Commit(context.Context) error         { return nil }
func (s *countingSession) Rollback(context.Context) error       { return nil }
func (s *countingSession) ClearCache()                          {}
func (s *countingSession) Close(context.Context) error          { return nil }
func (s *countingSession) Configuration() *config.Configuration { return nil }

type CounterMapper struct {
	_ struct{} `namespace:"counter"`

	Next  func(ctx context.Context) (int64, error) `select:"SELECT 1"`
	Other func(ctx context.Context) (int64, error) `select:"SELECT 2"`
}

func TestProxyFactory_ConcurrentFirstCallsBuildOnce(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)
	reg := NewRegistry(cfg)
	require.NoError(t, AddMapper[CounterMapper](context.Background(), reg))

	factory, ok := Factory[CounterMapper](reg)
	require.True(t, ok)
	assert.Zero(t, factory.MethodCacheLen(), "strategies are built lazily")

	sess := &countingSession{}
	const callers = 64
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make(chan error, callers)

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mapper := factory.NewInstance(sess)
			<-start
			_, err := mapper.Next(context.Background())
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(callers), sess.calls.Load())
	assert.Equal(t, 1, factory.MethodCacheLen())
	assert.Equal(t, int64(1), factory.builds.Load())

	_, err = factory.NewInstance(sess).Other(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, factory.MethodCacheLen())
	assert.Equal(t, int64(2), factory.builds.Load())
}

func TestConvertResult(t *testing.T) {
	u := &User{ID: 1}

	v, err := convertResult(u, userType)
	require.NoError(t, err)
	assert.Equal(t, User{ID: 1}, v.Interface())

	v, err = convertResult(User{ID: 2}, userPtrType)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 2}, v.Interface())

	v, err = convertResult(int64(3), intType)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Interface())

	v, err = convertResult(nil, userPtrType)
	require.NoError(t, err)
	assert.True(t, v.IsNil())

	_, err = convertResult("text", intType)
	assert.ErrorContains(t, err, "cannot return string as int")
}

var (
	userType    = reflect.TypeFor[User]()
	userPtrType = reflect.TypeFor[*User]()
	intType     = reflect.TypeFor[int]()
)
