package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnums_StringAndParseRoundTrip(t *testing.T) {
	for _, b := range []AutoMappingBehavior{AutoMappingNone, AutoMappingPartial, AutoMappingFull} {
		got, err := ParseAutoMappingBehavior(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	for _, b := range []UnknownColumnBehavior{UnknownColumnNone, UnknownColumnWarning, UnknownColumnFailing} {
		got, err := ParseUnknownColumnBehavior(b.String())
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	for _, e := range []ExecutorType{ExecutorSimple, ExecutorReuse, ExecutorBatch} {
		got, err := ParseExecutorType(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	for _, s := range []LocalCacheScope{LocalCacheSession, LocalCacheStatement} {
		got, err := ParseLocalCacheScope(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestParse_IsCaseInsensitive(t *testing.T) {
	got, err := ParseExecutorType(" reuse ")
	require.NoError(t, err)
	assert.Equal(t, ExecutorReuse, got)

	scope, err := ParseLocalCacheScope("Statement")
	require.NoError(t, err)
	assert.Equal(t, LocalCacheStatement, scope)
}

func TestParse_UnknownName(t *testing.T) {
	_, err := ParseAutoMappingBehavior("sometimes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown auto mapping behavior 'sometimes': must be one of NONE, PARTIAL, FULL")
}

func TestString_OutOfRange(t *testing.T) {
	assert.Equal(t, "executor type(7)", ExecutorType(7).String())
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, AutoMappingPartial, d.AutoMappingBehavior)
	assert.Equal(t, UnknownColumnNone, d.AutoMappingUnknownColumnBehavior)
	assert.Equal(t, ExecutorSimple, d.DefaultExecutorType)
	assert.Equal(t, LocalCacheSession, d.LocalCacheScope)
	assert.True(t, d.CacheEnabled)
	assert.False(t, d.MapUnderscoreToCamelCase)
}
