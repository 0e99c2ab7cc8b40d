package settings

import (
	"fmt"
	"strings"
)

// enumNames backs String and Parse for the int-based enums of this package.
type enumNames[T ~int] struct {
	kind  string
	names []string
}

func (e enumNames[T]) name(v T) string {
	if int(v) < 0 || int(v) >= len(e.names) {
		return fmt.Sprintf("%s(%d)", e.kind, int(v))
	}
	return e.names[v]
}

func (e enumNames[T]) parse(s string) (T, error) {
	for i, name := range e.names {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s '%s': must be one of %s", e.kind, s, strings.Join(e.names, ", "))
}

// AutoMappingBehavior selects when columns without an explicit mapping are
// mapped onto properties automatically.
type AutoMappingBehavior int

const (
	// AutoMappingNone disables auto-mapping.
	AutoMappingNone AutoMappingBehavior = iota
	// AutoMappingPartial auto-maps only results with no nested result mappings.
	AutoMappingPartial
	// AutoMappingFull auto-maps result mappings of any complexity.
	AutoMappingFull
)

var autoMappingNames = enumNames[AutoMappingBehavior]{
	kind:  "auto mapping behavior",
	names: []string{"NONE", "PARTIAL", "FULL"},
}

func (b AutoMappingBehavior) String() string { return autoMappingNames.name(b) }

// ParseAutoMappingBehavior parses NONE, PARTIAL or FULL.
func ParseAutoMappingBehavior(s string) (AutoMappingBehavior, error) {
	return autoMappingNames.parse(s)
}

// ExecutorType selects how a session runs statements.
type ExecutorType int

const (
	// ExecutorSimple runs every statement on its own.
	ExecutorSimple ExecutorType = iota
	// ExecutorReuse keeps prepared statements for the life of the transaction.
	ExecutorReuse
	// ExecutorBatch queues updates until they are flushed.
	ExecutorBatch
)

var executorNames = enumNames[ExecutorType]{
	kind:  "executor type",
	names: []string{"SIMPLE", "REUSE", "BATCH"},
}

func (e ExecutorType) String() string { return executorNames.name(e) }

// ParseExecutorType parses SIMPLE, REUSE or BATCH.
func ParseExecutorType(s string) (ExecutorType, error) {
	return executorNames.parse(s)
}

// LocalCacheScope controls the lifetime of a session's local cache.
type LocalCacheScope int

const (
	// LocalCacheSession shares cached results across the whole session.
	LocalCacheSession LocalCacheScope = iota
	// LocalCacheStatement clears the local cache after every statement.
	LocalCacheStatement
)

var localCacheNames = enumNames[LocalCacheScope]{
	kind:  "local cache scope",
	names: []string{"SESSION", "STATEMENT"},
}

func (s LocalCacheScope) String() string { return localCacheNames.name(s) }

// ParseLocalCacheScope parses SESSION or STATEMENT.
func ParseLocalCacheScope(s string) (LocalCacheScope, error) {
	return localCacheNames.parse(s)
}
