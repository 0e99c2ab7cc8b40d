// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package mapping

import (
	"strings"
	"time"

	"github.com/specialistvlad/gobatis/internal/cache"
)

// MappedStatement is a fully resolved, named SQL statement.
type MappedStatement struct {
	// ID is the namespace-qualified identifier, e.g. "users.findByID".
	ID          string
	Source      Source
	CommandType CommandType
	SQL         string
	// ResultMaps describe how rows of a select become values. The first one
	// is the primary result map.
	ResultMaps []*ResultMap
	// Cache is the namespace cache this statement reads and flushes. It is
	// nil when the namespace has neither a cache nor a cache reference.
	Cache      cache.Cache
	UseCache   bool
	FlushCache bool
	Timeout    time.Duration
}

// Namespace returns the part of the ID before the last dot.
func (ms *MappedStatement) Namespace() string {
	if i := strings.LastIndex(ms.ID, "."); i >= 0 {
		return ms.ID[:i]
	}
	return ""
}

// ResultMap returns the primary result map, or nil for statements without one.
func (ms *MappedStatement) ResultMap() *ResultMap {
	if len(ms.ResultMaps) == 0 {
		return nil
	}
	return ms.ResultMaps[0]
}
