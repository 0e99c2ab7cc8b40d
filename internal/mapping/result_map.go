// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package mapping

import (
	"reflect"
	"strings"
)

// ResultMapping maps one column, or one nested result map, onto a property.
type ResultMapping struct {
	Property string
	Column   string
	// GoType overrides the property's own type when set.
	GoType reflect.Type
	// NestedResultMapID makes the property an association filled from the
	// same row through another result map.
	NestedResultMapID string
	IsID              bool
}

// Discriminator picks a different result map based on the value of a column.
type Discriminator struct {
	Column string
	GoType reflect.Type
	// Cases maps a column value, in its string form, to a result map ID.
	Cases map[string]string
}

// ResultMap describes how a row is turned into a value of Type.
type ResultMap struct {
	ID            string
	Type          reflect.Type
	Source        Source
	Mappings      []ResultMapping
	Discriminator *Discriminator
	// AutoMapping overrides the global auto-mapping behavior when set.
	AutoMapping *bool

	idMappings          []ResultMapping
	mappedColumns       map[string]struct{}
	hasNestedResultMaps bool
}

// NewResultMap creates a ResultMap and derives its lookup tables.
func NewResultMap(id string, typ reflect.Type, mappings []ResultMapping, discriminator *Discriminator, autoMapping *bool) *ResultMap {
	rm := &ResultMap{
		ID:            id,
		Type:          typ,
		Mappings:      mappings,
		Discriminator: discriminator,
		AutoMapping:   autoMapping,
		mappedColumns: make(map[string]struct{}),
	}
	for _, m := range mappings {
		if m.IsID {
			rm.idMappings = append(rm.idMappings, m)
		}
		if m.NestedResultMapID != "" {
			rm.hasNestedResultMaps = true
		}
		if m.Column != "" {
			rm.mappedColumns[strings.ToUpper(m.Column)] = struct{}{}
		}
	}
	return rm
}

// IDMappings returns the mappings flagged as identifiers.
func (rm *ResultMap) IDMappings() []ResultMapping {
	return rm.idMappings
}

// HasNestedResultMaps reports whether any mapping refers to another result map.
func (rm *ResultMap) HasNestedResultMaps() bool {
	return rm.hasNestedResultMaps
}

// IsColumnMapped reports whether an explicit mapping covers column. The
// comparison ignores case.
func (rm *ResultMap) IsColumnMapped(column string) bool {
	_, ok := rm.mappedColumns[strings.ToUpper(column)]
	return ok
}

// MappedProperties returns the set of properties with an explicit mapping.
func (rm *ResultMap) MappedProperties() map[string]struct{} {
	props := make(map[string]struct{}, len(rm.Mappings))
	for _, m := range rm.Mappings {
		props[m.Property] = struct{}{}
	}
	return props
}
