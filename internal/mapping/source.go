// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Source, which links a statement or result map back to the
// place it was declared.
//
// Two kinds of declarations exist: blocks in an HCL mapper file and tagged
// func fields of a Go mapper struct. Both end up as the same mapping types,
// so the origin has to be carried alongside them for error messages to say
// where a broken definition lives.
package mapping

import "fmt"

// Source records the origin of a definition.
type Source struct {
	// FilePath is set for definitions read from a file.
	FilePath string
	// Struct is set for definitions read from a Go mapper struct, as
	// "<qualified type>.<Field>".
	Struct string
}

// FileSource creates a Source for a definition read from a file.
func FileSource(filePath string) Source {
	return Source{FilePath: filePath}
}

// StructSource creates a Source for a definition read from a struct field.
// An empty field refers to the struct itself.
func StructSource(typeName, field string) Source {
	if field == "" {
		return Source{Struct: typeName}
	}
	return Source{Struct: typeName + "." + field}
}

func (s Source) String() string {
	switch {
	case s.FilePath != "":
		return s.FilePath
	case s.Struct != "":
		return fmt.Sprintf("struct %s", s.Struct)
	default:
		return "unknown source"
	}
}
