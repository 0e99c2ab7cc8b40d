// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package mapping provides the format-agnostic, fully resolved model that the
// builders produce and the session consumes.
//
// # Core Concepts
//
//   - MappedStatement: one named SQL statement (`users.findByID`) together with
//     the result maps, cache and flags it runs with.
//
//   - ResultMap: how the columns of a row become the properties of a Go value.
//     Explicit ResultMappings come first; whatever is left over may be
//     auto-mapped depending on the settings.
//
//   - Source: where a definition came from (an HCL file or a mapper struct),
//     so every error can point back at it.
//
// Nothing in this package refers back to the configuration file format. The
// loader and the annotation builder both translate into these types, and the
// session never needs to know which of the two a statement came from.
package mapping
