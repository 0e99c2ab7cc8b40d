// Package typealias maps short, case-insensitive names to Go types.
//
// Configuration files never spell Go types directly. A result map says
// `type = "User"` or `type = "int"`, and the Registry turns that string into a
// reflect.Type. When no alias matches, the Registry falls back to a Loader,
// which by default is the package-level Catalog of types registered by their
// fully-qualified name (`example.com/app/model.User`). The Catalog plays the
// part a class loader plays on platforms that can load types by name at runtime.
//
// Aliases are normalized with English lower-casing before they are stored or
// looked up, so `User`, `user` and `USER` are the same alias. The Loader, in
// contrast, is always asked with the original string.
package typealias
