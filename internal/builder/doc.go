// Package builder turns mapper declarations into configuration elements.
//
// An Assistant registers caches, result maps and mapped statements for one
// namespace. Declarations can point at elements that are declared later, in
// another file or another mapper type. When that happens the assistant
// returns an error matching config.ErrIncompleteElement and the caller wraps
// the declaration in a resolver (CacheRefResolver, ResultMapResolver,
// StatementResolver or MethodResolver) and queues it on the configuration.
// config.Configuration.ResolvePending retries the queue once more elements
// exist.
//
// AnnotationBuilder reads the same declarations from the struct tags of a
// mapper type.
package builder
