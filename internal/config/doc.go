// Package config holds the Configuration: the central registry every other
// package reads from once loading has finished.
//
// The Configuration is populated in two phases. First the loader and the
// annotation builder register whatever they can resolve immediately (caches,
// result maps, statements) and queue a PendingResolution for each element
// whose forward reference is not there yet. Then ResolvePending replays the
// queue until a pass makes no progress. Anything still queued after the final
// pass is a configuration error.
package config
