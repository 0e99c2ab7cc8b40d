package settings

import "time"

// Settings are the global switches that change how statements run and how
// their results are mapped.
type Settings struct {
	AutoMappingBehavior              AutoMappingBehavior
	AutoMappingUnknownColumnBehavior UnknownColumnBehavior
	DefaultExecutorType              ExecutorType
	LocalCacheScope                  LocalCacheScope
	// CacheEnabled turns the namespace (second-level) caches on or off.
	CacheEnabled             bool
	MapUnderscoreToCamelCase bool
	// DefaultStatementTimeout applies to statements without their own
	// timeout. Zero means no timeout.
	DefaultStatementTimeout time.Duration
}

// Defaults returns the settings used when a configuration file leaves them out.
func Defaults() Settings {
	return Settings{
		AutoMappingBehavior:              AutoMappingPartial,
		AutoMappingUnknownColumnBehavior: UnknownColumnNone,
		DefaultExecutorType:              ExecutorSimple,
		LocalCacheScope:                  LocalCacheSession,
		CacheEnabled:                     true,
	}
}
