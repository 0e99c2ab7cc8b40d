package loader

import "github.com/hashicorp/hcl/v2"

// configFile is the top-level structure of the configuration file.
type configFile struct {
	Settings           *settingsBlock       `hcl:"settings,block"`
	TypeAliases        []*typeAliasBlock    `hcl:"type_alias,block"`
	AliasPackages      []*aliasPackageBlock `hcl:"type_aliases,block"`
	DefaultEnvironment *string              `hcl:"default_environment,optional"`
	Environments       []*environmentBlock  `hcl:"environment,block"`
	Mappers            *mappersBlock        `hcl:"mappers,block"`
}

type settingsBlock struct {
	AutoMappingBehavior              *string `hcl:"auto_mapping_behavior,optional"`
	AutoMappingUnknownColumnBehavior *string `hcl:"auto_mapping_unknown_column_behavior,optional"`
	DefaultExecutorType              *string `hcl:"default_executor_type,optional"`
	LocalCacheScope                  *string `hcl:"local_cache_scope,optional"`
	CacheEnabled                     *bool   `hcl:"cache_enabled,optional"`
	MapUnderscoreToCamelCase         *bool   `hcl:"map_underscore_to_camel_case,optional"`
	DefaultStatementTimeout          *string `hcl:"default_statement_timeout,optional"`
}

type typeAliasBlock struct {
	Alias string         `hcl:"alias,label"`
	Type  hcl.Expression `hcl:"type"`
}

type aliasPackageBlock struct {
	Package string         `hcl:"package"`
	Super   hcl.Expression `hcl:"super,optional"`
}

type environmentBlock struct {
	ID         string           `hcl:"id,label"`
	DataSource *dataSourceBlock `hcl:"data_source,block"`
}

type dataSourceBlock struct {
	Type       string         `hcl:"type,label"`
	Properties hcl.Expression `hcl:"properties,optional"`
}

type mappersBlock struct {
	Paths []string `hcl:"paths"`
}

// mapperFile is the top-level structure of a mapper file.
type mapperFile struct {
	Mappers []*mapperBlock `hcl:"mapper,block"`
}

type mapperBlock struct {
	Namespace  string            `hcl:"namespace,label"`
	Cache      *cacheBlock       `hcl:"cache,block"`
	CacheRef   *string           `hcl:"cache_ref,optional"`
	ResultMaps []*resultMapBlock `hcl:"result_map,block"`
	Selects    []*statementBlock `hcl:"select,block"`
	Inserts    []*statementBlock `hcl:"insert,block"`
	Updates    []*statementBlock `hcl:"update,block"`
	Deletes    []*statementBlock `hcl:"delete,block"`
}

type cacheBlock struct{}

type resultMapBlock struct {
	Name          string              `hcl:"name,label"`
	Type          hcl.Expression      `hcl:"type,optional"`
	Extends       *string             `hcl:"extends,optional"`
	AutoMapping   *bool               `hcl:"auto_mapping,optional"`
	IDs           []*resultBlock      `hcl:"id,block"`
	Results       []*resultBlock      `hcl:"result,block"`
	Associations  []*associationBlock `hcl:"association,block"`
	Discriminator *discriminatorBlock `hcl:"discriminator,block"`
}

type resultBlock struct {
	Property string         `hcl:"property"`
	Column   string         `hcl:"column"`
	GoType   hcl.Expression `hcl:"go_type,optional"`
}

type associationBlock struct {
	Property  string `hcl:"property,label"`
	ResultMap string `hcl:"result_map"`
}

type discriminatorBlock struct {
	Column string            `hcl:"column"`
	GoType hcl.Expression    `hcl:"go_type,optional"`
	Cases  map[string]string `hcl:"cases"`
}

type statementBlock struct {
	ID         string         `hcl:"id,label"`
	SQL        string         `hcl:"sql"`
	ResultMap  *string        `hcl:"result_map,optional"`
	ResultType hcl.Expression `hcl:"result_type,optional"`
	FlushCache *bool          `hcl:"flush_cache,optional"`
	UseCache   *bool          `hcl:"use_cache,optional"`
	Timeout    *string        `hcl:"timeout,optional"`
}
