package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/datasource"
	"github.com/specialistvlad/gobatis/internal/fsutil"
	"github.com/specialistvlad/gobatis/internal/settings"
)

const fileExtension = ".hcl"

// Loader reads configuration and mapper files.
type Loader struct {
	parser  *hclparse.Parser
	evalCtx *hcl.EvalContext
}

// New creates a Loader.
func New() *Loader {
	return &Loader{
		parser:  hclparse.NewParser(),
		evalCtx: newEvalContext(),
	}
}

// Options tune LoadConfig.
type Options struct {
	// Environment overrides default_environment.
	Environment string
	// ConfigOptions are applied when the Configuration is created, before the
	// file is read.
	ConfigOptions []config.Option
}

// LoadConfig reads the configuration file at path and every mapper file it
// lists. Elements that stay incomplete after the last mapper file remain
// queued on the returned Configuration.
func (l *Loader) LoadConfig(ctx context.Context, path string, opts Options) (*config.Configuration, error) {
	logger := ctxlog.FromContext(ctx).With("config", path)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Loading configuration file.")

	var root configFile
	if err := l.decodeFile(path, &root); err != nil {
		return nil, err
	}

	cfg, err := config.New(opts.ConfigOptions...)
	if err != nil {
		return nil, err
	}

	if root.Settings != nil {
		if err := applySettings(&cfg.Settings, root.Settings); err != nil {
			return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
		}
	}

	if err := l.registerAliases(cfg, &root); err != nil {
		return nil, fmt.Errorf("invalid type aliases in %s: %w", path, err)
	}

	envID := opts.Environment
	if envID == "" && root.DefaultEnvironment != nil {
		envID = *root.DefaultEnvironment
	}
	if envID != "" {
		env, err := l.buildEnvironment(ctx, cfg, root.Environments, envID)
		if err != nil {
			return nil, fmt.Errorf("invalid environment in %s: %w", path, err)
		}
		cfg.Environment = env
	}

	if root.Mappers != nil {
		base := filepath.Dir(path)
		for _, p := range root.Mappers.Paths {
			if !filepath.IsAbs(p) {
				p = filepath.Join(base, p)
			}
			files, err := fsutil.FindFilesByExtension(p, fileExtension)
			if err != nil {
				cfg.Environment.Close()
				return nil, fmt.Errorf("mapper path %s: %w", p, err)
			}
			if len(files) == 0 {
				logger.Warn("Mapper path contains no mapper files.", "path", p)
			}
			for _, file := range files {
				if err := l.LoadMapperFile(ctx, cfg, file); err != nil {
					cfg.Environment.Close()
					return nil, err
				}
			}
		}
	}

	logger.Info("Configuration loaded.",
		"environment", envID,
		"statements", len(cfg.MappedStatements()),
		"result_maps", len(cfg.ResultMapIDs()),
		"caches", len(cfg.CacheIDs()),
		"pending", cfg.PendingCount(),
	)
	return cfg, nil
}

func (l *Loader) decodeFile(path string, target any) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read HCL file %s: %w", path, err)
	}
	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	if diags := gohcl.DecodeBody(file.Body, l.evalCtx, target); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	return nil
}

func applySettings(s *settings.Settings, b *settingsBlock) error {
	var errs []error
	if b.AutoMappingBehavior != nil {
		v, err := settings.ParseAutoMappingBehavior(*b.AutoMappingBehavior)
		errs = append(errs, err)
		s.AutoMappingBehavior = v
	}
	if b.AutoMappingUnknownColumnBehavior != nil {
		v, err := settings.ParseUnknownColumnBehavior(*b.AutoMappingUnknownColumnBehavior)
		errs = append(errs, err)
		s.AutoMappingUnknownColumnBehavior = v
	}
	if b.DefaultExecutorType != nil {
		v, err := settings.ParseExecutorType(*b.DefaultExecutorType)
		errs = append(errs, err)
		s.DefaultExecutorType = v
	}
	if b.LocalCacheScope != nil {
		v, err := settings.ParseLocalCacheScope(*b.LocalCacheScope)
		errs = append(errs, err)
		s.LocalCacheScope = v
	}
	if b.CacheEnabled != nil {
		s.CacheEnabled = *b.CacheEnabled
	}
	if b.MapUnderscoreToCamelCase != nil {
		s.MapUnderscoreToCamelCase = *b.MapUnderscoreToCamelCase
	}
	if b.DefaultStatementTimeout != nil {
		d, err := time.ParseDuration(*b.DefaultStatementTimeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("default_statement_timeout: %w", err))
		}
		s.DefaultStatementTimeout = d
	}
	return errors.Join(errs...)
}

func (l *Loader) registerAliases(cfg *config.Configuration, root *configFile) error {
	for _, b := range root.AliasPackages {
		super, err := resolveType(b.Super, l.evalCtx, cfg.Aliases, "super")
		if err != nil {
			return err
		}
		if err := cfg.Aliases.RegisterPackage(b.Package, super); err != nil {
			return err
		}
	}
	for _, b := range root.TypeAliases {
		name, err := stringExpr(b.Type, l.evalCtx, "type")
		if err != nil {
			return err
		}
		if err := cfg.Aliases.RegisterName(b.Alias, name); err != nil {
			return &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid type alias",
				Detail:   err.Error(),
				Subject:  b.Type.Range().Ptr(),
			}
		}
	}
	return nil
}

func (l *Loader) buildEnvironment(ctx context.Context, cfg *config.Configuration, envs []*environmentBlock, id string) (*config.Environment, error) {
	var block *environmentBlock
	for _, e := range envs {
		if e.ID == id {
			block = e
			break
		}
	}
	if block == nil {
		return nil, fmt.Errorf("environment '%s' is not declared", id)
	}
	if block.DataSource == nil {
		return nil, fmt.Errorf("environment '%s' has no data_source block", id)
	}

	t, err := cfg.Aliases.Resolve(block.DataSource.Type)
	if err != nil {
		return nil, fmt.Errorf("environment '%s': %w", id, err)
	}
	factory, err := datasource.New(t)
	if err != nil {
		return nil, fmt.Errorf("environment '%s': %w", id, err)
	}
	props, err := propertiesExpr(block.DataSource.Properties, l.evalCtx)
	if err != nil {
		return nil, fmt.Errorf("environment '%s': %w", id, err)
	}
	if err := factory.SetProperties(props); err != nil {
		return nil, fmt.Errorf("environment '%s': %w", id, err)
	}

	ctxlog.FromContext(ctx).Debug("Opening data source.", "environment", id, "type", block.DataSource.Type)
	return config.NewEnvironment(id, factory)
}
