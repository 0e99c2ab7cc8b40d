package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/gobatis/internal/builder"
	"github.com/specialistvlad/gobatis/internal/config"
	"github.com/specialistvlad/gobatis/internal/ctxlog"
	"github.com/specialistvlad/gobatis/internal/mapping"
)

// LoadMapperFile registers the mappers declared in the file at path. A file
// that was already loaded is skipped. Declarations that refer to elements
// not registered yet are queued, and the queue is retried once the file is
// done.
func (l *Loader) LoadMapperFile(ctx context.Context, cfg *config.Configuration, path string) error {
	logger := ctxlog.FromContext(ctx).With("mapper_file", path)
	if cfg.IsResourceLoaded(path) {
		logger.Debug("Mapper file already loaded, skipping.")
		return nil
	}

	var root mapperFile
	if err := l.decodeFile(path, &root); err != nil {
		return err
	}
	cfg.AddLoadedResource(path)

	for _, m := range root.Mappers {
		if err := l.buildMapper(ctx, cfg, path, m); err != nil {
			return err
		}
	}

	if err := cfg.ResolvePending(ctx, false); err != nil {
		return err
	}
	logger.Debug("Mapper file loaded.", "mappers", len(root.Mappers), "pending", cfg.PendingCount())
	return nil
}

func (l *Loader) buildMapper(ctx context.Context, cfg *config.Configuration, path string, m *mapperBlock) error {
	logger := ctxlog.FromContext(ctx)
	a := builder.NewAssistant(cfg, mapping.FileSource(path))
	if err := a.SetNamespace(m.Namespace); err != nil {
		return err
	}

	if m.Cache != nil {
		if _, err := a.UseNewCache(); err != nil {
			return err
		}
	}
	if m.CacheRef != nil {
		_, err := a.UseCacheRef(*m.CacheRef)
		switch {
		case err == nil:
		case errors.Is(err, config.ErrIncompleteElement):
			cfg.AddPending(config.PendingCacheRef, builder.NewCacheRefResolver(a, *m.CacheRef), err)
		default:
			return err
		}
	}

	for _, rm := range m.ResultMaps {
		if err := l.buildResultMap(ctx, cfg, a, rm); err != nil {
			return err
		}
	}

	statements := []struct {
		kind   mapping.CommandType
		blocks []*statementBlock
	}{
		{mapping.CommandSelect, m.Selects},
		{mapping.CommandInsert, m.Inserts},
		{mapping.CommandUpdate, m.Updates},
		{mapping.CommandDelete, m.Deletes},
	}
	for _, group := range statements {
		for _, s := range group.blocks {
			spec, err := l.statementSpec(cfg, group.kind, s)
			if err != nil {
				return fmt.Errorf("%s: statement %s: %w", path, s.ID, err)
			}
			_, err = a.AddMappedStatement(spec)
			switch {
			case err == nil:
			case errors.Is(err, config.ErrIncompleteElement):
				logger.Debug("Statement deferred.", "statement", s.ID, "error", err)
				cfg.AddPending(config.PendingStatement, builder.NewStatementResolver(a, spec), err)
			default:
				return err
			}
		}
	}
	return nil
}

func (l *Loader) buildResultMap(ctx context.Context, cfg *config.Configuration, a *builder.Assistant, b *resultMapBlock) error {
	typ, err := resolveType(b.Type, l.evalCtx, cfg.Aliases, "type")
	if err != nil {
		return fmt.Errorf("%s: result map %s: %w", a.Source(), b.Name, err)
	}

	var mappings []mapping.ResultMapping
	for _, blocks := range []struct {
		isID    bool
		results []*resultBlock
	}{{true, b.IDs}, {false, b.Results}} {
		for _, r := range blocks.results {
			goType, err := resolveType(r.GoType, l.evalCtx, cfg.Aliases, "go_type")
			if err != nil {
				return fmt.Errorf("%s: result map %s: %w", a.Source(), b.Name, err)
			}
			mappings = append(mappings, mapping.ResultMapping{
				Property: r.Property,
				Column:   r.Column,
				GoType:   goType,
				IsID:     blocks.isID,
			})
		}
	}
	for _, assoc := range b.Associations {
		mappings = append(mappings, mapping.ResultMapping{
			Property:          assoc.Property,
			NestedResultMapID: assoc.ResultMap,
		})
	}

	var disc *mapping.Discriminator
	if b.Discriminator != nil {
		discType, err := resolveType(b.Discriminator.GoType, l.evalCtx, cfg.Aliases, "go_type")
		if err != nil {
			return fmt.Errorf("%s: result map %s: discriminator: %w", a.Source(), b.Name, err)
		}
		disc = &mapping.Discriminator{Column: b.Discriminator.Column, GoType: discType, Cases: b.Discriminator.Cases}
	}

	var extend string
	if b.Extends != nil {
		extend = *b.Extends
	}

	_, err = a.AddResultMap(b.Name, typ, extend, disc, mappings, b.AutoMapping)
	switch {
	case err == nil:
	case errors.Is(err, config.ErrIncompleteElement):
		ctxlog.FromContext(ctx).Debug("Result map deferred.", "result_map", b.Name, "error", err)
		cfg.AddPending(config.PendingResultMap,
			builder.NewResultMapResolver(a, b.Name, typ, extend, disc, mappings, b.AutoMapping), err)
	default:
		return err
	}
	return nil
}

func (l *Loader) statementSpec(cfg *config.Configuration, kind mapping.CommandType, s *statementBlock) (builder.StatementSpec, error) {
	spec := builder.StatementSpec{
		ID:          s.ID,
		CommandType: kind,
		SQL:         s.SQL,
		FlushCache:  s.FlushCache,
		UseCache:    s.UseCache,
	}
	if s.ResultMap != nil {
		spec.ResultMap = *s.ResultMap
	}
	resultType, err := resolveType(s.ResultType, l.evalCtx, cfg.Aliases, "result_type")
	if err != nil {
		return spec, err
	}
	spec.ResultType = resultType
	if s.Timeout != nil {
		if spec.Timeout, err = time.ParseDuration(*s.Timeout); err != nil {
			return spec, fmt.Errorf("invalid timeout: %w", err)
		}
	}
	return spec, nil
}
