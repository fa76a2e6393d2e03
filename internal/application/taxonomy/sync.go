package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/flags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
	"github.com/brezhnevtusks/Unidork-sub000/internal/pubsub"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tracing"
)

// ImportResult describes a merge of a taxonomy file into the registry.
type ImportResult struct {
	Created []tags.Tag
	Queries []QueryDef
	// Errors holds one *LineError per rejected entry.
	Errors []error
}

// Import merges the tags listed in file into the registry. Entries that are
// already registered are skipped; rejected entries are collected and the rest
// are still registered and saved.
func (s *Service) Import(ctx context.Context, file File) (result ImportResult, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanImport)
	defer func() { tracing.Finish(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return result, ErrClosed
	}

	prev := s.registry.Snapshot()
	result.Created, result.Errors = file.RegisterInto(s.registry)
	result.Queries = file.Queries
	if len(result.Created) > 0 {
		if err := s.saveTaxonomy(ctx, prev); err != nil {
			return ImportResult{}, err
		}
	}

	span.SetAttributes(attribute.Int(tracing.AttrTagCount, len(result.Created)))
	log.Info(log.CatTags, "Imported taxonomy", "created", len(result.Created), "rejected", len(result.Errors))
	return result, errors.Join(result.Errors...)
}

// ImportFile reads path and merges it into the registry.
func (s *Service) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	file, err := ReadFile(path)
	if err != nil {
		return ImportResult{}, err
	}
	return s.Import(ctx, file)
}

// Export returns the document describing the current registry.
func (s *Service) Export(queries []QueryDef) File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NewFile(s.registry, queries)
}

// ExportTo writes the taxonomy document to w.
func (s *Service) ExportTo(ctx context.Context, w io.Writer, queries []QueryDef) (err error) {
	_, span := tracing.Start(ctx, s.tracer, tracing.SpanExport)
	defer func() { tracing.Finish(span, err) }()

	file := s.Export(queries)
	data, err := file.Encode()
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int(tracing.AttrTagCount, len(file.Tags)))
	_, err = w.Write(data)
	return err
}

// ExportFile writes the taxonomy document to path, replacing it atomically.
func (s *Service) ExportFile(ctx context.Context, path string, queries []QueryDef) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".taxonomy-*.yaml")
	if err != nil {
		return fmt.Errorf("export taxonomy: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := s.ExportTo(ctx, tmp, queries); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("export taxonomy: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("export taxonomy: %w", err)
	}
	log.Info(log.CatTags, "Exported taxonomy", "path", path)
	return nil
}

// ErrEmptyTaxonomy rejects a reload that would leave the registry empty.
var ErrEmptyTaxonomy = errors.New("taxonomy file lists no tags")

// ReloadOption configures Reload.
type ReloadOption func(*reloadOptions)

type reloadOptions struct {
	allowEmpty bool
}

// AllowEmpty lets Reload clear the registry when the file lists no tags.
func AllowEmpty() ReloadOption {
	return func(o *reloadOptions) { o.allowEmpty = true }
}

// ReloadResult describes a registry replacement.
type ReloadResult struct {
	Tags   int
	Pruned []string
}

// Reload replaces the registry with exactly the tags listed in file. A file
// with any rejected entry leaves the current registry untouched, and so does
// a file listing no tags unless AllowEmpty is given. With FlagCascadeRemove
// enabled, entities lose tags the new taxonomy dropped.
func (s *Service) Reload(ctx context.Context, file File, opts ...ReloadOption) (result ReloadResult, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanReload)
	defer func() { tracing.Finish(span, err) }()

	var o reloadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(file.Tags) == 0 && !o.allowEmpty {
		log.Warn(log.CatTags, "Rejected empty taxonomy reload, keeping current registry")
		return result, ErrEmptyTaxonomy
	}

	reg, err := file.Build()
	if err != nil {
		log.Warn(log.CatTags, "Rejected taxonomy reload, keeping current registry", "error", err)
		return result, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return result, ErrClosed
	}

	prev := s.registry.Snapshot()
	s.setRegistry(reg)
	if err := s.saveTaxonomy(ctx, prev); err != nil {
		return result, err
	}
	result.Tags = reg.Len()
	s.changes.Publish(pubsub.TaxonomyReloaded, Change{Tags: tags.Strings(reg.All())})
	log.Info(log.CatTags, "Reloaded taxonomy", "tags", result.Tags)

	if s.flags.Enabled(flags.FlagCascadeRemove) {
		span.AddEvent(tracing.EventCascade)
		result.Pruned, err = s.pruneEntities(ctx)
	}
	span.SetAttributes(
		attribute.Int(tracing.AttrTagCount, result.Tags),
		attribute.Int(tracing.AttrEntityCount, len(result.Pruned)),
	)
	return result, err
}

// ReloadFile reads path and replaces the registry with its contents.
func (s *Service) ReloadFile(ctx context.Context, path string, opts ...ReloadOption) (ReloadResult, error) {
	file, err := ReadFile(path)
	if err != nil {
		return ReloadResult{}, err
	}
	log.Debug(log.CatWatcher, "Reloading taxonomy", "path", path)
	return s.Reload(ctx, file, opts...)
}
