// Package driver compiles a directory of definition documents into one
// schema: every document is preprocessed, parsed, built and merged in
// lexical file order.
package driver

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cfgschema/schemac/compiler/errors"
	"github.com/cfgschema/schemac/internal/compiler/ast"
	"github.com/cfgschema/schemac/internal/compiler/builder"
	"github.com/cfgschema/schemac/internal/compiler/cache"
	"github.com/cfgschema/schemac/internal/compiler/merge"
	"github.com/cfgschema/schemac/internal/compiler/parser"
	"github.com/cfgschema/schemac/internal/compiler/preprocessor"
	"github.com/cfgschema/schemac/internal/logging"
)

// DefaultPattern matches definition documents inside the definitions directory
const DefaultPattern = "*.xml.in"

// Options configures a Compiler
type Options struct {
	// Pattern selects documents in the directory; DefaultPattern when empty
	Pattern string
	// Folder overrides the base folder for include resolution
	Folder string
	// MaxDepth bounds include nesting; preprocessor.DefaultMaxDepth when zero
	MaxDepth int
	// RootPolicy decides how documents sharing a top-level node combine
	RootPolicy merge.RootPolicy
	Logger     *zap.Logger
	// Cache, when set, reuses build results of unchanged documents
	Cache *cache.DocumentCache
	// Graph, when set, records the fragments every document includes
	Graph *cache.DependencyGraph
}

// Compiler turns definition documents into a schema. A Compiler is not safe
// for concurrent use.
type Compiler struct {
	opts    Options
	pre     *preprocessor.Preprocessor
	hasher  *cache.FileHasher
	logger  *zap.Logger
	metrics Metrics
}

// New creates a Compiler
func New(opts Options) *Compiler {
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if opts.RootPolicy == "" {
		opts.RootPolicy = merge.RootPolicyRecursive
	}

	pre := preprocessor.New()
	if opts.MaxDepth > 0 {
		pre.MaxDepth = opts.MaxDepth
	}

	return &Compiler{
		opts:   opts,
		pre:    pre,
		hasher: cache.NewFileHasher(),
		logger: logging.OrNop(opts.Logger),
	}
}

// Metrics returns the metrics of the last run
func (c *Compiler) Metrics() Metrics {
	return c.metrics
}

// Documents lists the definition documents of dir in lexical order
func (c *Compiler) Documents(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, c.opts.Pattern))
	if err != nil {
		return nil, errors.Newf(errors.PhaseDriver, errors.ErrReadFailed, errors.SourceLocation{File: dir},
			"invalid document pattern %q: %v", c.opts.Pattern, err).WithCause(err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Compile compiles every document of dir
func (c *Compiler) Compile(ctx context.Context, dir string) (*ast.Schema, error) {
	paths, err := c.Documents(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, errors.Newf(errors.PhaseDriver, errors.ErrNoDocuments, errors.SourceLocation{File: dir},
			"no documents matching %q", c.opts.Pattern)
	}
	return c.CompileFiles(ctx, paths)
}

// CompileFiles compiles the given documents in the given order. No schema is
// returned when any document fails.
func (c *Compiler) CompileFiles(ctx context.Context, paths []string) (*ast.Schema, error) {
	c.metrics = Metrics{
		RunID:      uuid.NewString(),
		TotalFiles: len(paths),
		StartTime:  time.Now(),
	}
	logger := c.logger.With(zap.String("run_id", c.metrics.RunID))

	schema := ast.NewSchema()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.Newf(errors.PhaseDriver, errors.ErrCanceled, errors.SourceLocation{File: path},
				"compilation canceled").WithCause(err)
		}

		start := time.Now()
		result, cached, err := c.compileDocument(path)
		if err != nil {
			logger.Debug("document failed", zap.String("document", path), zap.Error(err))
			return nil, err
		}

		mergeStart := time.Now()
		if err := fold(schema, path, result, c.opts.RootPolicy); err != nil {
			logger.Debug("merge failed", zap.String("document", path), zap.Error(err))
			return nil, err
		}
		c.metrics.MergeDuration += time.Since(mergeStart)

		logger.Debug("compiled document",
			zap.String("document", path),
			zap.Int("tags", len(result.Contribution.Tags)),
			zap.Bool("cached", cached),
			zap.Duration("took", time.Since(start)))
	}

	schema.Root.Kind = ast.KindInterior

	c.metrics.EndTime = time.Now()
	c.metrics.TotalDuration = c.metrics.EndTime.Sub(c.metrics.StartTime)
	c.metrics.Tags = len(schema.Tags)

	logger.Info("schema compiled",
		zap.Int("documents", len(paths)),
		zap.Int("tags", len(schema.Tags)),
		zap.Int("cache_hits", c.metrics.CacheHits),
		zap.Duration("duration", c.metrics.TotalDuration))

	return schema, nil
}

// CompileDocument preprocesses, parses and builds a single document without
// merging it into a schema.
func (c *Compiler) CompileDocument(path string) (*builder.Result, error) {
	result, _, err := c.compileDocument(path)
	return result, err
}

func (c *Compiler) compileDocument(path string) (*builder.Result, bool, error) {
	start := time.Now()
	expanded, err := c.pre.Expand(path, c.opts.Folder, nil)
	c.metrics.PreprocessDuration += time.Since(start)
	if err != nil {
		if ce, ok := errors.As(err); ok && ce.Location.Line > 0 {
			err = errors.EnrichErrorFromFile(ce)
		}
		return nil, false, inFile(err, path)
	}

	if c.opts.Graph != nil {
		c.opts.Graph.SetIncludes(path, expanded.Files)
	}

	var hash string
	if c.opts.Cache != nil {
		hash = c.hasher.HashString(expanded.Text)
		if result, ok := c.opts.Cache.Get(path, hash); ok {
			c.metrics.CacheHits++
			return result, true, nil
		}
		c.metrics.CacheMisses++
	}

	start = time.Now()
	doc, err := parser.Parse(path, []byte(expanded.Text))
	c.metrics.ParseDuration += time.Since(start)
	if err != nil {
		return nil, false, relocate(err, expanded)
	}

	start = time.Now()
	result, err := builder.New(path).Build(doc)
	c.metrics.BuildDuration += time.Since(start)
	if err != nil {
		return nil, false, relocate(err, expanded)
	}

	if c.opts.Cache != nil {
		c.opts.Cache.Set(path, hash, result)
	}
	return result, false, nil
}

// fold merges one document's tree and index contribution into schema
func fold(schema *ast.Schema, path string, result *builder.Result, policy merge.RootPolicy) error {
	if err := merge.MergeRoot(schema.Root, result.Root, policy); err != nil {
		return inFile(err, path)
	}

	contrib := result.Contribution
	schema.Tags = append(schema.Tags, contrib.Tags...)

	for p, owner := range contrib.Owners {
		schema.Owners[p] = owner
	}

	levels := make([]int, 0, len(contrib.Priorities))
	for level := range contrib.Priorities {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	for _, level := range levels {
		schema.Priorities[level] = append(schema.Priorities[level], contrib.Priorities[level]...)
	}

	components := make([]string, 0, len(contrib.ComponentVersions))
	for component := range contrib.ComponentVersions {
		components = append(components, component)
	}
	sort.Strings(components)
	for _, component := range components {
		version := contrib.ComponentVersions[component]
		if existing, ok := schema.ComponentVersions[component]; ok && existing != version {
			return errors.Newf(errors.PhaseMerge, errors.ErrConflictingDefinition, errors.SourceLocation{File: path},
				"component %q declared with versions %s and %s", component, existing, version).
				WithValues(existing, version)
		}
		schema.ComponentVersions[component] = version
	}

	if err := schema.Defaults.Merge(contrib.Defaults); err != nil {
		var conflict *ast.DefaultConflictError
		if stderrors.As(err, &conflict) {
			return errors.Newf(errors.PhaseMerge, errors.ErrConflictingDefault, errors.SourceLocation{File: path},
				"%v", err).
				WithPath(ast.JoinPath(conflict.Path)).
				WithValues(conflict.Existing, conflict.Incoming)
		}
		return fmt.Errorf("%s: %w", path, err)
	}

	return nil
}

func inFile(err error, path string) error {
	if ce, ok := errors.As(err); ok {
		return ce.InFile(path)
	}
	return err
}

// relocate adds the surrounding expanded text to a parse or build error and
// points its location at the document or fragment the line came from.
func relocate(err error, expanded *preprocessor.Result) error {
	ce, ok := errors.As(err)
	if !ok || ce.Location.Line == 0 {
		return err
	}

	ce = errors.EnrichError(ce, expanded.Text)
	if origin, ok := expanded.Origin(ce.Location.Line); ok {
		ce.Location.File = origin.File
		ce.Location.Line = origin.Line
	}
	return ce
}
