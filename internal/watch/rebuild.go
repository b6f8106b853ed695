package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cfgschema/schemac/internal/compiler/ast"
	"github.com/cfgschema/schemac/internal/compiler/cache"
	"github.com/cfgschema/schemac/internal/compiler/driver"
	"github.com/cfgschema/schemac/internal/compiler/metadata"
	"github.com/cfgschema/schemac/internal/logging"
)

// Result holds the outcome of one rebuild
type Result struct {
	Schema      *ast.Schema
	Fingerprint string
	// Changed lists the files that triggered the rebuild
	Changed []string
	// Affected lists the documents whose cached build was discarded
	Affected []string
	Duration time.Duration
	Metrics  driver.Metrics
}

// Rebuilder recompiles a definitions directory, reusing the build results of
// documents whose expanded text did not change. The last good schema stays
// current until a rebuild succeeds.
type Rebuilder struct {
	dir      string
	compiler *driver.Compiler
	cache    *cache.DocumentCache
	graph    *cache.DependencyGraph
	logger   *zap.Logger

	mu      sync.Mutex
	current atomic.Pointer[ast.Schema]
}

// NewRebuilder creates a Rebuilder for dir. Cache and Graph in opts are
// replaced by the Rebuilder's own.
func NewRebuilder(dir string, opts driver.Options) *Rebuilder {
	r := &Rebuilder{
		dir:    filepath.Clean(dir),
		cache:  cache.NewDocumentCache(),
		graph:  cache.NewDependencyGraph(),
		logger: logging.OrNop(opts.Logger).Named("rebuild"),
	}
	opts.Cache = r.cache
	opts.Graph = r.graph
	r.compiler = driver.New(opts)
	return r
}

// Current returns the last successfully compiled schema, or nil
func (r *Rebuilder) Current() *ast.Schema {
	return r.current.Load()
}

// Build compiles the whole directory
func (r *Rebuilder) Build(ctx context.Context) (*Result, error) {
	return r.Rebuild(ctx, nil)
}

// Rebuild recompiles after changed files were written, created or removed.
// A failed rebuild leaves the current schema untouched.
func (r *Rebuilder) Rebuild(ctx context.Context, changed []string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := &Result{Changed: changed, Affected: r.invalidate(changed)}

	schema, err := r.compiler.Compile(ctx, r.dir)
	result.Metrics = r.compiler.Metrics()
	result.Duration = time.Since(start)
	if err != nil {
		r.logger.Info("rebuild failed", zap.Strings("changed", changed), zap.Error(err))
		return result, err
	}

	if documents, err := r.compiler.Documents(r.dir); err == nil {
		r.cache.Retain(documents)
	}

	fingerprint, err := metadata.Fingerprint(schema)
	if err != nil {
		return result, err
	}

	result.Schema = schema
	result.Fingerprint = fingerprint
	r.current.Store(schema)

	r.logger.Info("rebuilt schema",
		zap.Strings("changed", changed),
		zap.Strings("affected", result.Affected),
		zap.Int("cache_hits", result.Metrics.CacheHits),
		zap.String("fingerprint", fingerprint),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// invalidate drops cached builds of changed documents and of every document
// including a changed fragment, returning the dropped documents.
func (r *Rebuilder) invalidate(changed []string) []string {
	documents := make(map[string]bool)
	if paths, err := r.compiler.Documents(r.dir); err == nil {
		for _, p := range paths {
			documents[p] = true
		}
	}

	affected := make(map[string]bool)
	for _, file := range changed {
		file = filepath.Clean(file)

		if documents[file] {
			affected[file] = true
		}
		for _, doc := range r.graph.GetTransitiveDependents(file) {
			affected[doc] = true
		}

		if _, err := os.Stat(file); os.IsNotExist(err) {
			r.graph.RemoveFile(file)
		}
	}

	docs := make([]string, 0, len(affected))
	for doc := range affected {
		r.cache.Invalidate(doc)
		docs = append(docs, doc)
	}
	sort.Strings(docs)
	return docs
}
