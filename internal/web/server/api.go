package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cfgschema/schemac/internal/compiler/ast"
	"github.com/cfgschema/schemac/internal/compiler/metadata"
	"github.com/cfgschema/schemac/internal/logging"
	ustrings "github.com/cfgschema/schemac/internal/util/strings"
	"github.com/cfgschema/schemac/internal/web/cache"
	"github.com/cfgschema/schemac/internal/web/middleware"
	"github.com/cfgschema/schemac/internal/web/response"
)

// SchemaSource supplies the schema to serve. Current returns nil while no
// schema has been compiled.
type SchemaSource interface {
	Current() *ast.Schema
}

// StaticSource serves one fixed schema
type StaticSource struct {
	Schema *ast.Schema
}

// Current returns the fixed schema
func (s StaticSource) Current() *ast.Schema {
	return s.Schema
}

// HandlerOptions configures NewHandler
type HandlerOptions struct {
	// Events, when set, is mounted at /events
	Events http.Handler
	Logger *zap.Logger
}

// NodeView is the response body of /nodes
type NodeView struct {
	Path         []string        `json:"path"`
	Kind         ast.Kind        `json:"kind"`
	Owner        string          `json:"owner,omitempty"`
	Valueless    bool            `json:"valueless"`
	Multi        bool            `json:"multi"`
	Hidden       bool            `json:"hidden"`
	Help         *ast.Help       `json:"help,omitempty"`
	Constraint   *ast.Constraint `json:"constraint,omitempty"`
	ErrorMessage string          `json:"constraintErrorMessage,omitempty"`
	Completion   *ast.Completion `json:"completion,omitempty"`
	Priority     *int            `json:"priority,omitempty"`
	Default      *string         `json:"default,omitempty"`
	Children     []string        `json:"children"`
}

type api struct {
	source SchemaSource
	logger *zap.Logger
}

// NewHandler returns the read-only schema API
func NewHandler(source SchemaSource, opts HandlerOptions) http.Handler {
	a := &api{source: source, logger: logging.OrNop(opts.Logger).Named("api")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID(), middleware.Recovery(a.logger), middleware.Logging(a.logger, "/healthz"))

	r.Get("/healthz", a.health)
	r.Get("/schema", a.withSchema(a.schema))
	r.Get("/summary", a.withSchema(a.summary))
	r.Get("/nodes", a.withSchema(a.node))
	r.Get("/nodes/*", a.withSchema(a.node))
	r.Get("/tags", a.withSchema(func(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
		a.writeJSON(w, http.StatusOK, s.Tags)
	}))
	r.Get("/owners", a.withSchema(func(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
		a.writeJSON(w, http.StatusOK, s.Owners)
	}))
	r.Get("/priorities", a.withSchema(a.priorities))
	r.Get("/defaults", a.withSchema(func(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
		a.writeJSON(w, http.StatusOK, s.Defaults)
	}))
	r.Get("/versions", a.withSchema(func(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
		a.writeJSON(w, http.StatusOK, s.ComponentVersions)
	}))

	if opts.Events != nil {
		r.Handle("/events", opts.Events)
	}

	return r
}

func (a *api) withSchema(h func(http.ResponseWriter, *http.Request, *ast.Schema)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		schema := a.source.Current()
		if schema == nil {
			response.RenderError(w, http.StatusServiceUnavailable, "no schema has been compiled yet")
			return
		}
		h(w, r, schema)
	}
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if a.source.Current() == nil {
		a.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// schema writes the full dump. The fingerprint doubles as the ETag.
func (a *api) schema(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
	format, err := metadata.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.RenderError(w, http.StatusBadRequest, err.Error())
		return
	}

	fingerprint, err := metadata.Fingerprint(s)
	if err != nil {
		a.internalError(w, err)
		return
	}
	if cache.NotModified(w, r, cache.ETag(fingerprint)) {
		return
	}

	data, err := metadata.Render(s, format)
	if err != nil {
		a.internalError(w, err)
		return
	}

	if format == metadata.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *api) summary(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
	summary, err := metadata.Summarize(s)
	if err != nil {
		a.internalError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, summary)
}

// node looks up a path given as URL segments (/nodes/system/host-name) or as
// the space separated path query parameter.
func (a *api) node(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
	var path []string
	if q := r.URL.Query().Get("path"); q != "" {
		path = ast.SplitPath(q)
	} else {
		for _, segment := range strings.Split(chi.URLParam(r, "*"), "/") {
			if segment != "" {
				path = append(path, segment)
			}
		}
	}

	node := s.Lookup(path...)
	if node == nil {
		response.RenderNotFound(w, "no node at "+ast.JoinPath(path), suggest(s, path))
		return
	}

	view := NodeView{
		Path:         path,
		Kind:         node.Kind,
		Owner:        node.Owner,
		Valueless:    node.Valueless,
		Multi:        node.Multi,
		Hidden:       node.Hidden,
		Help:         node.Help,
		Constraint:   node.Constraint,
		ErrorMessage: node.ErrorMessage,
		Completion:   node.Completion,
		Priority:     node.Priority,
		Children:     node.SortedChildNames(),
	}
	if view.Path == nil {
		view.Path = []string{}
	}
	if value, ok := s.Default(path...); ok {
		view.Default = &value
	}

	a.writeJSON(w, http.StatusOK, view)
}

// suggest proposes full paths whose last segment is close to the first
// segment that failed to resolve.
func suggest(s *ast.Schema, path []string) []string {
	parent := s.Root
	for i, segment := range path {
		child, ok := parent.Children[segment]
		if !ok {
			var out []string
			for _, name := range ustrings.Similar(segment, parent.SortedChildNames(), 3, 3) {
				out = append(out, ast.JoinPath(append(append([]string{}, path[:i]...), name)))
			}
			return out
		}
		parent = child
	}
	return nil
}

type priorityLevel struct {
	Priority int      `json:"priority"`
	Paths    []string `json:"paths"`
}

// priorities lists levels in ascending order, paths in declaration order
func (a *api) priorities(w http.ResponseWriter, r *http.Request, s *ast.Schema) {
	levels := make([]priorityLevel, 0, len(s.Priorities))
	for _, p := range s.PriorityLevels() {
		levels = append(levels, priorityLevel{Priority: p, Paths: s.Priorities[p]})
	}
	a.writeJSON(w, http.StatusOK, levels)
}

func (a *api) internalError(w http.ResponseWriter, err error) {
	a.logger.Error("request failed", zap.Error(err))
	response.RenderError(w, http.StatusInternalServerError, err.Error())
}

func (a *api) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	if err := response.JSON(w, status, v); err != nil {
		a.logger.Error("cannot write response", zap.Error(err))
	}
}
