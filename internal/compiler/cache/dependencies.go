package cache

import (
	"sort"
	"sync"
)

// FileDependency is one file of the include graph
type FileDependency struct {
	Path       string   // The file path
	DependsOn  []string // Fragments this document includes
	DependedBy []string // Documents including this fragment
}

// DependencyGraph records which fragments each definition document includes,
// so a change to a fragment can be traced back to the documents to rebuild.
type DependencyGraph struct {
	nodes map[string]*FileDependency
	mu    sync.RWMutex
}

// NewDependencyGraph creates a new dependency graph
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*FileDependency),
	}
}

func (dg *DependencyGraph) node(path string) *FileDependency {
	n, ok := dg.nodes[path]
	if !ok {
		n = &FileDependency{
			Path:       path,
			DependsOn:  make([]string, 0),
			DependedBy: make([]string, 0),
		}
		dg.nodes[path] = n
	}
	return n
}

// SetIncludes replaces the recorded includes of document. files is the list
// reported by the preprocessor; the document itself is skipped.
func (dg *DependencyGraph) SetIncludes(document string, files []string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	doc := dg.node(document)
	for _, old := range doc.DependsOn {
		if n, ok := dg.nodes[old]; ok {
			n.DependedBy = removeString(n.DependedBy, document)
		}
	}
	doc.DependsOn = make([]string, 0, len(files))

	for _, f := range files {
		if f == document || contains(doc.DependsOn, f) {
			continue
		}
		doc.DependsOn = append(doc.DependsOn, f)
		frag := dg.node(f)
		if !contains(frag.DependedBy, document) {
			frag.DependedBy = append(frag.DependedBy, document)
		}
	}
}

// AddDependency adds a dependency relationship: from includes to
func (dg *DependencyGraph) AddDependency(from, to string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	f, t := dg.node(from), dg.node(to)
	if !contains(f.DependsOn, to) {
		f.DependsOn = append(f.DependsOn, to)
	}
	if !contains(t.DependedBy, from) {
		t.DependedBy = append(t.DependedBy, from)
	}
}

// GetDependencies returns the files that the given file includes
func (dg *DependencyGraph) GetDependencies(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if node, exists := dg.nodes[path]; exists {
		result := make([]string, len(node.DependsOn))
		copy(result, node.DependsOn)
		return result
	}
	return []string{}
}

// GetDependents returns the files that include the given file
func (dg *DependencyGraph) GetDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	if node, exists := dg.nodes[path]; exists {
		result := make([]string, len(node.DependedBy))
		copy(result, node.DependedBy)
		return result
	}
	return []string{}
}

// GetTransitiveDependents returns every file that includes the given file,
// directly or through other fragments, sorted.
func (dg *DependencyGraph) GetTransitiveDependents(path string) []string {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	visited := map[string]bool{path: true}
	result := make([]string, 0)

	var visit func(string)
	visit = func(p string) {
		node, exists := dg.nodes[p]
		if !exists {
			return
		}
		for _, dependent := range node.DependedBy {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			result = append(result, dependent)
			visit(dependent)
		}
	}

	visit(path)
	sort.Strings(result)
	return result
}

// RemoveFile removes a file and its edges from the graph
func (dg *DependencyGraph) RemoveFile(path string) {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	if node, exists := dg.nodes[path]; exists {
		for _, dependent := range node.DependedBy {
			if depNode, exists := dg.nodes[dependent]; exists {
				depNode.DependsOn = removeString(depNode.DependsOn, path)
			}
		}

		for _, dependency := range node.DependsOn {
			if depNode, exists := dg.nodes[dependency]; exists {
				depNode.DependedBy = removeString(depNode.DependedBy, path)
			}
		}

		delete(dg.nodes, path)
	}
}

// Clear removes all entries from the dependency graph
func (dg *DependencyGraph) Clear() {
	dg.mu.Lock()
	defer dg.mu.Unlock()

	dg.nodes = make(map[string]*FileDependency)
}

// Size returns the number of files in the graph
func (dg *DependencyGraph) Size() int {
	dg.mu.RLock()
	defer dg.mu.RUnlock()

	return len(dg.nodes)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func removeString(slice []string, item string) []string {
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if s != item {
			result = append(result, s)
		}
	}
	return result
}
