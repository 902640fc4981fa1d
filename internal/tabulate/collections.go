package tabulate

import (
	"slices"
	"sort"

	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

type pathNode struct {
	name     string
	parent   string
	path     []string
	resolved bool
	visiting bool
}

// Resolver maps collection keys to the names of their ancestors, root first,
// ending in the collection's own name.
//
// Parent pointers to unknown keys are treated as roots. A parent that is
// still being resolved when it is reached again (a cycle) is cut, so the
// collection that pointed back to it becomes a root.
type Resolver struct {
	nodes map[string]*pathNode
}

// NewResolver builds the path table for a full collection set. The input is
// copied and left untouched.
func NewResolver(collections []zotero.Collection) *Resolver {
	r := &Resolver{nodes: make(map[string]*pathNode, len(collections))}
	for _, c := range collections {
		if c.Key == "" {
			continue
		}
		r.nodes[c.Key] = &pathNode{name: c.Name, parent: c.ParentKey}
	}

	// shapes that only list children carry no parent pointer on the child
	for _, c := range collections {
		for _, child := range c.ChildKeys {
			n, ok := r.nodes[child]
			if ok && n.parent == "" && child != c.Key {
				n.parent = c.Key
			}
		}
	}

	// resolve eagerly in key order so cycle cuts do not depend on the
	// order items happen to reference collections
	for _, key := range r.Keys() {
		r.resolve(key)
	}
	return r
}

// Keys returns every known collection key in sorted order.
func (r *Resolver) Keys() []string {
	keys := make([]string, 0, len(r.nodes))
	for k := range r.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns a copy of the resolved path for key, or nil when key is empty
// or unknown.
func (r *Resolver) Path(key string) []string {
	return slices.Clone(r.resolve(key))
}

func (r *Resolver) resolve(key string) []string {
	if key == "" {
		return nil
	}
	n, ok := r.nodes[key]
	if !ok {
		return nil
	}
	if n.resolved {
		return n.path
	}

	n.visiting = true
	if n.parent != "" {
		p, ok := r.nodes[n.parent]
		if !ok || p.visiting {
			n.parent = ""
		}
	}

	var base []string
	if n.parent != "" {
		base = r.resolve(n.parent)
	}

	path := make([]string, 0, len(base)+1)
	path = append(path, base...)
	path = append(path, n.name)

	n.path = path
	n.resolved = true
	n.visiting = false
	return path
}
