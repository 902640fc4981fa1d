package tabulate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

func TestResolverPaths(t *testing.T) {
	tests := []struct {
		name        string
		collections []zotero.Collection
		expected    map[string][]string
	}{
		{
			name: "nested hierarchy",
			collections: []zotero.Collection{
				{Key: "C", ParentKey: "B", Name: "three"},
				{Key: "A", Name: "one"},
				{Key: "B", ParentKey: "A", Name: "two"},
			},
			expected: map[string][]string{
				"A": {"one"},
				"B": {"one", "two"},
				"C": {"one", "two", "three"},
			},
		},
		{
			name: "dangling parent becomes root",
			collections: []zotero.Collection{
				{Key: "A", ParentKey: "GONE", Name: "orphan"},
			},
			expected: map[string][]string{"A": {"orphan"}},
		},
		{
			name: "self reference",
			collections: []zotero.Collection{
				{Key: "A", ParentKey: "A", Name: "self"},
			},
			expected: map[string][]string{"A": {"self"}},
		},
		{
			name: "two-node cycle is cut at the revisit",
			collections: []zotero.Collection{
				{Key: "A", ParentKey: "B", Name: "a"},
				{Key: "B", ParentKey: "A", Name: "b"},
			},
			// A resolves first (key order), reaches B, and B's pointer back
			// to A is cut
			expected: map[string][]string{
				"A": {"b", "a"},
				"B": {"b"},
			},
		},
		{
			name: "three-node cycle with a tail",
			collections: []zotero.Collection{
				{Key: "A", ParentKey: "C", Name: "a"},
				{Key: "B", ParentKey: "A", Name: "b"},
				{Key: "C", ParentKey: "B", Name: "c"},
				{Key: "D", ParentKey: "C", Name: "d"},
			},
			expected: map[string][]string{
				"A": {"b", "c", "a"},
				"B": {"b"},
				"C": {"b", "c"},
				"D": {"b", "c", "d"},
			},
		},
		{
			name: "parent taken from child list",
			collections: []zotero.Collection{
				{Key: "P", Name: "een", ChildKeys: []string{"K"}},
				{Key: "K", Name: "two"},
			},
			expected: map[string][]string{
				"P": {"een"},
				"K": {"een", "two"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.collections)
			for key, want := range tt.expected {
				assert.Equal(t, want, r.Path(key), "path of %s", key)
			}
		})
	}
}

func TestResolverPathEndsInOwnName(t *testing.T) {
	// every node points at the next one and the last wraps around
	var collections []zotero.Collection
	keys := []string{"K0", "K1", "K2", "K3", "K4", "K5", "K6", "K7"}
	for i, k := range keys {
		collections = append(collections, zotero.Collection{
			Key:       k,
			ParentKey: keys[(i+1)%len(keys)],
			Name:      "name-" + k,
		})
	}
	collections = append(collections, zotero.Collection{Key: "X", ParentKey: "X", Name: "name-X"})

	r := NewResolver(collections)
	for _, c := range collections {
		path := r.Path(c.Key)
		if assert.NotEmpty(t, path, c.Key) {
			assert.Equal(t, c.Name, path[len(path)-1])
		}
		assert.LessOrEqual(t, len(path), len(keys))
	}
}

func TestResolverUnknownAndEmpty(t *testing.T) {
	r := NewResolver([]zotero.Collection{{Key: "A", Name: "a"}, {Name: "no key"}})
	assert.Nil(t, r.Path(""))
	assert.Nil(t, r.Path("missing"))
	assert.Equal(t, []string{"A"}, r.Keys())
}

func TestResolverReturnsCopies(t *testing.T) {
	r := NewResolver([]zotero.Collection{{Key: "A", Name: "a"}, {Key: "B", ParentKey: "A", Name: "b"}})

	p := r.Path("B")
	p[0] = "changed"

	assert.Equal(t, []string{"a", "b"}, r.Path("B"))
	assert.Equal(t, []string{"a"}, r.Path("A"))
}

func TestResolverDoesNotModifyInput(t *testing.T) {
	collections := []zotero.Collection{{Key: "A", ParentKey: "A", Name: "a"}}
	NewResolver(collections)
	assert.Equal(t, "A", collections[0].ParentKey)
}
