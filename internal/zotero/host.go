// Package zotero describes the records a reference-manager host hands to the
// exporter and the small set of host services the exporter consumes.
package zotero

// ItemCursor yields items one at a time. A nil item with a nil error marks
// the end of the stream.
type ItemCursor interface {
	NextItem() (*Item, error)
}

// CollectionCursor yields collections one at a time. A nil collection with a
// nil error marks the end of the stream.
type CollectionCursor interface {
	NextCollection() (*Collection, error)
}

// Options is the host's option and preference lookup.
type Options interface {
	GetBool(key string) bool
	GetString(key string) string
	IsSet(key string) bool
}

// DateParser turns free-text dates into a year and a normalized ISO form.
// Both report false when the text cannot be parsed.
type DateParser interface {
	Year(s string) (string, bool)
	ISO(s string) (string, bool)
}

// ItemSlice is an ItemCursor over an in-memory slice.
type ItemSlice struct {
	items []Item
	pos   int
}

// NewItemSlice returns a cursor over items.
func NewItemSlice(items []Item) *ItemSlice {
	return &ItemSlice{items: items}
}

func (s *ItemSlice) NextItem() (*Item, error) {
	if s.pos >= len(s.items) {
		return nil, nil
	}
	item := &s.items[s.pos]
	s.pos++
	return item, nil
}

// CollectionSlice is a CollectionCursor over an in-memory slice.
type CollectionSlice struct {
	collections []Collection
	pos         int
}

// NewCollectionSlice returns a cursor over collections.
func NewCollectionSlice(collections []Collection) *CollectionSlice {
	return &CollectionSlice{collections: collections}
}

func (s *CollectionSlice) NextCollection() (*Collection, error) {
	if s.pos >= len(s.collections) {
		return nil, nil
	}
	c := &s.collections[s.pos]
	s.pos++
	return c, nil
}
