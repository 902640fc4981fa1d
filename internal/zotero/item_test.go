package zotero

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemUnmarshal(t *testing.T) {
	data := `{
		"itemType": "journalArticle",
		"title": "Using Google Flu Trends data",
		"volume": "32",
		"version": 0,
		"creators": [{"lastName": "Araz", "firstName": "Ozgur M.", "creatorType": "author"}],
		"tags": [{"tag": "qwef"}, {"tag": "auto", "type": 1}],
		"notes": [{"note": "<p>one</p>", "key": "DUSDL5F2"}, "<p>two</p>"],
		"collections": ["ABC"]
	}`

	var item Item
	require.NoError(t, json.Unmarshal([]byte(data), &item))

	assert.Equal(t, "journalArticle", item.Type())
	assert.Equal(t, "32", item.String("volume"))
	assert.Equal(t, "0", item.String("version"))
	assert.Equal(t, "", item.String("missing"))
	assert.NotContains(t, item.Fields, "creators")
	assert.NotContains(t, item.Fields, "tags")

	require.Len(t, item.Creators, 1)
	assert.Equal(t, "Araz", item.Creators[0].LastName)

	require.Len(t, item.Tags, 2)
	assert.False(t, item.Tags[0].Automatic())
	assert.True(t, item.Tags[1].Automatic())

	require.Len(t, item.Notes, 2)
	assert.Equal(t, "<p>one</p>", item.Notes[0].Note)
	assert.Equal(t, "<p>two</p>", item.Notes[1].Note)

	assert.Equal(t, []string{"ABC"}, item.Collections)
}

func TestItemUnmarshalBadCreators(t *testing.T) {
	var item Item
	err := json.Unmarshal([]byte(`{"creators": "nope"}`), &item)
	assert.Error(t, err)
}

func TestCollectionUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected Collection
	}{
		{
			name: "flat shape with descendents",
			data: `{
				"id": 4,
				"name": "een",
				"childItems": [],
				"primary": {"libraryID": 1, "collectionID": 4, "key": "3UPQMN2N"},
				"fields": {"parentKey": false, "name": "een"},
				"descendents": [
					{"parent": 4, "name": "two", "type": "collection", "key": "JP8VQSQY", "id": 3, "level": 1,
					 "children": [{"id": 2, "type": "item", "key": "3KWVWYSX", "parent": 3}]},
					{"parent": 3, "name": "deeper", "type": "collection", "key": "DEEPER00", "id": 5, "level": 2}
				]
			}`,
			expected: Collection{ID: 4, Key: "3UPQMN2N", Name: "een", ChildKeys: []string{"JP8VQSQY"}},
		},
		{
			name: "tree-walk shape with children",
			data: `{
				"id": 3,
				"key": "JP8VQSQY",
				"parentKey": "3UPQMN2N",
				"name": "two",
				"children": [
					{"type": "item", "key": "3KWVWYSX"},
					{"type": "collection", "key": "DEEPER00"}
				]
			}`,
			expected: Collection{ID: 3, Key: "JP8VQSQY", ParentKey: "3UPQMN2N", Name: "two", ChildKeys: []string{"DEEPER00"}},
		},
		{
			name:     "parent given in fields",
			data:     `{"primary": {"key": "B"}, "fields": {"parentKey": "A", "name": "bee"}}`,
			expected: Collection{Key: "B", ParentKey: "A", Name: "bee"},
		},
		{
			name:     "keyed export shape",
			data:     `{"key": "A", "name": "root", "parent": false, "collections": ["B", ""], "items": [12, 13]}`,
			expected: Collection{Key: "A", Name: "root", ChildKeys: []string{"B"}},
		},
		{
			name:     "keyed export child",
			data:     `{"key": "B", "name": "bee", "parent": "A", "collections": []}`,
			expected: Collection{Key: "B", ParentKey: "A", Name: "bee"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Collection
			require.NoError(t, json.Unmarshal([]byte(tt.data), &c))
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestSliceCursors(t *testing.T) {
	items := NewItemSlice([]Item{{Fields: map[string]any{"title": "a"}}, {Fields: map[string]any{"title": "b"}}})
	var titles []string
	for {
		item, err := items.NextItem()
		require.NoError(t, err)
		if item == nil {
			break
		}
		titles = append(titles, item.String("title"))
	}
	assert.Equal(t, []string{"a", "b"}, titles)

	collections := NewCollectionSlice(nil)
	c, err := collections.NextCollection()
	assert.NoError(t, err)
	assert.Nil(t, c)
}
