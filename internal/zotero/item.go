package zotero

import (
	"encoding/json"
	"fmt"
)

// Item types that never produce rows of their own.
const (
	TypeAttachment = "attachment"
	TypeNote       = "note"
)

// Item is a single bibliographic record as supplied by the host.
//
// Scalar fields (title, date, DOI, ...) live in Fields keyed by their field
// name. The multi-valued parts of the record are decoded into typed slices.
// Items are owned by the cursor that produced them and must not be mutated.
type Item struct {
	Fields      map[string]any
	Creators    []Creator
	Tags        []Tag
	Notes       []Note
	Collections []string
}

// Creator is a contributor attached to an item.
type Creator struct {
	Name        string `json:"name,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	CreatorType string `json:"creatorType,omitempty"`
}

// Tag is a classification label. Type 1 marks an automatically assigned tag.
type Tag struct {
	Tag  string `json:"tag"`
	Type int    `json:"type,omitempty"`
}

// Automatic reports whether the tag was assigned by the host rather than a user.
func (t Tag) Automatic() bool {
	return t.Type == 1
}

// Note is a child note; Note holds its HTML body.
type Note struct {
	Key  string `json:"key,omitempty"`
	Note string `json:"note"`
}

// UnmarshalJSON accepts either a note object or a bare HTML string.
func (n *Note) UnmarshalJSON(data []byte) error {
	var body string
	if err := json.Unmarshal(data, &body); err == nil {
		n.Note = body
		return nil
	}
	type plain Note
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = Note(p)
	return nil
}

// Type returns the item's itemType, or "" when absent.
func (i *Item) Type() string {
	s, _ := i.Fields["itemType"].(string)
	return s
}

// String returns a scalar field rendered as a string, or "" when absent.
func (i *Item) String(field string) string {
	switch v := i.Fields[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// UnmarshalJSON splits the multi-valued keys of a host record out of the
// scalar field map.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	i.Fields = make(map[string]any, len(raw))
	for key, value := range raw {
		var err error
		switch key {
		case "creators":
			err = json.Unmarshal(value, &i.Creators)
		case "tags":
			err = json.Unmarshal(value, &i.Tags)
		case "notes":
			err = json.Unmarshal(value, &i.Notes)
		case "collections":
			err = json.Unmarshal(value, &i.Collections)
		default:
			var v any
			err = json.Unmarshal(value, &v)
			i.Fields[key] = v
		}
		if err != nil {
			return fmt.Errorf("failed to decode item field %q: %w", key, err)
		}
	}
	return nil
}
