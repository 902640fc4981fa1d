package zotero

import (
	"encoding/json"
	"fmt"
)

// Collection is a named folder in the host library. ParentKey is empty for
// root collections.
type Collection struct {
	ID        int      `json:"id,omitempty"`
	Key       string   `json:"key"`
	ParentKey string   `json:"parentKey,omitempty"`
	Name      string   `json:"name"`
	ChildKeys []string `json:"childKeys,omitempty"`
}

// member is an entry of a collection's children or descendents list. Both
// sub-collections and items appear there; only type "collection" matters.
type member struct {
	ID     int    `json:"id"`
	Type   string `json:"type"`
	Key    string `json:"key"`
	Parent *int   `json:"parent"`
}

type collectionJSON struct {
	ID        int             `json:"id"`
	Key       string          `json:"key"`
	ParentKey json.RawMessage `json:"parentKey"`
	Parent    json.RawMessage `json:"parent"`
	Name      string          `json:"name"`
	ChildKeys []string        `json:"childKeys"`
	Subkeys   json.RawMessage `json:"collections"`
	Children  []member        `json:"children"`
	Desc      []member        `json:"descendents"`
	Primary   *struct {
		Key          string `json:"key"`
		CollectionID int    `json:"collectionID"`
	} `json:"primary"`
	Fields *struct {
		ParentKey json.RawMessage `json:"parentKey"`
		Name      string          `json:"name"`
	} `json:"fields"`
}

// UnmarshalJSON accepts the tree-walk shape (children), the flat shape
// (primary/fields/descendents) the host produces and the keyed export shape
// (parent, collections as a list of child keys).
func (c *Collection) UnmarshalJSON(data []byte) error {
	var raw collectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Collection{
		ID:        raw.ID,
		Key:       raw.Key,
		Name:      raw.Name,
		ChildKeys: raw.ChildKeys,
	}

	parent, err := parentKey(raw.ParentKey)
	if err != nil {
		return err
	}
	if parent == "" {
		if parent, err = parentKey(raw.Parent); err != nil {
			return err
		}
	}
	if raw.Primary != nil {
		if c.Key == "" {
			c.Key = raw.Primary.Key
		}
		if c.ID == 0 {
			c.ID = raw.Primary.CollectionID
		}
	}
	if raw.Fields != nil {
		if c.Name == "" {
			c.Name = raw.Fields.Name
		}
		if parent == "" {
			if parent, err = parentKey(raw.Fields.ParentKey); err != nil {
				return err
			}
		}
	}
	c.ParentKey = parent

	var subkeys []string
	if json.Unmarshal(raw.Subkeys, &subkeys) == nil {
		for _, k := range subkeys {
			if k != "" {
				c.ChildKeys = append(c.ChildKeys, k)
			}
		}
	}
	for _, m := range raw.Children {
		if m.Type == "collection" && m.Key != "" {
			c.ChildKeys = append(c.ChildKeys, m.Key)
		}
	}
	for _, m := range raw.Desc {
		if m.Type != "collection" || m.Key == "" {
			continue
		}
		// descendents lists the whole subtree; keep direct children only
		if m.Parent != nil && c.ID != 0 && *m.Parent != c.ID {
			continue
		}
		c.ChildKeys = append(c.ChildKeys, m.Key)
	}
	return nil
}

// parentKey decodes a parent pointer that is either a key string or false.
func parentKey(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("failed to decode parentKey: %w", err)
	}
	s, _ := v.(string)
	return s, nil
}
