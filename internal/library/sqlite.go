package library

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

// fieldMode 1 marks a creator stored as a single name in lastName.
const singleFieldMode = 1

// Dates are stored as "YYYY-MM-DD <as entered>"; unknown parts are zeros.
var multipartDateRe = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2} (.*)$`)

const itemsQuery = `
	SELECT i.itemID, i.key, i.libraryID, i.dateAdded, i.dateModified, t.typeName
	FROM items i
	JOIN itemTypes t ON t.itemTypeID = i.itemTypeID
	WHERE i.itemID NOT IN (SELECT itemID FROM deletedItems)
	  AND i.itemID NOT IN (SELECT itemID FROM itemNotes WHERE parentItemID IS NOT NULL)
	  AND i.itemID NOT IN (SELECT itemID FROM itemAttachments WHERE parentItemID IS NOT NULL)
	  AND t.typeName <> 'annotation'
	ORDER BY i.itemID`

const fieldsQuery = `
	SELECT d.itemID, f.fieldName, v.value
	FROM itemData d
	JOIN fields f ON f.fieldID = d.fieldID
	JOIN itemDataValues v ON v.valueID = d.valueID
	ORDER BY d.itemID, f.fieldName`

const creatorsQuery = `
	SELECT ic.itemID, c.firstName, c.lastName, c.fieldMode, ct.creatorType
	FROM itemCreators ic
	JOIN creators c ON c.creatorID = ic.creatorID
	JOIN creatorTypes ct ON ct.creatorTypeID = ic.creatorTypeID
	ORDER BY ic.itemID, ic.orderIndex`

const tagsQuery = `
	SELECT it.itemID, t.name, it.type
	FROM itemTags it
	JOIN tags t ON t.tagID = it.tagID
	ORDER BY it.itemID, t.name`

const membershipQuery = `
	SELECT ci.itemID, c.key
	FROM collectionItems ci
	JOIN collections c ON c.collectionID = ci.collectionID
	ORDER BY ci.itemID, ci.orderIndex`

const notesQuery = `
	SELECT n.itemID, n.parentItemID, i.key, n.note
	FROM itemNotes n
	JOIN items i ON i.itemID = n.itemID
	WHERE n.itemID NOT IN (SELECT itemID FROM deletedItems)
	ORDER BY n.itemID`

const collectionsQuery = `
	SELECT c.collectionID, c.key, c.collectionName, p.key
	FROM collections c
	LEFT JOIN collections p ON p.collectionID = c.parentCollectionID
	ORDER BY c.collectionID`

// OpenSQLite reads a Zotero database read-only into memory. Deleted items
// are excluded and child notes are attached to their parents; standalone
// notes and attachments are kept with their item type.
func OpenSQLite(path string) (*Library, error) {
	slog.Debug("Opening Zotero database", "path", path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}

	dsn, err := readOnlyDSN(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	r := &sqliteReader{db: db, byID: make(map[int64]*zotero.Item)}
	if err := r.readItems(); err != nil {
		return nil, err
	}
	if err := r.readFields(); err != nil {
		return nil, err
	}
	if err := r.readCreators(); err != nil {
		return nil, err
	}
	if err := r.readTags(); err != nil {
		return nil, err
	}
	if err := r.readMembership(); err != nil {
		return nil, err
	}
	if err := r.readNotes(); err != nil {
		return nil, err
	}
	collections, err := r.readCollections()
	if err != nil {
		return nil, err
	}

	items := make([]zotero.Item, len(r.order))
	for i, id := range r.order {
		items[i] = *r.byID[id]
	}

	slog.Debug("Finished reading Zotero database", "items", len(items), "collections", len(collections))

	return New("", items, collections), nil
}

// readOnlyDSN builds a read-only SQLite URI for path. The path is made
// absolute and percent-escaped so '?' and '#' stay part of the file name.
func readOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}
	return u.String(), nil
}

type sqliteReader struct {
	db    *sql.DB
	order []int64
	byID  map[int64]*zotero.Item
}

// each runs query and hands every row to scan.
func (r *sqliteReader) each(name, query string, scan func(*sql.Rows) error) error {
	rows, err := r.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan %s: %w", name, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return nil
}

func (r *sqliteReader) readItems() error {
	return r.each("items", itemsQuery, func(rows *sql.Rows) error {
		var (
			id, libraryID   int64
			key, typeName   string
			added, modified sql.NullString
		)
		if err := rows.Scan(&id, &key, &libraryID, &added, &modified, &typeName); err != nil {
			return err
		}
		r.order = append(r.order, id)
		r.byID[id] = &zotero.Item{Fields: map[string]any{
			"itemID":       float64(id),
			"key":          key,
			"libraryID":    float64(libraryID),
			"itemType":     typeName,
			"dateAdded":    added.String,
			"dateModified": modified.String,
		}}
		return nil
	})
}

func (r *sqliteReader) readFields() error {
	return r.each("item fields", fieldsQuery, func(rows *sql.Rows) error {
		var (
			id    int64
			field string
			value sql.NullString
		)
		if err := rows.Scan(&id, &field, &value); err != nil {
			return err
		}
		if item, ok := r.byID[id]; ok && value.Valid {
			item.Fields[field] = value.String
			if field == "date" {
				item.Fields[field] = enteredDate(value.String)
			}
		}
		return nil
	})
}

// enteredDate returns the date as the user entered it.
func enteredDate(stored string) string {
	if m := multipartDateRe.FindStringSubmatch(stored); m != nil {
		return m[1]
	}
	return stored
}

func (r *sqliteReader) readCreators() error {
	return r.each("creators", creatorsQuery, func(rows *sql.Rows) error {
		var (
			id          int64
			first, last sql.NullString
			mode        sql.NullInt64
			creatorType string
		)
		if err := rows.Scan(&id, &first, &last, &mode, &creatorType); err != nil {
			return err
		}
		item, ok := r.byID[id]
		if !ok {
			return nil
		}
		c := zotero.Creator{CreatorType: creatorType}
		if mode.Int64 == singleFieldMode {
			c.Name = last.String
		} else {
			c.FirstName = first.String
			c.LastName = last.String
		}
		item.Creators = append(item.Creators, c)
		return nil
	})
}

func (r *sqliteReader) readTags() error {
	return r.each("tags", tagsQuery, func(rows *sql.Rows) error {
		var (
			id      int64
			name    string
			tagType sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &tagType); err != nil {
			return err
		}
		if item, ok := r.byID[id]; ok {
			item.Tags = append(item.Tags, zotero.Tag{Tag: name, Type: int(tagType.Int64)})
		}
		return nil
	})
}

func (r *sqliteReader) readMembership() error {
	return r.each("collection items", membershipQuery, func(rows *sql.Rows) error {
		var (
			id  int64
			key string
		)
		if err := rows.Scan(&id, &key); err != nil {
			return err
		}
		if item, ok := r.byID[id]; ok {
			item.Collections = append(item.Collections, key)
		}
		return nil
	})
}

// readNotes attaches child notes to their parents and gives standalone
// notes their body as the note field.
func (r *sqliteReader) readNotes() error {
	return r.each("notes", notesQuery, func(rows *sql.Rows) error {
		var (
			id     int64
			parent sql.NullInt64
			key    string
			body   sql.NullString
		)
		if err := rows.Scan(&id, &parent, &key, &body); err != nil {
			return err
		}
		if !parent.Valid {
			if item, ok := r.byID[id]; ok {
				item.Fields["note"] = body.String
			}
			return nil
		}
		if item, ok := r.byID[parent.Int64]; ok {
			item.Notes = append(item.Notes, zotero.Note{Key: key, Note: body.String})
		}
		return nil
	})
}

func (r *sqliteReader) readCollections() ([]zotero.Collection, error) {
	var collections []zotero.Collection
	err := r.each("collections", collectionsQuery, func(rows *sql.Rows) error {
		var (
			id        int64
			key, name string
			parent    sql.NullString
		)
		if err := rows.Scan(&id, &key, &name, &parent); err != nil {
			return err
		}
		collections = append(collections, zotero.Collection{
			ID:        int(id),
			Key:       key,
			Name:      name,
			ParentKey: parent.String,
		})
		return nil
	})
	return collections, err
}
