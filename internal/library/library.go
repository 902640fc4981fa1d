// Package library loads bibliographic libraries from disk and serves them
// to the exporter through the host cursor interfaces.
package library

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/bibtable/internal/zotero"
)

// Library is an in-memory library snapshot.
type Library struct {
	Name        string
	items       []zotero.Item
	collections []zotero.Collection
}

// New returns a library over the given items and collections.
func New(name string, items []zotero.Item, collections []zotero.Collection) *Library {
	return &Library{Name: name, items: items, collections: collections}
}

// Items returns a fresh cursor over the library's items.
func (l *Library) Items() zotero.ItemCursor {
	return zotero.NewItemSlice(l.items)
}

// Collections returns a fresh cursor over the library's collections.
func (l *Library) Collections() zotero.CollectionCursor {
	return zotero.NewCollectionSlice(l.collections)
}

func (l *Library) ItemCount() int {
	return len(l.items)
}

func (l *Library) CollectionCount() int {
	return len(l.collections)
}

// Load reads a library file, choosing the reader by extension: .json,
// .jsonl/.ndjson or .sqlite/.db.
func Load(path string) (*Library, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".json":
		return loadJSON(path)
	case ".jsonl", ".ndjson":
		return loadJSONL(path)
	case ".sqlite", ".db":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported library format: %s (supported: .json, .jsonl, .sqlite)", ext)
	}
}

// jsonExport is the object form of a JSON library export. Collections may
// be a list or an object keyed by collection key.
type jsonExport struct {
	Name        string          `json:"name"`
	Items       []zotero.Item   `json:"items"`
	Collections json.RawMessage `json:"collections"`
}

func loadJSON(path string) (*Library, error) {
	slog.Debug("Opening JSON library", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []zotero.Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to parse library items: %w", err)
		}
		slog.Debug("Finished reading JSON library", "items", len(items))
		return New("", items, nil), nil
	}

	var export jsonExport
	if err := json.Unmarshal(trimmed, &export); err != nil {
		return nil, fmt.Errorf("failed to parse library: %w", err)
	}

	collections, err := decodeCollections(export.Collections)
	if err != nil {
		return nil, err
	}

	slog.Debug("Finished reading JSON library",
		"name", export.Name,
		"items", len(export.Items),
		"collections", len(collections))

	return New(export.Name, export.Items, collections), nil
}

func decodeCollections(raw json.RawMessage) ([]zotero.Collection, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var collections []zotero.Collection
		if err := json.Unmarshal(raw, &collections); err != nil {
			return nil, fmt.Errorf("failed to parse collections: %w", err)
		}
		return collections, nil
	}

	var keyed map[string]zotero.Collection
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, fmt.Errorf("failed to parse collections: %w", err)
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	collections := make([]zotero.Collection, 0, len(keyed))
	for _, k := range keys {
		c := keyed[k]
		if c.Key == "" {
			c.Key = k
		}
		collections = append(collections, c)
	}
	return collections, nil
}

// loadJSONL reads one item per line. Collections are not part of the line
// format.
func loadJSONL(path string) (*Library, error) {
	slog.Debug("Opening JSONL library", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library file: %w", err)
	}
	defer file.Close()

	var items []zotero.Item
	scanner := bufio.NewScanner(file)

	// abstracts and notes can make single lines large
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var item zotero.Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		items = append(items, item)

		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading library: %w", err)
	}

	slog.Debug("Finished reading JSONL library", "items", len(items), "lines", lineNum)

	return New("", items, nil), nil
}
