package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLibrary = `{
	"name": "Lab Library",
	"items": [
		{
			"itemType": "journalArticle",
			"key": "VUL8ZVJ8",
			"title": "Using Google Flu Trends data",
			"extra": "PMID: 25037278",
			"date": "2014-09-01",
			"creators": [{"lastName": "Araz", "firstName": "Ozgur M.", "creatorType": "author"}],
			"tags": [{"tag": "qwef"}, {"tag": "Influenza", "type": 1}, {"tag": "Forecasting", "type": 1}],
			"collections": ["CHILD"]
		},
		{"itemType": "attachment", "title": "scan.pdf"}
	],
	"collections": [
		{"key": "ROOT", "name": "een"},
		{"key": "CHILD", "parentKey": "ROOT", "name": "two"}
	]
}`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeLibrary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.json")
	require.NoError(t, os.WriteFile(path, []byte(testLibrary), 0o644))
	return path
}

func readCSV(t *testing.T, data string) []map[string]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	var rows []map[string]string
	for _, rec := range records[1:] {
		row := make(map[string]string, len(rec))
		for i, h := range records[0] {
			row[h] = rec[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func TestExportToStdout(t *testing.T) {
	out, err := runRoot(t, "export", "--library", writeLibrary(t))
	require.NoError(t, err)

	rows := readCSV(t, out)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "een/two", r["collection"])
		assert.Equal(t, "qwef", r["tag"])
		assert.Equal(t, "https://www.ncbi.nlm.nih.gov/pubmed/25037278", r["url"])
		assert.Equal(t, "Araz, Ozgur M.", r["creators"])
		assert.NotContains(t, r, "key")
	}
	assert.Equal(t, "Influenza", rows[0]["automaticTag"])
	assert.Equal(t, "Forecasting", rows[1]["automaticTag"])
}

func TestExportBundledToDirectory(t *testing.T) {
	dir := t.TempDir()
	summary := filepath.Join(dir, "reports", "run.yaml")
	metricsFile := filepath.Join(dir, "bibtable.prom")

	_, err := runRoot(t, "export",
		"--library", writeLibrary(t),
		"--output", dir,
		"--bundle-automatic-tags",
		"--automatic-tag-delimiter", "lf",
		"--summary", summary,
		"--metrics-file", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "library.csv"))
	require.NoError(t, err)
	rows := readCSV(t, string(data))
	require.Len(t, rows, 1)
	assert.Equal(t, "Influenza\nForecasting", rows[0]["automaticTags"])

	report, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(report), "library: Lab Library")
	assert.Contains(t, string(report), "rows: 1")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `bibtable_export_items_total{outcome="skipped"} 1`)
}

func TestExportSpreadsheetPreset(t *testing.T) {
	target := filepath.Join(t.TempDir(), "library.fods")
	_, err := runRoot(t, "export",
		"--library", writeLibrary(t),
		"--preset", "spreadsheet",
		"--library-name", "Group <Shared>",
		"--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `table:name="Group &lt;Shared&gt;"`)
	assert.Contains(t, string(data), "<text:p>een/two</text:p>")
}

func TestExportEnvironmentPreset(t *testing.T) {
	t.Setenv("BIBTABLE_PRESET", "legacy")

	out, err := runRoot(t, "export", "--library", writeLibrary(t))
	require.NoError(t, err)

	rows := readCSV(t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Araz, Ozgur M.", rows[0]["creator"])
	assert.Equal(t, "VUL8ZVJ8", rows[0]["key"])
	assert.Equal(t, "PMID: 25037278", rows[0]["extra"])
}

func TestExportConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "bibtable.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("collection-separator: \" > \"\n"), 0o644))

	out, err := runRoot(t, "export", "--config", cfgPath, "--library", writeLibrary(t))
	require.NoError(t, err)
	rows := readCSV(t, out)
	require.NotEmpty(t, rows)
	assert.Equal(t, "een > two", rows[0]["collection"])
}

func TestExportErrors(t *testing.T) {
	lib := writeLibrary(t)

	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"missing library flag", []string{"export"}, "library"},
		{"unknown preset", []string{"export", "--library", lib, "--preset", "rdf"}, "unknown preset"},
		{"unknown format", []string{"export", "--library", lib, "--format", "xlsx"}, "unsupported format"},
		{"unknown library type", []string{"export", "--library", "library.bib"}, "unsupported library format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestCollectionsCommand(t *testing.T) {
	out, err := runRoot(t, "collections", "--library", writeLibrary(t), "--collection-separator", " :: ")
	require.NoError(t, err)
	assert.Equal(t, "CHILD\teen :: two\nROOT\teen\n", out)
}
