package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/bibtable/internal/tabulate"
)

func TestSaveToYAML(t *testing.T) {
	summary := &tabulate.Summary{
		RunID:       "7c0e2b1e-0000-4000-8000-000000000000",
		Preset:      "seektable",
		Format:      "csv",
		Library:     "My Library",
		Collections: 2,
		Items:       3,
		Skipped:     1,
		Rows:        12,
		Columns:     []string{"collection", "tag", "title"},
		StartedAt:   time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		Duration:    1234567 * time.Microsecond,
	}

	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	if err := SaveToYAML(path, summary); err != nil {
		t.Fatalf("SaveToYAML failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var got RunReport
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}

	if got.RunID != summary.RunID {
		t.Errorf("Expected run id %s, got %s", summary.RunID, got.RunID)
	}
	if got.Config.Preset != "seektable" || got.Config.Format != "csv" || got.Config.Library != "My Library" {
		t.Errorf("Unexpected config section: %+v", got.Config)
	}
	if got.Config.Timestamp != "2026-10-18T09:30:00Z" {
		t.Errorf("Expected timestamp 2026-10-18T09:30:00Z, got %s", got.Config.Timestamp)
	}
	if got.Stats != (RunStats{Collections: 2, Items: 3, Skipped: 1, Rows: 12, Duration: "1.235s"}) {
		t.Errorf("Unexpected stats: %+v", got.Stats)
	}
	if len(got.Columns) != 3 || got.Columns[2] != "title" {
		t.Errorf("Unexpected columns: %v", got.Columns)
	}
}

func TestFromSummaryEmptyColumns(t *testing.T) {
	doc := FromSummary(&tabulate.Summary{})
	if doc.Columns == nil {
		t.Fatal("Expected empty column list, got nil")
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cols, ok := raw["columns"].([]any); !ok || len(cols) != 0 {
		t.Errorf("Expected columns: [], got %v", raw["columns"])
	}
}

func TestSaveToYAMLUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SaveToYAML(filepath.Join(blocker, "run.yaml"), &tabulate.Summary{}); err == nil {
		t.Error("Expected error writing below a regular file")
	}
}
