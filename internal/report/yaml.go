// Package report writes export run summaries as YAML.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/bibtable/internal/tabulate"
)

// RunConfig is the configuration section of a run report.
type RunConfig struct {
	Preset    string `yaml:"preset"`
	Format    string `yaml:"format"`
	Library   string `yaml:"library"`
	Timestamp string `yaml:"timestamp"`
}

// RunStats holds the counts of a run.
type RunStats struct {
	Collections int    `yaml:"collections"`
	Items       int    `yaml:"items"`
	Skipped     int    `yaml:"skipped"`
	Rows        int    `yaml:"rows"`
	Duration    string `yaml:"duration"`
}

// RunReport is the complete YAML document for one export.
type RunReport struct {
	RunID   string    `yaml:"runid"`
	Config  RunConfig `yaml:"config"`
	Stats   RunStats  `yaml:"stats"`
	Columns []string  `yaml:"columns"`
}

// FromSummary builds the report document of a finished run.
func FromSummary(summary *tabulate.Summary) RunReport {
	columns := summary.Columns
	if columns == nil {
		columns = []string{}
	}
	return RunReport{
		RunID: summary.RunID,
		Config: RunConfig{
			Preset:    summary.Preset,
			Format:    summary.Format,
			Library:   summary.Library,
			Timestamp: summary.StartedAt.UTC().Format(time.RFC3339),
		},
		Stats: RunStats{
			Collections: summary.Collections,
			Items:       summary.Items,
			Skipped:     summary.Skipped,
			Rows:        summary.Rows,
			Duration:    summary.Duration.Round(time.Millisecond).String(),
		},
		Columns: columns,
	}
}

// SaveToYAML writes the run summary to path, creating its directory.
func SaveToYAML(path string, summary *tabulate.Summary) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	doc := FromSummary(summary)
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}
