package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const stampLayout = "20060102_150405"

// Dir writes artifacts as timestamped files under one directory, e.g.
// output/suspicious_summary_20251019_104123.csv
type Dir struct {
	Path string
	Now  func() time.Time
}

// NewDir creates a file sink rooted at path
func NewDir(path string) *Dir {
	return &Dir{Path: path, Now: time.Now}
}

func (d *Dir) artifactPath(name, ext string) (string, error) {
	if err := os.MkdirAll(d.Path, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return filepath.Join(d.Path, fmt.Sprintf("%s_%s.%s", name, now().Format(stampLayout), ext)), nil
}

// WriteTable implements CSVSink. Rows are written in the order given.
func (d *Dir) WriteTable(name string, header []string, rows [][]string) (string, error) {
	path, err := d.artifactPath(name, "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("failed to write csv rows: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}

// WriteChart implements ChartSink. The chart is stored as a JSON document
// for an external renderer.
func (d *Dir) WriteChart(chart Chart) (string, error) {
	path, err := d.artifactPath(chart.Name, "json")
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(chart, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode chart %s: %w", chart.Name, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
