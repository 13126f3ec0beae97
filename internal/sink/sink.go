// Package sink defines where finished reports go. Implementations return the
// location they wrote to so callers can tell the user.
package sink

// CSVSink persists a named table
type CSVSink interface {
	WriteTable(name string, header []string, rows [][]string) (string, error)
}

// ChartSink persists a named series for rendering
type ChartSink interface {
	WriteChart(chart Chart) (string, error)
}

// ChartKind selects how a renderer draws the series
type ChartKind string

const (
	Bar  ChartKind = "bar"
	Line ChartKind = "line"
)

// Point is one category/value pair. Renderers keep the slice order on the
// category axis.
type Point struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

// Chart describes a chart independently of how it is drawn
type Chart struct {
	Name   string    `json:"name"`
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
	Points []Point   `json:"points"`
}
