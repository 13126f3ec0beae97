package report

import (
	"strconv"

	"failtrack/internal/pipeline"
	"failtrack/internal/sink"
	"failtrack/internal/types"
)

// Artifact names, used as file name prefixes by file sinks
const (
	SummaryName      = "suspicious_summary"
	TopAttackersName = "top_attackers"
	OverTimeName     = "failed_over_time"
)

// SummaryHeader is the header row of the summary table
var SummaryHeader = []string{"IP", "Failed Attempts"}

// Report is the finished output of one run, ready for sinks and console.
// Summary is the single ordering both the console and the CSV receive.
type Report struct {
	RunID      string
	Source     string
	Threshold  int
	Summary    []types.AddressCount
	Series     []types.TimeBucketCount
	Suspicious []types.AddressCount
}

// Assemble derives the report from a pipeline result
func Assemble(res *pipeline.Result) Report {
	return Report{
		RunID:      res.RunID,
		Source:     res.Source,
		Threshold:  res.Threshold,
		Summary:    res.Ranked,
		Series:     res.Buckets,
		Suspicious: res.Suspicious,
	}
}

// SummaryRows renders Summary as CSV rows, in order
func (r Report) SummaryRows() [][]string {
	rows := make([][]string, 0, len(r.Summary))
	for _, c := range r.Summary {
		rows = append(rows, []string{c.IP, strconv.Itoa(c.Count)})
	}
	return rows
}

// TopAttackersChart is the bar chart of Summary
func (r Report) TopAttackersChart() sink.Chart {
	points := make([]sink.Point, 0, len(r.Summary))
	for _, c := range r.Summary {
		points = append(points, sink.Point{Category: c.IP, Value: c.Count})
	}
	return sink.Chart{
		Name:   TopAttackersName,
		Kind:   sink.Bar,
		Title:  "Top IPs by Failed Login Attempts",
		XLabel: "IP Address",
		YLabel: "Number of Failed Attempts",
		Points: points,
	}
}

// OverTimeChart is the line chart of Series
func (r Report) OverTimeChart() sink.Chart {
	points := make([]sink.Point, 0, len(r.Series))
	for _, b := range r.Series {
		points = append(points, sink.Point{Category: b.Bucket, Value: b.Count})
	}
	return sink.Chart{
		Name:   OverTimeName,
		Kind:   sink.Line,
		Title:  "Failed Login Attempts Over Time",
		XLabel: "Time (HH:MM)",
		YLabel: "Number of Failed Attempts",
		Points: points,
	}
}
