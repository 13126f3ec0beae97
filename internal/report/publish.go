package report

import (
	"errors"
	"fmt"
	"io"

	"failtrack/internal/metrics"
	"failtrack/internal/sink"
)

// Publisher hands a finished report to the console and the artifact sinks
type Publisher struct {
	Out    io.Writer
	CSV    sink.CSVSink
	Charts sink.ChartSink // nil disables charts
}

// Publish writes the CSV, prints the console sections and writes both
// charts. Every artifact is attempted; failures are reported per artifact and
// returned joined.
func (p *Publisher) Publish(r Report) error {
	var errs []error

	if p.CSV != nil {
		path, err := p.CSV.WriteTable(SummaryName, SummaryHeader, r.SummaryRows())
		errs = append(errs, p.announce("csv", "CSV report", path, err))
	}

	WriteTopAttackers(p.Out, r)
	WriteSuspicious(p.Out, r)

	if p.Charts != nil {
		path, err := p.Charts.WriteChart(r.TopAttackersChart())
		errs = append(errs, p.announce("bar_chart", "Top attackers chart", path, err))

		path, err = p.Charts.WriteChart(r.OverTimeChart())
		errs = append(errs, p.announce("line_chart", "Failed attempts over time chart", path, err))
	}

	return errors.Join(errs...)
}

func (p *Publisher) announce(kind, label, path string, err error) error {
	if err != nil {
		metrics.Artifacts.WithLabelValues(kind, "failed").Inc()
		fmt.Fprintf(p.Out, "❌ %s failed: %v\n", label, err)
		return fmt.Errorf("%s: %w", kind, err)
	}
	metrics.Artifacts.WithLabelValues(kind, "ok").Inc()
	fmt.Fprintf(p.Out, "✅ %s saved: %s\n", label, path)
	return nil
}
