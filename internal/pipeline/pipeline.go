package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"failtrack/internal/aggregate"
	"failtrack/internal/detect"
	"failtrack/internal/ingest"
	"failtrack/internal/metrics"
	"failtrack/internal/parser"
	"failtrack/internal/types"
)

// ErrInputUnavailable means the log source could not be opened or read
var ErrInputUnavailable = errors.New("input unavailable")

// Stats describes how the input was consumed
type Stats struct {
	Lines    int // lines read
	Rejected int // lines with the failure marker that produced no event
}

// Result is everything one run derives from its input
type Result struct {
	RunID     string
	Source    string
	Threshold int
	Stats     Stats

	Events     types.EventStore
	Addresses  []types.AddressCount // encounter order
	Ranked     []types.AddressCount // descending count, ties by encounter
	Buckets    []types.TimeBucketCount
	Suspicious []types.AddressCount // encounter order
}

// Empty reports the "no data" outcome: the input held no failed logins
func (r *Result) Empty() bool {
	return len(r.Events) == 0
}

// Pipeline runs classification and aggregation over one input source
type Pipeline struct {
	parser parser.Parser
	engine *detect.Engine
	logger *zap.Logger
}

// New creates a pipeline. A nil logger disables logging.
func New(p parser.Parser, engine *detect.Engine, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{parser: p, engine: engine, logger: logger}
}

// BuildEventStore consumes src to the end and keeps every line the parser
// accepts, in order.
func BuildEventStore(ctx context.Context, src ingest.Ingester, p parser.Parser) (types.EventStore, Stats, error) {
	var stats Stats

	lines, err := src.Start()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	defer src.Stop()

	var store types.EventStore
	for {
		select {
		case <-ctx.Done():
			return nil, stats, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := src.Err(); err != nil {
					return nil, stats, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
				}
				return store, stats, nil
			}
			stats.Lines++
			evt := p.Parse(line.Content)
			if evt == nil {
				if strings.Contains(line.Content, parser.FailedMarker) {
					stats.Rejected++
				}
				continue
			}
			evt.Line = line.Number
			store = append(store, *evt)
		}
	}
}

// Run reads src, aggregates the events and classifies addresses. An input
// without failed logins is not an error; check Result.Empty.
func (p *Pipeline) Run(ctx context.Context, name string, src ingest.Ingester) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		Source:    name,
		Threshold: p.engine.Threshold(),
	}
	log := p.logger.With(zap.String("run_id", res.RunID), zap.String("source", name))

	store, stats, err := BuildEventStore(ctx, src, p.parser)
	metrics.LinesRead.Add(float64(stats.Lines))
	metrics.LinesRejected.Add(float64(stats.Rejected))
	if err != nil {
		if errors.Is(err, ErrInputUnavailable) {
			metrics.Runs.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		} else {
			metrics.Runs.WithLabelValues(metrics.OutcomeFailed).Inc()
		}
		return nil, err
	}
	res.Events = store
	res.Stats = stats
	metrics.EventsExtracted.Add(float64(len(store)))

	log.Debug("event store built",
		zap.Int("lines", stats.Lines),
		zap.Int("events", len(store)),
		zap.Int("rejected", stats.Rejected))

	if res.Empty() {
		metrics.Runs.WithLabelValues(metrics.OutcomeNoData).Inc()
		metrics.DistinctAddresses.Set(0)
		metrics.SuspiciousAddresses.Set(0)
		return res, nil
	}

	// The two aggregations only read the store.
	var wg sync.WaitGroup
	var bucketErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		res.Buckets, bucketErr = aggregate.CountByTimeBucket(store)
	}()
	res.Addresses = aggregate.CountByAddress(store)
	res.Ranked = aggregate.RankByAddress(res.Addresses)
	wg.Wait()

	if bucketErr != nil {
		metrics.Runs.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, bucketErr
	}

	res.Suspicious = p.engine.Suspicious(res.Addresses)

	metrics.DistinctAddresses.Set(float64(len(res.Addresses)))
	metrics.SuspiciousAddresses.Set(float64(len(res.Suspicious)))
	metrics.Runs.WithLabelValues(metrics.OutcomeOK).Inc()

	log.Info("analysis complete",
		zap.Int("events", len(store)),
		zap.Int("addresses", len(res.Addresses)),
		zap.Int("suspicious", len(res.Suspicious)),
		zap.Int("threshold", res.Threshold))

	return res, nil
}
