// Package sdk exposes the high level comparison operations: read two dump
// schemas, diff the monitored tables and forward every change to the
// audit sink.
package sdk

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kairu-dev/dumpaudit/internal/audit"
	"github.com/kairu-dev/dumpaudit/internal/catalog"
	"github.com/kairu-dev/dumpaudit/internal/compare"
	"github.com/kairu-dev/dumpaudit/internal/config"
	"github.com/kairu-dev/dumpaudit/internal/metrics"
	"github.com/kairu-dev/dumpaudit/internal/report"
	"github.com/kairu-dev/dumpaudit/internal/snapshot"
)

// Service runs comparisons between dump schemas.
type Service interface {
	// CompareSchemas diffs every monitored table between two schemas and
	// emits the detected changes to the audit sink.
	CompareSchemas(ctx context.Context, source, target string) (*report.Summary, error)
	// CompareAll walks all consecutive schema pairs under the configured
	// prefix, oldest first.
	CompareAll(ctx context.Context) ([]*report.Summary, error)
	// ListSchemas returns the dump schemas under the configured prefix.
	ListSchemas(ctx context.Context) ([]string, error)
}

// New returns a Service for the given configuration.
func New(cfg ServiceConfig) Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &service{
		cfg:     cfg,
		logger:  logger,
		reader:  snapshot.NewReader(cfg.DB),
		catalog: &catalog.Repo{DB: cfg.DB},
		emitter: cfg.emitter(),
	}
}

type service struct {
	cfg     ServiceConfig
	logger  *zap.SugaredLogger
	reader  *snapshot.Reader
	catalog *catalog.Repo
	emitter *audit.Emitter
}

func (s *service) ListSchemas(ctx context.Context) ([]string, error) {
	prefix := ""
	if s.cfg.Monitoring != nil {
		prefix = s.cfg.Monitoring.SchemaPrefix
	}
	return s.catalog.ListSchemas(ctx, prefix)
}

func (s *service) CompareAll(ctx context.Context) ([]*report.Summary, error) {
	schemas, err := s.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}
	if len(schemas) < 2 {
		return nil, fmt.Errorf("need at least two dump schemas, found %d", len(schemas))
	}
	var summaries []*report.Summary
	for _, pair := range catalog.Pairs(schemas) {
		sum, err := s.CompareSchemas(ctx, pair[0], pair[1])
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

func (s *service) CompareSchemas(ctx context.Context, source, target string) (*report.Summary, error) {
	if s.cfg.Monitoring == nil {
		return nil, &config.Error{Reason: "no monitoring configuration"}
	}
	if err := s.cfg.Monitoring.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	summary := report.NewSummary(source, target, runID)
	s.logger.Infow("comparison started", "source", source, "target", target, "run", runID)

	names := s.cfg.Monitoring.TableNames()
	sort.Strings(names)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.cfg.workers())
	)
	for _, name := range names {
		spec := s.cfg.Monitoring.Tables[name]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			res := s.compareTable(ctx, source, target, spec, runID)
			mu.Lock()
			defer mu.Unlock()
			if res.skipReason != "" {
				summary.Skipped = append(summary.Skipped, report.SkippedTable{Table: spec.Name, Reason: res.skipReason})
				metrics.TablesSkipped.WithLabelValues(res.skipKind).Inc()
				return
			}
			summary.Tables = append(summary.Tables, spec.Name)
			summary.RowsCompared += res.rows
			for typ, n := range res.sum.EventCounts {
				summary.EventCounts[typ] += n
			}
			for col, n := range res.sum.ColumnCounts {
				summary.ColumnCounts[col] += n
			}
		}()
	}
	wg.Wait()

	sort.Strings(summary.Tables)
	sort.Slice(summary.Skipped, func(i, j int) bool { return summary.Skipped[i].Table < summary.Skipped[j].Table })
	s.logger.Infow("comparison finished",
		"source", source, "target", target, "run", runID,
		"tables", len(summary.Tables), "skipped", len(summary.Skipped),
		"changes", summary.TotalChanges())
	return summary, ctx.Err()
}

// tableResult is the outcome of one table's comparison, merged into the
// run summary under the summary lock.
type tableResult struct {
	rows       int
	sum        *report.Summary
	skipReason string
	skipKind   string
}

// compareTable drives read -> compare -> emit for one table. Each table
// runs on its own goroutine and shares no mutable state with the others;
// events within the table keep the comparator's deterministic order.
func (s *service) compareTable(ctx context.Context, source, target string, spec config.TableSpec, runID string) tableResult {
	start := time.Now()
	res := tableResult{sum: report.NewSummary(source, target, runID)}

	src, err := s.readSnapshot(ctx, source, spec)
	if err != nil {
		return s.skip(spec, err, res)
	}
	tgt, err := s.readSnapshot(ctx, target, spec)
	if err != nil {
		return s.skip(spec, err, res)
	}
	res.rows = tgt.Len()
	metrics.RowsCompared.WithLabelValues(spec.Name).Add(float64(tgt.Len()))

	it := compare.Compare(src, tgt, spec)
	for it.Next() {
		ev := it.Event()
		doc := audit.NewDocument(ev, runID, time.Now().UTC(), spec.FieldNames)
		if err := s.emitter.Emit(ctx, doc); err != nil {
			var swe *audit.SinkWriteError
			if errors.As(err, &swe) {
				metrics.SinkWriteErrors.Inc()
				if s.cfg.ContinueOnSinkError {
					s.logger.Errorw("sink write failed, continuing",
						"table", spec.Name, "key", ev.Key, "err", err)
					continue
				}
			}
			res.skipReason = fmt.Sprintf("sink write failed at key %s: %v", ev.Key, err)
			res.skipKind = "sink"
			return res
		}
		res.sum.Add(ev)
		metrics.ChangeEvents.WithLabelValues(spec.Name, string(ev.Type)).Inc()
		if ev.Type == compare.CompareError {
			s.logger.Warnw("value comparison error",
				"table", spec.Name, "key", ev.Key, "column", ev.Column, "err", ev.Err)
		}
	}
	metrics.ComparisonDuration.WithLabelValues(spec.Name).Observe(time.Since(start).Seconds())
	return res
}

// readSnapshot applies the per-table read timeout.
func (s *service) readSnapshot(ctx context.Context, schema string, spec config.TableSpec) (*snapshot.Snapshot, error) {
	rctx, cancel := context.WithTimeout(ctx, s.cfg.readTimeout())
	defer cancel()
	return s.reader.Read(rctx, schema, spec)
}

// skip classifies a per-table failure. Data-source problems and timeouts
// are recoverable: the table is reported and the run continues.
func (s *service) skip(spec config.TableSpec, err error, res tableResult) tableResult {
	var dse *snapshot.DataSourceError
	switch {
	case errors.As(err, &dse):
		res.skipKind = string(dse.Kind)
	case errors.Is(err, context.DeadlineExceeded):
		res.skipKind = "timeout"
	default:
		res.skipKind = "read"
	}
	res.skipReason = err.Error()
	s.logger.Warnw("table skipped", "table", spec.Name, "reason", err)
	return res
}
