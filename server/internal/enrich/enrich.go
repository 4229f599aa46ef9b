package enrich

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/obsidianstack/creditmeter/pkg/types"
	"github.com/obsidianstack/creditmeter/server/internal/metrics"
)

// DefaultLimit is the number of report fetches allowed in flight at once.
const DefaultLimit = 25

// ReportFetcher fetches a single report. ok is false when the report is
// absent for any reason; implementations log the cause.
type ReportFetcher interface {
	FetchReport(ctx context.Context, id int64) (types.Report, bool)
}

// Aggregator fans report fetches out under a fixed admission limit.
type Aggregator struct {
	fetcher ReportFetcher
	limit   int
	metrics *metrics.Metrics
}

// New returns an Aggregator. A limit below 1 falls back to DefaultLimit.
func New(f ReportFetcher, limit int, m *metrics.Metrics) *Aggregator {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Aggregator{fetcher: f, limit: limit, metrics: m}
}

// fetchJob is one scheduled fetch and, once done, its result.
type fetchJob struct {
	reportID  int64
	messageID int64
	report    types.Report
	ok        bool
}

// Enrich returns msgs joined with their reports, in input order.
func (a *Aggregator) Enrich(ctx context.Context, msgs []types.Message) []types.EnrichedMessage {
	start := time.Now()
	defer func() { a.metrics.ObserveEnrich(time.Since(start)) }()

	out := make([]types.EnrichedMessage, len(msgs))
	// pending maps a report id to the indexes in out waiting for it.
	pending := make(map[int64][]int)
	var jobs []fetchJob

	for i, m := range msgs {
		out[i] = types.EnrichedMessage{Message: m}
		if m.ReportID == nil {
			continue
		}
		jobs = append(jobs, fetchJob{reportID: *m.ReportID, messageID: m.ID})
		pending[*m.ReportID] = append(pending[*m.ReportID], i)
	}

	if len(jobs) > 0 {
		a.fetchAll(ctx, jobs)
	}

	for i := range jobs {
		j := &jobs[i]
		if !j.ok {
			slog.Error("enrich: report unavailable, continuing without it",
				"message_id", j.messageID, "report_id", j.reportID)
			continue
		}
		rep := j.report
		for _, idx := range pending[rep.ID] {
			out[idx].Report = &rep
		}
	}
	return out
}

// fetchAll runs every job with at most a.limit in flight and returns once all
// of them finished. Each goroutine writes only its own job slot.
func (a *Aggregator) fetchAll(ctx context.Context, jobs []fetchJob) {
	var g errgroup.Group
	g.SetLimit(a.limit)

	for i := range jobs {
		j := &jobs[i]
		g.Go(func() error {
			a.metrics.ReportStarted()
			defer a.metrics.ReportDone()
			j.report, j.ok = a.fetcher.FetchReport(ctx, j.reportID)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return an error
}
