// Package usage turns enriched messages into per-message credit usage.
package usage

import (
	"context"

	"github.com/obsidianstack/creditmeter/pkg/types"
	"github.com/obsidianstack/creditmeter/server/internal/credits"
	"github.com/obsidianstack/creditmeter/server/internal/metrics"
)

// MessageSource fetches the current period's messages.
// ok is false when the batch is unavailable.
type MessageSource interface {
	FetchCurrentPeriodMessages(ctx context.Context) ([]types.Message, bool)
}

// Enricher joins messages to their reports, preserving order.
type Enricher interface {
	Enrich(ctx context.Context, msgs []types.Message) []types.EnrichedMessage
}

// Project maps enriched messages to usage records. A message with a report
// costs the report's credit_cost; otherwise the cost comes from its text.
func Project(msgs []types.EnrichedMessage) []types.UsageRecord {
	out := make([]types.UsageRecord, 0, len(msgs))
	for _, m := range msgs {
		rec := types.UsageRecord{
			MessageID: m.ID,
			Timestamp: m.Timestamp,
		}
		if m.Report != nil {
			name := m.Report.Name
			rec.ReportName = &name
			rec.CreditsUsed = float64(m.Report.CreditCost)
		} else {
			rec.CreditsUsed = credits.Compute(m.Text)
		}
		out = append(out, rec)
	}
	return out
}

// Service computes the usage of the current period.
type Service struct {
	source   MessageSource
	enricher Enricher
	metrics  *metrics.Metrics
}

// NewService wires a Service.
func NewService(src MessageSource, e Enricher, m *metrics.Metrics) *Service {
	return &Service{source: src, enricher: e, metrics: m}
}

// Usage fetches, enriches and projects the current period's messages.
// It returns an empty slice, never nil, when the messages are unavailable.
func (s *Service) Usage(ctx context.Context) []types.UsageRecord {
	s.metrics.UsageRequest()

	msgs, ok := s.source.FetchCurrentPeriodMessages(ctx)
	if !ok {
		return []types.UsageRecord{}
	}
	return Project(s.enricher.Enrich(ctx, msgs))
}
