package estimate

import (
	"context"
	"fmt"

	"github.com/kitforge-id/kitforge/internal/catalog"
)

// SnapshotSource supplies catalog snapshots for pricing.
type SnapshotSource interface {
	Snapshot(ctx context.Context, includeInactive bool) (catalog.Snapshot, error)
}

// Service prices quotes against the live catalog.
type Service struct {
	source SnapshotSource
}

// NewService constructs an estimate service.
func NewService(source SnapshotSource) *Service {
	return &Service{source: source}
}

// Quote prices every line of the request against one catalog snapshot so all
// lines see the same data. Nothing is persisted.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	snap, err := s.source.Snapshot(ctx, false)
	if err != nil {
		return Quote{}, fmt.Errorf("estimate: load catalog: %w", err)
	}
	return QuoteFromSnapshot(snap, req)
}

// QuoteFromSnapshot prices the request against a caller-provided snapshot.
func QuoteFromSnapshot(snap catalog.Snapshot, req QuoteRequest) (Quote, error) {
	quote := Quote{Lines: make([]QuoteLine, 0, len(req.Items))}
	for i, item := range req.Items {
		line, err := PriceLine(snap, item.ServiceID, item.ComplexityID, item.AddonIDs)
		if err != nil {
			return Quote{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		quote.Lines = append(quote.Lines, QuoteLine{KitName: item.KitName, Line: line})
		quote.TotalCents += line.Total
		quote.TotalDays += line.DurationDays
	}
	return quote, nil
}
