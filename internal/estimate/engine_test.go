package estimate

import (
	"errors"
	"testing"

	"github.com/kitforge-id/kitforge/internal/catalog"
)

func testSnapshot() catalog.Snapshot {
	override := 3.5
	return catalog.Snapshot{
		Services: []catalog.Service{
			{ID: 1, Name: "Panel Lined Build", BasePriceCents: 500_000, BaseDays: 30, IsActive: true},
			{ID: 2, Name: "Custom Paint", BasePriceCents: 1_250_000, BaseDays: 21, IsActive: true},
			{ID: 3, Name: "Retired Service", BasePriceCents: 100_000, BaseDays: 5, IsActive: false},
		},
		Complexities: []catalog.ComplexityLevel{
			{ID: 10, Slug: "hg", Multiplier: 1.0, IsActive: true},
			{ID: 11, Slug: "rg", Multiplier: 1.5, IsActive: true},
			{ID: 12, Slug: "mg", Multiplier: 2.0, IsActive: true},
			{ID: 13, Slug: "pg", Multiplier: 3.0, IsActive: true},
		},
		Overrides: []catalog.ServiceComplexity{
			{ServiceID: 2, ComplexityID: 13, Multiplier: &override},
		},
		Addons: []catalog.Addon{
			{ID: 100, ServiceID: 1, Name: "Top Coat", PriceCents: 50_000, IsActive: true},
			{ID: 101, ServiceID: 2, Name: "Surface Preparation", PriceCents: 100_000, IsRequired: true, IsActive: true},
			{ID: 102, ServiceID: 2, Name: "Candy Coat", PriceCents: 250_000, IsActive: true},
			{ID: 103, ServiceID: 1, Name: "Retired Addon", PriceCents: 10_000, IsActive: false},
		},
	}
}

func TestPriceLineBasicMultiplier(t *testing.T) {
	line, err := PriceLine(testSnapshot(), 1, 11, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Subtotal != 750_000 {
		t.Fatalf("subtotal = %d, want 750000", line.Subtotal)
	}
	if line.Total != 750_000 {
		t.Fatalf("total = %d, want 750000", line.Total)
	}
	if line.DurationDays != 45 {
		t.Fatalf("duration = %d, want 45", line.DurationDays)
	}
}

func TestPriceLineWithAddon(t *testing.T) {
	line, err := PriceLine(testSnapshot(), 1, 11, []int64{100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.AddonTotal != 50_000 {
		t.Fatalf("addon total = %d, want 50000", line.AddonTotal)
	}
	if line.Total != 800_000 {
		t.Fatalf("total = %d, want 800000", line.Total)
	}
}

func TestPriceLineDurationScales(t *testing.T) {
	line, err := PriceLine(testSnapshot(), 1, 12, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.DurationDays != 60 {
		t.Fatalf("duration = %d, want 60", line.DurationDays)
	}
}

func TestPriceLineOverrideBeatsDefault(t *testing.T) {
	snap := testSnapshot()

	line, err := PriceLine(snap, 2, 13, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Multiplier != 3.5 {
		t.Fatalf("multiplier = %v, want override 3.5", line.Multiplier)
	}

	// Same tier without an override falls back to the default.
	line, err = PriceLine(snap, 1, 13, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Multiplier != 3.0 {
		t.Fatalf("multiplier = %v, want default 3.0", line.Multiplier)
	}
}

func TestPriceLineRequiredAddonAlwaysCharged(t *testing.T) {
	line, err := PriceLine(testSnapshot(), 2, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.AddonTotal != 100_000 {
		t.Fatalf("addon total = %d, want required 100000", line.AddonTotal)
	}
	if len(line.AddonIDs) != 1 || line.AddonIDs[0] != 101 {
		t.Fatalf("addon ids = %v, want [101]", line.AddonIDs)
	}
}

func TestPriceLineRequiredAddonNotDoubleCharged(t *testing.T) {
	line, err := PriceLine(testSnapshot(), 2, 10, []int64{101, 102})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.AddonTotal != 350_000 {
		t.Fatalf("addon total = %d, want 350000", line.AddonTotal)
	}
}

func TestPriceLineForeignAddonRejected(t *testing.T) {
	_, err := PriceLine(testSnapshot(), 1, 10, []int64{102})
	if !errors.Is(err, ErrForeignAddon) {
		t.Fatalf("err = %v, want ErrForeignAddon", err)
	}
}

func TestPriceLineInactiveRejected(t *testing.T) {
	if _, err := PriceLine(testSnapshot(), 3, 10, nil); !errors.Is(err, ErrInactive) {
		t.Fatalf("inactive service err = %v, want ErrInactive", err)
	}
	if _, err := PriceLine(testSnapshot(), 1, 10, []int64{103}); !errors.Is(err, ErrInactive) {
		t.Fatalf("inactive addon err = %v, want ErrInactive", err)
	}
}

func TestPriceLineUnknownIDs(t *testing.T) {
	if _, err := PriceLine(testSnapshot(), 99, 10, nil); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("err = %v, want ErrUnknownService", err)
	}
	if _, err := PriceLine(testSnapshot(), 1, 99, nil); !errors.Is(err, ErrUnknownComplexity) {
		t.Fatalf("err = %v, want ErrUnknownComplexity", err)
	}
}

func TestPriceLineMonotonicInMultiplier(t *testing.T) {
	snap := testSnapshot()
	var prev int64 = -1
	for _, tier := range []int64{10, 11, 12, 13} {
		line, err := PriceLine(snap, 1, tier, nil)
		if err != nil {
			t.Fatalf("tier %d: %v", tier, err)
		}
		if line.Subtotal <= prev {
			t.Fatalf("tier %d subtotal %d not greater than previous %d", tier, line.Subtotal, prev)
		}
		prev = line.Subtotal
	}
}

func TestSummarize(t *testing.T) {
	lines := []Line{
		{Total: 750_000, DurationDays: 45},
		{Total: 800_000, DurationDays: 60},
	}
	totalCents, totalDays := Summarize(lines)
	if totalCents != 1_550_000 {
		t.Fatalf("total cents = %d, want 1550000", totalCents)
	}
	if totalDays != 105 {
		t.Fatalf("total days = %d, want 105", totalDays)
	}
}

func TestQuoteFromSnapshotAggregates(t *testing.T) {
	req := QuoteRequest{Items: []QuoteItemRequest{
		{KitName: "RG Nu Gundam", ServiceID: 1, ComplexityID: 11},
		{KitName: "PG Unicorn", ServiceID: 2, ComplexityID: 13},
	}}
	quote, err := QuoteFromSnapshot(testSnapshot(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quote.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(quote.Lines))
	}
	wantTotal := quote.Lines[0].Total + quote.Lines[1].Total
	if quote.TotalCents != wantTotal {
		t.Fatalf("total = %d, want %d", quote.TotalCents, wantTotal)
	}
}
