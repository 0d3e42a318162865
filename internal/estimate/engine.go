// Package estimate prices order lines from the service catalog. All money is
// IDR minor units in int64; multipliers are decimal and rounding happens once
// per line, never cumulatively.
package estimate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kitforge-id/kitforge/internal/catalog"
)

var (
	// ErrUnknownService indicates the requested service is not in the catalog.
	ErrUnknownService = errors.New("unknown service")
	// ErrUnknownComplexity indicates the requested tier is not in the catalog.
	ErrUnknownComplexity = errors.New("unknown complexity level")
	// ErrForeignAddon indicates an addon that belongs to another service.
	ErrForeignAddon = errors.New("addon does not belong to the selected service")
	// ErrInactive indicates a selection pointing at a deactivated catalog row.
	ErrInactive = errors.New("catalog entry is inactive")
)

// Line is the priced result for one order item.
type Line struct {
	ServiceID    int64   `json:"service_id"`
	ComplexityID int64   `json:"complexity_id"`
	Multiplier   float64 `json:"multiplier"`
	Subtotal     int64   `json:"subtotal_cents"`
	AddonTotal   int64   `json:"addon_total_cents"`
	Total        int64   `json:"total_cents"`
	DurationDays int     `json:"duration_days"`
	AddonIDs     []int64 `json:"addon_ids"`
}

// EffectiveMultiplier resolves the multiplier for a (service, tier) pair:
// the per-service override when configured, otherwise the tier default.
func EffectiveMultiplier(snap catalog.Snapshot, serviceID, complexityID int64) (float64, error) {
	tier, ok := snap.ComplexityByID(complexityID)
	if !ok {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownComplexity, complexityID)
	}
	if override, ok := snap.OverrideFor(serviceID, complexityID); ok {
		return override, nil
	}
	return tier.Multiplier, nil
}

// PriceLine prices a single (service, complexity, addons) selection against
// the snapshot. Required addons are always charged; selected optional addons
// must belong to the service.
func PriceLine(snap catalog.Snapshot, serviceID, complexityID int64, addonIDs []int64) (Line, error) {
	svc, ok := snap.ServiceByID(serviceID)
	if !ok {
		return Line{}, fmt.Errorf("%w: id %d", ErrUnknownService, serviceID)
	}
	if !svc.IsActive {
		return Line{}, fmt.Errorf("%w: service %d", ErrInactive, serviceID)
	}
	tier, ok := snap.ComplexityByID(complexityID)
	if !ok {
		return Line{}, fmt.Errorf("%w: id %d", ErrUnknownComplexity, complexityID)
	}
	if !tier.IsActive {
		return Line{}, fmt.Errorf("%w: complexity %d", ErrInactive, complexityID)
	}

	multiplier, err := EffectiveMultiplier(snap, serviceID, complexityID)
	if err != nil {
		return Line{}, err
	}

	owned := make(map[int64]catalog.Addon)
	for _, a := range snap.AddonsForService(serviceID) {
		owned[a.ID] = a
	}

	charged := make(map[int64]catalog.Addon)
	for _, id := range addonIDs {
		addon, ok := owned[id]
		if !ok {
			return Line{}, fmt.Errorf("%w: addon %d", ErrForeignAddon, id)
		}
		if !addon.IsActive {
			return Line{}, fmt.Errorf("%w: addon %d", ErrInactive, id)
		}
		charged[id] = addon
	}
	for id, addon := range owned {
		if addon.IsRequired && addon.IsActive {
			charged[id] = addon
		}
	}

	var addonTotal int64
	chargedIDs := make([]int64, 0, len(charged))
	for id, addon := range charged {
		addonTotal += addon.PriceCents
		chargedIDs = append(chargedIDs, id)
	}
	sort.Slice(chargedIDs, func(i, j int) bool { return chargedIDs[i] < chargedIDs[j] })

	subtotal := int64(math.Round(float64(svc.BasePriceCents) * multiplier))
	duration := int(math.Round(float64(svc.BaseDays) * multiplier))

	return Line{
		ServiceID:    serviceID,
		ComplexityID: complexityID,
		Multiplier:   multiplier,
		Subtotal:     subtotal,
		AddonTotal:   addonTotal,
		Total:        subtotal + addonTotal,
		DurationDays: duration,
		AddonIDs:     chargedIDs,
	}, nil
}

// Summarize folds priced lines into order-level totals.
func Summarize(lines []Line) (totalCents int64, totalDays int) {
	for _, l := range lines {
		totalCents += l.Total
		totalDays += l.DurationDays
	}
	return totalCents, totalDays
}
