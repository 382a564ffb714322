// Package inventory resolves free-text vehicle references against a
// dealership's catalog and extracts budgets from customer messages.
package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sales-engine/pkg"
)

// Result caps, per query shape.
const (
	maxExactResults   = 6
	maxSimilarResults = 5
	maxBudgetResults  = 6
)

// priceBandPct is the ± window, as a fraction of the target price, used when
// searching for comparably priced alternatives.
const priceBandPct = 0.30

// VehicleProvider is the read-only catalog the resolver queries.
// Query methods return vehicles ordered by recency (newest model year, then
// newest listing, first).
type VehicleProvider interface {
	GetByID(ctx context.Context, id, dealershipID int64) (*pkg.Vehicle, error)
	// QueryByMakeYear filters by make (empty = any) and inclusive model-year
	// range (zero bounds = unbounded).
	QueryByMakeYear(ctx context.Context, dealershipID int64, make string, minYear, maxYear, limit int) ([]pkg.Vehicle, error)
	// QueryByPriceRange filters by inclusive price range in cents.
	QueryByPriceRange(ctx context.Context, dealershipID int64, minCents, maxCents int64, limit int) ([]pkg.Vehicle, error)
}

// Resolution is the outcome of matching a message against the catalog.
type Resolution struct {
	Matched     *pkg.Vehicle  // exact year+make match, if any
	Similar     []pkg.Vehicle // widened alternatives, ≤5
	SearchedFor string        // human-readable description of what was looked for
}

// Resolver extracts vehicle references from text and matches them against
// the catalog.
type Resolver struct {
	vehicles VehicleProvider
}

func NewResolver(vehicles VehicleProvider) *Resolver {
	return &Resolver{vehicles: vehicles}
}

// ResolveVehicle extracts year/make from the message and matches the catalog.
// An exact match requires every extracted attribute to match; failing that,
// the search widens to same-make or a ±2-year window and the results are
// offered as similar rather than matched.
func (r *Resolver) ResolveVehicle(ctx context.Context, dealershipID int64, text string) (Resolution, error) {
	make := DetectMake(text)
	year := DetectYear(text)
	if make == "" && year == 0 {
		return Resolution{}, nil
	}

	res := Resolution{SearchedFor: describeSearch(make, year)}

	exact, err := r.vehicles.QueryByMakeYear(ctx, dealershipID, make, year, year, maxExactResults)
	if err != nil {
		return Resolution{}, fmt.Errorf("querying exact match: %w", err)
	}
	if len(exact) > 0 {
		res.Matched = &exact[0]
		rest := exact[1:]
		if len(rest) > maxSimilarResults {
			rest = rest[:maxSimilarResults]
		}
		res.Similar = rest
		return res, nil
	}

	// Widen: same make any year, or, with no make, a ±2-year window.
	var similar []pkg.Vehicle
	if make != "" {
		similar, err = r.vehicles.QueryByMakeYear(ctx, dealershipID, make, 0, 0, maxSimilarResults)
	} else {
		similar, err = r.vehicles.QueryByMakeYear(ctx, dealershipID, "", year-2, year+2, maxSimilarResults)
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("querying similar vehicles: %w", err)
	}
	res.Similar = similar
	return res, nil
}

// FindSimilar returns up to 5 vehicles priced within ±30% of the reference
// (or of the budget when one is given), ordered by price distance to the
// target ascending with recency breaking ties. The reference vehicle itself
// is never returned.
func (r *Resolver) FindSimilar(ctx context.Context, vehicle pkg.Vehicle, budgetCents int64) ([]pkg.Vehicle, error) {
	target := vehicle.PriceCents
	if budgetCents > 0 {
		target = budgetCents
	}
	min := int64(float64(target) * (1 - priceBandPct))
	max := int64(float64(target) * (1 + priceBandPct))

	// Over-fetch so dropping the reference vehicle still leaves a full page.
	band, err := r.vehicles.QueryByPriceRange(ctx, vehicle.DealershipID, min, max, maxSimilarResults*3)
	if err != nil {
		return nil, fmt.Errorf("querying price band: %w", err)
	}

	candidates := band[:0:0]
	for _, v := range band {
		if v.ID != vehicle.ID {
			candidates = append(candidates, v)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di := absInt64(candidates[i].PriceCents - target)
		dj := absInt64(candidates[j].PriceCents - target)
		if di != dj {
			return di < dj
		}
		return candidates[i].Year > candidates[j].Year
	})
	if len(candidates) > maxSimilarResults {
		candidates = candidates[:maxSimilarResults]
	}
	return candidates, nil
}

// FindByBudget returns up to 6 vehicles at or under the budget, recency
// ordered.
func (r *Resolver) FindByBudget(ctx context.Context, dealershipID, maxPriceCents int64) ([]pkg.Vehicle, error) {
	vehicles, err := r.vehicles.QueryByPriceRange(ctx, dealershipID, 0, maxPriceCents, maxBudgetResults)
	if err != nil {
		return nil, fmt.Errorf("querying by budget: %w", err)
	}
	return vehicles, nil
}

func describeSearch(make string, year int) string {
	switch {
	case make != "" && year != 0:
		return fmt.Sprintf("%d %s", year, make)
	case make != "":
		return make
	default:
		return fmt.Sprintf("%d model", year)
	}
}

func absInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// Alternatives converts vehicles into the compact alternative form carried on
// a SalesResponse.
func Alternatives(vehicles []pkg.Vehicle) []pkg.AlternativeVehicle {
	if len(vehicles) == 0 {
		return nil
	}
	alts := make([]pkg.AlternativeVehicle, len(vehicles))
	for i, v := range vehicles {
		alts[i] = pkg.AlternativeVehicle{ID: v.ID, Name: v.DisplayName(), PriceCents: v.PriceCents}
	}
	return alts
}

// DescribeList renders vehicles as short "year make model - $price" lines for
// prompt context blocks.
func DescribeList(vehicles []pkg.Vehicle) string {
	var b strings.Builder
	for _, v := range vehicles {
		fmt.Fprintf(&b, "- %s - $%.0f\n", v.DisplayName(), v.PriceDollars())
	}
	return b.String()
}
