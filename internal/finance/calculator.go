// Package finance computes deterministic payment estimates from a
// dealership's configured credit tiers, term rules and fees.
package finance

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"sales-engine/pkg"
)

// defaultTerms is used when no model-year term rule matches.
var defaultTerms = []int{36, 48, 60, 72, 84}

// preferredTerms is the narrative-term preference order; falls back to the
// longest available term.
var preferredTerms = []int{72, 60, 84, 48}

// ConfigProvider is the dealership-scoped financing configuration source.
type ConfigProvider interface {
	CreditTiers(ctx context.Context, dealershipID int64) ([]pkg.CreditTier, error)
	TermRules(ctx context.Context, dealershipID int64) ([]pkg.ModelYearTermRule, error)
	ActiveFees(ctx context.Context, dealershipID int64) ([]pkg.DealershipFee, error)
}

// FeeLine is one fee's contribution to the financed total, in cents.
type FeeLine struct {
	Name        string
	AmountCents int64
}

// TermPayment is a payment estimate for one alternative term.
type TermPayment struct {
	TermMonths int
	Monthly    float64
}

// PaymentSummary is the full result of one calculation. Currency outputs are
// dollars rounded to 2 decimal places; intermediate cents stay exact.
type PaymentSummary struct {
	TierName           string
	AnnualRateBps      int
	TermMonths         int
	PriceCents         int64
	FeesCents          int64
	FeeBreakdown       []FeeLine
	TotalFinancedCents int64
	Monthly            float64
	BiWeekly           float64
	Alternatives       []TermPayment
}

// Calculator selects a credit tier and term, aggregates fees, and amortizes.
type Calculator struct {
	config ConfigProvider
}

func NewCalculator(config ConfigProvider) *Calculator {
	return &Calculator{config: config}
}

// Calculate produces a payment summary for the vehicle. A nil summary with a
// nil error means the dealership has no configured credit tiers; that is a
// normal condition, not a failure.
func (c *Calculator) Calculate(ctx context.Context, dealershipID, priceCents int64, modelYear int, creditScore *int) (*PaymentSummary, error) {
	tiers, err := c.config.CreditTiers(ctx, dealershipID)
	if err != nil {
		return nil, fmt.Errorf("loading credit tiers: %w", err)
	}
	tier, ok := selectTier(tiers, creditScore)
	if !ok {
		return nil, nil
	}

	rules, err := c.config.TermRules(ctx, dealershipID)
	if err != nil {
		return nil, fmt.Errorf("loading term rules: %w", err)
	}
	terms := selectTerms(rules, modelYear)

	fees, err := c.config.ActiveFees(ctx, dealershipID)
	if err != nil {
		return nil, fmt.Errorf("loading fees: %w", err)
	}
	breakdown, feesCents := aggregateFees(fees, priceCents)

	total := priceCents + feesCents
	term := pickNarrativeTerm(terms)

	summary := &PaymentSummary{
		TierName:           tier.Name,
		AnnualRateBps:      tier.AnnualRateBps,
		TermMonths:         term,
		PriceCents:         priceCents,
		FeesCents:          feesCents,
		FeeBreakdown:       breakdown,
		TotalFinancedCents: total,
	}

	monthly := amortize(total, tier.AnnualRateBps, term)
	summary.Monthly = round2(monthly)
	summary.BiWeekly = round2(monthly * 12 / 26)

	for _, alt := range terms {
		if alt == term {
			continue
		}
		summary.Alternatives = append(summary.Alternatives, TermPayment{
			TermMonths: alt,
			Monthly:    round2(amortize(total, tier.AnnualRateBps, alt)),
		})
	}
	return summary, nil
}

// selectTier picks the applicable active credit tier. With a score: the tier
// whose band contains it, else the lowest-min-score tier as the permissive
// default. Without a score: the tier named "Good", else the median-rate tier.
func selectTier(tiers []pkg.CreditTier, creditScore *int) (pkg.CreditTier, bool) {
	active := tiers[:0:0]
	for _, t := range tiers {
		if t.IsActive {
			active = append(active, t)
		}
	}
	if len(active) == 0 {
		return pkg.CreditTier{}, false
	}

	if creditScore != nil {
		for _, t := range active {
			if t.Contains(*creditScore) {
				return t, true
			}
		}
		lowest := active[0]
		for _, t := range active[1:] {
			if t.MinScore < lowest.MinScore {
				lowest = t
			}
		}
		return lowest, true
	}

	for _, t := range active {
		if strings.EqualFold(t.Name, "Good") {
			return t, true
		}
	}
	byRate := make([]pkg.CreditTier, len(active))
	copy(byRate, active)
	sort.SliceStable(byRate, func(i, j int) bool {
		return byRate[i].AnnualRateBps < byRate[j].AnnualRateBps
	})
	// Lower-middle on even counts.
	return byRate[(len(byRate)-1)/2], true
}

// selectTerms applies the first active rule whose model-year range contains
// the vehicle's year; no match falls back to the default term set.
func selectTerms(rules []pkg.ModelYearTermRule, modelYear int) []int {
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if modelYear >= r.MinModelYear && modelYear <= r.MaxModelYear {
			if terms := r.Terms(); len(terms) > 0 {
				return terms
			}
		}
	}
	return defaultTerms
}

// aggregateFees sums active, payment-included fees. Percentage fees compute
// against the price at their basis-point rate; flat fees are already cents.
func aggregateFees(fees []pkg.DealershipFee, priceCents int64) ([]FeeLine, int64) {
	ordered := make([]pkg.DealershipFee, 0, len(fees))
	for _, f := range fees {
		if f.IsActive && f.IncludeInPayment {
			ordered = append(ordered, f)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	var breakdown []FeeLine
	var total int64
	for _, f := range ordered {
		amount := f.Amount
		if f.IsPercentage {
			amount = int64(math.Round(float64(priceCents) * float64(f.Amount) / 10000))
		}
		breakdown = append(breakdown, FeeLine{Name: f.Name, AmountCents: amount})
		total += amount
	}
	return breakdown, total
}

// pickNarrativeTerm prefers 72, 60, 84, 48 in that order, else the longest
// available term.
func pickNarrativeTerm(terms []int) int {
	for _, want := range preferredTerms {
		for _, t := range terms {
			if t == want {
				return t
			}
		}
	}
	longest := terms[0]
	for _, t := range terms[1:] {
		if t > longest {
			longest = t
		}
	}
	return longest
}

// amortize computes the level monthly payment in dollars, unrounded. The
// standard formula is undefined at rate zero, where the payment is simply
// principal over term.
func amortize(totalCents int64, annualRateBps, termMonths int) float64 {
	principal := float64(totalCents) / 100
	n := float64(termMonths)
	if annualRateBps == 0 {
		return principal / n
	}
	c := float64(annualRateBps) / 10000 / 12
	pow := math.Pow(1+c, n)
	return principal * c * pow / (pow - 1)
}

// round2 rounds half away from zero to 2 decimal places. Applied only at the
// final step.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatNarrative renders the summary as the payment block used in prompts
// and surfaced on responses.
func (s *PaymentSummary) FormatNarrative() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimated financing (%s tier, %.2f%% APR): $%.2f/month over %d months ($%.2f bi-weekly).",
		s.TierName, float64(s.AnnualRateBps)/100, s.Monthly, s.TermMonths, s.BiWeekly)
	if s.FeesCents > 0 {
		fmt.Fprintf(&b, " Total financed $%.2f including $%.2f in fees.",
			float64(s.TotalFinancedCents)/100, float64(s.FeesCents)/100)
	}
	if len(s.Alternatives) > 0 {
		var alts []string
		for _, a := range s.Alternatives {
			alts = append(alts, fmt.Sprintf("%dmo $%.2f", a.TermMonths, a.Monthly))
		}
		fmt.Fprintf(&b, " Other terms: %s.", strings.Join(alts, ", "))
	}
	return b.String()
}
