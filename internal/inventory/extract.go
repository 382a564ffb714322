package inventory

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Budget sanity window, in dollars. Values outside it are treated as noise
// (phone numbers, years, stock numbers).
const (
	minBudgetDollars = 5_000
	maxBudgetDollars = 200_000
)

// Shorthand window: "around 28" means twenty-eight thousand.
const (
	minShorthand = 5
	maxShorthand = 200
)

type budgetPattern struct {
	re       *regexp.Regexp
	thousand bool // value carries a "k" suffix
}

// Ordered: the most explicit phrasings first. The first pattern whose value
// survives the sanity window wins.
var budgetPatterns = []budgetPattern{
	{regexp.MustCompile(`(?i)\$?\s*(\d{1,3}(?:\.\d)?)\s*k\b`), true},
	{regexp.MustCompile(`\$?\s*(\d{1,3}(?:,\d{3})+)`), false},
	{regexp.MustCompile(`(?i)budget\D{0,12}\$?\s*(\d+)`), false},
	{regexp.MustCompile(`(?i)\bunder\s+\$?\s*(\d+)`), false},
	{regexp.MustCompile(`(?i)\baround\s+\$?\s*(\d+)`), false},
	{regexp.MustCompile(`(?i)\bmax(?:imum)?\D{0,12}\$?\s*(\d+)`), false},
}

// ExtractBudget pulls a dollar budget out of free text and returns it in
// cents. The second return is false when no plausible budget was found.
func ExtractBudget(text string) (int64, bool) {
	for _, p := range budgetPatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if p.thousand {
			value *= 1000
		} else if value >= minShorthand && value <= maxShorthand {
			// "around 28" is shorthand for thousands.
			value *= 1000
		}
		if value < minBudgetDollars || value > maxBudgetDollars {
			continue
		}
		return int64(value * 100), true
	}
	return 0, false
}

// canonical make names, with informal aliases folded in.
var makeAliases = map[string]string{
	"toyota": "Toyota", "honda": "Honda", "ford": "Ford",
	"chevrolet": "Chevrolet", "chevy": "Chevrolet",
	"nissan": "Nissan", "hyundai": "Hyundai", "kia": "Kia",
	"mazda": "Mazda", "subaru": "Subaru",
	"volkswagen": "Volkswagen", "vw": "Volkswagen",
	"bmw": "BMW",
	"mercedes-benz": "Mercedes-Benz", "mercedes": "Mercedes-Benz", "benz": "Mercedes-Benz",
	"audi": "Audi", "lexus": "Lexus", "acura": "Acura", "infiniti": "Infiniti",
	"cadillac": "Cadillac", "buick": "Buick", "gmc": "GMC",
	"ram": "Ram", "dodge": "Dodge", "jeep": "Jeep", "chrysler": "Chrysler",
	"tesla": "Tesla", "volvo": "Volvo", "porsche": "Porsche",
	"jaguar": "Jaguar",
	"land rover": "Land Rover", "landrover": "Land Rover", "range rover": "Land Rover",
	"mini": "Mini", "mitsubishi": "Mitsubishi", "genesis": "Genesis",
	"lincoln": "Lincoln", "fiat": "Fiat",
	"alfa romeo": "Alfa Romeo", "suzuki": "Suzuki",
}

// Longer aliases must be probed before their substrings ("land rover" before
// "ram" would not matter, but "range rover" contains no other alias; "vw" and
// "ram" are short enough to need word boundaries).
var makeProbeOrder = buildProbeOrder()

func buildProbeOrder() []string {
	probes := make([]string, 0, len(makeAliases))
	for alias := range makeAliases {
		probes = append(probes, alias)
	}
	// Longest first so "mercedes-benz" beats "benz", "land rover" beats "rover".
	sort.Slice(probes, func(i, j int) bool {
		if len(probes[i]) != len(probes[j]) {
			return len(probes[i]) > len(probes[j])
		}
		return probes[i] < probes[j]
	})
	return probes
}

var wordBound = regexp.MustCompile(`[a-z0-9]`)

// DetectMake finds the first known vehicle make mentioned in the text and
// returns its canonical name, or "" when none is present.
func DetectMake(text string) string {
	lower := strings.ToLower(text)
	for _, alias := range makeProbeOrder {
		idx := strings.Index(lower, alias)
		if idx < 0 {
			continue
		}
		// Reject matches embedded inside larger words ("kiana" is not "kia").
		if idx > 0 && wordBound.MatchString(string(lower[idx-1])) {
			continue
		}
		end := idx + len(alias)
		if end < len(lower) && wordBound.MatchString(string(lower[end])) {
			continue
		}
		return makeAliases[alias]
	}
	return ""
}

var yearPattern = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// DetectYear finds the first plausible 4-digit model year in the text, or 0.
func DetectYear(text string) int {
	m := yearPattern.FindString(text)
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}
