package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// The closed set of placeholders templates may use. Unresolved values render
// as empty strings; raw {{...}} syntax never reaches a customer.
var knownPlaceholders = map[string]struct{}{
	"vehicleModel":   {},
	"vehicleYear":    {},
	"vehicleFact":    {},
	"customerName":   {},
	"dealershipName": {},
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// ValidateTemplate rejects templates referencing placeholders outside the
// known set. Built-in templates are checked in tests; dealership overrides
// are checked when applied.
func ValidateTemplate(tmpl string) error {
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if _, ok := knownPlaceholders[m[1]]; !ok {
			return fmt.Errorf("unknown template placeholder %q", m[1])
		}
	}
	return nil
}

// RenderTemplate substitutes every placeholder, known or not, so no literal
// template syntax survives. Missing vars substitute as empty, then leftover
// doubled spaces from empty substitutions are collapsed.
func RenderTemplate(tmpl string, vars map[string]string) string {
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		return vars[name]
	})
	out = strings.Join(strings.Fields(out), " ")
	return strings.TrimSpace(out)
}
