package table

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-insights/core"
)

// minSuggestionRatio is the lowest similarity for an unexpected column to be suggested as a misspelled required one.
const minSuggestionRatio = 0.6

// RequireColumns checks that every required column is present; extra columns are allowed.
func RequireColumns(columns, required []string) error {
	missing, unexpected := diffColumns(columns, required)
	if len(missing) == 0 {
		return nil
	}
	return newSchemaError(missing, unexpected, false)
}

// RequireExactColumns checks that columns are exactly the required ones, in the same order.
func RequireExactColumns(columns, required []string) error {
	missing, unexpected := diffColumns(columns, required)
	if len(missing) > 0 || len(unexpected) > 0 {
		return newSchemaError(missing, unexpected, false)
	}
	if len(columns) != len(required) {
		// same set, duplicated headers
		return newSchemaError(nil, nil, true)
	}
	for i := range required {
		if strings.TrimSpace(columns[i]) != required[i] {
			return newSchemaError(nil, nil, true)
		}
	}
	return nil
}

// diffColumns returns the required columns absent from columns (required order),
// and the columns that are not required (table order).
func diffColumns(columns, required []string) (missing, unexpected []string) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[strings.TrimSpace(c)] = true
	}
	wanted := make(map[string]bool, len(required))
	for _, c := range required {
		wanted[c] = true
		if !present[c] {
			missing = append(missing, c)
		}
	}
	for _, c := range columns {
		if c = strings.TrimSpace(c); !wanted[c] {
			unexpected = append(unexpected, c)
		}
	}
	return missing, unexpected
}

func newSchemaError(missing, unexpected []string, misordered bool) *core.SchemaError {
	return &core.SchemaError{
		Missing:     missing,
		Unexpected:  unexpected,
		Misordered:  misordered,
		Suggestions: suggest(unexpected, missing),
	}
}

// suggest maps each unexpected column to the most similar missing one.
func suggest(unexpected, missing []string) map[string]string {
	if len(unexpected) == 0 || len(missing) == 0 {
		return nil
	}
	suggestions := make(map[string]string)
	for _, u := range unexpected {
		var best string
		var bestRatio float64
		for _, m := range missing {
			matcher := difflib.NewMatcher(chars(strings.ToLower(u)), chars(strings.ToLower(m)))
			if r := matcher.Ratio(); r >= minSuggestionRatio && r > bestRatio {
				best, bestRatio = m, r
			}
		}
		if best != "" {
			suggestions[u] = best
		}
	}
	if len(suggestions) == 0 {
		return nil
	}
	return suggestions
}

func chars(s string) []string {
	return strings.Split(s, "")
}
