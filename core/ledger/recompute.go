package ledger

import "sort"

// Recompute deduplicates records by identity, keeping the last occurrence, and recomputes the running
// average and risk feedback of every (student, module, type) group ordered by assessment number.
// AVG is rounded to one decimal place; the risk comparison uses the unrounded mean.
// The result is sorted by module, type, number (then student) and shares nothing with the input.
func Recompute(records []Record, riskThreshold float64) []Record {
	pos := make(map[identity]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if i, ok := pos[r.identity()]; ok {
			out[i] = r
			continue
		}
		pos[r.identity()] = len(out)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ModuleName != b.ModuleName {
			return a.ModuleName < b.ModuleName
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.StudentNumber < b.StudentNumber
	})

	type running struct {
		sum   float64
		count int
	}
	totals := make(map[group]*running)
	for i := range out {
		g := out[i].group()
		tot, ok := totals[g]
		if !ok {
			tot = new(running)
			totals[g] = tot
		}
		tot.sum += out[i].Score
		tot.count++

		mean := tot.sum / float64(tot.count)
		out[i].AVG = round(mean, 1)
		if mean < riskThreshold {
			out[i].Feedback = AtRisk
		} else {
			out[i].Feedback = NotAtRisk
		}
	}
	return out
}
