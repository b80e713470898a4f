// Package analytics derives aggregate views from the recipe history. All
// aggregates are pure functions over the loaded entries, recomputed on
// demand, and tolerant of partial or malformed data: bad rows are dropped,
// empty input produces empty output, nothing here returns an error.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/pageza/pantrypal/backend/internal/normalize"
	"github.com/pageza/pantrypal/backend/internal/types"
)

// NutritionRow is one parsed nutrient observation.
type NutritionRow struct {
	Recipe string  `json:"recipe"`
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// DateCount is the number of recipes generated on one calendar date.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// IngredientCount is one ingredient's usage frequency.
type IngredientCount struct {
	Ingredient string `json:"ingredient"`
	Count      int    `json:"count"`
}

// NutritionDistribution extracts a numeric observation for every nutrient
// of every entry. Values with no parseable leading number are dropped
// silently.
func NutritionDistribution(entries []types.Entry) []NutritionRow {
	var rows []NutritionRow
	for _, entry := range entries {
		name := entry.Recipe.Name
		if name == "" {
			name = "Unknown"
		}
		for metric, val := range entry.Recipe.Nutrition {
			if !hasDigit(val) {
				continue
			}
			rows = append(rows, NutritionRow{
				Recipe: name,
				Metric: metric,
				Value:  normalize.ParseLeadingNumber(val),
			})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Metric < rows[j].Metric })
	return rows
}

// NutritionByMetric groups the distribution rows by nutrient name.
func NutritionByMetric(entries []types.Entry) map[string][]float64 {
	grouped := make(map[string][]float64)
	for _, row := range NutritionDistribution(entries) {
		grouped[row.Metric] = append(grouped[row.Metric], row.Value)
	}
	return grouped
}

// VolumeOverTime counts entries per calendar date, ascending. Entries whose
// timestamp does not parse are dropped silently.
func VolumeOverTime(entries []types.Entry) []DateCount {
	counts := make(map[string]int)
	for _, entry := range entries {
		d, ok := entryDate(entry.Timestamp)
		if !ok {
			continue
		}
		counts[d]++
	}

	out := make([]DateCount, 0, len(counts))
	for d, c := range counts {
		out = append(out, DateCount{Date: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// TopIngredients flattens every entry's recipe ingredients, lowercases and
// trims each label, and returns the top n by descending count. Ties keep
// first-encountered order.
func TopIngredients(entries []types.Entry, n int) []IngredientCount {
	counts := make(map[string]int)
	var order []string

	for _, entry := range entries {
		for _, ing := range entry.Recipe.Ingredients {
			label := strings.ToLower(strings.TrimSpace(ing.Label()))
			if label == "" {
				continue
			}
			if _, seen := counts[label]; !seen {
				order = append(order, label)
			}
			counts[label]++
		}
	}

	out := make([]IngredientCount, 0, len(order))
	for _, label := range order {
		out = append(out, IngredientCount{Ingredient: label, Count: counts[label]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// entryDate parses the stored timestamp down to a calendar date. History
// files have always held local-time ISO-8601 strings, some with a trailing
// Z from older exports.
func entryDate(ts string) (string, bool) {
	ts = strings.TrimSuffix(ts, "Z")
	for _, layout := range []string{
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
