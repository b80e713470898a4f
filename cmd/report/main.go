// Command report prints summary statistics over a recipe history file. It
// reads the same JSON format the API persists and tolerates an absent or
// corrupt file the same way: it reports on an empty history instead of
// failing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/pageza/pantrypal/backend/internal/analytics"
	"github.com/pageza/pantrypal/backend/internal/history"
)

func main() {
	path := flag.String("history", "recipe_history.json", "path to the history file")
	top := flag.Int("top", 10, "number of top ingredients to show")
	flag.Parse()

	store, err := history.NewFileStore(*path, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open history: %v\n", err)
		os.Exit(1)
	}

	entries, err := store.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load history: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No recipe history found to analyze.")
		return
	}
	fmt.Printf("Recipe history: %d entries\n\n", len(entries))

	fmt.Println("Nutrition distribution")
	grouped := analytics.NutritionByMetric(entries)
	if len(grouped) == 0 {
		fmt.Println("  no numeric nutrition data available")
	}
	metrics := make([]string, 0, len(grouped))
	for m := range grouped {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)
	for _, m := range metrics {
		vals := grouped[m]
		fmt.Printf("  %-16s n=%-4d min=%-8.4g mean=%-8.4g max=%.4g\n",
			m, len(vals), minOf(vals), meanOf(vals), maxOf(vals))
	}

	fmt.Println("\nRecipes generated over time")
	volume := analytics.VolumeOverTime(entries)
	if len(volume) == 0 {
		fmt.Println("  no timestamp data available")
	}
	for _, dc := range volume {
		fmt.Printf("  %s  %d\n", dc.Date, dc.Count)
	}

	fmt.Printf("\nTop %d ingredients\n", *top)
	counts := analytics.TopIngredients(entries, *top)
	if len(counts) == 0 {
		fmt.Println("  no ingredient data available")
	}
	for _, ic := range counts {
		fmt.Printf("  %-24s %d\n", ic.Ingredient, ic.Count)
	}
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
