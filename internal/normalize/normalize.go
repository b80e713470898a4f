// Package normalize coerces the heterogeneous ingredient and nutrition
// representations produced by the AI service into the canonical forms used
// everywhere downstream.
package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pageza/pantrypal/backend/internal/types"
)

// Ingredients flattens a list of ingredients into plain text labels. The
// output always has the same length as the input and contains only strings;
// unrecognized shapes fall back to a verbatim serialization rather than an
// error.
func Ingredients(raw []types.Ingredient) []string {
	out := make([]string, len(raw))
	for i, ing := range raw {
		out[i] = ing.Label()
	}
	return out
}

// ParseLeadingNumber scans text for the first run of digits, with an
// optional decimal point, and returns it as a float. It returns 0 when no
// digits are present, so nutrition strings like "trace" or "" aggregate as
// zero rather than failing.
func ParseLeadingNumber(text string) float64 {
	start := -1
	for i, r := range text {
		if unicode.IsDigit(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}

	end := start
	seenDot := false
	for end < len(text) {
		c := text[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}

	// A trailing dot ("5." in "5. Serve hot") is not part of the number
	num := strings.TrimSuffix(text[start:end], ".")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return v
}
