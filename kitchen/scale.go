// Package kitchen holds the pure text helpers used around recipes: ingredient
// scaling, servings and duration parsing, and cuisine slugs.
package kitchen

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// quantityPattern matches a decimal ("1.5"), a two-part fraction ("1/2") or an integer.
var quantityPattern = regexp.MustCompile(`\d+[./]\d+|\d+`)

// snapThreshold is how close a scaled value must be to an integer to be printed as one.
const snapThreshold = 0.1

// Scale rewrites every quantity in line by ratio and leaves the surrounding
// text as is. Units are not pluralized or converted.
//
//	Scale("1/2 tsp salt", 2)    == "1 tsp salt"
//	Scale("2 cups flour", 0.5)  == "1 cups flour"
//	Scale("1.5 kg rice", 1.5)   == "2.25 kg rice"
func Scale(line string, ratio float64) string {
	if ratio == 1 {
		return line
	}
	return quantityPattern.ReplaceAllStringFunc(line, func(token string) string {
		value, ok := parseQuantity(token)
		if !ok {
			return token
		}
		scaled := value * ratio
		if math.IsInf(scaled, 0) || math.IsNaN(scaled) {
			return token
		}
		return formatQuantity(scaled)
	})
}

// ScaleAll applies Scale to each line, keeping order.
func ScaleAll(lines []string, ratio float64) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Scale(line, ratio)
	}
	return out
}

// Ratio is desired/base servings. A non-positive base is treated as DefaultServings.
func Ratio(desired, base int) float64 {
	if base < 1 {
		base = DefaultServings
	}
	return float64(desired) / float64(base)
}

func parseQuantity(token string) (float64, bool) {
	if num, den, ok := strings.Cut(token, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatQuantity(v float64) string {
	rounded := math.Round(v)
	if math.Abs(v-rounded) < snapThreshold {
		if rounded == 0 {
			return "0"
		}
		return strconv.FormatFloat(rounded, 'f', -1, 64)
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
