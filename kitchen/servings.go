package kitchen

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultServings is used when a recipe's servings text has no usable number.
const DefaultServings = 4

var leadingInt = regexp.MustCompile(`^\s*(\d+)`)

// ParseServings reads the leading integer of a servings description
// ("4 bowls" -> 4, "1 loaf" -> 1). Anything else yields DefaultServings.
func ParseServings(s string) int {
	m := leadingInt.FindStringSubmatch(s)
	if m == nil {
		return DefaultServings
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return DefaultServings
	}
	return n
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slug lower-cases s and joins its words with "-", the form used in cuisine deep links.
func Slug(s string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
}
