package kitchen

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScale(t *testing.T) {
	tests := []struct {
		line  string
		ratio float64
		want  string
	}{
		{"1/2 tsp salt", 2, "1 tsp salt"},
		{"2 cups flour", 0.5, "1 cups flour"},
		{"1.5 kg rice", 1.5, "2.25 kg rice"},
		{"3 lbs Roma tomatoes", 0.5, "1.5 lbs Roma tomatoes"},
		{"1/3 cup sugar", 3, "1 cup sugar"},
		{"1/3 cup sugar", 2, "0.67 cup sugar"},
		{"2 cups / 500 g flour", 2, "4 cups / 1000 g flour"},
		{"500g bread flour", 1.25, "625g bread flour"},
		{"10g salt", 1.25, "12.5g salt"},
		{"1 whole chicken", 1.25, "1.25 whole chicken"},
		{"Rosemary", 3, "Rosemary"},
		{"2 eggs", 0, "0 eggs"},
		{"1/0 cup water", 2, "1/0 cup water"},
		{"99999999999999999999 g sugar", 2, "200000000000000000000 g sugar"},
		{"10000000000000000000 g", 2, "20000000000000000000 g"},
		{"0.01 tsp saffron", -1, "0 tsp saffron"},
		{"2 cups milk", math.MaxFloat64, "2 cups milk"},
	}
	for _, tt := range tests {
		t.Run(tt.line+"x"+strconv.FormatFloat(tt.ratio, 'f', -1, 64), func(t *testing.T) {
			assert.Equal(t, tt.want, Scale(tt.line, tt.ratio))
		})
	}
}

func TestScaleIdentity(t *testing.T) {
	lines := []string{"1/2 tsp salt", "1.333 cups milk", "Butter", "", "2-3 cloves garlic", "7/8"}
	for _, line := range lines {
		assert.Equal(t, line, Scale(line, 1))
	}
}

func TestScaleLeavesTextWithoutNumbers(t *testing.T) {
	lines := []string{"Tart shell", "Custard filling", "Mixed Berries", "Salt to taste"}
	for _, ratio := range []float64{0, 0.25, 2, 7.5, -1} {
		for _, line := range lines {
			assert.Equal(t, line, Scale(line, ratio))
		}
	}
}

func TestScaleRoundTrip(t *testing.T) {
	lines := []string{"2 cups flour", "3 lbs tomatoes", "1/2 cup basil", "100g starter", "1.5 tbsp oil"}
	for _, r := range []float64{2, 3, 0.5, 4} {
		for _, line := range lines {
			back := Scale(Scale(line, r), 1/r)
			want := quantities(t, line)
			got := quantities(t, back)
			require.Len(t, got, len(want), "line %q ratio %v", line, r)
			for i := range want {
				assert.InDelta(t, want[i], got[i], 0.1, "line %q ratio %v", line, r)
			}
		}
	}
}

func quantities(t *testing.T, line string) []float64 {
	t.Helper()
	var out []float64
	for _, tok := range quantityPattern.FindAllString(line, -1) {
		v, ok := parseQuantity(tok)
		require.True(t, ok)
		out = append(out, v)
	}
	return out
}

func TestScaleAllKeepsOrder(t *testing.T) {
	got := ScaleAll([]string{"1 onion", "2 tomatoes", "Salt"}, 2)
	assert.Equal(t, []string{"2 onion", "4 tomatoes", "Salt"}, got)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.5, Ratio(6, 4))
	assert.Equal(t, 0.5, Ratio(2, 0))
	assert.True(t, math.Abs(Ratio(1, 3)-1.0/3) < 1e-9)
}

func TestParseServings(t *testing.T) {
	tests := map[string]int{
		"4":          4,
		"4 bowls":    4,
		"5 people":   5,
		"1 loaf":     1,
		"8 slices":   8,
		" 12":        12,
		"":           DefaultServings,
		"a few":      DefaultServings,
		"0":          DefaultServings,
		"serves 6":   DefaultServings,
		"2-3 people": 2,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseServings(in), "ParseServings(%q)", in)
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"15 mins":           15 * time.Minute,
		"1 hr 15 mins":      75 * time.Minute,
		"2 hours":           2 * time.Hour,
		"1 Hour 30 Minutes": 90 * time.Minute,
		"45m":               45 * time.Minute,
		"overnight":         0,
		"":                  0,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseDuration(in), "ParseDuration(%q)", in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "1:15:00", FormatClock(75*time.Minute))
	assert.Equal(t, "1:30", FormatClock(90*time.Second))
	assert.Equal(t, "0:05", FormatClock(5*time.Second))
	assert.Equal(t, "0:00", FormatClock(-time.Second))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "south-indian", Slug("South Indian"))
	assert.Equal(t, "south-indian", Slug("  south   indian "))
	assert.Equal(t, "italian", Slug("ITALIAN"))
	assert.Equal(t, "", Slug(""))
}
