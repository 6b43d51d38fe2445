package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "fiat", 4},
		{"kitten", "sitting", 3},
		{"Citroën", "citroen", 0},
		{"  Volks   Wagen ", "volks wagen", 0},
		{"chevrolet", "chevrolt", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevenshteinDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "sao paulo", Normalize("  São   Paulo "))
	assert.Equal(t, "citroen c4 cactus", Normalize("CITROËN C4 Cactus"))
}

func TestThreshold(t *testing.T) {
	assert.Equal(t, 1, Threshold("vw"))
	assert.Equal(t, 2, Threshold("fiat"))
	assert.Equal(t, 3, Threshold("chevrolet"))
}

func TestScore_PrefersExactAndPrefix(t *testing.T) {
	exact := Score("gol", "Gol")
	prefix := Score("gol", "Golf")
	contains := Score("olf", "Golf")
	none := Score("civic", "Uno Mille")

	assert.Greater(t, exact, prefix)
	assert.Greater(t, prefix, contains)
	assert.Greater(t, contains, 0.0)
	assert.Zero(t, none)
}

func TestMatch_ToleratesTypos(t *testing.T) {
	assert.True(t, Match("volksvagen", "VW - VolksWagen"))
	assert.True(t, Match("hyundia", "Hyundai"))
	assert.True(t, Match("citroen", "Citroën"))
	assert.False(t, Match("ferrari", "Fiat"))
	assert.False(t, Match("", "Fiat"))
}

func TestRank(t *testing.T) {
	brands := []string{"Fiat", "Ferrari", "Ford", "GM - Chevrolet", "Fisker"}

	got := Rank("fi", brands, func(s string) string { return s })
	assert.Equal(t, "Fiat", got[0])
	assert.Contains(t, got, "Fisker")
	assert.NotContains(t, got, "GM - Chevrolet")

	assert.Equal(t, brands, Rank("  ", brands, func(s string) string { return s }))
	assert.Empty(t, Rank("zzzzzzzz", brands, func(s string) string { return s }))
}
